// Package payload encodes serialized forms for transport and decodes the
// error payloads servers send back.
package payload

import (
	"bytes"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/tree"
)

// Format controls how a form is serialized for transport.
type Format string

const (
	// FormatJSON emits the structured tree as application/json.
	FormatJSON Format = "json"
	// FormatURLEncoded emits the flat entries as
	// application/x-www-form-urlencoded, in document order.
	FormatURLEncoded Format = "form"
	// FormatMultipart emits the flat entries as multipart/form-data.
	FormatMultipart Format = "formdata"
)

// ParseFormat maps a configuration string onto a Format. Matching is
// case-insensitive; unknown values yield FormatURLEncoded.
func ParseFormat(raw string) Format {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON
	case "formdata", "multipart":
		return FormatMultipart
	default:
		return FormatURLEncoded
	}
}

// ContentType returns the media type for the format. Multipart bodies carry
// their boundary in the type returned by Encode instead.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMultipart:
		return "multipart/form-data"
	default:
		return "application/x-www-form-urlencoded"
	}
}

// Body is an encoded payload and its content type.
type Body struct {
	ContentType string
	Data        []byte
}

// Encode renders a payload. JSON bodies encode root; flat formats encode the
// entries in order with CRLF-normalized values.
func Encode(format Format, root *tree.Map, entries []form.Entry) (Body, error) {
	switch format {
	case FormatJSON:
		if root == nil {
			root = tree.NewMap()
		}
		data, err := root.MarshalJSON()
		if err != nil {
			return Body{}, err
		}
		return Body{ContentType: FormatJSON.ContentType(), Data: data}, nil
	case FormatMultipart:
		return EncodeMultipart(entries)
	default:
		return Body{
			ContentType: FormatURLEncoded.ContentType(),
			Data:        []byte(EncodeURL(entries)),
		}, nil
	}
}

// EncodeURL renders entries as a url-encoded body. Unlike url.Values.Encode
// the document order of the entries is kept.
func EncodeURL(entries []form.Entry) string {
	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(entry.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(cast.NormalizeNewlines(entry.Value)))
	}
	return b.String()
}

// EncodeMultipart renders entries as multipart/form-data fields.
func EncodeMultipart(entries []form.Entry) (Body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, entry := range entries {
		if err := w.WriteField(entry.Name, cast.NormalizeNewlines(entry.Value)); err != nil {
			return Body{}, err
		}
	}
	if err := w.Close(); err != nil {
		return Body{}, err
	}
	return Body{ContentType: w.FormDataContentType(), Data: buf.Bytes()}, nil
}
