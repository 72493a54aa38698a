// Package formpath maps flat form-field names written in dot/bracket notation
// onto nested, typed payloads and maps server-reported error paths back onto
// the form controls they refer to.
//
// Serialize walks a form snapshot in document order, casts each submitted
// value using the control's type hint and inserts it into an ordered tree:
//
//	user.name=Ann, user.age=30 (data-type=int), tags[]=a, tags[]=b
//	=> {"user":{"name":"Ann","age":30},"tags":["a","b"]}
//
// Resolve takes an error path such as `tags[1]` and returns the control that
// should display the message, falling back from an exact name match to the
// second control named `tags[]`.
package formpath

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
	"github.com/goliatone/go-formpath/pkg/resolve"
	"github.com/goliatone/go-formpath/pkg/tree"
)

// Serialize builds the payload tree for f. Insertions that conflict with
// earlier ones (a name addressing a map as a list, for example) are skipped;
// the returned tree is complete for every other entry and the error joins
// the skipped insertions. With WithStrict the first conflict aborts and the
// tree is nil.
func Serialize(f form.Form, options ...Option) (*tree.Map, error) {
	return NewConfig(options...).Serialize(f)
}

// SerializeProvider snapshots p and serializes the result.
func SerializeProvider(ctx context.Context, p form.Provider, options ...Option) (*tree.Map, error) {
	f, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Serialize(f, options...)
}

// Encode serializes f into a transport body of the given format.
func Encode(f form.Form, format payload.Format, options ...Option) (payload.Body, error) {
	return NewConfig(options...).Encode(f, format)
}

// Resolve returns the control errorPath refers to.
func Resolve(f form.Form, errorPath string, options ...Option) (form.Ref, bool) {
	return NewConfig(options...).Resolver().Resolve(f, errorPath)
}

// Serialize builds the payload tree for f using c.
func (c Config) Serialize(f form.Form) (*tree.Map, error) {
	logger := c.logger()
	builder := tree.NewBuilder(
		tree.WithAppendMode(c.AppendMode),
		tree.WithMaxIndex(c.MaxIndex),
	)

	var skipped []error
	for _, entry := range form.Collect(f) {
		path := fieldpath.ParseWith(entry.Name, c.Notation)
		if fieldpath.Degraded(entry.Name, path) {
			logger.Debug("field name kept as literal key", slog.String("name", entry.Name))
		}

		hint := entry.Hint
		if c.Hints == HintsIgnored {
			hint = cast.HintNone
		}

		if err := builder.Insert(path, cast.Cast(entry.Value, hint)); err != nil {
			if c.Strict {
				return nil, err
			}
			logger.Debug("insertion skipped",
				slog.String("name", entry.Name),
				slog.String("error", err.Error()),
			)
			skipped = append(skipped, err)
		}
	}

	return builder.Root(), errors.Join(skipped...)
}

// Encode serializes f into a transport body. Flat formats skip the tree and
// encode the collected entries directly.
func (c Config) Encode(f form.Form, format payload.Format) (payload.Body, error) {
	if format != payload.FormatJSON {
		return payload.Encode(format, nil, form.Collect(f))
	}
	root, err := c.Serialize(f)
	if root == nil {
		return payload.Body{}, err
	}
	if err != nil {
		c.logger().Warn("payload encoded with skipped fields", slog.String("error", err.Error()))
	}
	return payload.Encode(format, root, nil)
}

// Resolver returns an error path resolver configured like c.
func (c Config) Resolver() *resolve.Resolver {
	return resolve.New(
		resolve.WithNotation(c.Notation),
		resolve.WithLogger(c.logger()),
	)
}
