package payload

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

type member struct {
	key   string
	value any
}

// object is a decoded JSON object that remembers key order. A repeated key
// keeps its first position and takes the last value.
type object []member

func (o object) get(key string) any {
	for _, m := range o {
		if m.key == key {
			return m.value
		}
	}
	return nil
}

func (o *object) set(key string, value any) {
	for i := range *o {
		if (*o)[i].key == key {
			(*o)[i].value = value
			return
		}
	}
	*o = append(*o, member{key: key, value: value})
}

// keys lists integer keys in ascending order, then the remaining keys in
// insertion order.
func (o object) keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.key
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, aok := arrayIndex(keys[i])
		b, bok := arrayIndex(keys[j])
		switch {
		case aok && bok:
			return a < b
		default:
			return aok && !bok
		}
	})
	return keys
}

func arrayIndex(key string) (uint64, bool) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || strconv.FormatUint(n, 10) != key {
		return 0, false
	}
	return n, true
}

type closing json.Delim

var errUnexpectedEnd = errors.New("unexpected end of input")

// decodeOrdered reads one value from dec, building objects as ordered member
// lists instead of maps.
func decodeOrdered(dec *json.Decoder) (any, error) {
	value, err := readValue(dec)
	if err != nil {
		return nil, err
	}
	if c, ok := value.(closing); ok {
		return nil, fmt.Errorf("unexpected %q", rune(c))
	}
	return value, nil
}

func readValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return readObject(dec)
	case '[':
		return readArray(dec)
	default:
		return closing(delim), nil
	}
}

func readObject(dec *json.Decoder) (object, error) {
	out := object{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, endErr(err)
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return out, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}
		value, err := readValue(dec)
		if err != nil {
			return nil, endErr(err)
		}
		if _, ok := value.(closing); ok {
			return nil, fmt.Errorf("missing value for key %q", key)
		}
		out.set(key, value)
	}
}

func readArray(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for {
		value, err := readValue(dec)
		if err != nil {
			return nil, endErr(err)
		}
		if c, ok := value.(closing); ok {
			if json.Delim(c) != ']' {
				return nil, fmt.Errorf("unexpected %q in array", rune(c))
			}
			return out, nil
		}
		out = append(out, value)
	}
}

func endErr(err error) error {
	if errors.Is(err, io.EOF) {
		return errUnexpectedEnd
	}
	return err
}
