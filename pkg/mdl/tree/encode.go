package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// AppendJSON appends the canonical JSON encoding of v to dst. Mapping keys
// keep their source order, HTML characters are not escaped and numbers are
// written with their exact decimal value in the notation of JavaScript's
// Number#toString.
func AppendJSON(dst []byte, v Value) ([]byte, error) {
	switch tv := v.(type) {
	case nil:
		return append(dst, "null"...), nil
	case *Null:
		return append(dst, "null"...), nil
	case *Bool:
		return strconv.AppendBool(dst, tv.Value), nil
	case *Number:
		if tv.Value.Form != apd.Finite {
			return nil, fmt.Errorf("cannot encode non-finite number at %s", tv.Loc)
		}
		return appendNumber(dst, &tv.Value), nil
	case *String:
		return appendString(dst, tv.Value)
	case *Sequence:
		dst = append(dst, '[')
		for i, item := range tv.Items {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = AppendJSON(dst, item); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case *Mapping:
		dst = append(dst, '{')
		for i, key := range tv.keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendString(dst, key); err != nil {
				return nil, err
			}
			dst = append(dst, ':')
			if dst, err = AppendJSON(dst, tv.values[key]); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	default:
		return nil, fmt.Errorf("cannot encode value of type %T", v)
	}
}

// appendNumber writes d in plain notation when 1e-6 <= |d| < 1e21 and in
// exponent notation with a lowercase e otherwise. Plain notation keeps the
// digits as parsed.
func appendNumber(dst []byte, d *apd.Decimal) []byte {
	if d.IsZero() {
		return append(dst, '0')
	}

	// d = 0.ddd * 10^point
	point := d.NumDigits() + int64(d.Exponent)
	if point > -6 && point <= 21 {
		return append(dst, d.Text('f')...)
	}

	var reduced apd.Decimal
	reduced.Reduce(d)
	digits := reduced.Coeff.Text(10)

	if d.Negative {
		dst = append(dst, '-')
	}
	dst = append(dst, digits[0])
	if len(digits) > 1 {
		dst = append(dst, '.')
		dst = append(dst, digits[1:]...)
	}
	dst = append(dst, 'e')
	exp := point - 1
	if exp > 0 {
		dst = append(dst, '+')
	}
	return strconv.AppendInt(dst, exp, 10)
}

func appendString(dst []byte, s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Encode terminates every value with a newline.
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...), nil
}

// MarshalJSON implements json.Marshaler.
func (n *Null) MarshalJSON() ([]byte, error) { return AppendJSON(nil, n) }

// MarshalJSON implements json.Marshaler.
func (b *Bool) MarshalJSON() ([]byte, error) { return AppendJSON(nil, b) }

// MarshalJSON implements json.Marshaler.
func (n *Number) MarshalJSON() ([]byte, error) { return AppendJSON(nil, n) }

// MarshalJSON implements json.Marshaler.
func (s *String) MarshalJSON() ([]byte, error) { return AppendJSON(nil, s) }

// MarshalJSON implements json.Marshaler.
func (s *Sequence) MarshalJSON() ([]byte, error) { return AppendJSON(nil, s) }

// MarshalJSON implements json.Marshaler.
func (m *Mapping) MarshalJSON() ([]byte, error) { return AppendJSON(nil, m) }
