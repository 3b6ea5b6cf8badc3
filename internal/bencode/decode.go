package bencode

import (
	"fmt"
	"strconv"
)

// DefaultMaxDepth bounds list/dict nesting for decoders built without
// WithMaxDepth.
const DefaultMaxDepth = 512

// DuplicateKeyPolicy selects how a decoder treats a key repeated within one dict.
type DuplicateKeyPolicy uint8

const (
	// DuplicateReject fails the decode with ErrDuplicateKey.
	DuplicateReject DuplicateKeyPolicy = iota
	// DuplicateLastWins keeps the value of the last occurrence.
	DuplicateLastWins
)

func (p DuplicateKeyPolicy) String() string {
	switch p {
	case DuplicateReject:
		return "reject"
	case DuplicateLastWins:
		return "last_wins"
	default:
		return "policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParseDuplicateKeyPolicy maps the config spelling of a policy to its value.
func ParseDuplicateKeyPolicy(raw string) (DuplicateKeyPolicy, error) {
	switch raw {
	case "", "reject":
		return DuplicateReject, nil
	case "last_wins", "last-wins", "overwrite":
		return DuplicateLastWins, nil
	default:
		return DuplicateReject, fmt.Errorf("bencode: unknown duplicate key policy %q", raw)
	}
}

// Decoder holds decode policy. It carries no per-call state and is safe for
// concurrent use.
type Decoder struct {
	maxDepth   int
	duplicates DuplicateKeyPolicy
	strict     bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxDepth bounds list/dict nesting. n <= 0 disables the bound.
func WithMaxDepth(n int) Option {
	return func(d *Decoder) { d.maxDepth = n }
}

// WithDuplicateKeys sets the duplicate dict key policy.
func WithDuplicateKeys(p DuplicateKeyPolicy) Option {
	return func(d *Decoder) { d.duplicates = p }
}

// WithStrict rejects non-canonical input: leading zeros, -0 and dict keys
// out of ascending order.
func WithStrict(strict bool) Option {
	return func(d *Decoder) { d.strict = strict }
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{maxDepth: DefaultMaxDepth, duplicates: DuplicateReject}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode reads one value from the front of data using default options and
// returns it with the unconsumed remainder.
func Decode(data []byte) (Value, []byte, error) {
	return defaultDecoder.Decode(data)
}

// Unmarshal decodes exactly one value from data using default options.
func Unmarshal(data []byte) (Value, error) {
	return defaultDecoder.Unmarshal(data)
}

// Decode reads one value from the front of data and returns it with the
// unconsumed remainder. The remainder aliases data. On error no value is
// returned.
func (d *Decoder) Decode(data []byte) (Value, []byte, error) {
	s := decodeState{dec: d, total: len(data)}
	v, rest, err := s.value(data, 0)
	if err != nil {
		return nil, nil, err
	}
	return v, rest, nil
}

// Unmarshal decodes one value and fails with ErrTrailingData when bytes
// remain after it.
func (d *Decoder) Unmarshal(data []byte) (Value, error) {
	v, rest, err := d.Decode(data)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &SyntaxError{
			Kind:   ErrTrailingData,
			Form:   FormValue,
			Offset: len(data) - len(rest),
			Detail: fmt.Sprintf("%d bytes remain", len(rest)),
		}
	}
	return v, nil
}

// decodeState is the read-only context of one Decode call. Position is
// never stored here; every step receives and returns the remaining input.
type decodeState struct {
	dec   *Decoder
	total int
}

func (s *decodeState) fail(kind error, form Form, at []byte, detail string) error {
	return &SyntaxError{Kind: kind, Form: form, Offset: s.total - len(at), Detail: detail}
}

func (s *decodeState) value(in []byte, depth int) (Value, []byte, error) {
	if len(in) == 0 {
		return nil, nil, s.fail(ErrTruncated, FormValue, in, "expected value")
	}
	switch c := in[0]; {
	case c == 'i':
		return s.integer(in[1:])
	case c == 'l':
		return s.list(in[1:], depth+1)
	case c == 'd':
		return s.dict(in[1:], depth+1)
	case isDigit(c):
		str, rest, err := s.bytes(in, FormBytes)
		if err != nil {
			return nil, nil, err
		}
		return Bytes(str), rest, nil
	default:
		return nil, nil, s.fail(ErrUnexpectedMarker, FormValue, in, fmt.Sprintf("marker %q", c))
	}
}

func (s *decodeState) enter(in []byte, form Form, depth int) error {
	if s.dec.maxDepth > 0 && depth > s.dec.maxDepth {
		// point at the opening marker
		return &SyntaxError{
			Kind:   ErrDepthExceeded,
			Form:   form,
			Offset: s.total - len(in) - 1,
			Detail: fmt.Sprintf("limit %d", s.dec.maxDepth),
		}
	}
	return nil
}

func (s *decodeState) list(in []byte, depth int) (Value, []byte, error) {
	if err := s.enter(in, FormList, depth); err != nil {
		return nil, nil, err
	}
	items := List{}
	rest := in
	for {
		if len(rest) == 0 {
			return nil, nil, s.fail(ErrTruncated, FormList, rest, "missing 'e'")
		}
		if rest[0] == 'e' {
			return items, rest[1:], nil
		}
		item, next, err := s.value(rest, depth)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
		rest = next
	}
}

func (s *decodeState) dict(in []byte, depth int) (Value, []byte, error) {
	if err := s.enter(in, FormDict, depth); err != nil {
		return nil, nil, err
	}
	out := Dict{}
	rest := in
	prev, first := "", true
	for {
		if len(rest) == 0 {
			return nil, nil, s.fail(ErrTruncated, FormDict, rest, "missing 'e'")
		}
		if rest[0] == 'e' {
			return out, rest[1:], nil
		}
		keyAt := rest
		key, next, err := s.key(rest)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := out[key]; dup && s.dec.duplicates == DuplicateReject {
			return nil, nil, s.fail(ErrDuplicateKey, FormKey, keyAt, fmt.Sprintf("key %q", key))
		}
		if s.dec.strict && !first && key <= prev {
			return nil, nil, s.fail(ErrUnsortedKeys, FormKey, keyAt, fmt.Sprintf("key %q after %q", key, prev))
		}
		val, next, err := s.value(next, depth)
		if err != nil {
			return nil, nil, err
		}
		out[key] = val
		prev, first = key, false
		rest = next
	}
}

// key decodes a dict key. Only the byte-string form is accepted.
func (s *decodeState) key(in []byte) (string, []byte, error) {
	if len(in) == 0 {
		return "", nil, s.fail(ErrTruncated, FormKey, in, "expected key")
	}
	if !isDigit(in[0]) {
		return "", nil, s.fail(ErrUnexpectedMarker, FormKey, in, fmt.Sprintf("marker %q", in[0]))
	}
	return s.bytes(in, FormKey)
}

// bytes decodes <len>:<content>. The declared length alone decides how much
// content is consumed.
func (s *decodeState) bytes(in []byte, form Form) (string, []byte, error) {
	i := 0
	for i < len(in) && isDigit(in[i]) {
		i++
	}
	if i == len(in) {
		return "", nil, s.fail(ErrTruncated, form, in[i:], "missing ':'")
	}
	if i == 0 || in[i] != ':' {
		return "", nil, s.fail(ErrMalformedLength, form, in[i:], fmt.Sprintf("unexpected %q in length", in[i]))
	}
	digits := in[:i]
	if s.dec.strict && len(digits) > 1 && digits[0] == '0' {
		return "", nil, s.fail(ErrMalformedLength, form, in, "leading zero in length")
	}
	n, err := strconv.ParseUint(string(digits), 10, 63)
	if err != nil {
		return "", nil, s.fail(ErrMalformedLength, form, in, err.Error())
	}
	body := in[i+1:]
	if n > uint64(len(body)) {
		return "", nil, s.fail(ErrTruncated, form, body, fmt.Sprintf("want %d bytes, have %d", n, len(body)))
	}
	return string(body[:n]), body[n:], nil
}

func (s *decodeState) integer(in []byte) (Value, []byte, error) {
	j := 0
	if j < len(in) && in[j] == '-' {
		j++
	}
	for j < len(in) && isDigit(in[j]) {
		j++
	}
	if j == len(in) {
		return nil, nil, s.fail(ErrTruncated, FormInt, in[j:], "missing 'e'")
	}
	if in[j] != 'e' {
		return nil, nil, s.fail(ErrMalformedLength, FormInt, in[j:], fmt.Sprintf("unexpected %q", in[j]))
	}
	field := in[:j]
	digits := field
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return nil, nil, s.fail(ErrMalformedLength, FormInt, in, "empty integer")
	}
	if s.dec.strict {
		if len(digits) > 1 && digits[0] == '0' {
			return nil, nil, s.fail(ErrMalformedLength, FormInt, in, "leading zero")
		}
		if len(field) != len(digits) && digits[0] == '0' {
			return nil, nil, s.fail(ErrMalformedLength, FormInt, in, "negative zero")
		}
	}
	n, err := strconv.ParseInt(string(field), 10, 64)
	if err != nil {
		return nil, nil, s.fail(ErrMalformedLength, FormInt, in, err.Error())
	}
	return Int(n), in[j+1:], nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
