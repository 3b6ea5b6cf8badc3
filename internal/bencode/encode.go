package bencode

import (
	"io"
	"strconv"
)

// Encode returns the canonical encoding of v. Dict keys are written in
// ascending byte order. Encode panics if the tree contains a nil Value; use
// Marshal for trees built from untrusted callers.
func Encode(v Value) []byte {
	return Append(nil, v)
}

// Append appends the encoding of v to dst and returns the extended slice.
func Append(dst []byte, v Value) []byte {
	switch tv := v.(type) {
	case Int:
		dst = append(dst, 'i')
		dst = strconv.AppendInt(dst, int64(tv), 10)
		return append(dst, 'e')
	case Bytes:
		return appendBytes(dst, string(tv))
	case List:
		dst = append(dst, 'l')
		for _, item := range tv {
			dst = Append(dst, item)
		}
		return append(dst, 'e')
	case Dict:
		dst = append(dst, 'd')
		for _, k := range tv.Keys() {
			dst = appendBytes(dst, k)
			dst = Append(dst, tv[k])
		}
		return append(dst, 'e')
	case nil:
		panic(ErrNilValue)
	default:
		panic(unknownVariant(v))
	}
}

func appendBytes(dst []byte, s string) []byte {
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':')
	return append(dst, s...)
}

// Marshal encodes v, returning ErrNilValue instead of panicking when the
// tree holds a nil Value.
func Marshal(v Value) ([]byte, error) {
	if err := checkTree(v); err != nil {
		return nil, err
	}
	return Append(nil, v), nil
}

func checkTree(v Value) error {
	switch tv := v.(type) {
	case nil:
		return ErrNilValue
	case List:
		for _, item := range tv {
			if err := checkTree(item); err != nil {
				return err
			}
		}
	case Dict:
		for _, item := range tv {
			if err := checkTree(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Encoder writes encoded values to an underlying writer.
type Encoder struct {
	w   io.Writer
	buf []byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the encoding of v. Nothing is written if v holds a nil Value.
func (e *Encoder) Encode(v Value) error {
	if err := checkTree(v); err != nil {
		return err
	}
	e.buf = Append(e.buf[:0], v)
	_, err := e.w.Write(e.buf)
	return err
}
