package bencode

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies one of the four value forms.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindBytes
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one decoded unit. The set of implementations is closed: Int,
// Bytes, List and Dict.
type Value interface {
	Kind() Kind
	sealed()
}

// Int is a signed 64-bit integer (i<n>e).
type Int int64

// Bytes is a length-prefixed byte string (<len>:<bytes>). The content is
// raw bytes held in a Go string and need not be valid UTF-8.
type Bytes string

// List is an ordered sequence of values (l...e).
type List []Value

// Dict maps byte-string keys to values (d...e).
type Dict map[string]Value

func (Int) Kind() Kind   { return KindInt }
func (Bytes) Kind() Kind { return KindBytes }
func (List) Kind() Kind  { return KindList }
func (Dict) Kind() Kind  { return KindDict }

func (Int) sealed()   {}
func (Bytes) sealed() {}
func (List) sealed()  {}
func (Dict) sealed()  {}

// Keys returns the dict keys in ascending byte order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether a and b are structurally equal: same variant and,
// recursively, same content. Dict comparison ignores key order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Dict:
		bv, ok := b.(Dict)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, found := bv[k]
			if !found || !Equal(x, y) {
				return false
			}
		}
		return true
	default:
		panic(unknownVariant(a))
	}
}

// Debug renders v for humans: integers bare, byte strings quoted, lists in
// brackets and dicts in braces with sorted keys.
func Debug(v Value) string {
	var b strings.Builder
	writeDebug(&b, v)
	return b.String()
}

func writeDebug(b *strings.Builder, v Value) {
	switch tv := v.(type) {
	case nil:
		b.WriteString("<nil>")
	case Int:
		b.WriteString(strconv.FormatInt(int64(tv), 10))
	case Bytes:
		b.WriteString(strconv.Quote(string(tv)))
	case List:
		b.WriteByte('[')
		for i, item := range tv {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDebug(b, item)
		}
		b.WriteByte(']')
	case Dict:
		b.WriteByte('{')
		for i, k := range tv.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			writeDebug(b, tv[k])
		}
		b.WriteByte('}')
	default:
		panic(unknownVariant(v))
	}
}

func unknownVariant(v Value) string {
	return fmt.Sprintf("bencode: unknown value variant %T", v)
}
