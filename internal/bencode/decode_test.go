package bencode

import (
	"errors"
	"testing"
)

func TestDecodePrimitives(t *testing.T) {
	cases := []struct {
		in   string
		want Value
	}{
		{"i10e", Int(10)},
		{"i0e", Int(0)},
		{"i-42e", Int(-42)},
		{"i9223372036854775807e", Int(9223372036854775807)},
		{"i-9223372036854775808e", Int(-9223372036854775808)},
		{"9:hamburger", Bytes("hamburger")},
		{"0:", Bytes("")},
		{"le", List{}},
		{"de", Dict{}},
	}
	for _, tc := range cases {
		got, rest, err := Decode([]byte(tc.in))
		if err != nil {
			t.Fatalf("decode %q: %v", tc.in, err)
		}
		if !Equal(got, tc.want) {
			t.Fatalf("decode %q: got %s want %s", tc.in, Debug(got), Debug(tc.want))
		}
		if len(rest) != 0 {
			t.Fatalf("decode %q: unexpected remainder %q", tc.in, rest)
		}
	}
}

func TestDecodeStringLengthIsAuthoritative(t *testing.T) {
	got, rest, err := Decode([]byte("4:i1eed3:abc"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != Bytes("i1ee") {
		t.Fatalf("expected marker-like content to be taken verbatim, got %s", Debug(got))
	}
	if string(rest) != "d3:abc" {
		t.Fatalf("remainder mismatch: %q", rest)
	}
}

func TestDecodeReturnsRemainder(t *testing.T) {
	in := []byte("i1e3:abcle")
	var items []Value
	for len(in) > 0 {
		v, rest, err := Decode(in)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		items = append(items, v)
		in = rest
	}
	want := List{Int(1), Bytes("abc"), List{}}
	if !Equal(List(items), want) {
		t.Fatalf("got %s want %s", Debug(List(items)), Debug(want))
	}
}

func TestDecodeNested(t *testing.T) {
	in := "d4:infod6:lengthi12e4:name5:a.txte5:listsll1:aeli1ei2eeleee"
	got, err := Unmarshal([]byte(in))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Dict{
		"info":  Dict{"length": Int(12), "name": Bytes("a.txt")},
		"lists": List{List{Bytes("a")}, List{Int(1), Int(2)}, List{}},
	}
	if !Equal(got, want) {
		t.Fatalf("got %s want %s", Debug(got), Debug(want))
	}
}

func TestDecodeListOrderPreserved(t *testing.T) {
	a, err := Unmarshal([]byte("li1e3:acee"))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, err := Unmarshal([]byte("l3:acei1ee"))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !Equal(a, List{Int(1), Bytes("ace")}) || !Equal(b, List{Bytes("ace"), Int(1)}) {
		t.Fatalf("order not preserved: %s / %s", Debug(a), Debug(b))
	}
	if Equal(a, b) {
		t.Fatalf("lists with different order compared equal")
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		in     string
		kind   error
		form   Form
		offset int
	}{
		{"", ErrTruncated, FormValue, 0},
		{"9:ham", ErrTruncated, FormBytes, 2},
		{"3", ErrTruncated, FormBytes, 1},
		{"3abc", ErrMalformedLength, FormBytes, 1},
		{"99999999999999999999:a", ErrMalformedLength, FormBytes, 0},
		{"i12", ErrTruncated, FormInt, 3},
		{"ie", ErrMalformedLength, FormInt, 1},
		{"i-e", ErrMalformedLength, FormInt, 1},
		{"i+3e", ErrMalformedLength, FormInt, 1},
		{"i1x2e", ErrMalformedLength, FormInt, 2},
		{"i9223372036854775808e", ErrMalformedLength, FormInt, 1},
		{"x", ErrUnexpectedMarker, FormValue, 0},
		{"li1ex", ErrUnexpectedMarker, FormValue, 4},
		{"l", ErrTruncated, FormList, 1},
		{"li1e", ErrTruncated, FormList, 4},
		{"d", ErrTruncated, FormDict, 1},
		{"d3:foo", ErrTruncated, FormValue, 6},
		{"di1ei2ee", ErrUnexpectedMarker, FormKey, 1},
		{"dle1:ae", ErrUnexpectedMarker, FormKey, 1},
		{"d3:fooi1e3:fooi2ee", ErrDuplicateKey, FormKey, 9},
	}
	for _, tc := range cases {
		v, rest, err := Decode([]byte(tc.in))
		if !errors.Is(err, tc.kind) {
			t.Fatalf("decode %q: expected %v, got %v", tc.in, tc.kind, err)
		}
		if v != nil || rest != nil {
			t.Fatalf("decode %q: partial result returned: %v %q", tc.in, v, rest)
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("decode %q: expected *SyntaxError, got %T", tc.in, err)
		}
		if se.Form != tc.form || se.Offset != tc.offset {
			t.Fatalf("decode %q: got form=%s offset=%d want form=%s offset=%d", tc.in, se.Form, se.Offset, tc.form, tc.offset)
		}
	}
}

func TestUnmarshalTrailingData(t *testing.T) {
	_, err := Unmarshal([]byte("i1ei2e"))
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
	var se *SyntaxError
	if !errors.As(err, &se) || se.Offset != 3 {
		t.Fatalf("expected offset 3, got %v", err)
	}
}

func TestDecodeDuplicateKeyPolicy(t *testing.T) {
	in := []byte("d3:fooi1e3:fooi2ee")
	dec := NewDecoder(WithDuplicateKeys(DuplicateLastWins))
	got, err := dec.Unmarshal(in)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !Equal(got, Dict{"foo": Int(2)}) {
		t.Fatalf("expected last value to win, got %s", Debug(got))
	}

	_, err = NewDecoder(WithDuplicateKeys(DuplicateReject)).Unmarshal(in)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	dec := NewDecoder(WithMaxDepth(2))
	if _, err := dec.Unmarshal([]byte("llee")); err != nil {
		t.Fatalf("depth 2 should decode: %v", err)
	}
	_, err := dec.Unmarshal([]byte("llleee"))
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
	var se *SyntaxError
	if !errors.As(err, &se) || se.Offset != 2 || se.Form != FormList {
		t.Fatalf("unexpected error detail: %v", err)
	}
	_, err = dec.Unmarshal([]byte("d1:ad1:bdeee"))
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded for dicts, got %v", err)
	}
}

func TestDecodeDefaultDepthGuardsDeepInput(t *testing.T) {
	deep := make([]byte, 0, 2*(DefaultMaxDepth+1))
	for i := 0; i <= DefaultMaxDepth; i++ {
		deep = append(deep, 'l')
	}
	for i := 0; i <= DefaultMaxDepth; i++ {
		deep = append(deep, 'e')
	}
	if _, err := Unmarshal(deep); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
	if _, err := NewDecoder(WithMaxDepth(0)).Unmarshal(deep); err != nil {
		t.Fatalf("unbounded decoder: %v", err)
	}
}

func TestDecodeStrict(t *testing.T) {
	loose := NewDecoder()
	strict := NewDecoder(WithStrict(true))
	cases := []struct {
		in   string
		kind error
	}{
		{"i-0e", ErrMalformedLength},
		{"i03e", ErrMalformedLength},
		{"03:abc", ErrMalformedLength},
		{"d1:bi1e1:ai2ee", ErrUnsortedKeys},
	}
	for _, tc := range cases {
		if _, err := loose.Unmarshal([]byte(tc.in)); err != nil {
			t.Fatalf("loose decode %q: %v", tc.in, err)
		}
		if _, err := strict.Unmarshal([]byte(tc.in)); !errors.Is(err, tc.kind) {
			t.Fatalf("strict decode %q: expected %v, got %v", tc.in, tc.kind, err)
		}
	}
	if _, err := strict.Unmarshal([]byte("d1:ai1e1:bi-1e1:cli0e0:ee")); err != nil {
		t.Fatalf("strict decode of canonical input: %v", err)
	}
}

func TestParseDuplicateKeyPolicy(t *testing.T) {
	for raw, want := range map[string]DuplicateKeyPolicy{
		"":          DuplicateReject,
		"reject":    DuplicateReject,
		"last_wins": DuplicateLastWins,
	} {
		got, err := ParseDuplicateKeyPolicy(raw)
		if err != nil || got != want {
			t.Fatalf("parse %q: got %v, %v", raw, got, err)
		}
	}
	if _, err := ParseDuplicateKeyPolicy("first"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestReason(t *testing.T) {
	cases := map[string]string{
		"9:ham":        "truncated_input",
		"ie":           "malformed_length",
		"x":            "unexpected_marker",
		"d1:a0:1:a0:e": "duplicate_key",
		"i1ei2e":       "trailing_data",
	}
	for in, want := range cases {
		_, err := Unmarshal([]byte(in))
		if got := Reason(err); got != want {
			t.Fatalf("reason for %q: got %s want %s", in, got, want)
		}
	}
	if Reason(nil) != "none" || Reason(ErrNilValue) != "other" {
		t.Fatalf("unexpected reason for nil/other")
	}
}
