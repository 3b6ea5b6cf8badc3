package bencode

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeCanonical(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{Int(10), "i10e"},
		{Int(0), "i0e"},
		{Int(-42), "i-42e"},
		{Bytes("hamburger"), "9:hamburger"},
		{Bytes(""), "0:"},
		{List{}, "le"},
		{List(nil), "le"},
		{Dict{}, "de"},
		{List{Int(1)}, "li1ee"},
		{List{Int(1), Bytes("ace")}, "li1e3:acee"},
		{List{Bytes("ace"), Int(1)}, "l3:acei1ee"},
		{Dict{"test": Int(1)}, "d4:testi1ee"},
		{Dict{"test": List{}}, "d4:testlee"},
		{Dict{"b": Int(1), "a": Int(2), "ab": Bytes("x")}, "d1:ai2e2:ab1:x1:bi1ee"},
	}
	for _, tc := range cases {
		if got := string(Encode(tc.in)); got != tc.want {
			t.Fatalf("encode %s: got %q want %q", Debug(tc.in), got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	values := []Value{
		Int(-9223372036854775808),
		Bytes("\x00\xff binary e:l"),
		List{List{List{}}, Dict{}},
		Dict{
			"announce": Bytes("http://tracker.example/announce"),
			"info": Dict{
				"name":         Bytes("file.iso"),
				"piece length": Int(262144),
				"pieces":       Bytes("\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f\x10\x11\x12\x13\x14"),
				"files": List{
					Dict{"length": Int(1), "path": List{Bytes("a"), Bytes("b")}},
				},
			},
			"": Int(0),
		},
	}
	for _, v := range values {
		enc := Encode(v)
		got, err := Unmarshal(enc)
		if err != nil {
			t.Fatalf("unmarshal %q: %v", enc, err)
		}
		if !Equal(got, v) {
			t.Fatalf("round trip mismatch: got %s want %s", Debug(got), Debug(v))
		}
	}
}

func TestReencodeIsStructurallyStable(t *testing.T) {
	in := []byte("d1:bi1e1:ali1e3:aceee")
	first, err := Unmarshal(in)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out := Encode(first)
	if bytes.Equal(out, in) {
		t.Fatalf("expected keys to be re-ordered, got identical bytes %q", out)
	}
	second, err := Unmarshal(out)
	if err != nil {
		t.Fatalf("unmarshal re-encoded: %v", err)
	}
	if !Equal(first, second) {
		t.Fatalf("re-encode changed structure: %s vs %s", Debug(first), Debug(second))
	}
}

func TestMarshalNilValue(t *testing.T) {
	if _, err := Marshal(List{Int(1), nil}); !errors.Is(err, ErrNilValue) {
		t.Fatalf("expected ErrNilValue, got %v", err)
	}
	if _, err := Marshal(Dict{"a": nil}); !errors.Is(err, ErrNilValue) {
		t.Fatalf("expected ErrNilValue, got %v", err)
	}
	out, err := Marshal(Dict{"a": List{}})
	if err != nil || string(out) != "d1:alee" {
		t.Fatalf("marshal: %q %v", out, err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Encode to panic on nil value")
		}
	}()
	Encode(List{nil})
}

func TestEncoderWritesStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, v := range []Value{Int(1), Bytes("ab"), List{}} {
		if err := enc.Encode(v); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	if err := enc.Encode(List{nil}); !errors.Is(err, ErrNilValue) {
		t.Fatalf("expected ErrNilValue, got %v", err)
	}
	if buf.String() != "i1e2:able" {
		t.Fatalf("stream mismatch: %q", buf.String())
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{Int(1), Int(1), true},
		{Int(1), Bytes("1"), false},
		{Bytes("a"), Bytes("a"), true},
		{List{Int(1)}, List{Int(1), Int(2)}, false},
		{List{}, Dict{}, false},
		{Dict{"a": Int(1), "b": Int(2)}, Dict{"b": Int(2), "a": Int(1)}, true},
		{Dict{"a": Int(1)}, Dict{"b": Int(1)}, false},
		{Dict{"a": List{Int(1)}}, Dict{"a": List{Int(2)}}, false},
		{nil, nil, true},
		{nil, Int(0), false},
	}
	for _, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Fatalf("Equal(%s, %s) = %v want %v", Debug(tc.a), Debug(tc.b), got, tc.want)
		}
	}
}

func TestDebug(t *testing.T) {
	got := Debug(Dict{"b": List{Int(1), Bytes("ace")}, "a": Dict{}})
	want := `{"a": {}, "b": [1, "ace"]}`
	if got != want {
		t.Fatalf("debug: got %s want %s", got, want)
	}
}

func TestAccessors(t *testing.T) {
	if n, err := AsInt(Int(7)); err != nil || n != 7 {
		t.Fatalf("AsInt: %d %v", n, err)
	}
	if _, err := AsInt(Bytes("7")); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
	if s, err := AsBytes(Bytes("x")); err != nil || s != "x" {
		t.Fatalf("AsBytes: %q %v", s, err)
	}
	if _, err := AsList(nil); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
	d, err := AsDict(Dict{"z": Int(1), "a": Int(2)})
	if err != nil {
		t.Fatalf("AsDict: %v", err)
	}
	if keys := d.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "z" {
		t.Fatalf("keys not sorted: %v", keys)
	}
}

func FuzzDecodeRoundTrip(f *testing.F) {
	for _, seed := range []string{"i10e", "9:hamburger", "li1e3:acee", "d4:testlee", "d1:ad1:bi-1eee", "9:ham", "i-0e"} {
		f.Add([]byte(seed))
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		v, rest, err := Decode(data)
		if err != nil {
			return
		}
		if len(rest) > len(data) {
			t.Fatalf("remainder longer than input")
		}
		again, err := Unmarshal(Encode(v))
		if err != nil {
			t.Fatalf("re-decode %s: %v", Debug(v), err)
		}
		if !Equal(v, again) {
			t.Fatalf("round trip mismatch: %s vs %s", Debug(v), Debug(again))
		}
	})
}
