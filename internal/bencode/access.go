package bencode

import "fmt"

func mismatch(v Value, want Kind) error {
	if v == nil {
		return fmt.Errorf("%w: got nil want %s", ErrKindMismatch, want)
	}
	return fmt.Errorf("%w: got %s want %s", ErrKindMismatch, v.Kind(), want)
}

// AsInt returns v as an int64.
func AsInt(v Value) (int64, error) {
	n, ok := v.(Int)
	if !ok {
		return 0, mismatch(v, KindInt)
	}
	return int64(n), nil
}

// AsBytes returns the raw content of a byte string.
func AsBytes(v Value) (string, error) {
	b, ok := v.(Bytes)
	if !ok {
		return "", mismatch(v, KindBytes)
	}
	return string(b), nil
}

// AsList returns v as a List.
func AsList(v Value) (List, error) {
	l, ok := v.(List)
	if !ok {
		return nil, mismatch(v, KindList)
	}
	return l, nil
}

// AsDict returns v as a Dict.
func AsDict(v Value) (Dict, error) {
	d, ok := v.(Dict)
	if !ok {
		return nil, mismatch(v, KindDict)
	}
	return d, nil
}
