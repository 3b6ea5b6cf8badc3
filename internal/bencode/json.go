package bencode

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrUnsupportedJSON is returned for JSON values with no bencode form
// (booleans, null, fractional numbers).
var ErrUnsupportedJSON = errors.New("bencode: unsupported json value")

const (
	// bytesMarker tags a byte string that is not valid UTF-8 in the JSON form.
	bytesMarker = "$bytes"
	// dictMarker tags a dict written as a list of [key, value] pairs.
	dictMarker = "$dict"
)

// ToJSONValue converts v into the generic shape encoding/json produces.
// Byte strings that are not valid UTF-8 become {"$bytes": "<base64>"}.
// A dict with a key that is not valid UTF-8, or whose only key is a marker,
// becomes {"$dict": [[key, value], ...]} in sorted key order so it cannot be
// mistaken for a tagged value on the way back.
func ToJSONValue(v Value) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case Int:
		return int64(tv)
	case Bytes:
		if utf8.ValidString(string(tv)) {
			return string(tv)
		}
		return map[string]any{bytesMarker: base64.StdEncoding.EncodeToString([]byte(tv))}
	case List:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = ToJSONValue(item)
		}
		return out
	case Dict:
		if needsPairs(tv) {
			keys := tv.Keys()
			pairs := make([]any, len(keys))
			for i, k := range keys {
				pairs[i] = []any{ToJSONValue(Bytes(k)), ToJSONValue(tv[k])}
			}
			return map[string]any{dictMarker: pairs}
		}
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = ToJSONValue(item)
		}
		return out
	default:
		panic(unknownVariant(v))
	}
}

func needsPairs(d Dict) bool {
	if len(d) == 1 {
		if _, ok := d[bytesMarker]; ok {
			return true
		}
		if _, ok := d[dictMarker]; ok {
			return true
		}
	}
	for k := range d {
		if !utf8.ValidString(k) {
			return true
		}
	}
	return false
}

// ToJSON renders v as indented JSON.
func ToJSON(v Value) ([]byte, error) {
	return json.MarshalIndent(ToJSONValue(v), "", "  ")
}

// FromJSON parses JSON text into a value tree.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return nil, fmt.Errorf("bencode: parse json: %w", err)
	}
	return FromJSONValue(x)
}

// FromJSONValue converts a value produced by encoding/json (with UseNumber,
// or plain float64 holding an integer) into a value tree.
func FromJSONValue(x any) (Value, error) {
	switch tx := x.(type) {
	case json.Number:
		n, err := tx.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %s", ErrUnsupportedJSON, tx)
		}
		return Int(n), nil
	case float64:
		n := int64(tx)
		if float64(n) != tx {
			return nil, fmt.Errorf("%w: number %v", ErrUnsupportedJSON, tx)
		}
		return Int(n), nil
	case int64:
		return Int(tx), nil
	case int:
		return Int(tx), nil
	case string:
		return Bytes(tx), nil
	case []any:
		out := make(List, 0, len(tx))
		for i, item := range tx {
			v, err := FromJSONValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case map[string]any:
		if len(tx) == 1 {
			if raw, ok := tx[bytesMarker]; ok {
				enc, ok := raw.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s wants a base64 string, got %T", ErrUnsupportedJSON, bytesMarker, raw)
				}
				b, err := base64.StdEncoding.DecodeString(enc)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedJSON, bytesMarker, err)
				}
				return Bytes(b), nil
			}
			if raw, ok := tx[dictMarker]; ok {
				return dictFromPairs(raw)
			}
		}
		out := make(Dict, len(tx))
		for k, item := range tx {
			v, err := FromJSONValue(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedJSON, x)
	}
}

func dictFromPairs(raw any) (Value, error) {
	pairs, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s wants a list of pairs, got %T", ErrUnsupportedJSON, dictMarker, raw)
	}
	out := make(Dict, len(pairs))
	for i, p := range pairs {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: %s pair %d is not [key, value]", ErrUnsupportedJSON, dictMarker, i)
		}
		kv, err := FromJSONValue(pair[0])
		if err != nil {
			return nil, fmt.Errorf("%s pair %d key: %w", dictMarker, i, err)
		}
		k, ok := kv.(Bytes)
		if !ok {
			return nil, fmt.Errorf("%w: %s pair %d key is %s", ErrUnsupportedJSON, dictMarker, i, kv.Kind())
		}
		if _, dup := out[string(k)]; dup {
			return nil, fmt.Errorf("%w: %s pair %d repeats key %q", ErrDuplicateKey, dictMarker, i, string(k))
		}
		v, err := FromJSONValue(pair[1])
		if err != nil {
			return nil, fmt.Errorf("%s pair %d: %w", dictMarker, i, err)
		}
		out[string(k)] = v
	}
	return out, nil
}
