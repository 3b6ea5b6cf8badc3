package schema

import (
	"fmt"

	"github.com/danmuck/bencode/internal/bencode"
	"github.com/rs/zerolog/log"
)

// Requirement describes one expected dict key.
type Requirement struct {
	Key      string
	Kind     bencode.Kind
	Optional bool
}

// Schema is a named set of requirements for one dict.
type Schema struct {
	Name   string
	Fields []Requirement
}

type ValidationError struct {
	Schema string
	Key    string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("schema: %s: %s", e.Schema, e.Reason)
	}
	return fmt.Sprintf("schema: %s key=%q: %s", e.Schema, e.Key, e.Reason)
}

// Validate enforces required keys and key kinds on a dict.
// Unknown keys are ignored.
func Validate(v bencode.Value, s Schema) error {
	d, ok := v.(bencode.Dict)
	if !ok {
		log.Error().Str("schema", s.Name).Msg("schema.Validate value is not a dict")
		return ValidationError{Schema: s.Name, Reason: "not a dict"}
	}
	log.Debug().Str("schema", s.Name).Int("keys", len(d)).Msg("schema.Validate")
	for _, req := range s.Fields {
		got, found := d[req.Key]
		if !found {
			if req.Optional {
				continue
			}
			log.Error().Str("schema", s.Name).Str("key", req.Key).Msg("schema.Validate missing key")
			return ValidationError{Schema: s.Name, Key: req.Key, Reason: "missing required key"}
		}
		if got == nil {
			log.Error().Str("schema", s.Name).Str("key", req.Key).Msg("schema.Validate nil value")
			return ValidationError{Schema: s.Name, Key: req.Key, Reason: "nil value"}
		}
		if got.Kind() != req.Kind {
			log.Error().
				Str("schema", s.Name).
				Str("key", req.Key).
				Stringer("got", got.Kind()).
				Stringer("want", req.Kind).
				Msg("schema.Validate kind mismatch")
			return ValidationError{
				Schema: s.Name,
				Key:    req.Key,
				Reason: fmt.Sprintf("kind mismatch: got %s want %s", got.Kind(), req.Kind),
			}
		}
	}
	log.Debug().Str("schema", s.Name).Msg("schema.Validate ok")
	return nil
}

// Path walks nested dicts by key.
func Path(v bencode.Value, keys ...string) (bencode.Value, error) {
	cur := v
	for i, k := range keys {
		d, err := bencode.AsDict(cur)
		if err != nil {
			return nil, fmt.Errorf("schema: path %v at %d: %w", keys[:i], i, err)
		}
		next, ok := d[k]
		if !ok {
			return nil, ValidationError{Schema: "path", Key: k, Reason: "missing key"}
		}
		cur = next
	}
	return cur, nil
}
