package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/bencode/internal/bencode"
	"github.com/danmuck/bencode/internal/frame"
	"github.com/danmuck/bencode/internal/logging"
)

// Config is the bencodectl runtime configuration.
type Config struct {
	Codec CodecConfig
	Frame FrameConfig
	Log   LogConfig
}

type CodecConfig struct {
	MaxDepth      int
	DuplicateKeys bencode.DuplicateKeyPolicy
	Strict        bool
}

type FrameConfig struct {
	Limits   frame.Limits
	Compress bool
}

type LogConfig struct {
	Level string
}

// config.toml key mapping.
type fileConfig struct {
	Codec struct {
		MaxDepth      int    `toml:"max_depth"`
		DuplicateKeys string `toml:"duplicate_keys"`
		Strict        bool   `toml:"strict"`
	} `toml:"codec"`
	Frame struct {
		MaxPayloadBytes int64 `toml:"max_payload_bytes"`
		MaxDecodedBytes int64 `toml:"max_decoded_bytes"`
		Compress        bool  `toml:"compress"`
	} `toml:"frame"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func Default() Config {
	return Config{
		Codec: CodecConfig{
			MaxDepth:      bencode.DefaultMaxDepth,
			DuplicateKeys: bencode.DuplicateReject,
		},
		Frame: FrameConfig{Limits: frame.DefaultLimits()},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %s", path, undecoded[0])
	}

	if meta.IsDefined("codec", "max_depth") {
		cfg.Codec.MaxDepth = raw.Codec.MaxDepth
	}
	if meta.IsDefined("codec", "duplicate_keys") {
		p, err := bencode.ParseDuplicateKeyPolicy(strings.TrimSpace(raw.Codec.DuplicateKeys))
		if err != nil {
			return Config{}, fmt.Errorf("parse codec.duplicate_keys: %w", err)
		}
		cfg.Codec.DuplicateKeys = p
	}
	if meta.IsDefined("codec", "strict") {
		cfg.Codec.Strict = raw.Codec.Strict
	}
	if meta.IsDefined("frame", "max_payload_bytes") {
		if raw.Frame.MaxPayloadBytes <= 0 {
			return Config{}, fmt.Errorf("frame.max_payload_bytes must be positive")
		}
		cfg.Frame.Limits.MaxPayloadBytes = uint64(raw.Frame.MaxPayloadBytes)
	}
	if meta.IsDefined("frame", "max_decoded_bytes") {
		if raw.Frame.MaxDecodedBytes <= 0 {
			return Config{}, fmt.Errorf("frame.max_decoded_bytes must be positive")
		}
		cfg.Frame.Limits.MaxDecodedBytes = uint64(raw.Frame.MaxDecodedBytes)
	}
	if meta.IsDefined("frame", "compress") {
		cfg.Frame.Compress = raw.Frame.Compress
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Codec.MaxDepth < 0 {
		return fmt.Errorf("codec.max_depth must not be negative")
	}
	if cfg.Frame.Limits.MaxPayloadBytes == 0 || cfg.Frame.Limits.MaxDecodedBytes == 0 {
		return fmt.Errorf("frame limits must be positive")
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("unknown log.level %q", cfg.Log.Level)
	}
	return nil
}

// DecoderOptions translates the codec section into bencode options.
// max_depth = 0 means no nesting limit.
func (c Config) DecoderOptions() []bencode.Option {
	return []bencode.Option{
		bencode.WithMaxDepth(c.Codec.MaxDepth),
		bencode.WithDuplicateKeys(c.Codec.DuplicateKeys),
		bencode.WithStrict(c.Codec.Strict),
	}
}

func (c Config) NewDecoder() *bencode.Decoder {
	return bencode.NewDecoder(c.DecoderOptions()...)
}
