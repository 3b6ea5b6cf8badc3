package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/bencode/internal/bencode"
	"github.com/danmuck/bencode/internal/config"
	"github.com/danmuck/bencode/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage")

// codecFlags are shared by every command that decodes.
type codecFlags struct {
	configPath    string
	maxDepth      int
	duplicateKeys string
	strict        bool
	logLevel      string
}

// newFlagSet builds the flag set for a command that decodes or encodes.
func newFlagSet(name string, e *env) (*pflag.FlagSet, *codecFlags) {
	fs := newBaseFlagSet(name, e)
	cf := &codecFlags{}
	fs.StringVar(&cf.configPath, "config", "", "path to config.toml")
	fs.IntVar(&cf.maxDepth, "max-depth", bencode.DefaultMaxDepth, "maximum list/dict nesting (0 = unlimited)")
	fs.StringVar(&cf.duplicateKeys, "duplicate-keys", "reject", "duplicate dict key policy: reject | last_wins")
	fs.BoolVar(&cf.strict, "strict", false, "reject non-canonical numbers and unsorted keys")
	fs.StringVar(&cf.logLevel, "log-level", "", "log level override")
	return fs, cf
}

// newBaseFlagSet builds a flag set with no codec flags.
func newBaseFlagSet(name string, e *env) *pflag.FlagSet {
	fs := pflag.NewFlagSet("bencodectl "+name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errUsage
		}
		return err
	}
	return nil
}

// resolve layers the config file (if any) and then explicitly set flags
// over the defaults.
func (cf *codecFlags) resolve(fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if cf.configPath != "" {
		loaded, err := config.Load(cf.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if fs.Changed("max-depth") {
		cfg.Codec.MaxDepth = cf.maxDepth
	}
	if fs.Changed("duplicate-keys") {
		p, err := bencode.ParseDuplicateKeyPolicy(cf.duplicateKeys)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Codec.DuplicateKeys = p
	}
	if fs.Changed("strict") {
		cfg.Codec.Strict = cf.strict
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = cf.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	logging.SetLevel(cfg.Log.Level)
	log.Debug().
		Int("max_depth", cfg.Codec.MaxDepth).
		Stringer("duplicate_keys", cfg.Codec.DuplicateKeys).
		Bool("strict", cfg.Codec.Strict).
		Msg("codec config resolved")
	return cfg, nil
}

// readInput reads the single optional file argument, or stdin.
func readInput(fs *pflag.FlagSet, e *env) ([]byte, error) {
	r, closeFn, err := openInput(fs, e)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return io.ReadAll(r)
}

func openInput(fs *pflag.FlagSet, e *env) (io.Reader, func(), error) {
	switch fs.NArg() {
	case 0:
		return e.stdin, func() {}, nil
	case 1:
		path := fs.Arg(0)
		if path == "-" {
			return e.stdin, func() {}, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
}
