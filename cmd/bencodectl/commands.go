package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/bencode/internal/bencode"
	"github.com/danmuck/bencode/internal/config"
	"github.com/danmuck/bencode/internal/frame"
	"github.com/danmuck/bencode/internal/logging"
	"github.com/danmuck/bencode/internal/schema"
	"github.com/rs/zerolog/log"
)

func cmdDecode(args []string, e *env) error {
	fs, cf := newFlagSet("decode", e)
	asJSON := fs.Bool("json", false, "print JSON instead of the debug form")
	allowTrailing := fs.Bool("allow-trailing", false, "ignore bytes after the first value")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}
	data, err := readInput(fs, e)
	if err != nil {
		return err
	}

	dec := cfg.NewDecoder()
	var v bencode.Value
	if *allowTrailing {
		var rest []byte
		v, rest, err = dec.Decode(data)
		if err == nil && len(rest) > 0 {
			log.Warn().Int("trailing_bytes", len(rest)).Msg("ignoring data after first value")
		}
	} else {
		v, err = dec.Unmarshal(data)
	}
	if err != nil {
		return describe(err)
	}
	return printValue(e.stdout, v, *asJSON)
}

func cmdEncode(args []string, e *env) error {
	fs, cf := newFlagSet("encode", e)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if _, err := cf.resolve(fs); err != nil {
		return err
	}
	data, err := readInput(fs, e)
	if err != nil {
		return err
	}
	v, err := bencode.FromJSON(data)
	if err != nil {
		return err
	}
	return bencode.NewEncoder(e.stdout).Encode(v)
}

func cmdCheck(args []string, e *env) error {
	fs, cf := newFlagSet("check", e)
	schemaName := fs.String("schema", "", "validate against a known schema: metainfo")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}
	data, err := readInput(fs, e)
	if err != nil {
		return err
	}
	v, err := cfg.NewDecoder().Unmarshal(data)
	if err != nil {
		return describe(err)
	}
	switch *schemaName {
	case "":
	case "metainfo":
		if err := schema.ValidateMetainfo(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown schema %q", *schemaName)
	}
	fmt.Fprintf(e.stdout, "ok kind=%s bytes=%d\n", v.Kind(), len(data))
	return nil
}

func cmdFrameWrite(args []string, e *env) error {
	fs, cf := newFlagSet("frame-write", e)
	compress := fs.Bool("compress", false, "zstd-compress the payload")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}
	if fs.Changed("compress") {
		cfg.Frame.Compress = *compress
	}
	data, err := readInput(fs, e)
	if err != nil {
		return err
	}
	c, err := newFrameCodec(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	w := bufio.NewWriter(e.stdout)
	dec := cfg.NewDecoder()
	// input may hold several concatenated values; each gets its own frame
	for len(data) > 0 {
		v, rest, err := dec.Decode(data)
		if err != nil {
			return describe(err)
		}
		if err := c.WriteMessage(w, v); err != nil {
			return err
		}
		data = rest
	}
	return w.Flush()
}

func cmdFrameRead(args []string, e *env) error {
	fs, cf := newFlagSet("frame-read", e)
	asJSON := fs.Bool("json", false, "print JSON instead of the debug form")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}
	r, closeFn, err := openInput(fs, e)
	if err != nil {
		return err
	}
	defer closeFn()
	c, err := newFrameCodec(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	br := bufio.NewReader(r)
	for n := 0; ; n++ {
		if _, err := br.Peek(1); errors.Is(err, io.EOF) {
			log.Debug().Int("frames", n).Msg("frame-read done")
			return nil
		}
		v, err := c.ReadMessage(br)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, describe(err))
		}
		if err := printValue(e.stdout, v, *asJSON); err != nil {
			return err
		}
	}
}

func cmdConfig(args []string, e *env) error {
	fs := newBaseFlagSet("config", e)
	output := fs.String("output", "", "write the template to this path instead of stdout")
	force := fs.Bool("force", false, "overwrite an existing file")
	logLevel := fs.String("log-level", "", "log level override")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.Changed("log-level") && !logging.SetLevel(*logLevel) {
		return fmt.Errorf("unknown log level %q", *logLevel)
	}
	if *output == "" {
		_, err := io.WriteString(e.stdout, config.Template())
		return err
	}
	if err := config.WriteTemplate(*output, *force); err != nil {
		return err
	}
	log.Info().Str("path", *output).Msg("wrote config template")
	return nil
}

func newFrameCodec(cfg config.Config) (*frame.Codec, error) {
	return frame.NewCodec(cfg.NewDecoder(), cfg.Frame.Limits, cfg.Frame.Compress)
}

func printValue(w io.Writer, v bencode.Value, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, bencode.Debug(v))
		return err
	}
	out, err := bencode.ToJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// describe adds the error kind, form and offset of a decode failure.
func describe(err error) error {
	var se *bencode.SyntaxError
	if !errors.As(err, &se) {
		return err
	}
	return fmt.Errorf("kind=%s form=%s offset=%d: %w", bencode.Reason(err), se.Form, se.Offset, err)
}
