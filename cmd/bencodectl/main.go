// bencodectl inspects and produces bencoded data.
//
// Usage:
//
//	bencodectl decode [--json] [--allow-trailing] [file]   Decode one value and print it
//	bencodectl encode [file]                               Encode JSON input as bencode
//	bencodectl check [--schema metainfo] [file]            Report ok or the decode error
//	bencodectl frame-write [--compress] [file]             Wrap one bencoded value in a frame
//	bencodectl frame-read [--json] [file]                  Print every framed value
//	bencodectl config [--output path] [--force]            Write the config template
//
// Every command but config takes the codec flags --config, --max-depth,
// --duplicate-keys and --strict. All commands take --log-level. No file or
// "-" reads stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/bencode/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	logging.ConfigureRuntime()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type command struct {
	name  string
	usage string
	run   func(args []string, env *env) error
}

// env carries the process streams so commands can be driven from tests.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

var commands = []command{
	{"decode", "decode one value and print it", cmdDecode},
	{"encode", "encode JSON input as bencode", cmdEncode},
	{"check", "report ok or the decode error", cmdCheck},
	{"frame-write", "wrap one bencoded value in a frame", cmdFrameWrite},
	{"frame-read", "print every framed value", cmdFrameRead},
	{"config", "write the config template", cmdConfig},
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	name := args[0]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(args[1:], e); err != nil {
			if errors.Is(err, errUsage) {
				return 2
			}
			log.Debug().Err(err).Str("command", name).Msg("command failed")
			fmt.Fprintf(stderr, "bencodectl %s: %v\n", name, err)
			return 1
		}
		return 0
	}
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(stdout)
		return 0
	}
	fmt.Fprintf(stderr, "bencodectl: unknown command %q\n", name)
	printUsage(stderr)
	return 2
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: bencodectl <command> [flags] [file]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.usage)
	}
}
