// Command geco builds, inspects, previews and bakes sphere animations stored in the geco wire format.
//
// Usage:
//
//	geco [-config geco.toml] <command> [flags]
//
// Commands:
//
//	demo     write a sample animation
//	inspect  print an animation summary as JSON or YAML
//	preview  render one frame to a PNG file
//	bake     write the segment buffers of a frame range
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klyja/geco/engine"
)

// command is one geco subcommand.
type command struct {
	name    string
	summary string
	run     func(cfg Config, args []string, stdout io.Writer) error
}

var commands = []command{
	{"demo", "write a sample animation", runDemo},
	{"inspect", "print an animation summary as JSON or YAML", runInspect},
	{"preview", "render one frame to a PNG file", runPreview},
	{"bake", "write the segment buffers of a frame range", runBake},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one geco invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("geco", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "TOML file with default settings")
	fs.Usage = func() { usage(fs, stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		usage(fs, stderr)
		return 2
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "geco: %v\n", err)
		return 1
	}
	logger, err := cfg.Log.Logger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "geco: %v\n", err)
		return 1
	}
	engine.SetLogger(logger)
	defer engine.SetLogger(nil)

	name, rest := fs.Arg(0), fs.Args()[1:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if err := cmd.run(cfg, rest, stdout); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			fmt.Fprintf(stderr, "geco %s: %v\n", name, err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stderr, "geco: unknown command %q\n", name)
	usage(fs, stderr)
	return 2
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: geco [-config geco.toml] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(w)
	fs.PrintDefaults()
}
