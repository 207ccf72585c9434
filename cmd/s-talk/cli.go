package main

import (
	"flag"
	"io"
)

const usage = "Usage: s-talk [-config path] <localhostIP> <instancePort> <otherInstancePort>"

// Options holds CLI options for the relay.
type Options struct {
	ConfigPath string
	// Args are the positional addressing arguments.
	Args []string
}

// ParseFlags parses CLI flags from args and returns Options.
func ParseFlags(args []string, stderr io.Writer) (Options, error) {
	fs := flag.NewFlagSet("s-talk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, usage+"\n")
		fs.PrintDefaults()
	}
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Args = fs.Args()
	return opts, nil
}
