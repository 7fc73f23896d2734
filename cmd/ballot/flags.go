package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/sydney-cole/oscars-ballot/internal/config"
)

const (
	modeLocal  = "local"
	modeRemote = "remote"
)

type options struct {
	Mode    string
	DBPath  string
	Server  string
	Token   string
	Command string
	Args    []string
}

// parseFlags reads flags from args; unset flags fall back to env. Every
// failure is reported on stderr before it is returned.
func parseFlags(args []string, env config.Client, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("ballot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.Mode, "mode", modeLocal, "where picks are stored (local or remote)")
	fs.StringVar(&o.DBPath, "db", env.DBPath, "local draft database")
	fs.StringVar(&o.Server, "server", env.Server, "ballot server URL")
	fs.StringVar(&o.Token, "token", env.Token, "bearer token for the ballot server")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "usage: ballot [flags] categories|pick <category> <pick>|picks|name [display name]|submit|sync|leaderboard [group]|clear")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.Mode != modeLocal && o.Mode != modeRemote {
		err := fmt.Errorf("unknown mode %q (use %s or %s)", o.Mode, modeLocal, modeRemote)
		_, _ = fmt.Fprintln(stderr, err)
		return options{}, err
	}
	if fs.NArg() == 0 {
		err := errors.New("command required")
		_, _ = fmt.Fprintln(stderr, err)
		fs.Usage()
		return options{}, err
	}
	o.Command, o.Args = fs.Arg(0), fs.Args()[1:]
	return o, nil
}
