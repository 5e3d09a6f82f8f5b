// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/prefork/lib/cli"
	"github.com/bureau-foundation/prefork/lib/config"
	"github.com/bureau-foundation/prefork/lib/discovery"
	"github.com/bureau-foundation/prefork/lib/fdpass"
	"github.com/bureau-foundation/prefork/lib/process"
	"github.com/bureau-foundation/prefork/lib/service"
	"github.com/bureau-foundation/prefork/lib/version"
)

// LogEnv enables verbose logging when set to a true boolean.
const LogEnv = "PFD_LOG"

func main() {
	process.Exit(run(context.Background(), os.Args[1:], newDaemon()))
}

type daemon struct {
	verbose     bool
	network     string
	configPath  string
	showVersion bool

	flags  *pflag.FlagSet
	stdout io.Writer
	stderr io.Writer

	newLogger func(verbosity int, quiet bool) *slog.Logger

	// started, when set, sees the acceptor before Serve binds it.
	started func(*service.Acceptor)
}

func newDaemon() *daemon {
	return &daemon{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		newLogger: cli.NewLogger,
	}
}

// run parses args and serves until ctx is cancelled or a shutdown
// signal arrives.
func run(ctx context.Context, args []string, d *daemon) error {
	command := &cli.Command{
		Name:        "pfd",
		Summary:     "Prefork daemon receiving execution requests from pfc",
		Description: "Listens on a Unix socket in the working directory and receives\nexecution contexts and standard streams from pfc.",
		Usage:       "pfd [flags]",
		Examples: []cli.Example{
			{Description: "Serve in the current directory with debug logging", Command: "PFD_LOG=1 pfd"},
			{Description: "Use a datagram socket", Command: "pfd --network datagram"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pfd", pflag.ContinueOnError)
			flagSet.BoolVarP(&d.verbose, "verbose", "v", false, "enable debug logging (also $"+LogEnv+")")
			flagSet.StringVar(&d.network, "network", "", "socket type: packet or datagram (default: from configuration)")
			flagSet.StringVar(&d.configPath, "config", "", "configuration file (default: $"+config.DaemonConfigEnv+")")
			flagSet.BoolVar(&d.showVersion, "version", false, "print version information and exit")
			d.flags = flagSet
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			if d.showVersion {
				fmt.Fprintln(d.stdout, version.Line("pfd"))
				return nil
			}
			return d.serve(ctx)
		},
		Output: d.stderr,
	}
	return command.Execute(args)
}

// verbosity returns the logger verbosity from --verbose, falling back
// to PFD_LOG when the flag was not given.
func (d *daemon) verbosity() (int, error) {
	verbose := d.verbose
	if d.flags == nil || !d.flags.Changed("verbose") {
		if value := os.Getenv(LogEnv); value != "" {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return 0, cli.Validation("invalid %s value %q: want a boolean such as 1, 0, true or false", LogEnv, value)
			}
			verbose = parsed
		}
	}
	if verbose {
		return 2, nil
	}
	return 1, nil
}

func (d *daemon) serve(ctx context.Context) error {
	verbosity, err := d.verbosity()
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(d.configPath, config.DaemonConfigEnv)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	settings, err := cfg.Discovery()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	network, err := cfg.Network()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if d.network != "" {
		network, err = fdpass.ParseNetwork(d.network)
		if err != nil {
			return cli.Validation("--network: %w", err)
		}
	}

	logger := d.newLogger(verbosity, false)
	slog.SetDefault(logger)

	acceptor := service.NewAcceptor(service.AcceptorConfig{
		SocketPath: discovery.DaemonPath(settings),
		Network:    network,
		Executor:   service.LoggingExecutor{Logger: logger},
		Logger:     logger,
	})
	if d.started != nil {
		d.started(acceptor)
	}

	logger.Info("pfd starting",
		"version", version.Info(),
		"pid", os.Getpid(),
		"socket_path", acceptor.SocketPath(),
		"network", acceptor.Network().String(),
	)
	if err := service.ServeUntilSignal(ctx, acceptor); err != nil {
		return err
	}
	logger.Info("pfd stopped")
	return nil
}
