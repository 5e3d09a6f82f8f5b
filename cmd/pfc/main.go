// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/prefork/lib/cli"
	"github.com/bureau-foundation/prefork/lib/config"
	"github.com/bureau-foundation/prefork/lib/discovery"
	"github.com/bureau-foundation/prefork/lib/fdpass"
	"github.com/bureau-foundation/prefork/lib/ipc"
	"github.com/bureau-foundation/prefork/lib/process"
	"github.com/bureau-foundation/prefork/lib/version"
)

func main() {
	process.Exit(run(os.Args[1:], newClient()))
}

// client holds the parsed flags and the process state a request is
// captured from.
type client struct {
	socketPath  string
	verbosity   int
	quiet       bool
	configPath  string
	showVersion bool

	// stdio is sent as descriptors 0, 1 and 2.
	stdio   []*os.File
	environ func() []string
	stdout  io.Writer
	stderr  io.Writer

	// newLogger builds the process logger once flags are parsed.
	newLogger func(verbosity int, quiet bool) *slog.Logger
}

func newClient() *client {
	return &client{
		stdio:     []*os.File{os.Stdin, os.Stdout, os.Stderr},
		environ:   os.Environ,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		newLogger: cli.NewLogger,
	}
}

// run executes pfc and reports any error unless --quiet was given. The
// returned error only carries the exit status.
func run(args []string, c *client) error {
	err := c.command().Execute(args)
	if err == nil {
		return nil
	}
	if !c.quiet && !quietRequested(args) {
		cli.ReportError(c.stderr, err)
	}
	return &cli.ExitError{Code: 1}
}

// quietRequested reports whether -q or --quiet appears before the
// command. A flag error stops parsing before later flags are set, so
// run cannot rely on c.quiet alone.
func quietRequested(args []string) bool {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--" || arg == "-" || !strings.HasPrefix(arg, "-"):
			return false
		case arg == "--quiet" || arg == "--quiet=true":
			return true
		case arg == "--socket" || arg == "--config":
			i++
		case strings.HasPrefix(arg, "--"):
		default:
			shorthands := arg[1:]
			for j, flag := range shorthands {
				if flag == 'q' {
					return true
				}
				if flag == 's' {
					// The rest of the cluster, or the next argument, is the path.
					if j == len(shorthands)-1 {
						i++
					}
					break
				}
			}
		}
	}
	return false
}

func (c *client) command() *cli.Command {
	return &cli.Command{
		Name:        "pfc",
		Summary:     "Minimal prefork client for execution transfer",
		Description: "Transfers the execution context and standard streams to the pfd daemon and exits.",
		Usage:       "pfc [flags] <command> [args...]",
		Examples: []cli.Example{
			{Description: "Run a build through the daemon in the current directory", Command: "pfc make -j8"},
			{Description: "Use a specific daemon socket", Command: "pfc --socket /run/pfd/.pfd.sock ls -la"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pfc", pflag.ContinueOnError)
			// Everything after the command belongs to the command.
			flagSet.SetInterspersed(false)
			flagSet.StringVarP(&c.socketPath, "socket", "s", "", "path to the pfd socket (default: discovered)")
			flagSet.CountVarP(&c.verbosity, "verbose", "v", "increase logging verbosity (-v info, -vv debug)")
			flagSet.BoolVarP(&c.quiet, "quiet", "q", false, "suppress all output, including errors")
			flagSet.StringVar(&c.configPath, "config", "", "configuration file (default: $"+config.ClientConfigEnv+")")
			flagSet.BoolVar(&c.showVersion, "version", false, "print version information and exit")
			return flagSet
		},
		Run: func(args []string) error {
			if c.showVersion {
				fmt.Fprintln(c.stdout, version.Line("pfc"))
				return nil
			}
			return c.send(context.Background(), args)
		},
		Output: c.stderr,
	}
}

// send performs the single request: discover, capture, encode, send.
func (c *client) send(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return cli.Validation("a command is required").
			WithHint("Usage: pfc [flags] <command> [args...]")
	}

	cfg, err := config.Resolve(c.configPath, config.ClientConfigEnv)
	if err != nil {
		return cli.Validation("loading configuration: %w", err)
	}
	settings, err := cfg.Discovery()
	if err != nil {
		return cli.Validation("loading configuration: %w", err)
	}
	network, err := cfg.Network()
	if err != nil {
		return cli.Validation("loading configuration: %w", err)
	}
	compression, err := cfg.Compression()
	if err != nil {
		return cli.Validation("loading configuration: %w", err)
	}

	logger := c.newLogger(c.verbosity, c.quiet)
	slog.SetDefault(logger)

	resolver := discovery.Resolver{
		Sources: discovery.ClientPipeline(c.socketPath, settings),
		Logger:  logger,
	}
	endpoint, err := resolver.Resolve()
	if err != nil {
		return fmt.Errorf("discovering pfd socket: %w", err)
	}

	executionContext := ipc.CaptureExecutionContext(args[0], args[1:], c.environ())
	payload, err := ipc.Encode(executionContext, compression)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	logger.Info("sending request",
		"socket_path", endpoint.Path,
		"source", endpoint.Source.String(),
		"network", network.String(),
		"command", executionContext.Command,
		"args", len(executionContext.Args),
		"payload_bytes", len(payload),
	)
	if err := fdpass.Send(ctx, network, endpoint.Path, payload, c.stdio); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	logger.Debug("request sent")
	return nil
}
