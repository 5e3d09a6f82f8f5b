// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// clientCommand mirrors the pfc flag surface.
func clientCommand(socketPath *string, verbosity *int, received *[]string, output *bytes.Buffer) *Command {
	return &Command{
		Name:    "pfc",
		Summary: "Send a command to the pfd daemon",
		Usage:   "pfc [flags] <command> [args...]",
		Examples: []Example{
			{Description: "Run make through the daemon", Command: "pfc make -j8"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pfc", pflag.ContinueOnError)
			flagSet.SetInterspersed(false)
			flagSet.StringVarP(socketPath, "socket", "s", "", "socket path")
			flagSet.CountVarP(verbosity, "verbose", "v", "increase verbosity")
			flagSet.Bool("quiet", false, "suppress output")
			return flagSet
		},
		Run: func(args []string) error {
			*received = args
			return nil
		},
		Output: output,
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var socketPath string
	var verbosity int
	var args []string
	var output bytes.Buffer
	command := clientCommand(&socketPath, &verbosity, &args, &output)

	if err := command.Execute([]string{"--socket", "/custom.sock", "-vv", "ls", "-la", "--color"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if socketPath != "/custom.sock" {
		t.Errorf("socketPath = %q, want %q", socketPath, "/custom.sock")
	}
	if verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", verbosity)
	}
	if strings.Join(args, " ") != "ls -la --color" {
		t.Errorf("args = %q, want the command's own flags passed through", args)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	var socketPath string
	var verbosity int
	var args []string
	var output bytes.Buffer
	command := clientCommand(&socketPath, &verbosity, &args, &output)

	err := command.Execute([]string{"--sockt", "/x.sock", "ls"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --socket") {
		t.Errorf("error = %q, want suggestion for '--socket'", errStr)
	}
	if !strings.Contains(errStr, "pfc --help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Errorf("error %v is not a validation ToolError", err)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	var socketPath string
	var verbosity int
	var args []string
	var output bytes.Buffer
	command := clientCommand(&socketPath, &verbosity, &args, &output)

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		t.Run(flag, func(t *testing.T) {
			var socketPath string
			var verbosity int
			var args []string
			var output bytes.Buffer
			ran := false
			command := clientCommand(&socketPath, &verbosity, &args, &output)
			command.Run = func([]string) error { ran = true; return nil }

			if err := command.Execute([]string{flag}); err != nil {
				t.Fatalf("Execute(%s) error: %v", flag, err)
			}
			if ran {
				t.Error("Run called for a help flag")
			}
			if !strings.Contains(output.String(), "Usage:") {
				t.Errorf("help output missing usage:\n%s", output.String())
			}
		})
	}
}

func TestCommand_Execute_HelpAfterFlags(t *testing.T) {
	var socketPath string
	var verbosity int
	var args []string
	var output bytes.Buffer
	command := clientCommand(&socketPath, &verbosity, &args, &output)

	if err := command.Execute([]string{"-v", "--help"}); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !strings.Contains(output.String(), "Usage:") {
		t.Errorf("help output missing usage:\n%s", output.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var socketPath string
	var verbosity int
	var args []string
	var output bytes.Buffer
	command := clientCommand(&socketPath, &verbosity, &args, &output)
	command.PrintHelp(&output)

	help := output.String()
	for _, want := range []string{
		"Send a command to the pfd daemon",
		"Usage:\n  pfc [flags] <command> [args...]",
		"Flags:",
		"--socket",
		"-v, --verbose",
		"Examples:",
		"# Run make through the daemon",
		"pfc make -j8",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestCommand_Execute_NoRun(t *testing.T) {
	var output bytes.Buffer
	command := &Command{Name: "pfd", Output: &output}
	if err := command.Execute(nil); err == nil {
		t.Fatal("Execute() = nil, want error without Run")
	}
	if !strings.Contains(output.String(), "Usage:\n  pfd [flags]") {
		t.Errorf("expected synthesized usage, got:\n%s", output.String())
	}
}
