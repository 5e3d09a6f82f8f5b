// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// touch creates an empty file standing in for a socket. Discovery only
// checks existence.
func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
}

func fakeEnv(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func TestClientPipelinePriority(t *testing.T) {
	directory := t.TempDir()
	touch(t, filepath.Join(directory, "pfd.sock"))
	settings := Settings{Directory: directory}
	localPath := directory + "/pfd.sock"

	tests := []struct {
		name     string
		explicit string
		env      map[string]string
		want     Endpoint
	}{
		{
			name:     "explicit wins",
			explicit: "A",
			env:      map[string]string{"PFC_SOCKET": "B", "PFD_SOCKET": "C"},
			want:     Endpoint{Path: "A", Source: KindExplicit},
		},
		{
			name: "PFC_SOCKET before PFD_SOCKET",
			env:  map[string]string{"PFC_SOCKET": "B", "PFD_SOCKET": "C"},
			want: Endpoint{Path: "B", Source: KindEnvironment, Variable: "PFC_SOCKET"},
		},
		{
			name: "PFD_SOCKET alone",
			env:  map[string]string{"PFD_SOCKET": "C"},
			want: Endpoint{Path: "C", Source: KindEnvironment, Variable: "PFD_SOCKET"},
		},
		{
			name: "empty variable is absent",
			env:  map[string]string{"PFC_SOCKET": "", "PFD_SOCKET": "C"},
			want: Endpoint{Path: "C", Source: KindEnvironment, Variable: "PFD_SOCKET"},
		},
		{
			name: "local file",
			env:  map[string]string{"PFC_SOCKET": ""},
			want: Endpoint{Path: localPath, Source: KindLocalFile},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resolver := Resolver{
				Sources:   ClientPipeline(test.explicit, settings),
				LookupEnv: fakeEnv(test.env),
			}
			got, err := resolver.Resolve()
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != test.want {
				t.Errorf("Resolve() = %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestExplicitSkipsExistenceCheck(t *testing.T) {
	resolver := Resolver{
		Sources: []Source{Explicit("/definitely/not/here.sock")},
		Stat: func(string) (os.FileInfo, error) {
			t.Fatal("Stat called for an explicit override")
			return nil, nil
		},
	}
	got, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/definitely/not/here.sock" {
		t.Errorf("Path = %q", got.Path)
	}
}

func TestResolveNotFound(t *testing.T) {
	resolver := Resolver{
		Sources:   ClientPipeline("", Settings{Directory: t.TempDir()}),
		LookupEnv: fakeEnv(nil),
	}
	_, err := resolver.Resolve()
	if !errors.Is(err, ErrEndpointNotFound) {
		t.Fatalf("Resolve error = %v, want ErrEndpointNotFound", err)
	}
}

func TestResolveEmptyPipeline(t *testing.T) {
	var resolver Resolver
	if _, err := resolver.Resolve(); !errors.Is(err, ErrEndpointNotFound) {
		t.Fatalf("Resolve error = %v, want ErrEndpointNotFound", err)
	}
}

func TestLocalFileVisibility(t *testing.T) {
	tests := []struct {
		name       string
		visibility Visibility
		files      []string
		want       string // empty means not found
	}{
		{"both prefers bare", Both, []string{"pfd.sock", ".pfd.sock"}, "pfd.sock"},
		{"both accepts hidden", Both, []string{".pfd.sock"}, ".pfd.sock"},
		{"not-hidden ignores hidden", NotHidden, []string{".pfd.sock"}, ""},
		{"not-hidden finds bare", NotHidden, []string{"pfd.sock"}, "pfd.sock"},
		{"hidden ignores bare", Hidden, []string{"pfd.sock"}, ""},
		{"hidden finds hidden", Hidden, []string{".pfd.sock"}, ".pfd.sock"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			directory := t.TempDir()
			for _, file := range test.files {
				touch(t, filepath.Join(directory, file))
			}
			resolver := Resolver{Sources: []Source{LocalFile(directory, test.visibility, DefaultName)}}
			got, err := resolver.Resolve()
			if test.want == "" {
				if !errors.Is(err, ErrEndpointNotFound) {
					t.Fatalf("Resolve() = %+v, %v; want ErrEndpointNotFound", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if want := directory + "/" + test.want; got.Path != want {
				t.Errorf("Path = %q, want %q", got.Path, want)
			}
		})
	}
}

func TestLocalFileNameOrder(t *testing.T) {
	directory := t.TempDir()
	touch(t, filepath.Join(directory, ".second.sock"))
	touch(t, filepath.Join(directory, "third.sock"))

	resolver := Resolver{Sources: []Source{LocalFile(directory, Both, "first.sock", "second.sock", "third.sock")}}
	got, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := directory + "/.second.sock"; got.Path != want {
		t.Errorf("Path = %q, want %q", got.Path, want)
	}
}

func TestCandidatesSkipDuplicateHiddenName(t *testing.T) {
	tests := []struct {
		visibility Visibility
		want       []string
	}{
		{Both, []string{"/run/.pfd.sock", "/run/build.sock", "/run/.build.sock"}},
		{Hidden, []string{"/run/.pfd.sock", "/run/.build.sock"}},
		{NotHidden, []string{"/run/.pfd.sock", "/run/build.sock"}},
	}
	for _, tt := range tests {
		t.Run(tt.visibility.String(), func(t *testing.T) {
			got := LocalFile("/run", tt.visibility, ".pfd.sock", "build.sock").candidates()
			if !slices.Equal(got, tt.want) {
				t.Errorf("candidates = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveProbesDotNameOnce(t *testing.T) {
	var probes []string
	resolver := Resolver{
		Sources: []Source{LocalFile("/run", Both, ".pfd.sock")},
		Stat: func(path string) (os.FileInfo, error) {
			probes = append(probes, path)
			return nil, os.ErrNotExist
		},
	}
	if _, err := resolver.Resolve(); !errors.Is(err, ErrEndpointNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrEndpointNotFound", err)
	}
	if !slices.Equal(probes, []string{"/run/.pfd.sock"}) {
		t.Errorf("probed %q, want one probe of /run/.pfd.sock", probes)
	}
}

func TestDefaultCandidates(t *testing.T) {
	got := Settings{}.Local().candidates()
	want := []string{"./pfd.sock", "./.pfd.sock"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("default candidates = %q, want %q", got, want)
	}
}

func TestCreatePath(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   string
	}{
		{"default settings", Settings{}.Local(), "./.pfd.sock"},
		{"both creates hidden", LocalFile("/run/pf", Both, "pfd.sock", "other.sock"), "/run/pf/.pfd.sock"},
		{"hidden", LocalFile("/run/pf/", Hidden, "pfd.sock"), "/run/pf/.pfd.sock"},
		{"not-hidden", LocalFile("/run/pf", NotHidden, "pfd.sock"), "/run/pf/pfd.sock"},
		{"already dotted", LocalFile("", Hidden, ".pfd.sock"), "./.pfd.sock"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := CreatePath(test.source)
			if err != nil {
				t.Fatalf("CreatePath: %v", err)
			}
			if got != test.want {
				t.Errorf("CreatePath() = %q, want %q", got, test.want)
			}
		})
	}

	if _, err := CreatePath(Environment("PFD_SOCKET")); err == nil {
		t.Error("CreatePath accepted an environment source")
	}
	if _, err := CreatePath(LocalFile("", Both)); err == nil {
		t.Error("CreatePath accepted a source with no names")
	}
}

func TestCreatePathDoesNotProbe(t *testing.T) {
	// A bare pfd.sock exists, but the daemon still creates the hidden name
	// under Both while a client would find the bare one.
	directory := t.TempDir()
	touch(t, filepath.Join(directory, "pfd.sock"))
	settings := Settings{Directory: directory}

	if got, want := DaemonPath(settings), directory+"/.pfd.sock"; got != want {
		t.Errorf("DaemonPath = %q, want %q", got, want)
	}
	resolver := Resolver{Sources: ClientPipeline("", settings), LookupEnv: fakeEnv(nil)}
	got, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := directory + "/pfd.sock"; got.Path != want {
		t.Errorf("client resolved %q, want %q", got.Path, want)
	}
}

func TestDaemonPathIgnoresEnvironment(t *testing.T) {
	t.Setenv("PFD_SOCKET", "/tmp/elsewhere.sock")
	if got := DaemonPath(Settings{}); got != "./.pfd.sock" {
		t.Errorf("DaemonPath = %q, want ./.pfd.sock", got)
	}
}

func TestCustomEnvironmentNames(t *testing.T) {
	settings := Settings{Directory: t.TempDir(), Environment: []string{"MY_SOCKET"}}
	resolver := Resolver{
		Sources:   ClientPipeline("", settings),
		LookupEnv: fakeEnv(map[string]string{"PFC_SOCKET": "ignored", "MY_SOCKET": "/run/my.sock"}),
	}
	got, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/run/my.sock" || got.Variable != "MY_SOCKET" {
		t.Errorf("Resolve() = %+v", got)
	}
}

func TestResolveLogsHit(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	resolver := Resolver{
		Sources:   []Source{Environment("PFC_SOCKET")},
		Logger:    logger,
		LookupEnv: fakeEnv(map[string]string{"PFC_SOCKET": "/run/pfd.sock"}),
	}
	if _, err := resolver.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	output := buffer.String()
	if !strings.Contains(output, "variable=PFC_SOCKET") || !strings.Contains(output, "socket_path=/run/pfd.sock") {
		t.Errorf("debug log missing hit details: %q", output)
	}
}

func TestParseVisibility(t *testing.T) {
	for _, visibility := range []Visibility{Both, NotHidden, Hidden} {
		parsed, err := ParseVisibility(visibility.String())
		if err != nil {
			t.Fatalf("ParseVisibility(%q): %v", visibility.String(), err)
		}
		if parsed != visibility {
			t.Errorf("ParseVisibility(%q) = %v", visibility.String(), parsed)
		}
	}
	if got, err := ParseVisibility(""); err != nil || got != Both {
		t.Errorf("ParseVisibility(\"\") = %v, %v; want Both", got, err)
	}
	if _, err := ParseVisibility("sometimes"); err == nil {
		t.Error("ParseVisibility accepted an unknown name")
	}
}
