// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/bureau-foundation/prefork/lib/codec"
	"github.com/bureau-foundation/prefork/lib/fdpass"
	"github.com/bureau-foundation/prefork/lib/ipc"
	"github.com/bureau-foundation/prefork/lib/netutil"
)

// EndpointError reports that the daemon could not bind its endpoint.
type EndpointError struct {
	Path    string
	Network fdpass.Network
	Err     error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("creating %s endpoint %s: %v", e.Network, e.Path, e.Err)
}

func (e *EndpointError) Unwrap() error { return e.Err }

// AcceptorConfig configures an Acceptor.
type AcceptorConfig struct {
	// SocketPath is where the endpoint is created.
	SocketPath string

	// Network is NetworkPacket or NetworkDatagram. NetworkAuto means
	// NetworkPacket.
	Network fdpass.Network

	// Executor receives every decoded request. Defaults to a
	// LoggingExecutor on Logger.
	Executor Executor

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Acceptor binds the daemon endpoint and dispatches inbound messages.
type Acceptor struct {
	socketPath string
	network    fdpass.Network
	executor   Executor
	logger     *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once

	// sessions tracks in-flight packet sessions. Serve does not wait
	// for them; Wait does.
	sessions sync.WaitGroup
}

// NewAcceptor creates an Acceptor. Nothing is bound until Serve.
func NewAcceptor(config AcceptorConfig) *Acceptor {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	network := config.Network
	if network == fdpass.NetworkAuto {
		network = fdpass.NetworkPacket
	}
	executor := config.Executor
	if executor == nil {
		executor = LoggingExecutor{Logger: logger}
	}
	return &Acceptor{
		socketPath: config.SocketPath,
		network:    network,
		executor:   executor,
		logger:     logger.With("socket_path", config.SocketPath, "network", network.String()),
		ready:      make(chan struct{}),
	}
}

// SocketPath returns the endpoint path.
func (a *Acceptor) SocketPath() string { return a.socketPath }

// Network returns the endpoint socket type.
func (a *Acceptor) Network() fdpass.Network { return a.network }

// Ready is closed once the endpoint is bound and accepting.
func (a *Acceptor) Ready() <-chan struct{} { return a.ready }

// Wait blocks until every session started so far has finished.
func (a *Acceptor) Wait() { a.sessions.Wait() }

// Serve binds the endpoint and handles messages until ctx is
// cancelled. A bind failure is returned as *EndpointError. After a
// successful bind, Serve returns nil once ctx is cancelled, and the
// endpoint file has been removed by then.
//
// Any file already at the socket path is removed first. The removal
// is best-effort; if the path is unusable, the bind reports it.
func (a *Acceptor) Serve(ctx context.Context) error {
	a.removeStale()

	switch a.network {
	case fdpass.NetworkPacket:
		return a.servePacket(ctx)
	case fdpass.NetworkDatagram:
		return a.serveDatagram(ctx)
	default:
		return &EndpointError{Path: a.socketPath, Network: a.network,
			Err: fmt.Errorf("unsupported network %q", string(a.network))}
	}
}

// removeStale deletes a socket file left behind by a daemon that
// exited without cleanup. Directories are left alone.
func (a *Acceptor) removeStale() {
	info, err := os.Lstat(a.socketPath)
	if err != nil {
		return
	}
	if info.IsDir() {
		a.logger.Debug("socket path is a directory, not removing")
		return
	}
	if err := os.Remove(a.socketPath); err != nil {
		a.logger.Debug("could not remove stale socket", "error", err)
		return
	}
	a.logger.Debug("removed stale socket")
}

func (a *Acceptor) removeEndpoint() {
	if err := os.Remove(a.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("removing socket", "error", err)
	}
}

// closeOnDone closes c when ctx is cancelled or stop is closed.
func closeOnDone(ctx context.Context, stop <-chan struct{}, c interface{ Close() error }) {
	select {
	case <-ctx.Done():
	case <-stop:
	}
	c.Close()
}

func (a *Acceptor) markReady() {
	a.readyOnce.Do(func() { close(a.ready) })
}

func (a *Acceptor) servePacket(ctx context.Context) error {
	listener, err := net.ListenUnix(string(fdpass.NetworkPacket),
		&net.UnixAddr{Name: a.socketPath, Net: string(fdpass.NetworkPacket)})
	if err != nil {
		return &EndpointError{Path: a.socketPath, Network: a.network, Err: err}
	}
	stop := make(chan struct{})
	defer func() {
		close(stop)
		listener.Close()
		a.removeEndpoint()
	}()

	// Unblock Accept when the context is cancelled.
	go closeOnDone(ctx, stop, listener)

	// Sessions outlive the accept loop's cancellation.
	sessionCtx := context.WithoutCancel(ctx)

	a.markReady()
	a.logger.Info("daemon listening")

	for {
		conn, err := listener.AcceptUnix()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			a.logger.Error("accept failed", "error", err)
			continue
		}

		a.sessions.Add(1)
		go func() {
			defer a.sessions.Done()
			a.handleConnection(sessionCtx, conn)
		}()
	}

	a.logger.Info("daemon stopped accepting")
	return nil
}

// handleConnection receives the single message of one packet session.
func (a *Acceptor) handleConnection(ctx context.Context, conn *net.UnixConn) {
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := a.logger.With("session_id", sessionID)

	message, err := fdpass.Receive(conn)
	if err != nil {
		if netutil.IsExpectedCloseError(err) {
			logger.Debug("client closed without sending a request")
			return
		}
		logger.Error("receiving request", "error", err)
		return
	}
	a.handleMessage(ctx, logger, sessionID, message)
}

func (a *Acceptor) serveDatagram(ctx context.Context) error {
	conn, err := net.ListenUnixgram(string(fdpass.NetworkDatagram),
		&net.UnixAddr{Name: a.socketPath, Net: string(fdpass.NetworkDatagram)})
	if err != nil {
		return &EndpointError{Path: a.socketPath, Network: a.network, Err: err}
	}
	stop := make(chan struct{})
	defer func() {
		close(stop)
		conn.Close()
		a.removeEndpoint()
	}()

	go closeOnDone(ctx, stop, conn)

	sessionCtx := context.WithoutCancel(ctx)

	a.markReady()
	a.logger.Info("daemon listening")

	for {
		message, err := fdpass.Receive(conn)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			a.logger.Error("receiving datagram", "error", err)
			continue
		}

		sessionID := uuid.NewString()
		a.handleMessage(sessionCtx, a.logger.With("session_id", sessionID), sessionID, message)
	}

	a.logger.Info("daemon stopped accepting")
	return nil
}

// handleMessage decodes one message and hands it to the executor. It
// owns message and closes every descriptor the executor did not
// release.
func (a *Acceptor) handleMessage(ctx context.Context, logger *slog.Logger, sessionID string, message *fdpass.Message) {
	logger.Debug("received message",
		"payload_bytes", len(message.Payload),
		"descriptors", len(message.Descriptors),
	)
	if logger.Enabled(ctx, slog.LevelDebug) {
		if body, err := ipc.Body(message.Payload); err == nil {
			if diagnostic, err := codec.Diagnose(body); err == nil {
				logger.Debug("request body", "cbor", diagnostic)
			}
		}
	}

	executionContext, err := ipc.Decode(message.Payload)
	if err != nil {
		message.Close()
		logger.Error("decoding execution context", "error", err)
		return
	}

	request := &Request{
		SessionID:   sessionID,
		Context:     executionContext,
		Descriptors: message.Descriptors,
	}
	err = a.executor.Execute(ctx, request)
	if closeErr := request.Close(); closeErr != nil {
		logger.Warn("closing request descriptors", "error", closeErr)
	}
	if err != nil {
		logger.Error("executing request", "command", executionContext.Command, "error", err)
		return
	}
	logger.Debug("request handled", "command", executionContext.Command)
}
