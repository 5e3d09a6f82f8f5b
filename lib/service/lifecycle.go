// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ServeUntilSignal runs acceptor until ctx is cancelled or one of
// signals arrives (SIGINT and SIGTERM when none are given). The signal
// cancels the accept loop only.
func ServeUntilSignal(ctx context.Context, acceptor *Acceptor, signals ...os.Signal) error {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	signalCtx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	err := acceptor.Serve(signalCtx)
	if err == nil && ctx.Err() == nil && signalCtx.Err() != nil {
		acceptor.logger.Info("shutdown signal received")
	}
	return err
}
