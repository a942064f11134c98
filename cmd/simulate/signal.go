package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
)

// withSignals returns a context canceled by the first interrupt. A second
// interrupt exits at once, for a run blocked reading stdin.
func withSignals(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 2)
	notifySignals(ch)

	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			cancel()
		case <-done:
			return
		}
		select {
		case <-ch:
			os.Exit(constants.ExitInterrupted)
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(ch)
		close(done)
		cancel()
	}
}
