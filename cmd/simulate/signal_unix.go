//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// notifySignals registers the signals that interrupt a run: SIGINT and SIGTERM.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}
