package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/ndlib/scidataflow/config"
	"github.com/ndlib/scidataflow/digest"
	"github.com/ndlib/scidataflow/project"
	"github.com/ndlib/scidataflow/reconcile"
)

// app bundles the discovered project and its reconciler, the way
// bclientapi.Connection bundled one item's server/item/fileroot for
// every bclient action — generalized here to however many verbs a
// single invocation needs.
type app struct {
	ctx   *project.Context
	recon *reconcile.Reconciler
	log   *logrus.Logger
}

// openProject discovers the project rooted at or above the current
// directory and builds a Reconciler for it (spec.md §4.F "owns the
// project context: root discovery, user config").
func openProject() (*app, error) {
	ctx, err := project.Discover(".")
	if err != nil {
		return nil, err
	}
	keys, err := config.LoadAuthKeys()
	if err != nil {
		return nil, err
	}
	digests := digest.NewService(ctx.Root, 0)
	return &app{
		ctx:   ctx,
		recon: reconcile.New(ctx, digests, keys),
		log:   logger,
	}, nil
}

// save persists the manifest. The dispatcher calls this once after a
// mutating command's core operation returns success (spec.md §4.F);
// read-only commands (status) never call it.
func (a *app) save() error {
	return a.ctx.Save()
}

// trackedFileCount sizes the progress reporter's "N/total" display. It
// is an upper bound, not an exact job count: pull/push skip files that
// are already current, so the line can finish short of total.
func trackedFileCount(a *app) int {
	n := 0
	for _, f := range a.ctx.Collection.Files {
		if f.Tracked {
			n++
		}
	}
	return n
}

// interruptibleContext returns a context canceled on the first SIGINT,
// so a transfer's in-flight jobs abort their streams and delete
// partial destination files instead of leaving the process to be
// killed mid-write (spec.md §5 "Cancellation").
func interruptibleContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
