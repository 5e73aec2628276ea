package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/platform"
	"github.com/nozzlewatch/nozzlewatch/internal/ui"
)

type launchOptions struct {
	StartHidden bool
}

func parseLaunchOptions(args []string) (launchOptions, error) {
	var opts launchOptions

	fs := flag.NewFlagSet(nzapp.Name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.StartHidden, "start-hidden", false, "start minimized to the tray")
	if err := fs.Parse(args); err != nil {
		return launchOptions{}, err
	}
	if fs.NArg() > 0 {
		return launchOptions{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("nozzlewatch exited with error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	launch, err := parseLaunchOptions(args)
	if err != nil {
		return fmt.Errorf("parse arguments: %w", err)
	}

	lock, err := platform.AcquireInstanceLock(nzapp.Name)
	switch {
	case errors.Is(err, platform.ErrInstanceAlreadyRunning):
		slog.Info("another instance is already running", "error", err)

		return nil
	case errors.Is(err, platform.ErrInstanceLockUnsupported):
		slog.Warn("single instance lock is not available on this platform")
	case err != nil:
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if lock != nil {
		defer func() {
			if err := lock.Release(); err != nil {
				slog.Warn("release instance lock", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := nzapp.Initialize(ctx, nzapp.RuntimeOptions{})
	if err != nil {
		return fmt.Errorf("initialize app runtime: %w", err)
	}

	var closeOnce sync.Once
	closeRuntime := func() {
		closeOnce.Do(func() {
			_ = rt.Close()
		})
	}
	defer closeRuntime()

	dep := ui.BuildRuntimeDependencies(rt, ui.LaunchOptions{StartHidden: launch.StartHidden}, func() {
		stop()
		closeRuntime()
	})
	if err := ui.Run(dep); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	return nil
}
