package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh on a schedule and serve sensor state over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Override http.listen")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lock, err := acquireLock(a.cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Unlock()

	addr := a.cfg.HTTP.Listen
	if listenAddr != "" {
		addr = listenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// First cycle runs before serving so sensors exist for the first request
	refresh(ctx, a)

	scheduler := cron.New(cron.WithLogger(cronLogger{a.logger.With("component", "scheduler")}))
	spec := fmt.Sprintf("@every %s", a.cfg.Schedule.Interval)
	if _, err := scheduler.AddJob(spec, cron.NewChain(cron.SkipIfStillRunning(cronLogger{a.logger})).Then(cron.FuncJob(func() {
		refresh(ctx, a)
	}))); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	srv := server.New(a.platform, a.cfg.WWWDir(), a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start()
		a.logger.Info("refresh scheduled", "interval", a.cfg.Schedule.Interval)
		<-ctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})
	g.Go(func() error {
		return srv.Serve(ctx, addr)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}

// refresh runs one cycle, logging instead of failing
func refresh(ctx context.Context, a *app) {
	report, err := a.platform.RefreshAll(ctx)
	switch {
	case errors.Is(err, domain.ErrRefreshInProgress):
		a.logger.Info("refresh skipped, previous cycle still running")
	case err != nil:
		a.logger.Error("refresh failed", "state", a.client.Status(), "error", err)
	default:
		a.logger.Debug("refresh finished", "cycle_id", report.ID, "failed", report.Failed())
	}
}

// acquireLock takes the config-dir lock shared by serve and refresh
func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another instance holds %s", path)
	}
	return lock, nil
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
