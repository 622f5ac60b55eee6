package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"golang.org/x/sync/errgroup"

	"lowlife.exe.dev/duel"
	"lowlife.exe.dev/srv"
	"lowlife.exe.dev/updates"
)

var (
	flagListenAddr = flag.String("listen", ":8000", "address to listen on")
	flagRegister   = flag.Bool("register", false, "sync slash commands with Discord at start")
	flagGuild      = flag.String("guild", "", "register commands to this guild only (with -register)")
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName("lowlife"),
		otelconfig.WithServiceVersion(srv.Version),
	)
	if err != nil {
		slog.Warn("opentelemetry disabled", "error", err)
	} else {
		defer otelShutdown()
	}

	cfg, err := srv.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	server, err := srv.New(cfg, srv.WithMarkers(srv.NewMarkerClient()))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Markers.CreateDeployMarker(ctx)

	if *flagRegister {
		if err := server.RegisterCommands(ctx, *flagGuild); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(*flagListenAddr)
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return updates.NewWatcher(cfg.ChangelogPath, cfg.UpdatesDebounce, server.CheckChangelog).Run(ctx)
	})
	g.Go(func() error {
		notes := filepath.Join(cfg.DataDir, updates.NotesFile)
		return updates.NewWatcher(notes, cfg.UpdatesDebounce, server.CheckReleaseNotes).Run(ctx)
	})
	g.Go(func() error {
		server.Duels.RunSweeper(ctx, sweepInterval, func(e duel.Expired) {
			server.HandleExpired(ctx, e)
		})
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
