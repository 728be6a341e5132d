package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"go.klb.dev/pastecopy/internal/clip"
	"go.klb.dev/pastecopy/internal/history"
	"go.klb.dev/pastecopy/internal/httpapi"
	"go.klb.dev/pastecopy/internal/ipc"
	"go.klb.dev/pastecopy/internal/monitor"
	"go.klb.dev/pastecopy/internal/rpc"
	"go.klb.dev/pastecopy/internal/service"
	"go.klb.dev/pastecopy/internal/storage"
)

const (
	storeJSON   = "json"
	storeBadger = "badger"

	shutdownGrace = 3 * time.Second
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Watch the clipboard and serve the history",
		Long: `Starts the pastecopy daemon. It polls the system clipboard, records every
new text snippet in the history, and serves the history over a local socket
(gRPC for the pastecopy CLI, plain HTTP/JSON for scripts).

Config file search order:
  /etc/pastecopy/pastecopy.toml
  $HOME/.config/pastecopy/pastecopy.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → PASTECOPY_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("data-dir", "", "directory for history and settings (default: per-user app data dir)")
	f.String("store", storeJSON, "history storage: json|badger")
	f.Duration("poll-interval", monitor.DefaultInterval, "clipboard polling interval")
	f.Int("buffer", 16, "change events buffered between monitor and history")
	f.Bool("headless", false, "use an in-memory clipboard instead of the system one")
	addSocketFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(ctx context.Context, v *viper.Viper) error {
	setupLogging(v)
	if ctx == nil {
		ctx = context.Background()
	}

	dir := v.GetString("data-dir")
	if dir == "" {
		var err error
		if dir, err = storage.DefaultDir(); err != nil {
			return err
		}
	}
	kind := v.GetString("store")
	blobs, closeBlobs, err := openStorage(kind, dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBlobs(); err != nil {
			slog.Warn("closing storage", "err", err)
		}
	}()

	var backend clip.Backend
	if v.GetBool("headless") {
		backend = clip.NewMemory()
	} else {
		backend = clip.New()
	}
	defer backend.Close()

	interval := v.GetDuration("poll-interval")
	if interval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %s", interval)
	}

	store := history.Open(blobs)
	mon := monitor.New(backend, monitor.WithInterval(interval))
	svc := service.New(mon, store, service.WithBuffer(v.GetInt("buffer")))

	path := socketPath(v)
	ln, err := ipc.Listen(path)
	if err != nil {
		return err
	}

	slog.Info("pastecopy daemon starting",
		"version", Version,
		"data_dir", dir,
		"store", kind,
		"clipboard", backend.Name(),
		"interval", interval,
		"socket", path,
		"history", store.Stats(),
	)

	svc.Start()
	defer svc.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, ln, svc, kind)
}

// openStorage returns the blob store for kind rooted at dir, and a func that
// releases it.
func openStorage(kind, dir string) (storage.Adapter, func() error, error) {
	switch kind {
	case storeJSON, "":
		f, err := storage.NewFile(dir)
		if err != nil {
			return nil, nil, err
		}
		if !f.Exists(storage.HistoryBlob) {
			slog.Info("no history file yet, starting empty", "dir", dir)
		}
		return f, func() error { return nil }, nil
	case storeBadger:
		b, err := storage.OpenBadger(filepath.Join(dir, "badger"))
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want %s or %s)", kind, storeJSON, storeBadger)
	}
}

// serve splits ln between gRPC (HTTP/2) and the HTTP/1.1 JSON surface and
// blocks until ctx is cancelled or a listener fails.
func serve(ctx context.Context, ln net.Listener, svc *service.Service, storeName string) error {
	m := cmux.New(ln)
	// Clients send application/grpc+json, so match on the prefix.
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.HTTP1Fast())

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(rpc.LogUnary),
		grpc.ChainStreamInterceptor(rpc.LogStream),
	)
	rpc.Register(gs, rpc.NewServer(svc, Version, storeName))

	hs := &http.Server{
		Handler:           httpapi.Server{Service: svc, Version: Version, Store: storeName}.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 3)
	go func() { errc <- fmt.Errorf("grpc: %w", gs.Serve(grpcL)) }()
	go func() { errc <- fmt.Errorf("http: %w", hs.Serve(httpL)) }()
	go func() { errc <- fmt.Errorf("mux: %w", m.Serve()) }()

	var err error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-errc:
		slog.Error("listener failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if herr := hs.Shutdown(shutdownCtx); herr != nil && !errors.Is(herr, context.DeadlineExceeded) {
		slog.Warn("http shutdown", "err", herr)
	}

	// Watch streams only end when their clients go away, so graceful stop
	// gets a deadline.
	stopped := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		gs.Stop()
	}
	_ = ln.Close()
	return err
}
