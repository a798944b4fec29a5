package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/refdocs/internal/api"
	"github.com/dgallion1/refdocs/internal/blobstore"
	"github.com/dgallion1/refdocs/internal/config"
	"github.com/dgallion1/refdocs/internal/docstore"
	"github.com/dgallion1/refdocs/internal/lookup"
	"github.com/dgallion1/refdocs/internal/metrics"
	"github.com/dgallion1/refdocs/internal/parser"
	"github.com/dgallion1/refdocs/internal/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/netutil"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	// Initialize metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Initialize the document store.
	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Error("open document store", "error", err)
		os.Exit(1)
	}

	svc := lookup.NewService(store, log, m, lookup.Config{
		MaxChars: cfg.MaxSectionChars,
		Parse:    parser.Options{IgnoreFencedCode: cfg.IgnoreFencedCode},
	})
	rpcServer := rpc.NewServer(svc, rpc.DefaultServerInfo, log, m)

	// Initialize HTTP server.
	srv := api.NewServer(rpcServer, reg, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.StoreTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("listen", "addr", httpServer.Addr, "error", err)
		os.Exit(1)
	}
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting refdocs",
		"port", cfg.Port,
		"max_connections", cfg.MaxConnections,
		"function_key", cfg.FunctionKey != "",
	)
	err = serve(ctx, httpServer, ln, log)
	closeStore()
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// serve runs httpServer on ln until ctx is cancelled, then waits for
// in-flight requests to drain for up to shutdownTimeout.
func serve(ctx context.Context, httpServer *http.Server, ln net.Listener, log *slog.Logger) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		shutdownErr <- httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}

// openStore picks the filesystem store when DOCS_DIR is set and Azure
// Blob Storage otherwise.
func openStore(cfg config.Config, log *slog.Logger) (docstore.Store, func(), error) {
	if cfg.DocsDir != "" {
		log.Info("using filesystem store", "dir", cfg.DocsDir)
		return docstore.NewDir(cfg.DocsDir, cfg.MaxDocumentBytes), func() {}, nil
	}

	client, err := blobstore.NewClient(cfg.ConnectionString, blobstore.Options{
		Container:   cfg.Container,
		Timeout:     cfg.StoreTimeout,
		MaxBytes:    cfg.MaxDocumentBytes,
		MaxAttempts: cfg.StoreMaxAttempts,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("using blob store", "container", cfg.Container)
	return client, client.Close, nil
}
