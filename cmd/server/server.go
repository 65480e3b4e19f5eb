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
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/handlers/superpet/v1alpha1"
	"github.com/superpet/superpet-api/internal/handlers/ws"
	"github.com/superpet/superpet-api/internal/repositories/storage"
)

var (
	grpcPort       int
	wsPort         int
	storageBackend string
	redisAddr      string
	sqlitePath     string
	storageVersion string
	syncURL        string
	saveDelay      time.Duration
	tickInterval   time.Duration
	seed           uint64
	logLevel       string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the game server",
	Long:  `Start the superpet gRPC server and the websocket battle feed.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 50051, "gRPC server port")
	serverCmd.Flags().IntVar(&wsPort, "ws-port", 8080, "websocket battle feed port (0 disables)")
	serverCmd.Flags().StringVar(&storageBackend, "storage", storageMemory, "save storage backend: memory, redis or sqlite")
	serverCmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "redis address for --storage=redis")
	serverCmd.Flags().StringVar(&sqlitePath, "sqlite-path", "data/superpet.db", "database file for --storage=sqlite")
	serverCmd.Flags().StringVar(&storageVersion, "storage-version", storage.DefaultVersion, "save key version prefix")
	serverCmd.Flags().StringVar(&syncURL, "sync-url", "", "cloud save API base URL (empty disables cloud sync)")
	serverCmd.Flags().DurationVar(&saveDelay, "save-delay", cloudsync.DefaultSaveDelay, "debounce delay for cloud saves")
	serverCmd.Flags().DurationVar(&tickInterval, "tick-interval", time.Second, "battle feed round interval")
	serverCmd.Flags().Uint64Var(&seed, "seed", 0, "deterministic random seed (0 uses dice rolls)")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

func setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func runServer(_ *cobra.Command, _ []string) error {
	if err := setupLogging(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	game, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer game.Close()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	v1alpha1.RegisterGameServer(srv, game.handler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 2)
	go func() {
		slog.Info("gRPC server starting", "port", grpcPort, "storage", storageBackend)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	var (
		httpSrv *http.Server
		feed    *ws.Handler
	)
	if wsPort > 0 {
		hub := ws.NewHub()
		go hub.Run(ctx)

		feed, err = ws.NewHandler(&ws.Config{
			BattleService: game.battles,
			Hub:           hub,
			Interval:      tickInterval,
		})
		if err != nil {
			srv.Stop()
			return fmt.Errorf("failed to create battle feed: %w", err)
		}

		mux := http.NewServeMux()
		mux.Handle("/ws", feed)
		httpSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", wsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("battle feed starting", "port", wsPort)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("failed to serve battle feed: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errChan:
	}

	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("battle feed shutdown failed", "error", err)
		}
		feed.Close()
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.Warn("graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		slog.Info("server stopped gracefully")
	}

	return serveErr
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}
