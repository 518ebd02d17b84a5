// Hytale game-session server -- QUIC bring-up protocol implementation.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/grpchealth"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/hytale-oss/gameserver/internal/auth"
	"github.com/hytale-oss/gameserver/internal/auth/oauthflow"
	"github.com/hytale-oss/gameserver/internal/config"
	"github.com/hytale-oss/gameserver/internal/hytalesession"
	gameservermetrics "github.com/hytale-oss/gameserver/internal/metrics"
	"github.com/hytale-oss/gameserver/internal/packets"
	"github.com/hytale-oss/gameserver/internal/server"
	"github.com/hytale-oss/gameserver/internal/transport"
	appversion "github.com/hytale-oss/gameserver/internal/version"
)

// shutdownTimeout is the maximum time to wait for HTTP servers to drain
// active connections during graceful shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Parse flags.
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	// 2. Load config.
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("error", err.Error()),
		)
		return 1
	}

	// 3. Set up logger with dynamic level support for SIGHUP reload.
	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log, logLevel)

	logger.Info("gameserver starting",
		slog.String("version", appversion.Version),
		slog.String("quic_addr", cfg.QUIC.Addr),
		slog.String("grpc_addr", cfg.GRPC.Addr),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	// 4. Create Prometheus metrics collector.
	reg := prometheus.NewRegistry()
	collector := gameservermetrics.NewCollector(reg)

	// 5. Create session-service HTTP client and credential manager.
	authClient := hytalesession.NewClient(hytalesession.Config{
		SessionServiceURL: cfg.SessionService.BaseURL,
		AccountDataURL:    cfg.SessionService.AccountDataURL,
		OAuthBaseURL:      cfg.OAuth.BaseURL,
		ClientID:          cfg.OAuth.ClientID,
		Scopes:            cfg.OAuth.Scopes,
		HTTPClient:        &http.Client{Timeout: cfg.SessionService.Timeout},
	})
	credMgr := auth.NewManager(authClient, cfg.SessionService.Audience, logger, auth.WithMetrics(collector))

	// 6. Load TLS material and build the QUIC transport listener.
	listener, err := newTransportListener(cfg, authClient, credMgr, collector, logger)
	if err != nil {
		logger.Error("failed to start QUIC transport",
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer listener.Close()

	// 7. Run servers.
	if err := runServers(cfg, listener, authClient, credMgr, collector, reg, logger, *configPath, logLevel); err != nil {
		logger.Error("gameserver exited with error",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logger.Info("gameserver stopped")
	return 0
}

// newTransportListener loads the configured TLS certificate/key pair and
// the unsolicited WorldSettings asset list, then builds the QUIC
// transport.Listener.
func newTransportListener(
	cfg *config.Config,
	authClient *hytalesession.Client,
	credMgr *auth.Manager,
	collector *gameservermetrics.Collector,
	logger *slog.Logger,
) (*transport.Listener, error) {
	cert, err := tls.LoadX509KeyPair(cfg.QUIC.CertFile, cfg.QUIC.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load TLS key pair: %w", err)
	}

	requiredAssets := make([]packets.Asset, 0, len(cfg.World.RequiredAssetDigests))
	for _, digest := range cfg.World.RequiredAssetDigests {
		requiredAssets = append(requiredAssets, packets.Asset{Hash: digest})
	}

	listener, err := transport.New(transport.Config{
		Addr:           cfg.QUIC.Addr,
		TLSCert:        cert,
		Audience:       cfg.SessionService.Audience,
		WorldHeight:    cfg.World.Height,
		RequiredAssets: requiredAssets,
	}, packets.NewDefaultRegistry(), authClient, credMgr, collector, logger)
	if err != nil {
		return nil, fmt.Errorf("create transport listener: %w", err)
	}
	return listener, nil
}

// bootstrapCredentials acquires the server's initial OAuth bundle via the
// device-authorization flow and delivers it to credMgr, which derives a
// game session from it. Until this completes, every incoming connection
// is rejected at the AUTH step for lack of a session credential.
func bootstrapCredentials(
	ctx context.Context,
	cfg *config.Config,
	authClient *hytalesession.Client,
	credMgr *auth.Manager,
	collector *gameservermetrics.Collector,
	logger *slog.Logger,
) error {
	flowCfg := oauthflow.Config{
		Client:   authClient,
		ClientID: cfg.OAuth.ClientID,
		Scopes:   cfg.OAuth.Scopes,
	}

	start, err := oauthflow.StartDevice(ctx, flowCfg)
	if err != nil {
		collector.RecordOAuthAcquisition("failure")
		return fmt.Errorf("start device authorization: %w", err)
	}

	logger.Info("complete device authorization to activate this server",
		slog.String("verification_uri", start.VerificationURI),
		slog.String("user_code", start.UserCode),
	)

	bundle, err := oauthflow.PollDevice(ctx, flowCfg, start)
	if err != nil {
		collector.RecordOAuthAcquisition("failure")
		return fmt.Errorf("poll device authorization: %w", err)
	}

	if err := credMgr.Deliver(ctx, auth.Snapshot{OAuth: &bundle}); err != nil {
		collector.RecordOAuthAcquisition("failure")
		return fmt.Errorf("deliver oauth bundle: %w", err)
	}

	collector.RecordOAuthAcquisition("success")
	logger.Info("device authorization complete, credentials active")
	return nil
}

// runServers sets up and runs the QUIC accept loop, the gRPC control
// surface, and the metrics HTTP server using an errgroup with
// signal-aware context for graceful shutdown.
func runServers(
	cfg *config.Config,
	listener *transport.Listener,
	authClient *hytalesession.Client,
	credMgr *auth.Manager,
	collector *gameservermetrics.Collector,
	reg *prometheus.Registry,
	logger *slog.Logger,
	configPath string,
	logLevel *slog.LevelVar,
) error {
	metricsSrv := newMetricsServer(cfg.Metrics, reg)
	grpcSrv := newGRPCServer(cfg.GRPC, listener.Manager(), logger)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return credMgr.Run(gCtx)
	})

	g.Go(func() error {
		return bootstrapCredentials(gCtx, cfg, authClient, credMgr, collector, logger)
	})

	dispatchDone := make(chan struct{})
	g.Go(func() error {
		listener.Manager().RunDispatch(dispatchDone)
		return nil
	})

	g.Go(func() error {
		return listener.Run(gCtx)
	})

	startHTTPServers(gCtx, g, cfg, grpcSrv, metricsSrv, logger)
	startDaemonGoroutines(gCtx, g, configPath, logLevel, logger)

	notifyReady(logger)

	g.Go(func() error {
		<-gCtx.Done()
		defer close(dispatchDone)
		return gracefulShutdown(gCtx, logger, grpcSrv, metricsSrv)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run servers: %w", err)
	}
	return nil
}

// startHTTPServers registers the gRPC and metrics HTTP server goroutines.
func startHTTPServers(
	ctx context.Context,
	g *errgroup.Group,
	cfg *config.Config,
	grpcSrv *http.Server,
	metricsSrv *http.Server,
	logger *slog.Logger,
) {
	lc := net.ListenConfig{}

	g.Go(func() error {
		logger.Info("gRPC control surface listening", slog.String("addr", cfg.GRPC.Addr))
		return listenAndServe(ctx, &lc, grpcSrv, cfg.GRPC.Addr)
	})

	g.Go(func() error {
		logger.Info("metrics server listening",
			slog.String("addr", cfg.Metrics.Addr),
			slog.String("path", cfg.Metrics.Path),
		)
		return listenAndServe(ctx, &lc, metricsSrv, cfg.Metrics.Addr)
	})
}

// startDaemonGoroutines registers the watchdog and SIGHUP reload goroutines.
func startDaemonGoroutines(
	ctx context.Context,
	g *errgroup.Group,
	configPath string,
	logLevel *slog.LevelVar,
	logger *slog.Logger,
) {
	g.Go(func() error {
		return runWatchdog(ctx, logger)
	})

	sigHUP := make(chan os.Signal, 1)
	signal.Notify(sigHUP, syscall.SIGHUP)
	g.Go(func() error {
		defer signal.Stop(sigHUP)
		handleSIGHUP(ctx, sigHUP, configPath, logLevel, logger)
		return nil
	})
}

// -------------------------------------------------------------------------
// Systemd Integration — sd_notify + watchdog
// -------------------------------------------------------------------------

func notifyReady(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn("failed to notify systemd readiness", slog.String("error", err.Error()))
		return
	}
	if sent {
		logger.Info("notified systemd: READY")
	}
}

func notifyStopping(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		logger.Warn("failed to notify systemd stopping", slog.String("error", err.Error()))
		return
	}
	if sent {
		logger.Info("notified systemd: STOPPING")
	}
}

// runWatchdog sends periodic watchdog keepalives to systemd at half the
// configured interval. Exits immediately if no watchdog is configured.
func runWatchdog(ctx context.Context, logger *slog.Logger) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.Warn("failed to check systemd watchdog", slog.String("error", err.Error()))
		return nil
	}
	if interval == 0 {
		logger.Debug("systemd watchdog not configured, skipping keepalive")
		return nil
	}

	tickInterval := interval / 2
	logger.Info("systemd watchdog enabled",
		slog.Duration("watchdog_sec", interval),
		slog.Duration("keepalive_interval", tickInterval),
	)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, wdErr := daemon.SdNotify(false, daemon.SdNotifyWatchdog); wdErr != nil {
				logger.Warn("failed to send watchdog keepalive", slog.String("error", wdErr.Error()))
			}
		}
	}
}

// -------------------------------------------------------------------------
// SIGHUP Reload — log level only
// -------------------------------------------------------------------------

// handleSIGHUP listens for SIGHUP and reloads the dynamic log level.
// Blocks until the context is cancelled (graceful shutdown).
func handleSIGHUP(
	ctx context.Context,
	sigHUP <-chan os.Signal,
	configPath string,
	logLevel *slog.LevelVar,
	logger *slog.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigHUP:
			logger.Info("received SIGHUP, reloading configuration")
			reloadConfig(configPath, logLevel, logger)
		}
	}
}

// reloadConfig loads a fresh configuration and updates the dynamic log
// level. TLS material, world settings, and the QUIC listener address are
// not hot-reloadable and require a restart. Errors are logged but do not
// stop the daemon.
func reloadConfig(configPath string, logLevel *slog.LevelVar, logger *slog.Logger) {
	newCfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to reload configuration, keeping current settings",
			slog.String("error", err.Error()),
		)
		return
	}

	oldLevel := logLevel.Level()
	newLevel := config.ParseLogLevel(newCfg.Log.Level)
	logLevel.Set(newLevel)

	logger.Info("configuration reloaded",
		slog.String("old_log_level", oldLevel.String()),
		slog.String("new_log_level", newLevel.String()),
	)
}

// -------------------------------------------------------------------------
// Graceful Shutdown
// -------------------------------------------------------------------------

// gracefulShutdown performs an orderly shutdown: signals systemd, then
// shuts down the HTTP servers within shutdownTimeout. The QUIC listener
// itself is closed by the caller's deferred listener.Close.
func gracefulShutdown(
	ctx context.Context,
	logger *slog.Logger,
	servers ...*http.Server,
) error {
	logger.Info("initiating graceful shutdown")
	notifyStopping(logger)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown server: %w", err))
		}
	}
	return shutdownErr
}

// -------------------------------------------------------------------------
// Server Setup
// -------------------------------------------------------------------------

func listenAndServe(ctx context.Context, lc *net.ListenConfig, srv *http.Server, addr string) error {
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// newGRPCServer creates an HTTP server for the ConnectRPC control surface.
// The handler is wrapped with h2c to support HTTP/2 without TLS for
// plaintext gRPC clients (e.g., gameserverctl). Includes standard gRPC
// health checking (grpc.health.v1).
func newGRPCServer(cfg config.GRPCConfig, mgr *transport.Manager, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	path, handler := server.New(mgr, logger,
		server.LoggingInterceptorOption(logger),
		server.RecoveryInterceptorOption(logger),
	)
	mux.Handle(path, handler)

	checker := grpchealth.NewStaticChecker(
		grpchealth.HealthV1ServiceName,
		"hytale.gameserver.v1.GameSessionService",
	)
	mux.Handle(grpchealth.NewHandler(checker))

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func newLoggerWithLevel(cfg config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
