package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/handler"
	"github.com/gfreitas15/delivery-api-gfreitas15/pkg/health"
	"github.com/gfreitas15/delivery-api-gfreitas15/pkg/httpmiddleware"
)

// ServiceName identifies the API in traces and metrics.
const ServiceName = "delivery-api"

// Run opens the store, serves the API and shuts down gracefully once ctx is
// done: readiness drops first, then in-flight requests drain.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store.Driver),
	)

	store, err := OpenStore(ctx, lg, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck(cfg.Store.Driver, 5*time.Second, health.PingCheck(cfg.Store.Driver, store.Pinger))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc", time.Second, health.GCMaxPauseCheck(time.Second))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	apiHandler, err := NewHTTPHandler(ctx, cfg, store.Services(cfg.Orders), healthSvc, m)
	if err != nil {
		return err
	}
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           apiHandler,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// NewHTTPHandler mounts the probes and the REST API on one mux behind the
// middleware chain. The chain reads its logger from ctx.
func NewHTTPHandler(
	ctx context.Context,
	cfg *Config,
	svc handler.Services,
	hs *health.Health,
	tel httpmiddleware.Telemetry,
) (http.Handler, error) {
	h, err := handler.NewHandler(svc, tel.MeterProvider().Meter(ServiceName))
	if err != nil {
		return nil, errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", hs.LiveEndpoint)
	mux.HandleFunc("GET /readyz", hs.ReadyEndpoint)
	h.Register(mux)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	return httpmiddleware.Wrap(mux,
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"Location", "X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:      cfg.RateLimit.Max,
			Window:   cfg.RateLimit.Window,
			WriteMax: cfg.RateLimit.WriteMax,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.Instrument(ServiceName, routeFinder, tel),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.Labeler(routeFinder),
	), nil
}
