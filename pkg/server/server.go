package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/fleet-atlas/pkg/handlers/inventory"
	fleetmiddleware "github.com/de-tools/fleet-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Inventory handlers.Inventory
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	invHandler := handlers.NewHandler(config.Dependencies.Inventory)

	router := chi.NewRouter()

	router.Use(fleetmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", invHandler.GetStatus)
		r.Post("/refresh", invHandler.Refresh)
		r.Get("/summary", invHandler.GetSummary)
		r.Get("/instances", invHandler.ListInstances)
		r.Get("/reservations", invHandler.ListReservations)
		r.Get("/load-balancers", invHandler.ListLoadBalancers)
		r.Get("/load-balancers/{name}/instances", invHandler.GetLoadBalancerInstances)
		r.Get("/databases", invHandler.ListDatabases)
		r.Get("/volumes", invHandler.ListVolumes)
		r.Get("/caches", invHandler.ListCaches)
		r.Get("/subnets", invHandler.ListSubnets)
		r.Get("/domains", invHandler.ListDomainRecords)
		r.Get("/spot-requests", invHandler.ListSpotRequests)
		r.Get("/stacks", invHandler.ListStacks)
		r.Get("/advisories", invHandler.ListAdvisories)
		r.Get("/spend", invHandler.ListSpend)
		r.Get("/history", invHandler.GetHistory)
		r.Get("/ssh-config", invHandler.GetSSHConfig)
	})

	if config.Dependencies.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(config.Dependencies.Gatherer, promhttp.HandlerOpts{}))
	}

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until the listener fails or ctx is cancelled or the process
// receives SIGINT/SIGTERM, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
	case <-ctx.Done():
	}

	w.logger.Info().Msg("shutdown initiated")

	// Give outstanding requests a deadline for completion.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()

	err := w.server.Shutdown(shutdownCtx)
	if err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		err = w.server.Close()
	}

	return err
}
