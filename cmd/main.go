package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thermostat_gateway/internal/api"
	"thermostat_gateway/internal/config"
	"thermostat_gateway/internal/handlers"
	"thermostat_gateway/internal/logger"
	"thermostat_gateway/internal/server"
	"thermostat_gateway/internal/service"
	"thermostat_gateway/internal/weather"
)

func main() {
	// load config.yml first so the logger level can follow it
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	// wire dependencies
	client := api.New(cfg.APIBaseURL, cfg.APIKey, cfg.RequestTimeout)
	enricher := weather.NewEnricher(
		weather.NewZippopotamClient(cfg.GeocodeURL),
		weather.NewOpenMeteoClient(cfg.ForecastURL),
		logger.Named("weather"),
	)
	services := service.NewService(client, enricher, logger.Named("registry"))
	apiHandler := handlers.NewHandler(services, logger.Named("http"), cfg.LocalToken)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the device poller
	go services.Poller.Run(ctx, cfg.PollInterval)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down gateway...")

	// stop the poller
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
