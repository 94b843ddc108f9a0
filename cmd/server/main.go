package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-dynamics/internal/api"
	"flight-dynamics/internal/config"
	"flight-dynamics/internal/engine"
	"flight-dynamics/internal/logging"
)

var (
	configDir = flag.String("config", ".", "Directory holding "+config.ConfigName+".{json,yaml}")
	port      = flag.Int("port", 0, "Port to listen on (overrides server.port)")
)

func main() {
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stderr, config.GetString("logLevel"), config.GetBool("logPretty"))

	setup, err := config.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("building simulation")
	}

	simEngine, err := engine.New(setup, log)
	if err != nil {
		log.Fatal().Err(err).Msg("creating engine")
	}

	listenPort := config.GetServerConfig().Port
	if *port > 0 {
		listenPort = *port
	}

	server := api.NewServer(simEngine, log)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", listenPort),
		Handler: server.Handler(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := simEngine.Run(ctx); err != nil {
			log.Error().Err(err).Msg("simulation error")
		}
	}()

	go func() {
		log.Info().Int("port", listenPort).Str("vehicle", setup.Simulation.Vehicle().Name).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")

	// stop the engine first so open streams see their channels close
	cancel()
	<-engineDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
