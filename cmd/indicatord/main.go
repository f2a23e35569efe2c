package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedkhairy/ta-engine/internal/config"
	"github.com/mohamedkhairy/ta-engine/internal/engine"
	"github.com/mohamedkhairy/ta-engine/internal/pubsub"
	"github.com/mohamedkhairy/ta-engine/pkg/indicator"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting indicator service",
		logger.Int("health_port", cfg.Service.HealthCheckPort),
		logger.String("bar_stream", cfg.Service.BarStream),
		logger.String("consumer_group", cfg.Service.ConsumerGroup),
	)

	redisClient, err := pubsub.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to initialize Redis client", logger.ErrorField(err))
	}
	defer redisClient.Close()

	registry := indicator.NewRegistry()
	if err := engine.RegisterDefaults(registry, cfg.Indicators); err != nil {
		logger.Fatal("Failed to register indicators", logger.ErrorField(err))
	}
	logger.Info("Registered indicators", logger.Int("count", len(registry.List())))

	eng := engine.New(engine.Config{MaxBars: cfg.Indicators.MaxBars}, registry)

	publisher := engine.NewPublisher(redisClient, engine.PublisherConfig{
		SnapshotPrefix: cfg.Service.SnapshotPrefix,
		SnapshotTTL:    cfg.Service.SnapshotTTL,
		UpdateChannel:  cfg.Service.UpdateChannel,
	})

	eng.SetOnSnapshot(func(symbol string, values map[string]float64) {
		if err := publisher.PublishSnapshot(context.Background(), symbol, values); err != nil {
			logger.Error("Failed to publish snapshot",
				logger.String("symbol", symbol),
				logger.ErrorField(err),
			)
		}
	})

	consumer := engine.NewBarConsumer(redisClient, engine.ConsumerConfig{
		Stream:        cfg.Service.BarStream,
		ConsumerGroup: cfg.Service.ConsumerGroup,
		ConsumerName:  fmt.Sprintf("indicatord-%d", os.Getpid()),
	})
	consumer.SetProcessor(eng)

	if err := consumer.Start(); err != nil {
		logger.Fatal("Failed to start bar consumer", logger.ErrorField(err))
	}
	defer consumer.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Service.HealthCheckPort),
		Handler:      newRouter(redisClient, eng, consumer),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting health and metrics server",
			logger.Int("port", cfg.Service.HealthCheckPort),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health and metrics server failed", logger.ErrorField(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down indicator service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", logger.ErrorField(err))
	}

	logger.Info("Indicator service stopped")
}

func newRouter(redisClient *pubsub.Client, eng *engine.Engine, consumer *engine.BarConsumer) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if !consumer.IsRunning() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "consumer stopped"})
			return
		}
		if err := redisClient.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "redis unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/indicators/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		symbol := mux.Vars(r)["symbol"]
		values, err := eng.Snapshot(symbol)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"symbol": symbol,
			"values": values,
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/indicators", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"symbols": eng.Symbols(),
		})
	}).Methods(http.MethodGet)

	return router
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
