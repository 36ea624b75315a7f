package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swaad-chat/internal/api"
	"swaad-chat/internal/common/camunda"
	"swaad-chat/internal/common/config"
	"swaad-chat/internal/orders"
	assembleresponse "swaad-chat/internal/workers/chat/assemble-response"
	placeorder "swaad-chat/internal/workers/orders/place-order"
	sendorderconfirmation "swaad-chat/internal/workers/orders/send-order-confirmation"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Zeebe workers for response assembly, order placement and confirmations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Camunda.Enabled {
			return fmt.Errorf("camunda.enabled is false; nothing to run")
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return runWorkers(ctx, cfg)
	},
}

// registrar is implemented by every job handler.
type registrar interface {
	Register(client zbc.Client) *camunda.Worker
	GetTaskType() string
}

func runWorkers(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	a.zap.Info("Starting worker manager...")

	var zeebe *camunda.Client
	err = retryWithBackoff(ctx, func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		}, a.log)
		return err
	}, connectRetries, connectRetryDelay, a.zap, "Zeebe client initialization")
	if err != nil {
		a.zap.Error("zeebe client failed after retries", zap.Error(err))
		return err
	}
	defer func() {
		if err := zeebe.Close(); err != nil {
			a.zap.Error("Error closing Zeebe client", zap.Error(err))
		}
	}()
	a.zap.Info("Zeebe client connected successfully")

	handlers, err := a.buildHandlers(ctx)
	if err != nil {
		return err
	}

	var workers []*camunda.Worker
	for _, h := range handlers {
		if w := h.Register(zeebe.GetClient()); w != nil {
			workers = append(workers, w)
		}
	}
	a.zap.Info("workers registered", zap.Int("count", len(workers)))

	checkers := a.checkers()
	checkers["zeebe"] = zeebe
	healthServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: healthRouter(checkers),
	}
	go func() {
		a.zap.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.zap.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	a.zap.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		a.zap.Error("Error stopping Health/Metrics server", zap.Error(err))
	}

	a.zap.Info("Worker manager stopped gracefully")
	return nil
}

// buildHandlers wires the three job handlers. Order placement runs without
// a notifier here because the confirmation is its own task.
func (a *app) buildHandlers(ctx context.Context) ([]registrar, error) {
	assembler, _, err := a.buildAssembler()
	if err != nil {
		return nil, err
	}
	notifier, err := a.buildNotifier(ctx)
	if err != nil {
		return nil, err
	}
	orderService := orders.NewService(orders.ServiceDependencies{
		Repository: a.orderRepository(),
		Logger:     a.log,
	})

	assemble, err := assembleresponse.NewHandler(assembleresponse.HandlerOptions{
		AppConfig: a.cfg,
		Assembler: assembler,
		Logger:    a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s handler: %w", assembleresponse.TaskType, err)
	}

	place, err := placeorder.NewHandler(placeorder.HandlerOptions{
		AppConfig: a.cfg,
		Orders:    orderService,
		Logger:    a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s handler: %w", placeorder.TaskType, err)
	}

	confirm, err := sendorderconfirmation.NewHandler(sendorderconfirmation.HandlerOptions{
		AppConfig: a.cfg,
		Orders:    orderService,
		Notifier:  notifier,
		Logger:    a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s handler: %w", sendorderconfirmation.TaskType, err)
	}

	return []registrar{assemble, place, confirm}, nil
}

func healthRouter(checkers map[string]api.Checker) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		deps := map[string]string{}
		for name, c := range checkers {
			if err := c.Ping(ctx); err != nil {
				deps[name] = err.Error()
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}
		writeHealth(w, code, map[string]interface{}{
			"status":       status,
			"dependencies": deps,
			"time":         time.Now().Format(time.RFC3339),
		})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
