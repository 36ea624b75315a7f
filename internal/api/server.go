// Package api exposes the chat agent, menu, JSON-UI tooling and checkout
// over HTTP and a chat websocket.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"swaad-chat/internal/agent"
	"swaad-chat/internal/common/config"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/observability"
	"swaad-chat/internal/jsonui"
	"swaad-chat/internal/menu"
	"swaad-chat/internal/models"
	"swaad-chat/internal/orders"
	"swaad-chat/internal/ratelimit"
)

type ChatService interface {
	Chat(ctx context.Context, req agent.ChatRequest) *agent.ChatResponse
	Reset(ctx context.Context, sessionID string) error
}

type MenuService interface {
	All() []models.FoodItem
	Get(id int) (models.FoodItem, error)
	Categories() []string
	Search(ctx context.Context, f menu.Filters) []models.FoodItem
}

type OrderService interface {
	Place(ctx context.Context, req orders.PlaceOrderRequest) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
}

// Checker is anything /ready should ping, such as a database client.
type Checker interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Chat          ChatService
	Menu          MenuService
	Orders        OrderService
	Limiter       ratelimit.Limiter
	Validator     *jsonui.Validator
	Renderer      *jsonui.Renderer
	Actions       *jsonui.ActionDispatcher
	Checkers      map[string]Checker
	Observability *observability.Observability
	Logger        logger.Logger
}

type Server struct {
	deps   Dependencies
	app    config.AppConfig
	cfg    config.ServerConfig
	logger logger.Logger
}

func NewServer(deps Dependencies, app config.AppConfig, cfg config.ServerConfig) *Server {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.Unlimited{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	return &Server{
		deps:   deps,
		app:    app,
		cfg:    cfg,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(s.tracing)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws/chat", s.handleChatSocket)

	r.Route("/api", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", s.handleChat)
			r.Get("/", s.methodNotAllowed("POST"))
			r.Put("/", s.methodNotAllowed("POST"))
			r.Delete("/{sessionId}", s.handleResetSession)
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", s.handleListMenu)
			r.Get("/categories", s.handleCategories)
			r.Get("/{id}", s.handleGetFood)
		})

		r.Route("/json-ui", func(r chi.Router) {
			r.Post("/validate", s.handleValidateUI)
			r.Post("/render", s.handleRenderUI)
			r.Post("/actions", s.handleUIAction)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.handlePlaceOrder)
			r.Get("/{id}", s.handleGetOrder)
		})
	})

	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.AllowedOrigins
}

// Run serves until ctx is cancelled, then drains in-flight requests for
// up to the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Router(),
		ReadTimeout:  config.GetDuration(s.cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{"address": s.cfg.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := config.GetDuration(s.cfg.ShutdownTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("http server shutting down", map[string]interface{}{"timeout": timeout.String()})
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
