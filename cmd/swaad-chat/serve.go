package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swaad-chat/internal/agent"
	"swaad-chat/internal/api"
	"swaad-chat/internal/common/config"
	commonhttp "swaad-chat/internal/common/http"
	"swaad-chat/internal/jsonui"
	"swaad-chat/internal/llm"
	"swaad-chat/internal/orders"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat, menu, JSON-UI and order API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return runServe(ctx, cfg)
	},
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	a.zap.Info("Starting chat server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	server, err := a.buildServer(ctx)
	if err != nil {
		a.zap.Error("server wiring failed", zap.Error(err))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	for _, run := range a.background {
		run := run
		g.Go(func() error {
			return run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		a.zap.Error("server stopped with error", zap.Error(err))
		return err
	}
	a.zap.Info("Chat server stopped gracefully")
	return nil
}

// buildServer assembles the chat pipeline and every API dependency.
func (a *app) buildServer(ctx context.Context) (*api.Server, error) {
	cfg := a.cfg

	menuService, err := a.buildMenu(ctx)
	if err != nil {
		return nil, err
	}

	assembler, validator, err := a.buildAssembler()
	if err != nil {
		return nil, err
	}

	httpClient := commonhttp.NewClient(config.GetDuration(cfg.Agent.Timeout), a.log)
	runtime := llm.NewRuntime(cfg.Agent, httpClient, a.log)
	if cfg.Agent.MaxPromptTokens > 0 {
		runtime = runtime.WithClipper(llm.NewClipper(cfg.Agent.Model, a.log))
	}

	chat := agent.NewService(agent.ServiceDependencies{
		Runner:        runtime,
		History:       a.buildHistory(),
		Toolbox:       agent.NewToolbox(menuService, cfg.Menu.MaxResults),
		Assembler:     assembler,
		Observability: a.obs,
		Logger:        a.log,
	}, cfg.JSONUI.Enabled)

	notifier, err := a.buildNotifier(ctx)
	if err != nil {
		return nil, err
	}
	orderService := orders.NewService(orders.ServiceDependencies{
		Repository: a.orderRepository(),
		Notifier:   notifier,
		Logger:     a.log,
	})

	actions := jsonui.NewActionDispatcher(cfg.JSONUI.Categories, a.log)

	return api.NewServer(api.Dependencies{
		Chat:          chat,
		Menu:          menuService,
		Orders:        orderService,
		Limiter:       a.buildLimiter(),
		Validator:     validator,
		Renderer:      jsonui.NewRenderer(nil, actions, a.log),
		Actions:       actions,
		Checkers:      a.checkers(),
		Observability: a.obs,
		Logger:        a.log,
	}, cfg.App, cfg.Server), nil
}
