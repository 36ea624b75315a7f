// Package agent runs one chat turn end to end: prompt, tool-calling
// runtime, block assembly and conversation history.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/common/observability"
	"swaad-chat/internal/history"
	"swaad-chat/internal/llm"
	"swaad-chat/internal/models"
)

const (
	authFallback    = "I'm having trouble connecting to my brain right now. Please check the API key configuration."
	genericFallback = "I hit a small snag processing your request. Could you try rephrasing? I'm here to help! 🍛"
)

// Runner executes the tool-calling loop for one turn.
type Runner interface {
	Run(ctx context.Context, req llm.Request) (*llm.Result, error)
}

type ChatRequest struct {
	Message   string            `json:"message"`
	SessionID string            `json:"sessionId"`
	Cart      []models.CartItem `json:"cart,omitempty"`
}

type ChatResponse struct {
	Blocks      []models.MessageBlock `json:"blocks"`
	TextContent string                `json:"textContent"`
}

type ServiceDependencies struct {
	Runner        Runner
	History       history.Store
	Toolbox       *Toolbox
	Assembler     *Assembler
	Observability *observability.Observability
	Logger        logger.Logger
}

type Service struct {
	runner    Runner
	history   history.Store
	toolbox   *Toolbox
	assembler *Assembler
	obs       *observability.Observability
	jsonUI    bool
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, enableJSONUI bool) *Service {
	return &Service{
		runner:    deps.Runner,
		history:   deps.History,
		toolbox:   deps.Toolbox,
		assembler: deps.Assembler,
		obs:       deps.Observability,
		jsonUI:    enableJSONUI,
		logger:    deps.Logger.WithFields(map[string]interface{}{"component": "agent"}),
	}
}

// Chat never fails. Runtime errors and panics become a single fallback
// text block.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (resp *ChatResponse) {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "agent.chat",
		attribute.String("session.id", req.SessionID),
		attribute.Int("cart.items", len(req.Cart)),
	)
	defer span.End()

	log := s.logger.WithFields(map[string]interface{}{"sessionId": req.SessionID})
	defer func() {
		if r := recover(); r != nil {
			err := errors.NewAgentInvocationFailedError(fmt.Errorf("panic: %v", r))
			span.RecordError(err)
			resp = s.fallback(ctx, log, err, start)
		}
	}()

	prior, err := s.history.Get(ctx, req.SessionID)
	if err != nil {
		log.Warn("history unavailable, continuing without it", map[string]interface{}{"error": err})
		prior = nil
	}

	result, err := s.runner.Run(ctx, llm.Request{
		SystemPrompt: BuildSystemPrompt(CartSummary(req.Cart)),
		History:      prior,
		Message:      req.Message,
		Tools:        s.toolbox.ForTurn(req.Cart),
	})
	if err != nil {
		span.RecordError(err)
		return s.fallback(ctx, log, err, start)
	}

	text, inline := ExtractInlineJSONUI(result.FinalText)
	blocks := s.assembler.Assemble(Turn{
		Transcript:       result.Transcript,
		FinalText:        text,
		UserMessage:      req.Message,
		Prior:            prior,
		Cart:             req.Cart,
		InlineCandidates: inline,
	}, Options{EnableJSONUI: s.jsonUI})

	if err := s.history.Append(ctx, req.SessionID,
		models.TranscriptMessage{Role: models.RoleUser, Content: req.Message},
		models.TranscriptMessage{Role: models.RoleAssistant, Content: text},
	); err != nil {
		log.Warn("history append failed", map[string]interface{}{"error": err})
	}

	s.record(ctx, "ok", start)
	log.Info("chat turn completed", map[string]interface{}{
		"blocks":     len(blocks),
		"toolSteps":  result.Steps,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return &ChatResponse{Blocks: blocks, TextContent: text}
}

func (s *Service) fallback(ctx context.Context, log logger.Logger, err error, start time.Time) *ChatResponse {
	stdErr := errors.AsStandardError(err)
	log.Error("agent invocation failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})

	text := genericFallback
	if stdErr.Code == errors.ErrCodeLLMAuthFailed {
		text = authFallback
	}
	s.record(ctx, "fallback", start)
	metrics.BlocksEmitted.WithLabelValues(string(models.BlockText)).Inc()
	return &ChatResponse{
		Blocks:      []models.MessageBlock{models.TextBlock{Content: text}},
		TextContent: text,
	}
}

func (s *Service) record(ctx context.Context, outcome string, start time.Time) {
	d := time.Since(start)
	metrics.ChatTurns.WithLabelValues(outcome).Inc()
	metrics.ChatTurnDuration.WithLabelValues(outcome).Observe(d.Seconds())
	s.obs.RecordTurn(ctx, outcome, d)
}

// Reset drops the stored conversation for a session.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	return s.history.Evict(ctx, sessionID)
}
