// Package llm runs the tool-calling loop against an OpenAI-compatible chat
// completions endpoint and returns the turn's transcript.
package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"swaad-chat/internal/common/config"
	"swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/models"
)

// ToolDefinition describes one callable tool. Parameters is a JSON schema.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolExecutor runs the tools the model asks for. Execute returns the
// JSON-encoded tool result that goes back to the model.
type ToolExecutor interface {
	Definitions() []ToolDefinition
	Execute(ctx context.Context, name, arguments string) (string, error)
}

type Request struct {
	SystemPrompt string
	History      []models.TranscriptMessage
	Message      string
	Tools        ToolExecutor
}

// Result holds the messages produced during the turn, excluding the
// system prompt, history and the user message itself.
type Result struct {
	Transcript []models.TranscriptMessage
	FinalText  string
	Steps      int
}

type Runtime struct {
	client  *openai.Client
	cfg     config.AgentConfig
	clipper *Clipper
	logger  logger.Logger
}

// NewRuntime builds a runtime. httpClient may be nil to use the library
// default.
func NewRuntime(cfg config.AgentConfig, httpClient openai.HTTPDoer, log logger.Logger) *Runtime {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}

	log = log.WithFields(map[string]interface{}{"component": "llm", "model": cfg.Model})
	return &Runtime{
		client:  openai.NewClientWithConfig(clientCfg),
		cfg:     cfg,
		clipper: NewClipper(cfg.Model, log),
		logger:  log,
	}
}

// WithClipper replaces the prompt clipper.
func (r *Runtime) WithClipper(c *Clipper) *Runtime {
	r.clipper = c
	return r
}

// Run drives the model until it answers without tool calls or the step
// budget runs out.
func (r *Runtime) Run(ctx context.Context, req Request) (*Result, error) {
	if r.cfg.APIKey == "" {
		return nil, errors.NewLLMAuthFailedError(stderrors.New("API_KEY is not set"))
	}

	timeout := config.GetDuration(r.cfg.Timeout)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	messages := r.buildMessages(req)
	tools := toOpenAITools(req.Tools)

	maxSteps := r.cfg.MaxToolSteps
	if maxSteps <= 0 {
		maxSteps = 1
	}

	result := &Result{}
	for step := 1; step <= maxSteps; step++ {
		result.Steps = step

		chatReq := openai.ChatCompletionRequest{
			Model:       r.cfg.Model,
			Messages:    messages,
			Temperature: r.cfg.Temperature,
			MaxTokens:   r.cfg.MaxTokens,
		}
		if len(tools) > 0 {
			chatReq.Tools = tools
		}

		start := time.Now()
		resp, err := r.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return nil, r.mapError(ctx, err, timeout)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.NewAgentInvocationFailedError(stderrors.New("model returned no choices"))
		}

		msg := resp.Choices[0].Message
		r.logger.Debug("model step completed", map[string]interface{}{
			"step":         step,
			"toolCalls":    len(msg.ToolCalls),
			"finishReason": string(resp.Choices[0].FinishReason),
			"durationMs":   time.Since(start).Milliseconds(),
			"totalTokens":  resp.Usage.TotalTokens,
		})

		if len(msg.ToolCalls) == 0 {
			result.FinalText = msg.Content
			result.Transcript = append(result.Transcript, models.TranscriptMessage{
				Role:    models.RoleAssistant,
				Content: msg.Content,
			})
			return result, nil
		}

		messages = append(messages, msg)
		if strings.TrimSpace(msg.Content) != "" {
			result.Transcript = append(result.Transcript, models.TranscriptMessage{
				Role:    models.RoleAssistant,
				Content: msg.Content,
			})
		}

		for _, call := range msg.ToolCalls {
			content := r.executeTool(ctx, req.Tools, call)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
			result.Transcript = append(result.Transcript, models.TranscriptMessage{
				Role:       models.RoleTool,
				Content:    content,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}

	r.logger.Warn("tool step budget exhausted", map[string]interface{}{
		"maxToolSteps": maxSteps,
	})
	return result, nil
}

func (r *Runtime) executeTool(ctx context.Context, tools ToolExecutor, call openai.ToolCall) string {
	name := call.Function.Name
	if tools == nil {
		metrics.ToolCalls.WithLabelValues(name, "unavailable").Inc()
		return toolError(fmt.Sprintf("tool %s is not available", name))
	}

	out, err := tools.Execute(ctx, name, call.Function.Arguments)
	if err != nil {
		metrics.ToolCalls.WithLabelValues(name, "error").Inc()
		r.logger.Warn("tool call failed", map[string]interface{}{
			"tool":  name,
			"error": err,
		})
		return toolError(err.Error())
	}
	metrics.ToolCalls.WithLabelValues(name, "ok").Inc()
	return out
}

func toolError(msg string) string {
	data, _ := json.Marshal(models.ToolEnvelope{
		Kind:    models.ToolKindError,
		Success: models.Bool(false),
		Error:   msg,
	})
	return string(data)
}

func (r *Runtime) buildMessages(req Request) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		} else if m.Role != models.RoleUser {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	if r.clipper != nil && r.cfg.MaxPromptTokens > 0 {
		return r.clipper.Clip(messages, r.cfg.MaxPromptTokens, r.cfg.MaxTokens)
	}
	return messages
}

func toOpenAITools(exec ToolExecutor) []openai.Tool {
	if exec == nil {
		return nil
	}
	defs := exec.Definitions()
	tools := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		params := d.Parameters
		if params == nil {
			params = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}

func (r *Runtime) mapError(ctx context.Context, err error, timeout time.Duration) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewLLMTimeoutError(timeout)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case stderrors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case stderrors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return errors.NewLLMAuthFailedError(err)
	}
	return errors.NewAgentInvocationFailedError(err)
}
