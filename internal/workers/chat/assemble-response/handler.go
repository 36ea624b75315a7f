// Package assembleresponse turns an agent transcript handed over by a BPMN
// process into the typed blocks the chat UI renders.
package assembleresponse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"swaad-chat/internal/agent"
	"swaad-chat/internal/common/camunda"
	"swaad-chat/internal/common/config"
	"swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/common/validation"
)

const TaskType = "chat.response.assemble"

// ConfigKey names this worker under workers: in the config file.
const ConfigKey = "assemble-response"

type Handler struct {
	config    *Config
	assembler *agent.Assembler
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Assembler    *agent.Assembler
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Assembler == nil {
		return nil, fmt.Errorf("%s needs an assembler", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:    cfg,
		assembler: opts.Assembler,
		errors:    errors.NewErrorHandler(log),
		logger:    log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output := h.Execute(ctx, input)
	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewInputValidationError(result.GetErrorMessages())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

// Execute never fails; the assembler degrades to a fallback text block.
func (h *Handler) Execute(_ context.Context, input *Input) *Output {
	enableJSONUI := h.config.EnableJSONUI
	if input.EnableJSONUI != nil {
		enableJSONUI = enableJSONUI && *input.EnableJSONUI
	}

	text, inline := agent.ExtractInlineJSONUI(input.FinalText)
	blocks := h.assembler.Assemble(agent.Turn{
		Transcript:       input.Transcript,
		FinalText:        text,
		UserMessage:      input.UserMessage,
		Prior:            input.Prior,
		Cart:             input.Cart,
		InlineCandidates: inline,
	}, agent.Options{EnableJSONUI: enableJSONUI})

	types := make([]string, len(blocks))
	for i, b := range blocks {
		types[i] = string(b.BlockType())
	}

	h.logger.Info("response assembled", map[string]interface{}{
		"sessionId": input.SessionID,
		"blocks":    types,
	})
	return &Output{Blocks: blocks, TextContent: text, BlockTypes: types}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, stdErr)
}

// Register opens the job worker. Disabled workers return nil.
func (h *Handler) Register(client zbc.Client) *camunda.Worker {
	if !h.config.Enabled {
		h.logger.Info("worker is disabled, skipping registration", nil)
		return nil
	}
	return camunda.NewWorker(client, camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
	}, h, h.logger)
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}
