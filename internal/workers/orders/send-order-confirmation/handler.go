// Package sendorderconfirmation emails and texts the customer once a
// process has placed their order.
package sendorderconfirmation

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"swaad-chat/internal/common/camunda"
	"swaad-chat/internal/common/config"
	"swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/common/validation"
	"swaad-chat/internal/orders"
)

const TaskType = "order.confirmation.send"

// ConfigKey names this worker under workers: in the config file.
const ConfigKey = "send-order-confirmation"

type Handler struct {
	config   *Config
	orders   OrderReader
	notifier orders.Notifier
	errors   *errors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Orders       OrderReader
	Notifier     orders.Notifier
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Orders == nil || opts.Notifier == nil {
		return nil, fmt.Errorf("%s needs an order reader and a notifier", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:   cfg,
		orders:   opts.Orders,
		notifier: opts.Notifier,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"retries":            job.GetRetries(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

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
	return &Input{OrderID: variables["orderId"].(string)}, nil
}

// Execute sends the confirmation. Delivery failures come back retryable so
// the engine re-runs the job with its remaining retries.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	order, err := h.orders.Get(ctx, input.OrderID)
	if stderrors.Is(err, orders.ErrOrderNotFound) {
		return nil, errors.NewOrderNotFoundError(input.OrderID)
	}
	if err != nil {
		return nil, errors.NewDatabaseQueryFailedError(err)
	}

	if err := h.notifier.OrderConfirmed(ctx, order); err != nil {
		return nil, err
	}

	return &Output{
		OrderID:          order.ID,
		ConfirmationSent: true,
		SentAt:           h.now().Format(time.RFC3339),
	}, nil
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
			"jobKey":  job.GetKey(),
			"orderId": output.OrderID,
			"error":   err.Error(),
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
