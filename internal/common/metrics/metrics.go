package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total number of chat turns handled",
		},
		[]string{"outcome"},
	)

	ChatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_turn_duration_seconds",
			Help:    "Duration of a chat turn including the agent call",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"outcome"},
	)

	BlocksEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_blocks_emitted_total",
			Help: "Response blocks emitted by type",
		},
		[]string{"type"},
	)

	JSONUIValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "json_ui_validations_total",
			Help: "JSON UI payload validations by result and source channel",
		},
		[]string{"result", "source"},
	)

	PolicyTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "json_ui_policy_triggers_total",
			Help: "Policy-forced JSON UI payloads by rule",
		},
		[]string{"rule"},
	)

	ActionDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "json_ui_action_dispatches_total",
			Help: "cta_button actions by outcome",
		},
		[]string{"action", "outcome"},
	)

	RenderFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "json_ui_render_fallbacks_total",
			Help: "Render passes replaced by the inert fallback node",
		},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_calls_total",
			Help: "Agent tool invocations by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	OrdersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_notifications_total",
			Help: "Order confirmation deliveries by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Jobs currently being handled by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
