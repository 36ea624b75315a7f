package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{err: "rpc error: code = Unavailable desc = connection refused", want: true},
		{err: "context deadline exceeded", want: true},
		{err: "write: broken pipe", want: true},
		{err: "rpc error: code = NotFound desc = job not found", want: false},
		{err: "permission denied", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name     string
		err      string
		wantCode apperrors.ErrorCode
	}{
		{name: "timeout", err: "context deadline exceeded", wantCode: apperrors.ErrCodeWorkflowTimeout},
		{name: "unavailable", err: "connection refused", wantCode: apperrors.ErrCodeWorkflowUnavailable},
		{name: "rejected", err: "job 42 not found", wantCode: apperrors.ErrCodeWorkflowRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapZeebeError(errors.New(tt.err), "complete-job", 0)
			assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("recovers from transient errors", func(t *testing.T) {
		calls := 0
		err := executeWithRetry(context.Background(), fastRetry, logger.NewTestLogger(t), "publish", func(context.Context) error {
			calls++
			if calls < 2 {
				return errors.New("unavailable")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := executeWithRetry(context.Background(), fastRetry, logger.NewTestLogger(t), "publish", func(context.Context) error {
			calls++
			return errors.New("connection reset by peer")
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		stdErr := apperrors.AsStandardError(err)
		assert.Equal(t, apperrors.ErrCodeWorkflowUnavailable, stdErr.Code)
		assert.Contains(t, stdErr.Details, "after 3 attempts")
	})

	t.Run("does not retry rejections", func(t *testing.T) {
		calls := 0
		err := executeWithRetry(context.Background(), fastRetry, logger.NewTestLogger(t), "publish", func(context.Context) error {
			calls++
			return errors.New("unauthorized")
		})
		assert.Equal(t, 1, calls)
		assert.Equal(t, apperrors.ErrCodeWorkflowRejected, apperrors.AsStandardError(err).Code)
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
		err := executeWithRetry(ctx, slow, logger.NewTestLogger(t), "publish", func(context.Context) error {
			cancel()
			return errors.New("timeout")
		})
		assert.Equal(t, apperrors.ErrCodeWorkflowTimeout, apperrors.AsStandardError(err).Code)
	})
}

type recordingHandler struct {
	active float64
	keys   []int64
}

func (h *recordingHandler) Handle(_ worker.JobClient, job entities.Job) {
	h.active = testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("test.track"))
	h.keys = append(h.keys, job.GetKey())
}

func TestTrack(t *testing.T) {
	h := &recordingHandler{}
	handle := track("test.track", h)

	handle(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7}})

	assert.Equal(t, []int64{7}, h.keys)
	assert.Equal(t, float64(1), h.active)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("test.track")))
}
