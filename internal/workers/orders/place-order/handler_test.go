package placeorder

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swaad-chat/internal/common/config"
	"swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/models"
	"swaad-chat/internal/orders"
)

const validVariables = `{
	"sessionId": "s-42",
	"checkoutStartedAt": "2026-10-17T12:00:00Z",
	"items": [
		{"food": {"id": 1, "name": "Butter Chicken", "category": "North Indian", "price": 379}, "quantity": 2, "unitPrice": 379},
		{"food": {"id": 9, "name": "Mango Lassi", "category": "North Indian", "price": 99}, "quantity": 1, "unitPrice": 99}
	],
	"deliveryAddress": {"fullName": "Asha Rao", "phone": "98765 43210", "addressLine1": "12 MG Road", "city": "Bengaluru", "pincode": "560001"}
}`

type placerFunc func(ctx context.Context, req orders.PlaceOrderRequest) (*models.Order, error)

func (f placerFunc) Place(ctx context.Context, req orders.PlaceOrderRequest) (*models.Order, error) {
	return f(ctx, req)
}

func newTestHandler(t *testing.T, placer Placer) *Handler {
	t.Helper()
	if placer == nil {
		placer = orders.NewService(orders.ServiceDependencies{Logger: logger.NewTestLogger(t)})
	}
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Orders:       placer,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func job(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 11, Type: TaskType, Variables: variables}}
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name      string
		variables string
		wantCode  errors.ErrorCode
	}{
		{name: "valid", variables: validVariables},
		{name: "not json", variables: `{"items":`, wantCode: errors.ErrCodeParseError},
		{name: "missing address", variables: `{"items": []}`, wantCode: errors.ErrCodeInputValidation},
		{
			name:      "address missing pincode",
			variables: `{"items": [], "deliveryAddress": {"fullName": "A", "phone": "9876543210", "addressLine1": "x", "city": "y"}}`,
			wantCode:  errors.ErrCodeInputValidation,
		},
		{name: "card payment", variables: `{"items": [], "deliveryAddress": {}, "paymentMethod": "card"}`, wantCode: errors.ErrCodeInputValidation},
		{
			name:      "fractional quantity",
			variables: `{"items": [{"food": {"id": 1}, "quantity": 1.5}], "deliveryAddress": {"fullName": "A", "phone": "9876543210", "addressLine1": "x", "city": "y", "pincode": "560001"}}`,
			wantCode:  errors.ErrCodeInputValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(job(tt.variables))
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.AsStandardError(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "s-42", input.SessionID)
			require.Len(t, input.Items, 2)
			assert.Equal(t, 2, input.Items[0].Quantity)
			assert.Equal(t, "560001", input.DeliveryAddress.Pincode)
		})
	}
}

func TestHandler_Execute(t *testing.T) {
	h := newTestHandler(t, nil)
	input, err := h.parseInput(job(validVariables))
	require.NoError(t, err)

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, output.OrderID)
	assert.Equal(t, string(models.OrderConfirmed), output.OrderStatus)
	assert.Equal(t, 857, output.OrderTotal)
	assert.Equal(t, orders.PaymentCOD, output.PaymentMethod)
	_, err = time.Parse(time.RFC3339, output.PlacedAt)
	assert.NoError(t, err)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name          string
		placer        Placer
		variables     string
		wantCode      errors.ErrorCode
		wantRetryable bool
	}{
		{
			name:      "checkout rules",
			variables: `{"items": [], "deliveryAddress": {"fullName": "A", "phone": "12345", "addressLine1": "x", "city": "y", "pincode": "560001"}}`,
			wantCode:  errors.ErrCodeOrderValidationFailed,
		},
		{
			name: "storage outage",
			placer: placerFunc(func(context.Context, orders.PlaceOrderRequest) (*models.Order, error) {
				return nil, errors.NewDatabaseInsertFailedError(stderrors.New("connection reset"))
			}),
			variables:     validVariables,
			wantCode:      errors.ErrCodeDatabaseInsertFailed,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.placer)
			input, err := h.parseInput(job(tt.variables))
			require.NoError(t, err)

			_, err = h.Execute(context.Background(), input)
			require.Error(t, err)
			stdErr := errors.AsStandardError(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantRetryable, errors.ConvertToBPMNError(stdErr).Retries > 0)
		})
	}
}

func TestNewHandler(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig(), Logger: logger.NewNoOpLogger()})
	assert.Error(t, err)

	_, err = NewHandler(HandlerOptions{CustomConfig: &Config{MaxJobsActive: 1}, Orders: placerFunc(nil)})
	assert.Error(t, err)

	app := &config.Config{Workers: map[string]config.WorkerConfig{
		ConfigKey: {Enabled: false, MaxJobsActive: 3, Timeout: 1000},
	}}
	h, err := NewHandler(HandlerOptions{AppConfig: app, Orders: placerFunc(nil), Logger: logger.NewNoOpLogger()})
	require.NoError(t, err)
	assert.False(t, h.config.Enabled)
	assert.Equal(t, 3, h.config.MaxJobsActive)
	assert.Equal(t, time.Second, h.config.Timeout)
	assert.Nil(t, h.Register(nil))
}
