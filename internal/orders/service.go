// Package orders turns a client cart and delivery address into a confirmed
// cash-on-delivery order.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/common/validation"
	"swaad-chat/internal/models"
)

// PaymentCOD is the only accepted payment method.
const PaymentCOD = "cod"

type PlaceOrderRequest struct {
	SessionID       string                 `json:"sessionId,omitempty"`
	Items           []models.CartItem      `json:"items"`
	DeliveryAddress models.DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   string                 `json:"paymentMethod,omitempty"`
}

type ServiceDependencies struct {
	Repository Repository
	Notifier   Notifier
	Logger     logger.Logger
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   logger.Logger
	now      func() time.Time
	newID    func() string
}

// NewService falls back to an in-memory repository when none is given.
// A nil Notifier disables confirmations.
func NewService(deps ServiceDependencies) *Service {
	repo := deps.Repository
	if repo == nil {
		repo = NewMemoryRepository()
	}
	return &Service{
		repo:     repo,
		notifier: deps.Notifier,
		logger:   deps.Logger.WithFields(map[string]interface{}{"component": "orders"}),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

// Place validates the request, stores the order and sends the
// confirmation. A failed confirmation is logged and never fails the order.
func (s *Service) Place(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	if issues := Validate(req); len(issues) > 0 {
		metrics.OrdersPlaced.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewOrderValidationFailedError(strings.Join(issues, "; ")).
			WithMetadata("issues", issues)
	}

	address := req.DeliveryAddress
	address.FullName = strings.TrimSpace(address.FullName)
	address.Phone = validation.NormalizePhone(address.Phone)
	address.Pincode = strings.TrimSpace(address.Pincode)
	address.Email = strings.TrimSpace(address.Email)

	order := &models.Order{
		ID:              s.newID(),
		SessionID:       req.SessionID,
		Items:           req.Items,
		Total:           models.CartTotal(req.Items),
		DeliveryAddress: address,
		PaymentMethod:   PaymentCOD,
		Status:          models.OrderConfirmed,
		CreatedAt:       s.now(),
	}

	if err := s.repo.Create(ctx, order); err != nil {
		metrics.OrdersPlaced.WithLabelValues("error").Inc()
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	metrics.OrdersPlaced.WithLabelValues("confirmed").Inc()

	s.logger.Info("order placed", map[string]interface{}{
		"orderId":   order.ID,
		"sessionId": order.SessionID,
		"items":     len(order.Items),
		"total":     order.Total,
	})

	if s.notifier != nil {
		if err := s.notifier.OrderConfirmed(ctx, order); err != nil {
			s.logger.Warn("order confirmation failed", map[string]interface{}{
				"orderId": order.ID,
				"error":   err.Error(),
			})
		}
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", id, err)
	}
	return order, nil
}

// Validate returns one message per problem, in field order.
func Validate(req PlaceOrderRequest) []string {
	var issues []string

	if len(req.Items) == 0 {
		issues = append(issues, "cart is empty")
	}
	for i, item := range req.Items {
		if item.Food.ID <= 0 {
			issues = append(issues, fmt.Sprintf("items[%d]: food id is required", i))
		}
		if item.Quantity < 1 {
			issues = append(issues, fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		}
		if item.UnitPrice < 0 {
			issues = append(issues, fmt.Sprintf("items[%d]: unit price cannot be negative", i))
		}
	}

	addr := req.DeliveryAddress
	if strings.TrimSpace(addr.FullName) == "" {
		issues = append(issues, "fullName: Name is required")
	}
	switch {
	case strings.TrimSpace(addr.Phone) == "":
		issues = append(issues, "phone: Phone is required")
	case !validation.ValidatePhone(addr.Phone):
		issues = append(issues, "phone: Enter a valid 10-digit phone number")
	}
	if addr.Email != "" && !validation.ValidateEmail(addr.Email) {
		issues = append(issues, "email: Enter a valid email")
	}
	if strings.TrimSpace(addr.AddressLine1) == "" {
		issues = append(issues, "addressLine1: Address is required")
	}
	if strings.TrimSpace(addr.City) == "" {
		issues = append(issues, "city: City is required")
	}
	switch {
	case strings.TrimSpace(addr.Pincode) == "":
		issues = append(issues, "pincode: Pincode is required")
	case !validation.ValidatePincode(addr.Pincode):
		issues = append(issues, "pincode: Enter a valid 6-digit pincode")
	}

	if req.PaymentMethod != "" && req.PaymentMethod != PaymentCOD {
		issues = append(issues, fmt.Sprintf("paymentMethod: %q is not supported, only cash on delivery", req.PaymentMethod))
	}
	return issues
}
