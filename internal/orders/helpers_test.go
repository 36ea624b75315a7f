package orders

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"swaad-chat/internal/models"
)

type mockSES struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc == nil {
		return &ses.SendEmailOutput{}, nil
	}
	return m.SendEmailFunc(ctx, params, optFns...)
}

type mockSNS struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc == nil {
		return &sns.PublishOutput{}, nil
	}
	return m.PublishFunc(ctx, params, optFns...)
}

var fixedTime = time.Date(2026, 10, 17, 12, 30, 0, 0, time.UTC)

func cartLine(id int, name string, price, qty int) models.CartItem {
	return models.CartItem{
		Food:      models.FoodItem{ID: id, Name: name, Category: "North Indian", Price: price},
		Quantity:  qty,
		UnitPrice: price,
	}
}

func validAddress() models.DeliveryAddress {
	return models.DeliveryAddress{
		FullName:     "Asha Rao",
		Phone:        "98765 43210",
		Email:        "asha@example.in",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		Pincode:      "560001",
	}
}

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		SessionID:       "session-1",
		Items:           []models.CartItem{cartLine(1, "Butter Chicken", 379, 2), cartLine(7, "Garlic Naan", 69, 3)},
		DeliveryAddress: validAddress(),
	}
}

func testOrder() *models.Order {
	req := validRequest()
	return &models.Order{
		ID:              "3f2a9c1e-0000-4000-8000-000000000001",
		SessionID:       req.SessionID,
		Items:           req.Items,
		Total:           965,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   PaymentCOD,
		Status:          models.OrderConfirmed,
		CreatedAt:       fixedTime,
	}
}
