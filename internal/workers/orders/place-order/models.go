package placeorder

import (
	"context"

	"swaad-chat/internal/models"
	"swaad-chat/internal/orders"
)

// Placer is the part of orders.Service the worker needs.
type Placer interface {
	Place(ctx context.Context, req orders.PlaceOrderRequest) (*models.Order, error)
}

type Output struct {
	OrderID       string `json:"orderId"`
	OrderStatus   string `json:"orderStatus"`
	OrderTotal    int    `json:"orderTotal"`
	PaymentMethod string `json:"paymentMethod"`
	PlacedAt      string `json:"placedAt"`
}
