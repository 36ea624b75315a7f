package sendorderconfirmation

import (
	"context"

	"swaad-chat/internal/models"
)

// OrderReader loads a stored order by id.
type OrderReader interface {
	Get(ctx context.Context, id string) (*models.Order, error)
}

type Input struct {
	OrderID string `json:"orderId"`
}

type Output struct {
	OrderID          string `json:"orderId"`
	ConfirmationSent bool   `json:"confirmationSent"`
	SentAt           string `json:"sentAt"`
}
