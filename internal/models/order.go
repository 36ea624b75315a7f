package models

import "time"

type OrderStatus string

const (
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
)

type DeliveryAddress struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Pincode      string `json:"pincode"`
	Instructions string `json:"instructions,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	SessionID       string          `json:"sessionId,omitempty"`
	Items           []CartItem      `json:"items"`
	Total           int             `json:"total"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}
