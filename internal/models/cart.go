package models

// CartItem is one line of the client-held cart.
type CartItem struct {
	Food         FoodItem `json:"food"`
	Quantity     int      `json:"quantity"`
	SelectedSize string   `json:"selectedSize,omitempty"`
	UnitPrice    int      `json:"unitPrice"`
}

// CartTotal sums unitPrice * quantity.
func CartTotal(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.UnitPrice * item.Quantity
	}
	return total
}
