package placeorder

import "swaad-chat/internal/common/validation"

// GetInputSchema checks the shape of the order variables. Field-level
// checkout rules live in orders.Validate.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"items", "deliveryAddress"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:      "string",
				MaxLength: intPtr(64),
			},
			"items": {
				Type:        "array",
				Description: "Cart lines at checkout",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"food", "quantity"},
					Properties: map[string]validation.Property{
						"food":      {Type: "object"},
						"quantity":  {Type: "integer"},
						"unitPrice": {Type: "integer"},
					},
				},
			},
			"deliveryAddress": {
				Type:     "object",
				Required: []string{"fullName", "phone", "addressLine1", "city", "pincode"},
				Properties: map[string]validation.Property{
					"fullName":     {Type: "string"},
					"phone":        {Type: "string"},
					"email":        {Type: "string"},
					"addressLine1": {Type: "string"},
					"addressLine2": {Type: "string"},
					"city":         {Type: "string"},
					"pincode":      {Type: "string"},
					"instructions": {Type: "string", MaxLength: intPtr(500)},
				},
			},
			"paymentMethod": {
				Type: "string",
				Enum: []string{"cod"},
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
