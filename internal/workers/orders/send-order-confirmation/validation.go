package sendorderconfirmation

import "swaad-chat/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"orderId"},
		Properties: map[string]validation.Property{
			"orderId": {
				Type:        "string",
				Description: "Order placed by the order.place task",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(64),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
