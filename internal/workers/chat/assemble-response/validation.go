package assembleresponse

import "swaad-chat/internal/common/validation"

// GetInputSchema describes the variables the task reads. Other process
// variables are allowed through.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userMessage", "finalText", "transcript"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:      "string",
				MaxLength: intPtr(64),
			},
			"userMessage": {
				Type:        "string",
				Description: "Message the user sent this turn",
				MaxLength:   intPtr(1000),
			},
			"finalText": {
				Type:        "string",
				Description: "Model text after the last tool step",
			},
			"transcript": {
				Type:        "array",
				Description: "Tool-calling transcript of the turn",
				Items:       &validation.Property{Type: "object"},
			},
			"prior": {
				Type:  "array",
				Items: &validation.Property{Type: "object"},
			},
			"cart": {
				Type:  "array",
				Items: &validation.Property{Type: "object"},
			},
			"enableJsonUi": {
				Type: "boolean",
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
