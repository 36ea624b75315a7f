package models

import "encoding/json"

// Role of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// TranscriptMessage is one unit of the tool-calling transcript. Tool
// messages carry a JSON-encoded ToolEnvelope in Content.
type TranscriptMessage struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"toolCallId,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ToolResultKind discriminates the payload a tool returned.
type ToolResultKind string

const (
	ToolKindSearchResults ToolResultKind = "search_results"
	ToolKindFoodDetails   ToolResultKind = "food_details"
	ToolKindCategories    ToolResultKind = "categories"
	ToolKindCartUpdate    ToolResultKind = "cart_update"
	ToolKindCartView      ToolResultKind = "cart_view"
	ToolKindCheckout      ToolResultKind = "checkout"
	ToolKindError         ToolResultKind = "error"
)

// CartActionName is the action identifier a cart tool reports.
type CartActionName string

const (
	ActionAddToCart      CartActionName = "add_to_cart"
	ActionRemoveFromCart CartActionName = "remove_from_cart"
	ActionShowCart       CartActionName = "show_cart"
	ActionCheckout       CartActionName = "checkout"
)

// CartLine is the model-facing summary of an added item.
type CartLine struct {
	FoodID   int    `json:"foodId"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// ToolEnvelope is the structured metadata every tool result carries next
// to its model-facing fields. Underscored keys are for the response
// pipeline only.
type ToolEnvelope struct {
	Kind      ToolResultKind  `json:"kind,omitempty"`
	Action    CartActionName  `json:"action,omitempty"`
	Success   *bool           `json:"success,omitempty"`
	Item      *CartLine       `json:"item,omitempty"`
	FoodID    int             `json:"foodId,omitempty"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	FoodItems []FoodItem      `json:"_foodItems,omitempty"`
	FoodItem  *FoodItem       `json:"_foodItem,omitempty"`
	UISchema  json.RawMessage `json:"_uiSchema,omitempty"`
}

// Succeeded reports an explicit success: true.
func (e *ToolEnvelope) Succeeded() bool {
	return e.Success != nil && *e.Success
}

// Bool returns a pointer for ToolEnvelope.Success.
func Bool(v bool) *bool {
	return &v
}
