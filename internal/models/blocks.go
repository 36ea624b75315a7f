package models

import (
	"encoding/json"

	"swaad-chat/internal/jsonui"
)

// BlockType tags each MessageBlock on the wire.
type BlockType string

const (
	BlockText           BlockType = "text"
	BlockFoodCards      BlockType = "food_cards"
	BlockCartSummary    BlockType = "cart_summary"
	BlockCheckoutPrompt BlockType = "checkout_prompt"
	BlockCartAction     BlockType = "cart_action"
	BlockJSONUI         BlockType = "json_ui"
)

// MessageBlock is one typed unit of an assistant turn.
type MessageBlock interface {
	BlockType() BlockType
}

type TextBlock struct {
	Content string `json:"content"`
}

type FoodCardsBlock struct {
	Items []FoodItem `json:"items"`
}

type CartSummaryBlock struct {
	Items []CartItem `json:"items"`
	Total int        `json:"total"`
}

type CheckoutPromptBlock struct {
	Items []CartItem `json:"items"`
	Total int        `json:"total"`
}

type CartActionKind string

const (
	CartAdd    CartActionKind = "add"
	CartRemove CartActionKind = "remove"
)

type CartActionBlock struct {
	Action   CartActionKind `json:"action"`
	FoodItem *FoodItem      `json:"foodItem,omitempty"`
	FoodID   int            `json:"foodId,omitempty"`
	Quantity int            `json:"quantity"`
}

type JSONUIBlock struct {
	Schema *jsonui.Schema `json:"schema"`
}

func (TextBlock) BlockType() BlockType           { return BlockText }
func (FoodCardsBlock) BlockType() BlockType      { return BlockFoodCards }
func (CartSummaryBlock) BlockType() BlockType    { return BlockCartSummary }
func (CheckoutPromptBlock) BlockType() BlockType { return BlockCheckoutPrompt }
func (CartActionBlock) BlockType() BlockType     { return BlockCartAction }
func (JSONUIBlock) BlockType() BlockType         { return BlockJSONUI }

func (b TextBlock) MarshalJSON() ([]byte, error) {
	type alias TextBlock
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		alias
	}{BlockText, alias(b)})
}

func (b FoodCardsBlock) MarshalJSON() ([]byte, error) {
	type alias FoodCardsBlock
	if b.Items == nil {
		b.Items = []FoodItem{}
	}
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		alias
	}{BlockFoodCards, alias(b)})
}

func (b CartSummaryBlock) MarshalJSON() ([]byte, error) {
	type alias CartSummaryBlock
	if b.Items == nil {
		b.Items = []CartItem{}
	}
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		alias
	}{BlockCartSummary, alias(b)})
}

func (b CheckoutPromptBlock) MarshalJSON() ([]byte, error) {
	type alias CheckoutPromptBlock
	if b.Items == nil {
		b.Items = []CartItem{}
	}
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		alias
	}{BlockCheckoutPrompt, alias(b)})
}

func (b CartActionBlock) MarshalJSON() ([]byte, error) {
	type alias CartActionBlock
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		alias
	}{BlockCartAction, alias(b)})
}

func (b JSONUIBlock) MarshalJSON() ([]byte, error) {
	type alias JSONUIBlock
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		alias
	}{BlockJSONUI, alias(b)})
}
