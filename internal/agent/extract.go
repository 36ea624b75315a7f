package agent

import (
	"encoding/json"
	"fmt"

	"swaad-chat/internal/models"
)

// CartAction is a successful cart mutation or view reported by a tool.
type CartAction struct {
	Name     models.CartActionName
	FoodItem *models.FoodItem
	FoodID   int
	Quantity int
}

// toolEnvelopes decodes every tool message that carries a JSON object.
// Plain-text tool output is expected and skipped.
func toolEnvelopes(transcript []models.TranscriptMessage) []models.ToolEnvelope {
	envelopes := make([]models.ToolEnvelope, 0, len(transcript))
	for _, msg := range transcript {
		if msg.Role != models.RoleTool {
			continue
		}
		var env models.ToolEnvelope
		if err := json.Unmarshal([]byte(msg.Content), &env); err != nil {
			continue
		}
		envelopes = append(envelopes, env)
	}
	return envelopes
}

// ExtractFoodItems collects the items attached to tool results. Items are
// de-duplicated by id; a later result replaces the data of an earlier one
// but keeps its position.
func ExtractFoodItems(transcript []models.TranscriptMessage) []models.FoodItem {
	order := make([]int, 0)
	byID := make(map[int]models.FoodItem)

	put := func(item models.FoodItem) {
		if item.ID <= 0 {
			return
		}
		if _, seen := byID[item.ID]; !seen {
			order = append(order, item.ID)
		}
		byID[item.ID] = item
	}

	for _, env := range toolEnvelopes(transcript) {
		for _, item := range env.FoodItems {
			put(item)
		}
		if env.FoodItem != nil {
			put(*env.FoodItem)
		}
	}

	items := make([]models.FoodItem, 0, len(order))
	for _, id := range order {
		items = append(items, byID[id])
	}
	return items
}

// ExtractCartActions returns the successful cart actions in transcript
// order.
func ExtractCartActions(transcript []models.TranscriptMessage) []CartAction {
	return extractCartActions(transcript, nil)
}

func extractCartActions(transcript []models.TranscriptMessage, skipped func(action models.CartActionName, reason string)) []CartAction {
	skip := func(action models.CartActionName, reason string) {
		if skipped != nil {
			skipped(action, reason)
		}
	}

	var actions []CartAction
	for _, env := range toolEnvelopes(transcript) {
		if env.Action == "" {
			continue
		}
		if !env.Succeeded() {
			skip(env.Action, "not successful")
			continue
		}

		switch env.Action {
		case models.ActionAddToCart:
			if env.FoodItem == nil || !env.FoodItem.Complete() {
				skip(env.Action, "incomplete food item")
				continue
			}
			quantity := 1
			if env.Item != nil && env.Item.Quantity > 0 {
				quantity = env.Item.Quantity
			}
			item := *env.FoodItem
			actions = append(actions, CartAction{
				Name:     env.Action,
				FoodItem: &item,
				FoodID:   item.ID,
				Quantity: quantity,
			})
		case models.ActionRemoveFromCart:
			if env.FoodID <= 0 {
				skip(env.Action, "missing food id")
				continue
			}
			actions = append(actions, CartAction{Name: env.Action, FoodID: env.FoodID, Quantity: 1})
		case models.ActionShowCart, models.ActionCheckout:
			actions = append(actions, CartAction{Name: env.Action})
		default:
			skip(env.Action, fmt.Sprintf("unknown action %q", env.Action))
		}
	}
	return actions
}

// ExtractUICandidates returns the _uiSchema payloads of tool results in
// encounter order.
func ExtractUICandidates(transcript []models.TranscriptMessage) []json.RawMessage {
	var candidates []json.RawMessage
	for _, env := range toolEnvelopes(transcript) {
		if len(env.UISchema) == 0 || string(env.UISchema) == "null" {
			continue
		}
		candidates = append(candidates, env.UISchema)
	}
	return candidates
}
