package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/jsonui"
	"swaad-chat/internal/models"
)

// FallbackText is used when a turn produced nothing renderable.
const FallbackText = "I'm not sure how to help with that. Could you rephrase?"

const (
	sourcePolicy = "policy"
	sourceInline = "inline"
	sourceTool   = "tool"
)

// Turn is everything the assembler needs for one assistant turn.
type Turn struct {
	Transcript       []models.TranscriptMessage
	FinalText        string
	UserMessage      string
	Prior            []models.TranscriptMessage
	Cart             []models.CartItem
	InlineCandidates []json.RawMessage
}

type Options struct {
	EnableJSONUI bool
}

// Assembler turns a tool-calling transcript into ordered response blocks.
// It never fails: malformed candidates and cart payloads are logged and
// left out.
type Assembler struct {
	validator *jsonui.Validator
	policy    *Policy
	logger    logger.Logger
}

func NewAssembler(validator *jsonui.Validator, policy *Policy, log logger.Logger) *Assembler {
	if policy == nil {
		policy = NewPolicy(nil)
	}
	return &Assembler{
		validator: validator,
		policy:    policy,
		logger:    log.WithFields(map[string]interface{}{"component": "assembler"}),
	}
}

func (a *Assembler) Assemble(turn Turn, opts Options) (blocks []models.MessageBlock) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("block assembly panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			blocks = []models.MessageBlock{models.TextBlock{Content: FallbackText}}
		}
		for _, b := range blocks {
			metrics.BlocksEmitted.WithLabelValues(string(b.BlockType())).Inc()
		}
	}()

	finalText := strings.TrimSpace(turn.FinalText)
	if finalText != "" {
		blocks = append(blocks, models.TextBlock{Content: finalText})
	}

	items := ExtractFoodItems(turn.Transcript)
	if len(items) > 0 {
		blocks = append(blocks, models.FoodCardsBlock{Items: items})
	}

	actions := extractCartActions(turn.Transcript, func(action models.CartActionName, reason string) {
		a.logger.Warn("cart action skipped", map[string]interface{}{
			"action": string(action),
			"reason": reason,
		})
	})
	blocks = append(blocks, cartBlocks(actions, turn.Cart)...)

	if len(blocks) == 0 {
		text := turn.FinalText
		if text == "" {
			text = FallbackText
		}
		blocks = append(blocks, models.TextBlock{Content: text})
	}

	if !opts.EnableJSONUI {
		return blocks
	}

	if decision := a.policy.Decide(turn.UserMessage, len(turn.Prior), items, true); decision != nil {
		if schema := a.forced(decision); schema != nil {
			return append(blocks, models.JSONUIBlock{Schema: schema})
		}
	}

	if schema := a.firstValidCandidate(turn); schema != nil {
		blocks = append(blocks, models.JSONUIBlock{Schema: schema})
	}
	return blocks
}

func cartBlocks(actions []CartAction, cart []models.CartItem) []models.MessageBlock {
	var blocks []models.MessageBlock
	for _, action := range actions {
		switch action.Name {
		case models.ActionAddToCart:
			blocks = append(blocks, models.CartActionBlock{
				Action:   models.CartAdd,
				FoodItem: action.FoodItem,
				Quantity: action.Quantity,
			})
		case models.ActionRemoveFromCart:
			blocks = append(blocks, models.CartActionBlock{
				Action:   models.CartRemove,
				FoodID:   action.FoodID,
				Quantity: 1,
			})
		case models.ActionShowCart:
			blocks = append(blocks, models.CartSummaryBlock{
				Items: cart,
				Total: models.CartTotal(cart),
			})
		case models.ActionCheckout:
			blocks = append(blocks, models.CheckoutPromptBlock{
				Items: cart,
				Total: models.CartTotal(cart),
			})
		}
	}
	return blocks
}

// forced validates a policy payload like any other candidate. A rejected
// payload is dropped and the turn falls back to the model's candidates.
func (a *Assembler) forced(decision *Decision) *jsonui.Schema {
	metrics.PolicyTriggers.WithLabelValues(string(decision.Rule)).Inc()
	result := a.validate(decision.Schema)
	if !result.Valid {
		metrics.JSONUIValidations.WithLabelValues("rejected", sourcePolicy).Inc()
		a.logger.Warn("json_ui payload rejected", map[string]interface{}{
			"source":     sourcePolicy,
			"rule":       string(decision.Rule),
			"issueCount": len(result.Issues),
			"issues":     result.Issues,
		})
		return nil
	}
	metrics.JSONUIValidations.WithLabelValues("accepted", sourcePolicy).Inc()
	a.logger.Info("json_ui payload forced by policy", map[string]interface{}{
		"rule": string(decision.Rule),
	})
	return result.Schema
}

// firstValidCandidate validates inline candidates before tool-sourced
// ones and returns the first that passes.
func (a *Assembler) firstValidCandidate(turn Turn) *jsonui.Schema {
	toolCandidates := ExtractUICandidates(turn.Transcript)
	if len(turn.InlineCandidates) > 0 && len(toolCandidates) > 0 {
		a.logger.Info("json_ui candidates from both channels, inline first", map[string]interface{}{
			"inline": len(turn.InlineCandidates),
			"tool":   len(toolCandidates),
		})
	}

	type candidate struct {
		source string
		raw    json.RawMessage
	}
	ordered := make([]candidate, 0, len(turn.InlineCandidates)+len(toolCandidates))
	for _, raw := range turn.InlineCandidates {
		ordered = append(ordered, candidate{sourceInline, raw})
	}
	for _, raw := range toolCandidates {
		ordered = append(ordered, candidate{sourceTool, raw})
	}

	for i, c := range ordered {
		result := a.validate(c.raw)
		if result.Valid {
			metrics.JSONUIValidations.WithLabelValues("accepted", c.source).Inc()
			a.logger.Info("json_ui payload accepted", map[string]interface{}{
				"source": c.source,
				"index":  i,
			})
			return result.Schema
		}
		metrics.JSONUIValidations.WithLabelValues("rejected", c.source).Inc()
		a.logger.Warn("json_ui payload rejected", map[string]interface{}{
			"source":     c.source,
			"issueCount": len(result.Issues),
			"issues":     result.Issues,
		})
	}
	return nil
}

func (a *Assembler) validate(raw interface{}) *jsonui.ValidationResult {
	if a.validator == nil {
		return jsonui.Validate(raw)
	}
	return a.validator.Validate(raw)
}
