package agent

import (
	"regexp"

	"swaad-chat/internal/jsonui"
	"swaad-chat/internal/models"
)

// Rule names a policy that forces a JSON-UI payload.
type Rule string

const (
	RuleWelcome       Rule = "welcome"
	RuleChefsChoice   Rule = "chefs_choice"
	RuleAllergySafety Rule = "allergy_safety"
)

var (
	surpriseIntent = regexp.MustCompile(`(?i)\b(surprise|recommend\w*|suggest\w*|chef'?s (choice|special|pick)|what should i (eat|order|get|have)|something (special|good|new))\b`)
	allergyIntent  = regexp.MustCompile(`(?i)\b(allerg\w*|intoleran\w*|anaphyla\w*|celiac|coeliac|gluten|lactose|dairy[- ]free|nut[- ]free|peanuts?|tree nuts?|shellfish|epipen)\b`)
)

// Decision is a forced JSON-UI payload and the rule that produced it.
type Decision struct {
	Rule   Rule
	Schema *jsonui.Schema
}

// Policy decides which JSON-UI payload a turn must carry regardless of
// what the model emitted. It keeps no state between turns.
type Policy struct {
	categories []string
}

func NewPolicy(categories []string) *Policy {
	return &Policy{categories: categories}
}

// Decide applies the rules in order and returns the first match, or nil.
func (p *Policy) Decide(userMessage string, priorLength int, items []models.FoodItem, enabled bool) *Decision {
	if !enabled {
		return nil
	}

	if priorLength == 0 {
		return &Decision{Rule: RuleWelcome, Schema: jsonui.Welcome(p.categories)}
	}

	if len(items) > 0 && IsSurpriseIntent(userMessage) {
		top := items[0]
		return &Decision{Rule: RuleChefsChoice, Schema: jsonui.ChefsChoice(&jsonui.Pick{
			Name:     top.Name,
			Category: top.Category,
			Price:    top.Price,
			Image:    top.Image,
		})}
	}

	if IsAllergyIntent(userMessage) {
		return &Decision{Rule: RuleAllergySafety, Schema: jsonui.AllergySafety(userMessage)}
	}

	return nil
}

func IsSurpriseIntent(message string) bool {
	return surpriseIntent.MatchString(message)
}

func IsAllergyIntent(message string) bool {
	return allergyIntent.MatchString(message)
}
