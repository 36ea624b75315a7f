package jsonui

import (
	"net/url"
	"strings"

	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
)

// ActionResult is the resolved effect of a cta_button press.
type ActionResult struct {
	Action   Action `json:"action"`
	Allowed  bool   `json:"allowed"`
	Target   string `json:"target,omitempty"`
	OpenCart bool   `json:"openCart,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ActionDispatcher resolves cta_button actions against a fixed allow-list.
// Anything outside it is a logged no-op.
type ActionDispatcher struct {
	categories map[string]struct{}
	logger     logger.Logger
}

func NewActionDispatcher(categories []string, log logger.Logger) *ActionDispatcher {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		known[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ActionDispatcher{
		categories: known,
		logger:     log.WithFields(map[string]interface{}{"component": "json_ui_actions"}),
	}
}

// Resolve is side-effect free.
func (d *ActionDispatcher) Resolve(action, label string) ActionResult {
	return resolveAction(d.categories, action, label)
}

// Dispatch resolves the action, then logs and counts the outcome.
func (d *ActionDispatcher) Dispatch(action, label string) ActionResult {
	result := d.Resolve(action, label)
	if !result.Allowed {
		d.logger.Info("action_ignored", map[string]interface{}{
			"reason": result.Reason,
			"action": action,
		})
		metrics.ActionDispatches.WithLabelValues("unknown", "ignored").Inc()
		return result
	}

	d.logger.Info("action_executed", map[string]interface{}{
		"action": string(result.Action),
		"target": result.Target,
		"label":  label,
	})
	metrics.ActionDispatches.WithLabelValues(string(result.Action), "executed").Inc()
	return result
}

func resolveAction(categories map[string]struct{}, action, label string) ActionResult {
	switch Action(action) {
	case ActionOpenMenu:
		return ActionResult{Action: ActionOpenMenu, Allowed: true, Target: menuRoute(categories, label)}
	case ActionCheckout:
		return ActionResult{Action: ActionCheckout, Allowed: true, Target: "/checkout"}
	case ActionShowCart:
		return ActionResult{Action: ActionShowCart, Allowed: true, OpenCart: true}
	default:
		return ActionResult{Action: Action(action), Allowed: false, Reason: "unknown_action"}
	}
}

func menuRoute(categories map[string]struct{}, label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "/menu"
	}
	if categories == nil {
		categories = map[string]struct{}{}
		for _, c := range DefaultCategories {
			categories[strings.ToLower(c)] = struct{}{}
		}
	}
	if _, ok := categories[strings.ToLower(trimmed)]; !ok {
		return "/menu"
	}
	return "/menu?category=" + strings.ReplaceAll(url.QueryEscape(trimmed), "+", "%20")
}
