package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"swaad-chat/internal/models"
)

func TestCartSummary(t *testing.T) {
	assert.Equal(t, "Cart is empty.", CartSummary(nil))

	cart := []models.CartItem{
		{Food: food(1, "Butter Chicken", "North Indian", 379), Quantity: 2, UnitPrice: 379},
		{Food: food(2, "Garlic Naan", "Breads", 79), Quantity: 1, UnitPrice: 79},
	}
	assert.Equal(t,
		"- 2x Butter Chicken @ ₹379 each\n- 1x Garlic Naan @ ₹79 each\nTotal: ₹837",
		CartSummary(cart))
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt("")
	assert.True(t, strings.HasPrefix(p, SystemPrompt))
	assert.True(t, strings.HasSuffix(p, "## Current Cart\nCart is empty."))

	p = BuildSystemPrompt("- 1x Lassi @ ₹99 each\nTotal: ₹99")
	assert.Contains(t, p, "Total: ₹99")

	for _, name := range []string{ToolSearchFood, ToolAddToCart, ToolStartCheckout} {
		assert.Contains(t, SystemPrompt, name)
	}
}
