package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"swaad-chat/internal/models"
)

func food(id int, name, category string, price int) models.FoodItem {
	return models.FoodItem{
		ID:          id,
		Name:        name,
		Image:       "images/" + name + ".png",
		Description: name + " from the tandoor",
		Category:    category,
		Type:        models.NonVegetarian,
		SpiceLevel:  "Medium",
		Ingredients: []string{"Chicken", "Butter"},
		Nutrition:   models.Nutrition{Calories: 450, Protein: "28g", Carbs: "12g", Fat: "30g"},
		Price:       price,
		Serves:      1,
	}
}

func toolMsg(t *testing.T, payload interface{}) models.TranscriptMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return models.TranscriptMessage{Role: models.RoleTool, Content: string(data)}
}

func blockTypes(blocks []models.MessageBlock) []models.BlockType {
	out := make([]models.BlockType, len(blocks))
	for i, b := range blocks {
		out[i] = b.BlockType()
	}
	return out
}

func countType(blocks []models.MessageBlock, typ models.BlockType) int {
	n := 0
	for _, b := range blocks {
		if b.BlockType() == typ {
			n++
		}
	}
	return n
}

func marshalBlocks(t *testing.T, blocks []models.MessageBlock) string {
	t.Helper()
	data, err := json.Marshal(blocks)
	require.NoError(t, err)
	return string(data)
}

var prevTurn = []models.TranscriptMessage{
	{Role: models.RoleUser, Content: "hi"},
	{Role: models.RoleAssistant, Content: "hello"},
}
