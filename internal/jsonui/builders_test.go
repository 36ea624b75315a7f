package jsonui

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders_ProduceValidSchemas(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		marker string
	}{
		{name: "welcome", schema: Welcome(nil), marker: "Welcome to Swaad"},
		{name: "welcome with many categories", schema: Welcome(strings.Split("a,b,c,d,e,f,g,h,i,j,k,l", ",")), marker: "open_menu"},
		{
			name:   "chef's choice with item",
			schema: ChefsChoice(&Pick{Name: "Paneer Tikka", Category: "North Indian", Price: 280, Image: "images/paneer.jpg"}),
			marker: "Chef's Choice",
		},
		{name: "chef's choice generic", schema: ChefsChoice(nil), marker: "Chef's pick based on your request"},
		{
			name:   "chef's choice with oversized name",
			schema: ChefsChoice(&Pick{Name: strings.Repeat("n", 300), Category: "Street Food", Price: 90}),
			marker: "Chef's Choice",
		},
		{name: "allergy", schema: AllergySafety("I am allergic to peanuts"), marker: "Allergy Safety Check"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.schema)
			require.True(t, result.Valid, "issues: %v", result.Issues)

			raw, err := json.Marshal(tt.schema)
			require.NoError(t, err)
			assert.Contains(t, string(raw), tt.marker)
		})
	}
}

func TestWelcome_Layout(t *testing.T) {
	root := Welcome(nil).Root.(*StackNode)

	require.Len(t, root.Children, 3)
	assert.Equal(t, ToneWarning, root.Children[0].(*BadgeNode).Props.Tone)

	row := root.Children[2].(*StackNode)
	assert.Equal(t, "horizontal", row.Props.Direction)
	require.Len(t, row.Children, 3)
	for i, label := range DefaultCategories {
		button := row.Children[i].(*CTAButtonNode)
		assert.Equal(t, label, button.Props.Label)
		assert.Equal(t, ActionOpenMenu, button.Props.Action)
	}
}

func TestChefsChoice_Content(t *testing.T) {
	root := ChefsChoice(&Pick{Name: "Masala Dosa", Category: "South Indian", Price: 150, Image: "assets/dosa.png"}).Root.(*StackNode)

	require.Len(t, root.Children, 4)
	assert.Equal(t, "Masala Dosa is balanced on flavor, value, and crowd appeal.", root.Children[1].(*TextNode).Props.Text)
	assert.Equal(t, "Best with: South Indian • ₹150", root.Children[2].(*TextNode).Props.Text)

	image := root.Children[3].(*ImageNode)
	assert.Equal(t, "/food-images/dosa.png", image.Props.Src)
	assert.Equal(t, "Masala Dosa", image.Props.Alt)
	assert.Equal(t, "16:9", image.Props.AspectRatio)
}

func TestChefsChoice_NoImageWithoutSource(t *testing.T) {
	root := ChefsChoice(&Pick{Name: "Chaat", Category: "Street Food", Price: 60}).Root.(*StackNode)
	assert.Len(t, root.Children, 3)

	generic := ChefsChoice(nil).Root.(*StackNode)
	assert.Len(t, generic.Children, 2)
}

func TestAllergySafety_TruncatesEcho(t *testing.T) {
	message := "  " + strings.Repeat("peanut ", 30)
	root := AllergySafety(message).Root.(*StackNode)

	noted := root.Children[2].(*TextNode).Props.Text
	inner := strings.TrimSuffix(strings.TrimPrefix(noted, `Noted: "`), `"`)
	assert.Equal(t, 80, utf8.RuneCountInString(inner))
	assert.True(t, strings.HasPrefix(inner, "peanut"))
	assert.Equal(t, ToneDanger, root.Children[0].(*BadgeNode).Props.Tone)
}

func TestNormalizeImagePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"/food-images/a.jpg", "/food-images/a.jpg"},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"images/nested/b.png", "/food-images/b.png"},
		{"c.webp", "/food-images/c.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeImagePath(tt.input))
		})
	}
}
