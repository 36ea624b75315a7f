package menu

import (
	"strconv"
	"strings"

	"swaad-chat/internal/models"
)

// Filters narrows a menu search. Zero values mean "no filter".
type Filters struct {
	Query       string             `json:"query,omitempty"`
	Category    string             `json:"category,omitempty"`
	Type        models.DietaryType `json:"type,omitempty"`
	SpiceLevel  string             `json:"spiceLevel,omitempty"`
	MaxCalories int                `json:"maxCalories,omitempty"`
	MinProtein  float64            `json:"minProtein,omitempty"`
	MaxCarbs    float64            `json:"maxCarbs,omitempty"`
	MaxPrice    int                `json:"maxPrice,omitempty"`
	Ingredients []string           `json:"ingredients,omitempty"`
}

// Terms splits the keyword query on whitespace, lower-cased.
func (f Filters) Terms() []string {
	return strings.Fields(strings.ToLower(f.Query))
}

// Matches applies every filter. Keyword terms are ANDed across name,
// description, category, type, spice level and ingredients; ingredient
// filters match when any requested ingredient is present.
func (f Filters) Matches(item *models.FoodItem) bool {
	if terms := f.Terms(); len(terms) > 0 {
		haystack := searchableText(item)
		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				return false
			}
		}
	}

	if f.Category != "" && !containsFold(item.Category, f.Category) {
		return false
	}
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if f.SpiceLevel != "" && !containsFold(item.SpiceLevel, f.SpiceLevel) {
		return false
	}
	if f.MaxCalories > 0 && item.Nutrition.Calories > f.MaxCalories {
		return false
	}
	if f.MinProtein > 0 && gramsOf(item.Nutrition.Protein) < f.MinProtein {
		return false
	}
	if f.MaxCarbs > 0 && gramsOf(item.Nutrition.Carbs) > f.MaxCarbs {
		return false
	}
	if f.MaxPrice > 0 && item.Price > f.MaxPrice {
		return false
	}

	if len(f.Ingredients) > 0 {
		found := false
		for _, want := range f.Ingredients {
			for _, have := range item.Ingredients {
				if containsFold(have, want) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func searchableText(item *models.FoodItem) string {
	parts := []string{item.Name, item.Description, item.Category, string(item.Type), item.SpiceLevel}
	parts = append(parts, item.Ingredients...)
	return strings.ToLower(strings.Join(parts, " "))
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// gramsOf reads the leading number of a display string like "24g".
func gramsOf(display string) float64 {
	display = strings.TrimSpace(display)
	end := 0
	for end < len(display) && (display[end] == '.' || (display[end] >= '0' && display[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(display[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
