package models

// DietaryType is the menu's vegetarian marker.
type DietaryType string

const (
	Vegetarian    DietaryType = "Vegetarian"
	NonVegetarian DietaryType = "Non-Vegetarian"
)

// Valid reports whether t is one of the two known dietary types.
func (t DietaryType) Valid() bool {
	return t == Vegetarian || t == NonVegetarian
}

type Nutrition struct {
	Calories int    `json:"calories" yaml:"calories"`
	Protein  string `json:"protein" yaml:"protein"`
	Carbs    string `json:"carbs" yaml:"carbs"`
	Fat      string `json:"fat" yaml:"fat"`
}

type SizeVariant struct {
	Size  string `json:"size" yaml:"size"`
	Price int    `json:"price" yaml:"price"`
}

// FoodItem is an immutable menu record, loaded once at startup.
type FoodItem struct {
	ID           int           `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Image        string        `json:"image" yaml:"image"`
	Description  string        `json:"description" yaml:"description"`
	Category     string        `json:"category" yaml:"category"`
	Type         DietaryType   `json:"type" yaml:"type"`
	SpiceLevel   string        `json:"spiceLevel" yaml:"spiceLevel"`
	Ingredients  []string      `json:"ingredients" yaml:"ingredients"`
	Nutrition    Nutrition     `json:"nutrition" yaml:"nutrition"`
	Price        int           `json:"price" yaml:"price"`
	Serves       int           `json:"serves" yaml:"serves"`
	SizeVariants []SizeVariant `json:"sizeVariants,omitempty" yaml:"sizeVariants,omitempty"`
}

// Complete reports whether the record carries enough to be rendered as a
// card or added to a cart.
func (f *FoodItem) Complete() bool {
	return f != nil && f.ID > 0 && f.Name != "" && f.Category != "" && f.Price > 0
}
