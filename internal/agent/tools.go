package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"swaad-chat/internal/llm"
	"swaad-chat/internal/menu"
	"swaad-chat/internal/models"
)

const (
	ToolSearchFood     = "search_food"
	ToolGetFoodDetails = "get_food_details"
	ToolGetCategories  = "get_categories"
	ToolAddToCart      = "add_to_cart"
	ToolRemoveFromCart = "remove_from_cart"
	ToolGetCart        = "get_cart"
	ToolStartCheckout  = "start_checkout"

	defaultSearchCap = 8
)

// Menu is the part of the menu service the tools need.
type Menu interface {
	Get(id int) (models.FoodItem, error)
	Search(ctx context.Context, f menu.Filters) []models.FoodItem
	Categories() []string
	Count() int
}

// Toolbox holds the menu-backed tools. Cart tools never mutate server
// state; they report what the client should do.
type Toolbox struct {
	menu      Menu
	searchCap int
}

func NewToolbox(m Menu, searchCap int) *Toolbox {
	if searchCap <= 0 {
		searchCap = defaultSearchCap
	}
	return &Toolbox{menu: m, searchCap: searchCap}
}

// ForTurn binds the tools to the cart the client sent with this turn.
func (t *Toolbox) ForTurn(cart []models.CartItem) *TurnTools {
	return &TurnTools{box: t, cart: cart}
}

// TurnTools implements llm.ToolExecutor for a single turn.
type TurnTools struct {
	box  *Toolbox
	cart []models.CartItem
}

func (tt *TurnTools) Definitions() []llm.ToolDefinition {
	return toolDefinitions
}

func (tt *TurnTools) Execute(ctx context.Context, name, arguments string) (string, error) {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}

	var (
		out interface{}
		err error
	)
	switch name {
	case ToolSearchFood:
		out, err = tt.searchFood(ctx, arguments)
	case ToolGetFoodDetails:
		out, err = tt.foodDetails(arguments)
	case ToolGetCategories:
		out = tt.categories()
	case ToolAddToCart:
		out, err = tt.addToCart(arguments)
	case ToolRemoveFromCart:
		out, err = tt.removeFromCart(arguments)
	case ToolGetCart:
		out = tt.showCart()
	case ToolStartCheckout:
		out = tt.checkout()
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode %s result: %w", name, err)
	}
	return string(data), nil
}

type searchArgs struct {
	Query       string   `json:"query"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	SpiceLevel  string   `json:"spiceLevel"`
	MaxCalories int      `json:"maxCalories"`
	MinProtein  float64  `json:"minProtein"`
	MaxCarbs    float64  `json:"maxCarbs"`
	MaxPrice    int      `json:"maxPrice"`
	Ingredients []string `json:"ingredients"`
}

type searchResult struct {
	models.ToolEnvelope
	Found   int      `json:"found"`
	Showing int      `json:"showing,omitempty"`
	Items   []string `json:"items"`
}

func (tt *TurnTools) searchFood(ctx context.Context, arguments string) (interface{}, error) {
	var args searchArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("invalid search_food arguments: %w", err)
	}

	dietary := models.DietaryType(args.Type)
	if dietary != "" && !dietary.Valid() {
		return errorResult(fmt.Sprintf("type must be %q or %q", models.Vegetarian, models.NonVegetarian)), nil
	}

	results := tt.box.menu.Search(ctx, menu.Filters{
		Query:       args.Query,
		Category:    args.Category,
		Type:        dietary,
		SpiceLevel:  args.SpiceLevel,
		MaxCalories: args.MaxCalories,
		MinProtein:  args.MinProtein,
		MaxCarbs:    args.MaxCarbs,
		MaxPrice:    args.MaxPrice,
		Ingredients: args.Ingredients,
	})

	if len(results) == 0 {
		return searchResult{
			ToolEnvelope: models.ToolEnvelope{Kind: models.ToolKindSearchResults, Message: "No items match those criteria."},
			Items:        []string{},
		}, nil
	}

	capped := results
	if len(capped) > tt.box.searchCap {
		capped = capped[:tt.box.searchCap]
	}
	summaries := make([]string, len(capped))
	for i := range capped {
		summaries[i] = formatFood(&capped[i])
	}

	return searchResult{
		ToolEnvelope: models.ToolEnvelope{Kind: models.ToolKindSearchResults, FoodItems: capped},
		Found:        len(results),
		Showing:      len(capped),
		Items:        summaries,
	}, nil
}

type foodIDArgs struct {
	FoodID   int `json:"foodId"`
	Quantity int `json:"quantity"`
}

type detailsResult struct {
	models.ToolEnvelope
	Summary     string           `json:"summary"`
	Description string           `json:"description"`
	Ingredients string           `json:"ingredients"`
	Nutrition   models.Nutrition `json:"nutrition"`
}

func (tt *TurnTools) foodDetails(arguments string) (interface{}, error) {
	var args foodIDArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("invalid get_food_details arguments: %w", err)
	}
	food, err := tt.box.menu.Get(args.FoodID)
	if err != nil {
		return errorResult(fmt.Sprintf("No food found with ID %d", args.FoodID)), nil
	}
	return detailsResult{
		ToolEnvelope: models.ToolEnvelope{Kind: models.ToolKindFoodDetails, FoodItems: []models.FoodItem{food}},
		Summary:      formatFood(&food),
		Description:  food.Description,
		Ingredients:  strings.Join(food.Ingredients, ", "),
		Nutrition:    food.Nutrition,
	}, nil
}

type categoriesResult struct {
	models.ToolEnvelope
	Categories []string `json:"categories"`
	TotalItems int      `json:"totalItems"`
}

func (tt *TurnTools) categories() interface{} {
	return categoriesResult{
		ToolEnvelope: models.ToolEnvelope{Kind: models.ToolKindCategories},
		Categories:   tt.box.menu.Categories(),
		TotalItems:   tt.box.menu.Count(),
	}
}

func (tt *TurnTools) addToCart(arguments string) (interface{}, error) {
	var args foodIDArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("invalid add_to_cart arguments: %w", err)
	}
	quantity := args.Quantity
	if quantity < 1 {
		quantity = 1
	}

	food, err := tt.box.menu.Get(args.FoodID)
	if err != nil {
		return models.ToolEnvelope{
			Kind:    models.ToolKindCartUpdate,
			Action:  models.ActionAddToCart,
			Success: models.Bool(false),
			Error:   fmt.Sprintf("Food item with ID %d not found", args.FoodID),
		}, nil
	}

	return models.ToolEnvelope{
		Kind:    models.ToolKindCartUpdate,
		Action:  models.ActionAddToCart,
		Success: models.Bool(true),
		Item: &models.CartLine{
			FoodID:   food.ID,
			Name:     food.Name,
			Price:    food.Price,
			Quantity: quantity,
		},
		FoodItem: &food,
		Message:  fmt.Sprintf("Added %dx %s (₹%d each) to cart", quantity, food.Name, food.Price),
	}, nil
}

func (tt *TurnTools) removeFromCart(arguments string) (interface{}, error) {
	var args foodIDArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("invalid remove_from_cart arguments: %w", err)
	}
	if args.FoodID <= 0 {
		return models.ToolEnvelope{
			Kind:    models.ToolKindCartUpdate,
			Action:  models.ActionRemoveFromCart,
			Success: models.Bool(false),
			Error:   "foodId is required",
		}, nil
	}
	return models.ToolEnvelope{
		Kind:    models.ToolKindCartUpdate,
		Action:  models.ActionRemoveFromCart,
		Success: models.Bool(true),
		FoodID:  args.FoodID,
		Message: fmt.Sprintf("Removed item %d from cart", args.FoodID),
	}, nil
}

type cartResult struct {
	models.ToolEnvelope
	Cart string `json:"cart"`
}

func (tt *TurnTools) showCart() interface{} {
	return cartResult{
		ToolEnvelope: models.ToolEnvelope{
			Kind:    models.ToolKindCartView,
			Action:  models.ActionShowCart,
			Success: models.Bool(true),
		},
		Cart: CartSummary(tt.cart),
	}
}

func (tt *TurnTools) checkout() interface{} {
	if len(tt.cart) == 0 {
		return models.ToolEnvelope{
			Kind:    models.ToolKindCheckout,
			Action:  models.ActionCheckout,
			Success: models.Bool(false),
			Error:   "Cart is empty. Add something before checking out.",
		}
	}
	return cartResult{
		ToolEnvelope: models.ToolEnvelope{
			Kind:    models.ToolKindCheckout,
			Action:  models.ActionCheckout,
			Success: models.Bool(true),
			Message: "Checkout is ready. Ask the customer to confirm delivery details.",
		},
		Cart: CartSummary(tt.cart),
	}
}

func errorResult(msg string) models.ToolEnvelope {
	return models.ToolEnvelope{Kind: models.ToolKindError, Error: msg}
}

// formatFood is the one-line summary the model reads instead of the full
// item.
func formatFood(f *models.FoodItem) string {
	return fmt.Sprintf("[ID:%d] %s (%s) - %s - ₹%d - %s spice - %d cal, %s protein",
		f.ID, f.Name, f.Category, f.Type, f.Price, f.SpiceLevel, f.Nutrition.Calories, f.Nutrition.Protein)
}

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

var toolDefinitions = []llm.ToolDefinition{
	{
		Name:        ToolSearchFood,
		Description: "Search the restaurant menu by keywords, dietary type, category, spice level, nutrition, price or ingredients. Use this whenever the user asks about food options, recommendations or dietary requirements.",
		Parameters: object(map[string]interface{}{
			"query":       prop("string", "Search keywords such as 'chicken', 'paneer' or 'biryani'. Every keyword must match name, description, category or ingredients."),
			"category":    prop("string", "Category such as 'North Indian', 'South Indian' or 'Street Food'"),
			"type":        map[string]interface{}{"type": "string", "enum": []string{string(models.Vegetarian), string(models.NonVegetarian)}, "description": "Dietary type"},
			"spiceLevel":  prop("string", "Spice level such as 'Mild', 'Medium' or 'Hot'"),
			"maxCalories": prop("integer", "Maximum calories per serving"),
			"minProtein":  prop("number", "Minimum protein in grams"),
			"maxCarbs":    prop("number", "Maximum carbohydrates in grams"),
			"maxPrice":    prop("integer", "Maximum price in INR"),
			"ingredients": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Match dishes containing any of these ingredients",
			},
		}),
	},
	{
		Name:        ToolGetFoodDetails,
		Description: "Get the description, ingredients and nutrition of one dish by its ID.",
		Parameters:  object(map[string]interface{}{"foodId": prop("integer", "The ID of the food item")}, "foodId"),
	},
	{
		Name:        ToolGetCategories,
		Description: "List all menu categories and the total number of items.",
		Parameters:  object(map[string]interface{}{}),
	},
	{
		Name:        ToolAddToCart,
		Description: "Add a dish to the customer's cart when they ask for it or accept a suggestion.",
		Parameters: object(map[string]interface{}{
			"foodId":   prop("integer", "The ID of the food item to add"),
			"quantity": prop("integer", "How many to add (default 1)"),
		}, "foodId"),
	},
	{
		Name:        ToolRemoveFromCart,
		Description: "Remove a dish from the customer's cart.",
		Parameters:  object(map[string]interface{}{"foodId": prop("integer", "The ID of the food item to remove")}, "foodId"),
	},
	{
		Name:        ToolGetCart,
		Description: "Show the customer's current cart, for example when they ask what they have ordered.",
		Parameters:  object(map[string]interface{}{}),
	},
	{
		Name:        ToolStartCheckout,
		Description: "Start checkout for the current cart when the customer is ready to order.",
		Parameters:  object(map[string]interface{}{}),
	},
}
