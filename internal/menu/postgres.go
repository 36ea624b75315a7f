package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"swaad-chat/internal/models"
)

const selectMenuItems = `
	SELECT id, name, image, description, category, type, spice_level,
	       ingredients, calories, protein, carbs, fat, price, serves, size_variants
	FROM menu_items
	ORDER BY id`

// LoadFromPostgres reads the menu_items table once. ingredients is a
// text[] column and size_variants a JSON column.
func LoadFromPostgres(ctx context.Context, db *sql.DB) ([]models.FoodItem, error) {
	rows, err := db.QueryContext(ctx, selectMenuItems)
	if err != nil {
		return nil, fmt.Errorf("query menu_items: %w", err)
	}
	defer rows.Close()

	var items []models.FoodItem
	for rows.Next() {
		var (
			item     models.FoodItem
			foodType string
			variants sql.NullString
		)
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Image,
			&item.Description,
			&item.Category,
			&foodType,
			&item.SpiceLevel,
			pq.Array(&item.Ingredients),
			&item.Nutrition.Calories,
			&item.Nutrition.Protein,
			&item.Nutrition.Carbs,
			&item.Nutrition.Fat,
			&item.Price,
			&item.Serves,
			&variants,
		); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		item.Type = models.DietaryType(foodType)

		if variants.Valid && variants.String != "" {
			if err := json.Unmarshal([]byte(variants.String), &item.SizeVariants); err != nil {
				return nil, fmt.Errorf("decode size variants for %d: %w", item.ID, err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu_items: %w", err)
	}
	return items, nil
}
