package menu

import (
	"errors"
	"fmt"
	"sort"

	"swaad-chat/internal/models"
)

var (
	ErrDuplicateID = errors.New("duplicate food id")
	ErrInvalidItem = errors.New("invalid food item")
	ErrEmptyMenu   = errors.New("menu dataset is empty")
)

// Catalog is the immutable in-memory menu. It is safe for concurrent reads.
type Catalog struct {
	items []models.FoodItem
	byID  map[int]int
}

func NewCatalog(items []models.FoodItem) (*Catalog, error) {
	if len(items) == 0 {
		return nil, ErrEmptyMenu
	}

	c := &Catalog{
		items: make([]models.FoodItem, len(items)),
		byID:  make(map[int]int, len(items)),
	}
	copy(c.items, items)

	for i := range c.items {
		item := &c.items[i]
		if item.ID <= 0 || item.Name == "" {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidItem, i)
		}
		if _, exists := c.byID[item.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, item.ID)
		}
		c.byID[item.ID] = i
	}
	return c, nil
}

// All returns a copy of every item in dataset order.
func (c *Catalog) All() []models.FoodItem {
	out := make([]models.FoodItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Get(id int) (models.FoodItem, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return models.FoodItem{}, false
	}
	return c.items[idx], true
}

func (c *Catalog) Count() int {
	return len(c.items)
}

// Categories returns the unique categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range c.items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) ByCategory() map[string][]models.FoodItem {
	grouped := make(map[string][]models.FoodItem)
	for _, item := range c.items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	return grouped
}

// Search filters the whole catalog in dataset order.
func (c *Catalog) Search(f Filters) []models.FoodItem {
	var out []models.FoodItem
	for i := range c.items {
		if f.Matches(&c.items[i]) {
			out = append(out, c.items[i])
		}
	}
	return out
}
