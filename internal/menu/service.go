package menu

import (
	"context"

	"swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/models"
)

// Searcher is an external search backend.
type Searcher interface {
	Search(ctx context.Context, f Filters, limit int) ([]models.FoodItem, error)
}

// Service answers menu lookups from the catalog and delegates keyword
// search to an optional backend, falling back to the catalog when the
// backend fails.
type Service struct {
	catalog  *Catalog
	searcher Searcher
	logger   logger.Logger
}

func NewService(catalog *Catalog, searcher Searcher, log logger.Logger) *Service {
	return &Service{
		catalog:  catalog,
		searcher: searcher,
		logger:   log.WithFields(map[string]interface{}{"component": "menu"}),
	}
}

func (s *Service) All() []models.FoodItem {
	return s.catalog.All()
}

func (s *Service) Count() int {
	return s.catalog.Count()
}

func (s *Service) Categories() []string {
	return s.catalog.Categories()
}

func (s *Service) ByCategory() map[string][]models.FoodItem {
	return s.catalog.ByCategory()
}

// Get returns MENU_ITEM_NOT_FOUND for unknown ids.
func (s *Service) Get(id int) (models.FoodItem, error) {
	item, ok := s.catalog.Get(id)
	if !ok {
		return models.FoodItem{}, errors.NewMenuItemNotFoundError(id)
	}
	return item, nil
}

// Search returns every match; callers cap the list themselves.
func (s *Service) Search(ctx context.Context, f Filters) []models.FoodItem {
	if s.searcher == nil {
		return s.catalog.Search(f)
	}

	items, err := s.searcher.Search(ctx, f, s.catalog.Count())
	if err != nil {
		s.logger.Warn("search backend failed, using catalog", map[string]interface{}{
			"error": errors.NewSearchQueryFailedError("elasticsearch", err),
		})
		return s.catalog.Search(f)
	}
	return items
}
