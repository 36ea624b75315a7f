package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/menu"
	"swaad-chat/internal/models"
)

type menuResponse struct {
	Items      []models.FoodItem `json:"items"`
	Count      int               `json:"count"`
	Categories []string          `json:"categories"`
}

// filtersFromQuery maps ?q=&category=&type=&spiceLevel=&maxCalories=
// &minProtein=&maxCarbs=&maxPrice=&ingredient= onto menu filters.
// Unparseable numbers are ignored.
func filtersFromQuery(q url.Values) menu.Filters {
	f := menu.Filters{
		Query:      strings.TrimSpace(q.Get("q")),
		Category:   strings.TrimSpace(q.Get("category")),
		Type:       models.DietaryType(strings.TrimSpace(q.Get("type"))),
		SpiceLevel: strings.TrimSpace(q.Get("spiceLevel")),
	}
	if v, err := strconv.Atoi(q.Get("maxCalories")); err == nil {
		f.MaxCalories = v
	}
	if v, err := strconv.Atoi(q.Get("maxPrice")); err == nil {
		f.MaxPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("minProtein"), 64); err == nil {
		f.MinProtein = v
	}
	if v, err := strconv.ParseFloat(q.Get("maxCarbs"), 64); err == nil {
		f.MaxCarbs = v
	}
	for _, ing := range q["ingredient"] {
		if ing = strings.TrimSpace(ing); ing != "" {
			f.Ingredients = append(f.Ingredients, ing)
		}
	}
	return f
}

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	var items []models.FoodItem
	if len(r.URL.Query()) == 0 {
		items = s.deps.Menu.All()
	} else {
		items = s.deps.Menu.Search(r.Context(), filtersFromQuery(r.URL.Query()))
	}
	if items == nil {
		items = []models.FoodItem{}
	}
	respondJSON(w, http.StatusOK, menuResponse{
		Items:      items,
		Count:      len(items),
		Categories: s.deps.Menu.Categories(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": s.deps.Menu.Categories(),
	})
}

func (s *Server) handleGetFood(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, apperrors.NewMenuItemNotFoundError(id))
		return
	}
	item, err := s.deps.Menu.Get(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}
