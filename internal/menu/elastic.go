package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/models"
)

var ErrMissingIndex = errors.New("index name is required")

const maxSearchSize = 100

// ElasticIndex searches a menu_items index whose documents are FoodItem
// JSON. Nutrition strings such as "24g" are not range-queryable, so the
// protein and carb thresholds are applied to the hits afterwards.
type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticIndex(client *elasticsearch.Client, index string, log logger.Logger) (*ElasticIndex, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	return &ElasticIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "menu-elastic", "index": index}),
	}, nil
}

// BuildSearchRequest translates filters into a bool query.
func BuildSearchRequest(index string, f Filters, size int) (*esapi.SearchRequest, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	if size < 1 || size > maxSearchSize {
		size = maxSearchSize
	}

	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if query := strings.TrimSpace(f.Query); query != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":    query,
				"fields":   []string{"name^3", "description^2", "category", "type", "spiceLevel", "ingredients"},
				"type":     "cross_fields",
				"operator": "and",
			},
		})
	}
	if f.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"match_phrase": map[string]interface{}{"category": f.Category},
		})
	}
	if f.Type != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"match_phrase": map[string]interface{}{"type": string(f.Type)},
		})
	}
	if f.SpiceLevel != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"match": map[string]interface{}{"spiceLevel": f.SpiceLevel},
		})
	}
	if f.MaxCalories > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"nutrition.calories": map[string]interface{}{"lte": f.MaxCalories}},
		})
	}
	if f.MaxPrice > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"price": map[string]interface{}{"lte": f.MaxPrice}},
		})
	}
	if len(f.Ingredients) > 0 {
		should := make([]interface{}, 0, len(f.Ingredients))
		for _, ingredient := range f.Ingredients {
			should = append(should, map[string]interface{}{
				"match": map[string]interface{}{"ingredients": ingredient},
			})
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{"should": should, "minimum_should_match": 1},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{"_score", map[string]interface{}{"id": "asc"}},
	})
	if err != nil {
		return nil, err
	}

	return &esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.FoodItem `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ElasticIndex) Search(ctx context.Context, f Filters, limit int) ([]models.FoodItem, error) {
	req, err := BuildSearchRequest(e.index, f, limit)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", e.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	post := Filters{MinProtein: f.MinProtein, MaxCarbs: f.MaxCarbs}
	items := make([]models.FoodItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if post.Matches(&hit.Source) {
			items = append(items, hit.Source)
		}
	}

	e.logger.Debug("menu search completed", map[string]interface{}{
		"query": f.Query,
		"hits":  len(items),
	})
	return items, nil
}

// IndexItems writes every item under its id and refreshes once at the end.
func (e *ElasticIndex) IndexItems(ctx context.Context, items []models.FoodItem) error {
	for _, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			return err
		}
		req := esapi.IndexRequest{
			Index:      e.index,
			DocumentID: strconv.Itoa(item.ID),
			Body:       bytes.NewReader(body),
		}
		res, err := req.Do(ctx, e.client)
		if err != nil {
			return fmt.Errorf("index item %d: %w", item.ID, err)
		}
		failed := res.IsError()
		status := res.String()
		res.Body.Close()
		if failed {
			return fmt.Errorf("index item %d: %s", item.ID, status)
		}
	}

	res, err := esapi.IndicesRefreshRequest{Index: []string{e.index}}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", e.index, err)
	}
	defer res.Body.Close()

	e.logger.Info("menu indexed", map[string]interface{}{"count": len(items)})
	return nil
}
