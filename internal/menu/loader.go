package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"swaad-chat/internal/models"
)

type dataset struct {
	Foods []models.FoodItem `json:"foods" yaml:"foods"`
}

// LoadFile reads a dataset from JSON or YAML, chosen by extension. Both a
// {"foods": [...]} document and a bare list are accepted.
func LoadFile(path string) ([]models.FoodItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu dataset: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) ([]models.FoodItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []models.FoodItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode menu json: %w", err)
		}
		return items, nil
	}

	var ds dataset
	if err := json.Unmarshal(trimmed, &ds); err != nil {
		return nil, fmt.Errorf("decode menu json: %w", err)
	}
	return ds.Foods, nil
}

func decodeYAML(data []byte) ([]models.FoodItem, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode menu yaml: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var items []models.FoodItem
		if err := node.Content[0].Decode(&items); err != nil {
			return nil, fmt.Errorf("decode menu yaml: %w", err)
		}
		return items, nil
	}

	var ds dataset
	if err := node.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode menu yaml: %w", err)
	}
	return ds.Foods, nil
}
