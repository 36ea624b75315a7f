package jsonui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"swaad-chat/internal/common/errors"
)

// documentSchema is the structural grammar. Whole-tree budgets (depth,
// node count, byte size) are checked separately by the budget walk.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "root"],
  "additionalProperties": false,
  "properties": {
    "version": {"const": "1"},
    "root": {"$ref": "#/definitions/node"}
  },
  "definitions": {
    "tone": {"enum": ["default", "muted", "success", "warning", "danger"]},
    "node": {
      "type": "object",
      "required": ["component", "props"],
      "properties": {
        "component": {"enum": ["text", "badge", "image", "cta_button", "stack"]}
      },
      "allOf": [
        {"if": {"required": ["component"], "properties": {"component": {"const": "text"}}}, "then": {"$ref": "#/definitions/textNode"}},
        {"if": {"required": ["component"], "properties": {"component": {"const": "badge"}}}, "then": {"$ref": "#/definitions/badgeNode"}},
        {"if": {"required": ["component"], "properties": {"component": {"const": "image"}}}, "then": {"$ref": "#/definitions/imageNode"}},
        {"if": {"required": ["component"], "properties": {"component": {"const": "cta_button"}}}, "then": {"$ref": "#/definitions/ctaButtonNode"}},
        {"if": {"required": ["component"], "properties": {"component": {"const": "stack"}}}, "then": {"$ref": "#/definitions/stackNode"}}
      ]
    },
    "textNode": {
      "additionalProperties": false,
      "properties": {
        "component": {},
        "props": {
          "type": "object",
          "required": ["text"],
          "additionalProperties": false,
          "properties": {
            "text": {"type": "string", "minLength": 1, "maxLength": 240},
            "tone": {"$ref": "#/definitions/tone"},
            "align": {"enum": ["left", "center", "right"]},
            "size": {"enum": ["sm", "md", "lg"]},
            "weight": {"enum": ["normal", "medium", "semibold", "bold"]}
          }
        }
      }
    },
    "badgeNode": {
      "additionalProperties": false,
      "properties": {
        "component": {},
        "props": {
          "type": "object",
          "required": ["label"],
          "additionalProperties": false,
          "properties": {
            "label": {"type": "string", "minLength": 1, "maxLength": 80},
            "tone": {"$ref": "#/definitions/tone"}
          }
        }
      }
    },
    "imageNode": {
      "additionalProperties": false,
      "properties": {
        "component": {},
        "props": {
          "type": "object",
          "required": ["src", "alt"],
          "additionalProperties": false,
          "properties": {
            "src": {"type": "string", "minLength": 1, "maxLength": 500, "pattern": "^(/|https?://)"},
            "alt": {"type": "string", "minLength": 1, "maxLength": 120},
            "aspectRatio": {"enum": ["1:1", "4:3", "16:9"]}
          }
        }
      }
    },
    "ctaButtonNode": {
      "additionalProperties": false,
      "properties": {
        "component": {},
        "props": {
          "type": "object",
          "required": ["label", "action"],
          "additionalProperties": false,
          "properties": {
            "label": {"type": "string", "minLength": 1, "maxLength": 80},
            "action": {"enum": ["open_menu", "show_cart", "checkout"]},
            "variant": {"enum": ["primary", "secondary", "ghost"]}
          }
        }
      }
    },
    "stackNode": {
      "required": ["children"],
      "additionalProperties": false,
      "properties": {
        "component": {},
        "props": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "direction": {"enum": ["vertical", "horizontal"]},
            "gap": {"type": "integer", "minimum": 0, "maximum": 8},
            "align": {"enum": ["start", "center", "end", "stretch"]},
            "justify": {"enum": ["start", "center", "end", "between"]}
          }
        },
        "children": {
          "type": "array",
          "minItems": 1,
          "maxItems": 10,
          "items": {"$ref": "#/definitions/node"}
        }
      }
    }
  }
}`

// rawSizeCeiling short-circuits payloads so large that decoding them is
// already a cost we refuse to pay.
const rawSizeCeiling = 4 * MaxBytes

// wrapper errors gojsonschema emits next to the concrete failure.
var wrapperErrorTypes = map[string]bool{
	"condition_then": true,
	"condition_else": true,
	"number_all_of":  true,
	"number_any_of":  true,
	"number_one_of":  true,
}

// ValidationResult is all-or-nothing: Schema is set only when Issues is empty.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Schema *Schema  `json:"schema,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

// Err converts a failed result into INVALID_JSON_UI_SCHEMA.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.NewInvalidJSONUISchemaError(r.Issues)
}

type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile json_ui schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

var defaultValidator = mustValidator()

func mustValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate runs the package validator.
func Validate(input interface{}) *ValidationResult {
	return defaultValidator.Validate(input)
}

// Validate accepts a decoded value, raw JSON bytes or a *Schema and
// collects every structural and budget issue before deciding.
func (v *Validator) Validate(input interface{}) *ValidationResult {
	raw, err := toRaw(input)
	if err != nil {
		return invalid(fmt.Sprintf("payload is not encodable: %v", err))
	}
	if len(raw) > rawSizeCeiling {
		return invalid(sizeIssue())
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid(fmt.Sprintf("payload is not valid JSON: %v", err))
	}

	issues := v.structuralIssues(doc)

	if obj, ok := doc.(map[string]interface{}); ok {
		if root, exists := obj["root"]; exists {
			issues = append(issues, walkBudget(root)...)
		}
	}

	size, err := serializedSize(doc)
	if err != nil || size > MaxBytes {
		issues = append(issues, sizeIssue())
	}

	if len(issues) > 0 {
		return &ValidationResult{Valid: false, Issues: issues}
	}

	var schema Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return invalid(fmt.Sprintf("payload could not be decoded: %v", err))
	}
	return &ValidationResult{Valid: true, Schema: &schema}
}

func (v *Validator) structuralIssues(doc interface{}) []string {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []string{fmt.Sprintf("payload could not be checked: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	var issues, wrappers []string
	for _, re := range result.Errors() {
		issue := describe(re)
		if wrapperErrorTypes[re.Type()] {
			wrappers = append(wrappers, issue)
			continue
		}
		issues = append(issues, issue)
	}
	if len(issues) == 0 {
		return wrappers
	}
	return issues
}

// budget is the accumulator carried through the pre-order walk.
type budget struct {
	nodes  int
	issues []string
}

func walkBudget(root interface{}) []string {
	b := &budget{}
	b.walk(root, 1, "root")
	return b.issues
}

func (b *budget) walk(node interface{}, depth int, path string) {
	b.nodes++

	if depth > MaxDepth {
		b.issues = append(b.issues, formatIssue(path, fmt.Sprintf("UI tree depth exceeds limit (%d)", MaxDepth)))
	}
	if b.nodes > MaxNodes {
		b.issues = append(b.issues, formatIssue(path, fmt.Sprintf("UI node count exceeds limit (%d)", MaxNodes)))
	}

	obj, _ := node.(map[string]interface{})
	children, _ := obj["children"].([]interface{})
	if len(children) > MaxChildren {
		b.issues = append(b.issues, formatIssue(path+".children", fmt.Sprintf("Child count exceeds limit (%d)", MaxChildren)))
	}

	for i, child := range children {
		b.walk(child, depth+1, fmt.Sprintf("%s.children.%d", path, i))
	}
}

// serializedSize measures the compact UTF-8 encoding without HTML escaping.
func serializedSize(doc interface{}) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return 0, err
	}
	return len(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func toRaw(input interface{}) ([]byte, error) {
	switch v := input.(type) {
	case nil:
		return []byte("null"), nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// describe drops the field name gojsonschema repeats at the start of its
// descriptions and names the offending kind for unknown components.
func describe(re gojsonschema.ResultError) string {
	field := re.Field()
	if re.Type() == "enum" && (field == "component" || strings.HasSuffix(field, ".component")) {
		return formatIssue(field, fmt.Sprintf("unknown component %q", fmt.Sprint(re.Value())))
	}
	return formatIssue(field, strings.TrimPrefix(re.Description(), field+" "))
}

func formatIssue(path, message string) string {
	if path == "" || path == "(root)" {
		return message
	}
	return path + ": " + message
}

func sizeIssue() string {
	return fmt.Sprintf("Payload size exceeds limit (%d bytes)", MaxBytes)
}

func invalid(issue string) *ValidationResult {
	return &ValidationResult{Valid: false, Issues: []string{issue}}
}
