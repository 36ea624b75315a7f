package jsonui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swaad-chat/internal/common/errors"
)

func textNode(text string) map[string]interface{} {
	return map[string]interface{}{
		"component": "text",
		"props":     map[string]interface{}{"text": text},
	}
}

func stackNode(children ...interface{}) map[string]interface{} {
	return map[string]interface{}{
		"component": "stack",
		"props":     map[string]interface{}{"direction": "vertical", "gap": 1},
		"children":  children,
	}
}

func document(root interface{}) map[string]interface{} {
	return map[string]interface{}{"version": Version, "root": root}
}

func deepTree(depth int) interface{} {
	if depth <= 1 {
		return textNode("leaf")
	}
	return stackNode(deepTree(depth - 1))
}

func hasIssue(issues []string, fragment string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, fragment) {
			return true
		}
	}
	return false
}

func TestValidate_AcceptsValidPayload(t *testing.T) {
	result := Validate(document(map[string]interface{}{
		"component": "stack",
		"props":     map[string]interface{}{"direction": "vertical", "gap": 2},
		"children": []interface{}{
			map[string]interface{}{
				"component": "text",
				"props":     map[string]interface{}{"text": "Today's special", "tone": "default"},
			},
			map[string]interface{}{
				"component": "badge",
				"props":     map[string]interface{}{"label": "20% off", "tone": "success"},
			},
		},
	}))

	require.True(t, result.Valid, "issues: %v", result.Issues)
	require.NotNil(t, result.Schema)
	assert.Empty(t, result.Issues)
	assert.NoError(t, result.Err())

	root, ok := result.Schema.Root.(*StackNode)
	require.True(t, ok)
	require.Len(t, root.Children, 2)
	assert.Equal(t, KindText, root.Children[0].Kind())
	assert.Equal(t, "20% off", root.Children[1].(*BadgeNode).Props.Label)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		fragment string
	}{
		{
			name:     "unknown component",
			input:    document(map[string]interface{}{"component": "modal", "props": map[string]interface{}{}}),
			fragment: `root.component: unknown component "modal"`,
		},
		{
			name: "nested unknown component",
			input: document(stackNode(textNode("ok"), map[string]interface{}{
				"component": "iframe",
				"props":     map[string]interface{}{},
			})),
			fragment: `root.children.1.component: unknown component "iframe"`,
		},
		{
			name:     "tree deeper than limit",
			input:    document(deepTree(MaxDepth + 1)),
			fragment: "root.children.0.children.0.children.0.children.0.children.0: UI tree depth exceeds limit (5)",
		},
		{
			name:     "oversized text",
			input:    document(textNode(strings.Repeat("x", 20000))),
			fragment: "Payload size exceeds limit (12000 bytes)",
		},
		{
			name:     "wrong version",
			input:    map[string]interface{}{"version": "2", "root": textNode("hi")},
			fragment: "version",
		},
		{
			name: "unrecognized prop",
			input: document(map[string]interface{}{
				"component": "badge",
				"props":     map[string]interface{}{"label": "x", "onClick": "alert(1)"},
			}),
			fragment: "onClick",
		},
		{
			name: "leaf with children",
			input: document(map[string]interface{}{
				"component": "text",
				"props":     map[string]interface{}{"text": "x"},
				"children":  []interface{}{textNode("y")},
			}),
			fragment: "children",
		},
		{
			name: "script image source",
			input: document(map[string]interface{}{
				"component": "image",
				"props":     map[string]interface{}{"src": "javascript:alert(1)", "alt": "x"},
			}),
			fragment: "root.props.src",
		},
		{
			name: "gap out of range",
			input: document(map[string]interface{}{
				"component": "stack",
				"props":     map[string]interface{}{"gap": 9},
				"children":  []interface{}{textNode("x")},
			}),
			fragment: "root.props.gap",
		},
		{
			name: "action outside allow-list",
			input: document(map[string]interface{}{
				"component": "cta_button",
				"props":     map[string]interface{}{"label": "Pay", "action": "delete_account"},
			}),
			fragment: "root.props.action",
		},
		{
			name:     "missing root",
			input:    map[string]interface{}{"version": Version},
			fragment: "root",
		},
		{
			name:     "not an object",
			input:    "hello",
			fragment: "object",
		},
		{
			name:     "not json",
			input:    []byte(`{"version":`),
			fragment: "payload is not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			assert.False(t, result.Valid)
			assert.Nil(t, result.Schema)
			assert.True(t, hasIssue(result.Issues, tt.fragment), "issues %v missing %q", result.Issues, tt.fragment)
		})
	}
}

func TestValidate_NodeAndChildBudgets(t *testing.T) {
	t.Run("node count", func(t *testing.T) {
		var groups []interface{}
		for i := 0; i < 5; i++ {
			var leaves []interface{}
			for j := 0; j < 8; j++ {
				leaves = append(leaves, textNode("leaf"))
			}
			groups = append(groups, stackNode(leaves...))
		}

		result := Validate(document(stackNode(groups...)))

		assert.False(t, result.Valid)
		assert.True(t, hasIssue(result.Issues, "UI node count exceeds limit (40)"), "issues: %v", result.Issues)
	})

	t.Run("children per node", func(t *testing.T) {
		var leaves []interface{}
		for i := 0; i < MaxChildren+1; i++ {
			leaves = append(leaves, textNode("leaf"))
		}

		result := Validate(document(stackNode(leaves...)))

		assert.False(t, result.Valid)
		assert.Contains(t, result.Issues, "root.children: Child count exceeds limit (10)")
	})
}

func TestValidate_SizeRejectedEvenWhenStructurallyValid(t *testing.T) {
	wide := strings.Repeat("₹", 240)
	var groups []interface{}
	for i := 0; i < 3; i++ {
		var leaves []interface{}
		for j := 0; j < 10; j++ {
			leaves = append(leaves, textNode(wide))
		}
		groups = append(groups, stackNode(leaves...))
	}

	result := Validate(document(stackNode(groups...)))

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Payload size exceeds limit (12000 bytes)"}, result.Issues)
}

func TestValidate_CollectsAllIssues(t *testing.T) {
	root := stackNode(
		deepTree(MaxDepth),
		map[string]interface{}{
			"component": "badge",
			"props":     map[string]interface{}{"label": "x", "extra": true},
		},
	)

	result := Validate(document(root))

	assert.False(t, result.Valid)
	assert.True(t, hasIssue(result.Issues, "depth exceeds limit"))
	assert.True(t, hasIssue(result.Issues, "extra"))
	assert.GreaterOrEqual(t, len(result.Issues), 2)
}

func TestValidate_AcceptsRawAndTypedInput(t *testing.T) {
	raw, err := json.Marshal(Welcome(nil))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input interface{}
	}{
		{name: "schema", input: Welcome(nil)},
		{name: "bytes", input: raw},
		{name: "raw message", input: json.RawMessage(raw)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			assert.True(t, result.Valid, "issues: %v", result.Issues)
		})
	}
}

func TestValidate_AppliesStackDefaults(t *testing.T) {
	result := Validate(document(map[string]interface{}{
		"component": "stack",
		"props":     map[string]interface{}{},
		"children":  []interface{}{textNode("x")},
	}))

	require.True(t, result.Valid, "issues: %v", result.Issues)
	stack := result.Schema.Root.(*StackNode)
	assert.Equal(t, "vertical", stack.Props.Direction)
	assert.Equal(t, 2, stack.Props.Gap)
}

func TestValidate_IssuesDoNotRepeatField(t *testing.T) {
	result := Validate(document(map[string]interface{}{
		"component": "stack",
		"props":     map[string]interface{}{"direction": "diagonal"},
		"children":  []interface{}{textNode("x")},
	}))

	require.False(t, result.Valid)
	require.NotEmpty(t, result.Issues)
	for _, issue := range result.Issues {
		assert.NotContains(t, issue, "root.props.direction: root.props.direction")
	}
	assert.True(t, hasIssue(result.Issues, "root.props.direction: must be one of"), "issues %v", result.Issues)
}

func TestValidate_IntegralFloatGap(t *testing.T) {
	result := Validate(json.RawMessage(`{"version":"1","root":{"component":"stack","props":{"direction":"horizontal","gap":4.0},"children":[{"component":"text","props":{"text":"x"}}]}}`))

	require.True(t, result.Valid, "issues: %v", result.Issues)
	stack := result.Schema.Root.(*StackNode)
	assert.Equal(t, "horizontal", stack.Props.Direction)
	assert.Equal(t, 4, stack.Props.Gap)

	var props StackProps
	assert.Error(t, json.Unmarshal([]byte(`{"gap":2.5}`), &props))
}

func TestValidationResult_Err(t *testing.T) {
	result := Validate(document(map[string]interface{}{"component": "modal", "props": map[string]interface{}{}}))

	err := result.Err()
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeInvalidJSONUISchema, stdErr.Code)
	assert.EqualValues(t, len(result.Issues), stdErr.Metadata["issueCount"])
}

func TestSchema_LenientDecodeKeepsUnknownNodes(t *testing.T) {
	var schema Schema
	err := json.Unmarshal([]byte(`{"version":"1","root":{"component":"stack","props":{},"children":[{"component":"carousel","props":{"x":1}},{"component":"text","props":{"text":"hi"}}]}}`), &schema)
	require.NoError(t, err)

	stack := schema.Root.(*StackNode)
	require.Len(t, stack.Children, 2)
	assert.Equal(t, Kind("carousel"), stack.Children[0].Kind())
	_, isUnknown := stack.Children[0].(*UnknownNode)
	assert.True(t, isUnknown)
}
