package jsonui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swaad-chat/internal/common/logger"
)

func newTestRenderer(t *testing.T, registry *Registry) *Renderer {
	t.Helper()
	log := logger.NewTestLogger(t)
	return NewRenderer(registry, NewActionDispatcher(nil, log), log)
}

func findAll(el *Element, tag string) []*Element {
	if el == nil {
		return nil
	}
	var out []*Element
	if el.Tag == tag {
		out = append(out, el)
	}
	for _, child := range el.Children {
		out = append(out, findAll(child, tag)...)
	}
	return out
}

func depthOf(el *Element) int {
	if el == nil {
		return 0
	}
	deepest := 0
	for _, child := range el.Children {
		if d := depthOf(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

func TestRender_Welcome(t *testing.T) {
	out := newTestRenderer(t, nil).Render(Welcome(nil))

	require.NotNil(t, out)
	assert.False(t, out.IsFallback())
	assert.Len(t, findAll(out, "span"), 1)

	buttons := findAll(out, "button")
	require.Len(t, buttons, 3)
	assert.Equal(t, "/menu?category=North%20Indian", buttons[0].Attrs["data-target"])
	assert.Equal(t, "open_menu", buttons[0].Attrs["data-action"])
}

func TestRender_ValidatedRoundTrip(t *testing.T) {
	result := Validate(ChefsChoice(&Pick{Name: "Vada Pav", Category: "Street Food", Price: 40, Image: "vada.jpg"}))
	require.True(t, result.Valid, "issues: %v", result.Issues)

	out := newTestRenderer(t, nil).Render(result.Schema)

	images := findAll(out, "img")
	require.Len(t, images, 1)
	assert.Equal(t, "/food-images/vada.jpg", images[0].Attrs["src"])
}

func TestRender_SkipsKindsMissingFromRegistry(t *testing.T) {
	result := Validate(Welcome(nil))
	require.True(t, result.Valid)

	out := newTestRenderer(t, DefaultRegistry().Without(KindBadge)).Render(result.Schema)

	assert.False(t, out.IsFallback())
	assert.Empty(t, findAll(out, "span"))
	assert.Len(t, findAll(out, "p"), 1)
	assert.Len(t, findAll(out, "button"), 3)
}

func TestRender_UnknownNodeProducesNothing(t *testing.T) {
	schema := NewSchema(&StackNode{
		Props: StackProps{Direction: "vertical", Gap: 2},
		Children: []Node{
			&UnknownNode{Component: "iframe"},
			&TextNode{Props: TextProps{Text: "still here"}},
		},
	})

	out := newTestRenderer(t, nil).Render(schema)

	stack := out.Children[0]
	require.Len(t, stack.Children, 1)
	assert.Equal(t, "still here", stack.Children[0].Text)
}

func TestRender_EnforcesOwnDepthCeiling(t *testing.T) {
	var node Node = &TextNode{Props: TextProps{Text: "bottom"}}
	for i := 0; i < 12; i++ {
		node = &StackNode{Props: StackProps{Direction: "vertical"}, Children: []Node{node}}
	}

	out := newTestRenderer(t, nil).Render(NewSchema(node))

	assert.False(t, out.IsFallback())
	assert.Equal(t, RenderDepthLimit+1, depthOf(out))
	assert.Empty(t, findAll(out, "p"))
}

func TestRender_PanicFallsBack(t *testing.T) {
	registry := DefaultRegistry()
	registry.Register(KindBadge, func(*RenderContext, Node, []*Element) *Element {
		panic("bad branch")
	})

	out := newTestRenderer(t, registry).Render(Welcome(nil))

	require.NotNil(t, out)
	assert.True(t, out.IsFallback())
	assert.Equal(t, "Unable to render this UI card.", out.Text)
}

func TestRender_NilSchemaFallsBack(t *testing.T) {
	r := newTestRenderer(t, nil)

	assert.True(t, r.Render(nil).IsFallback())
	assert.True(t, r.Render(&Schema{Version: Version}).IsFallback())
}

func TestRender_DisallowedActionIsInert(t *testing.T) {
	schema := NewSchema(&CTAButtonNode{Props: CTAButtonProps{Label: "Wipe", Action: Action("delete_account")}})

	out := newTestRenderer(t, nil).Render(schema)

	buttons := findAll(out, "button")
	require.Len(t, buttons, 1)
	assert.Equal(t, "disabled", buttons[0].Attrs["disabled"])
	assert.NotContains(t, buttons[0].Attrs, "data-action")
}

func TestRender_UnsafeImageSourceDropped(t *testing.T) {
	schema := NewSchema(&ImageNode{Props: ImageProps{Src: "javascript:alert(1)", Alt: "x"}})

	out := newTestRenderer(t, nil).Render(schema)

	assert.Empty(t, out.Children)
}

func TestElement_WriteHTMLEscapes(t *testing.T) {
	schema := NewSchema(&StackNode{
		Props: StackProps{Direction: "horizontal", Gap: 2},
		Children: []Node{
			&TextNode{Props: TextProps{Text: `<script>alert("x")</script>`}},
			&ImageNode{Props: ImageProps{Src: `/a.jpg" onerror="x`, Alt: "a"}},
		},
	})
	out := newTestRenderer(t, nil).Render(schema)

	var buf bytes.Buffer
	require.NoError(t, out.WriteHTML(&buf))
	html := buf.String()

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `src="/a.jpg&#34; onerror=&#34;x"`)
	assert.Contains(t, html, `style="gap: 0.5rem"`)
	assert.True(t, strings.HasPrefix(html, `<div class="json-ui-card">`))
	assert.Equal(t, html, out.HTML())
}
