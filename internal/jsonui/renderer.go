package jsonui

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
)

const fallbackText = "Unable to render this UI card."

// Element is the renderer's neutral output tree.
type Element struct {
	Tag      string            `json:"tag"`
	Classes  []string          `json:"classes,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*Element        `json:"children,omitempty"`
}

// IsFallback reports whether e is the inert replacement card.
func (e *Element) IsFallback() bool {
	return e != nil && e.Attrs["data-fallback"] == "true"
}

func fallbackElement() *Element {
	return &Element{
		Tag:     "div",
		Classes: []string{"json-ui-card", "json-ui-fallback"},
		Attrs:   map[string]string{"data-fallback": "true"},
		Text:    fallbackText,
	}
}

type Renderer struct {
	registry *Registry
	ctx      *RenderContext
	logger   logger.Logger
}

func NewRenderer(registry *Registry, actions *ActionDispatcher, log logger.Logger) *Renderer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if actions == nil {
		actions = NewActionDispatcher(nil, log)
	}
	return &Renderer{
		registry: registry,
		ctx:      &RenderContext{Actions: actions},
		logger:   log.WithFields(map[string]interface{}{"component": "json_ui_renderer"}),
	}
}

// Render walks a validated schema. A panic anywhere in the walk replaces
// the whole card with the inert fallback element.
func (r *Renderer) Render(schema *Schema) (out *Element) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("render failed, using fallback", map[string]interface{}{
				"panic": fmt.Sprint(rec),
			})
			metrics.RenderFallbacks.Inc()
			out = fallbackElement()
		}
	}()

	if schema == nil || schema.Root == nil {
		metrics.RenderFallbacks.Inc()
		return fallbackElement()
	}

	card := &Element{Tag: "div", Classes: []string{"json-ui-card"}}
	if root := r.renderNode(schema.Root, 1); root != nil {
		card.Children = []*Element{root}
	}
	return card
}

func (r *Renderer) renderNode(node Node, depth int) *Element {
	if node == nil || depth > RenderDepthLimit {
		return nil
	}

	fn, ok := r.registry.Lookup(node.Kind())
	if !ok {
		r.logger.Debug("component_ignored", map[string]interface{}{
			"kind":  string(node.Kind()),
			"depth": depth,
		})
		return nil
	}

	var children []*Element
	if stack, isStack := node.(*StackNode); isStack {
		for _, child := range stack.Children {
			if el := r.renderNode(child, depth+1); el != nil {
				children = append(children, el)
			}
		}
	}

	return fn(r.ctx, node, children)
}

var voidElements = map[string]bool{"img": true, "br": true, "hr": true}

// WriteHTML serializes the tree with every text and attribute escaped.
func (e *Element) WriteHTML(w io.Writer) error {
	var sb strings.Builder
	e.writeTo(&sb)
	_, err := io.WriteString(w, sb.String())
	return err
}

// HTML is WriteHTML into a string.
func (e *Element) HTML() string {
	var sb strings.Builder
	e.writeTo(&sb)
	return sb.String()
}

func (e *Element) writeTo(sb *strings.Builder) {
	if e == nil {
		return
	}
	sb.WriteString("<")
	sb.WriteString(e.Tag)
	if len(e.Classes) > 0 {
		sb.WriteString(` class="`)
		sb.WriteString(html.EscapeString(strings.Join(e.Classes, " ")))
		sb.WriteString(`"`)
	}

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, ` %s="%s"`, k, html.EscapeString(e.Attrs[k]))
	}
	sb.WriteString(">")

	if voidElements[e.Tag] {
		return
	}

	sb.WriteString(html.EscapeString(e.Text))
	for _, child := range e.Children {
		child.writeTo(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.Tag)
	sb.WriteString(">")
}
