package jsonui

import (
	"fmt"
	"strings"
)

// RenderFunc turns one node plus its already-rendered children into an
// element. Returning nil means no output.
type RenderFunc func(rc *RenderContext, node Node, children []*Element) *Element

// RenderContext carries what render functions may consult.
type RenderContext struct {
	Actions *ActionDispatcher
}

// Registry maps a component kind to its render function. It holds no
// validation logic.
type Registry struct {
	renderers map[Kind]RenderFunc
}

func NewRegistry() *Registry {
	return &Registry{renderers: make(map[Kind]RenderFunc)}
}

// DefaultRegistry registers the five grammar components.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindText, renderText)
	r.Register(KindBadge, renderBadge)
	r.Register(KindImage, renderImage)
	r.Register(KindCTAButton, renderCTAButton)
	r.Register(KindStack, renderStack)
	return r
}

func (r *Registry) Register(kind Kind, fn RenderFunc) {
	r.renderers[kind] = fn
}

func (r *Registry) Lookup(kind Kind) (RenderFunc, bool) {
	fn, ok := r.renderers[kind]
	return fn, ok && fn != nil
}

// Without returns a copy lacking the given kinds.
func (r *Registry) Without(kinds ...Kind) *Registry {
	out := NewRegistry()
	for kind, fn := range r.renderers {
		out.renderers[kind] = fn
	}
	for _, kind := range kinds {
		delete(out.renderers, kind)
	}
	return out
}

// Kinds returns the registered kinds in grammar order, then any extras.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.renderers))
	seen := make(map[Kind]bool)
	for _, kind := range Kinds {
		if _, ok := r.renderers[kind]; ok {
			out = append(out, kind)
			seen[kind] = true
		}
	}
	for kind := range r.renderers {
		if !seen[kind] {
			out = append(out, kind)
		}
	}
	return out
}

func toneClass(tone Tone) string {
	switch tone {
	case ToneMuted:
		return "tone-muted"
	case ToneSuccess:
		return "tone-success"
	case ToneWarning:
		return "tone-warning"
	case ToneDanger:
		return "tone-danger"
	default:
		return "tone-default"
	}
}

func renderText(_ *RenderContext, node Node, _ []*Element) *Element {
	n, ok := node.(*TextNode)
	if !ok {
		return nil
	}
	classes := []string{"json-ui-text", toneClass(n.Props.Tone)}
	switch n.Props.Align {
	case "center", "right":
		classes = append(classes, "text-"+n.Props.Align)
	}
	switch n.Props.Size {
	case "sm":
		classes = append(classes, "text-xs")
	case "md":
		classes = append(classes, "text-sm")
	case "lg":
		classes = append(classes, "text-base")
	}
	switch n.Props.Weight {
	case "medium", "semibold", "bold":
		classes = append(classes, "font-"+n.Props.Weight)
	}
	return &Element{Tag: "p", Classes: classes, Text: n.Props.Text}
}

func renderBadge(_ *RenderContext, node Node, _ []*Element) *Element {
	n, ok := node.(*BadgeNode)
	if !ok {
		return nil
	}
	return &Element{
		Tag:     "span",
		Classes: []string{"json-ui-badge", toneClass(n.Props.Tone)},
		Text:    n.Props.Label,
	}
}

func renderImage(_ *RenderContext, node Node, _ []*Element) *Element {
	n, ok := node.(*ImageNode)
	if !ok {
		return nil
	}
	src := n.Props.Src
	if !strings.HasPrefix(src, "/") && !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return nil
	}
	ratio := "aspect-video"
	switch n.Props.AspectRatio {
	case "1:1":
		ratio = "aspect-square"
	case "4:3":
		ratio = "aspect-4-3"
	}
	return &Element{
		Tag:     "img",
		Classes: []string{"json-ui-image", ratio},
		Attrs: map[string]string{
			"src":     src,
			"alt":     n.Props.Alt,
			"loading": "lazy",
		},
	}
}

func renderCTAButton(rc *RenderContext, node Node, _ []*Element) *Element {
	n, ok := node.(*CTAButtonNode)
	if !ok {
		return nil
	}
	variant := n.Props.Variant
	if variant == "" {
		variant = "primary"
	}
	label := n.Props.Label
	if label == "" {
		label = "Continue"
	}

	el := &Element{
		Tag:     "button",
		Classes: []string{"json-ui-button", "button-" + variant},
		Attrs:   map[string]string{"type": "button"},
		Text:    label,
	}

	var resolved ActionResult
	if rc != nil && rc.Actions != nil {
		resolved = rc.Actions.Resolve(string(n.Props.Action), n.Props.Label)
	} else {
		resolved = resolveAction(nil, string(n.Props.Action), n.Props.Label)
	}
	if !resolved.Allowed {
		el.Attrs["disabled"] = "disabled"
		el.Attrs["aria-disabled"] = "true"
		return el
	}
	el.Attrs["data-action"] = string(resolved.Action)
	if resolved.Target != "" {
		el.Attrs["data-target"] = resolved.Target
	}
	if resolved.OpenCart {
		el.Attrs["data-open-cart"] = "true"
	}
	return el
}

func renderStack(_ *RenderContext, node Node, children []*Element) *Element {
	n, ok := node.(*StackNode)
	if !ok {
		return nil
	}
	classes := []string{"json-ui-stack", "flex", "flex-col"}
	if n.Props.Direction == "horizontal" {
		classes[2] = "flex-row"
	}
	if n.Props.Align != "" {
		classes = append(classes, "items-"+n.Props.Align)
	}
	if n.Props.Justify != "" {
		classes = append(classes, "justify-"+n.Props.Justify)
	}
	gap := n.Props.Gap
	if gap < 0 {
		gap = 0
	}
	if gap > 8 {
		gap = 8
	}
	return &Element{
		Tag:      "div",
		Classes:  classes,
		Attrs:    map[string]string{"style": fmt.Sprintf("gap: %grem", float64(gap)*0.25)},
		Children: children,
	}
}
