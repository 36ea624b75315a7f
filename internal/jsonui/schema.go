package jsonui

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	Version     = "1"
	MaxDepth    = 5
	MaxNodes    = 40
	MaxChildren = 10
	MaxBytes    = 12000

	// RenderDepthLimit bounds the renderer's recursion regardless of what
	// the validator accepted.
	RenderDepthLimit = 8
)

// Kind is the component discriminator of a node.
type Kind string

const (
	KindText      Kind = "text"
	KindBadge     Kind = "badge"
	KindImage     Kind = "image"
	KindCTAButton Kind = "cta_button"
	KindStack     Kind = "stack"
)

// Kinds lists every component the grammar accepts.
var Kinds = []Kind{KindText, KindBadge, KindImage, KindCTAButton, KindStack}

type Tone string

const (
	ToneDefault Tone = "default"
	ToneMuted   Tone = "muted"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Action is a cta_button action identifier.
type Action string

const (
	ActionOpenMenu Action = "open_menu"
	ActionShowCart Action = "show_cart"
	ActionCheckout Action = "checkout"
)

// Node is one element of a JSON-UI tree. Only StackNode has children.
type Node interface {
	Kind() Kind
}

type TextProps struct {
	Text   string `json:"text"`
	Tone   Tone   `json:"tone,omitempty"`
	Align  string `json:"align,omitempty"`
	Size   string `json:"size,omitempty"`
	Weight string `json:"weight,omitempty"`
}

type BadgeProps struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone,omitempty"`
}

type ImageProps struct {
	Src         string `json:"src"`
	Alt         string `json:"alt"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type CTAButtonProps struct {
	Label   string `json:"label"`
	Action  Action `json:"action"`
	Variant string `json:"variant,omitempty"`
}

type StackProps struct {
	Direction string `json:"direction"`
	Gap       int    `json:"gap"`
	Align     string `json:"align,omitempty"`
	Justify   string `json:"justify,omitempty"`
}

// UnmarshalJSON accepts any integral number for gap, so 2.0 decodes like 2.
// Fields absent from data keep their current values.
func (p *StackProps) UnmarshalJSON(data []byte) error {
	type plain StackProps
	wire := struct {
		*plain
		Gap *float64 `json:"gap"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Gap != nil {
		if math.Trunc(*wire.Gap) != *wire.Gap {
			return fmt.Errorf("gap must be an integer, got %v", *wire.Gap)
		}
		p.Gap = int(*wire.Gap)
	}
	return nil
}

type TextNode struct{ Props TextProps }
type BadgeNode struct{ Props BadgeProps }
type ImageNode struct{ Props ImageProps }
type CTAButtonNode struct{ Props CTAButtonProps }

type StackNode struct {
	Props    StackProps
	Children []Node
}

// UnknownNode keeps a component the grammar does not know. Only lenient
// decoding produces it; the validator never lets one through.
type UnknownNode struct {
	Component string
	Props     json.RawMessage
}

func (*TextNode) Kind() Kind      { return KindText }
func (*BadgeNode) Kind() Kind     { return KindBadge }
func (*ImageNode) Kind() Kind     { return KindImage }
func (*CTAButtonNode) Kind() Kind { return KindCTAButton }
func (*StackNode) Kind() Kind     { return KindStack }
func (n *UnknownNode) Kind() Kind { return Kind(n.Component) }

type leafWire struct {
	Component Kind        `json:"component"`
	Props     interface{} `json:"props"`
}

func (n *TextNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(leafWire{KindText, n.Props})
}

func (n *BadgeNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(leafWire{KindBadge, n.Props})
}

func (n *ImageNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(leafWire{KindImage, n.Props})
}

func (n *CTAButtonNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(leafWire{KindCTAButton, n.Props})
}

func (n *StackNode) MarshalJSON() ([]byte, error) {
	children := n.Children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(struct {
		Component Kind       `json:"component"`
		Props     StackProps `json:"props"`
		Children  []Node     `json:"children"`
	}{KindStack, n.Props, children})
}

func (n *UnknownNode) MarshalJSON() ([]byte, error) {
	props := n.Props
	if len(props) == 0 {
		props = json.RawMessage(`{}`)
	}
	return json.Marshal(leafWire{Kind(n.Component), props})
}

// Schema is a versioned JSON-UI document.
type Schema struct {
	Version string `json:"version"`
	Root    Node   `json:"root"`
}

// NewSchema wraps root at the current version.
func NewSchema(root Node) *Schema {
	return &Schema{Version: Version, Root: root}
}

// UnmarshalJSON decodes leniently: unknown components become UnknownNode
// and stack defaults are filled in. Callers that need the grammar enforced
// go through Validator.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var wire struct {
		Version string          `json:"version"`
		Root    json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s.Version = wire.Version
	s.Root = nil
	if len(wire.Root) == 0 || string(wire.Root) == "null" {
		return nil
	}
	root, err := decodeNode(wire.Root, 1)
	if err != nil {
		return err
	}
	s.Root = root
	return nil
}

type nodeWire struct {
	Component string            `json:"component"`
	Props     json.RawMessage   `json:"props"`
	Children  []json.RawMessage `json:"children"`
}

// decodeNode stops descending past RenderDepthLimit so hostile documents
// cannot drive unbounded recursion.
func decodeNode(raw json.RawMessage, depth int) (Node, error) {
	if depth > RenderDepthLimit {
		return nil, nil
	}

	var wire nodeWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}

	props := wire.Props
	if len(props) == 0 || string(props) == "null" {
		props = json.RawMessage(`{}`)
	}

	switch Kind(wire.Component) {
	case KindText:
		n := &TextNode{}
		return n, decodeProps(props, &n.Props, wire.Component)
	case KindBadge:
		n := &BadgeNode{}
		return n, decodeProps(props, &n.Props, wire.Component)
	case KindImage:
		n := &ImageNode{}
		return n, decodeProps(props, &n.Props, wire.Component)
	case KindCTAButton:
		n := &CTAButtonNode{}
		return n, decodeProps(props, &n.Props, wire.Component)
	case KindStack:
		n := &StackNode{Props: StackProps{Direction: "vertical", Gap: 2}}
		if err := decodeProps(props, &n.Props, wire.Component); err != nil {
			return nil, err
		}
		if n.Props.Direction == "" {
			n.Props.Direction = "vertical"
		}
		for _, rawChild := range wire.Children {
			child, err := decodeNode(rawChild, depth+1)
			if err != nil {
				return nil, err
			}
			if child != nil {
				n.Children = append(n.Children, child)
			}
		}
		return n, nil
	default:
		return &UnknownNode{Component: wire.Component, Props: props}, nil
	}
}

func decodeProps(raw json.RawMessage, dst interface{}, component string) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s props: %w", component, err)
	}
	return nil
}
