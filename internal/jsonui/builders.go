package jsonui

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// DefaultCategories are the quick-start buttons on the welcome card.
var DefaultCategories = []string{"North Indian", "South Indian", "Street Food"}

// Pick is the menu item a chef's-choice card is built around.
type Pick struct {
	Name     string
	Category string
	Price    int
	Image    string
}

// Welcome builds the first-turn card: badge, hint and one open_menu
// button per category.
func Welcome(categories []string) *Schema {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	if len(categories) > MaxChildren {
		categories = categories[:MaxChildren]
	}

	buttons := make([]Node, 0, len(categories))
	for _, category := range categories {
		label := clamp(strings.TrimSpace(category), 80)
		if label == "" {
			continue
		}
		buttons = append(buttons, &CTAButtonNode{Props: CTAButtonProps{
			Label:   label,
			Action:  ActionOpenMenu,
			Variant: "secondary",
		}})
	}

	children := []Node{
		&BadgeNode{Props: BadgeProps{Label: "Welcome to Swaad", Tone: ToneWarning}},
		&TextNode{Props: TextProps{
			Text: "Pick a category to start fast, or tell me your mood and I will curate for you.",
			Tone: ToneMuted,
			Size: "sm",
		}},
	}
	if len(buttons) > 0 {
		children = append(children, &StackNode{
			Props:    StackProps{Direction: "horizontal", Gap: 2, Align: "start"},
			Children: buttons,
		})
	}

	return NewSchema(&StackNode{
		Props:    StackProps{Direction: "vertical", Gap: 3},
		Children: children,
	})
}

// ChefsChoice builds the recommendation card. A nil pick yields the
// generic variant without price line or image.
func ChefsChoice(pick *Pick) *Schema {
	subtitle := "Chef's pick based on your request and current menu availability."
	if pick != nil {
		subtitle = fmt.Sprintf("%s is balanced on flavor, value, and crowd appeal.", pick.Name)
	}

	children := []Node{
		&BadgeNode{Props: BadgeProps{Label: "Chef's Choice", Tone: ToneSuccess}},
		&TextNode{Props: TextProps{Text: clamp(subtitle, 240), Size: "sm"}},
	}

	if pick != nil {
		children = append(children, &TextNode{Props: TextProps{
			Text: clamp(fmt.Sprintf("Best with: %s • ₹%d", pick.Category, pick.Price), 240),
			Tone: ToneMuted,
			Size: "sm",
		}})

		if src := NormalizeImagePath(pick.Image); src != "" {
			alt := clamp(pick.Name, 120)
			if alt == "" {
				alt = "Chef's choice"
			}
			children = append(children, &ImageNode{Props: ImageProps{
				Src:         clamp(src, 500),
				Alt:         alt,
				AspectRatio: "16:9",
			}})
		}
	}

	return NewSchema(&StackNode{
		Props:    StackProps{Direction: "vertical", Gap: 2},
		Children: children,
	})
}

// AllergySafety builds the danger-tone disclaimer echoing the first 80
// characters of the user's concern.
func AllergySafety(userMessage string) *Schema {
	noted := clamp(strings.TrimSpace(userMessage), 80)

	return NewSchema(&StackNode{
		Props: StackProps{Direction: "vertical", Gap: 2},
		Children: []Node{
			&BadgeNode{Props: BadgeProps{Label: "Allergy Safety Check", Tone: ToneDanger}},
			&TextNode{Props: TextProps{
				Text: "I can filter options, but always verify ingredients before ordering if you have allergies.",
				Size: "sm",
			}},
			&TextNode{Props: TextProps{
				Text: `Noted: "` + noted + `"`,
				Tone: ToneMuted,
				Size: "sm",
			}},
		},
	})
}

// NormalizeImagePath keeps root-relative and http(s) sources and maps bare
// file names onto /food-images/.
func NormalizeImagePath(image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "/") || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	name := path.Base(image)
	if name == "." || name == "/" {
		return ""
	}
	return "/food-images/" + name
}

// clamp cuts s to at most n runes.
func clamp(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
