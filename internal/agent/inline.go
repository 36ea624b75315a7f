package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	inlineJSONUIPattern = regexp.MustCompile(`(?s)<json_ui>(.*?)</json_ui>`)
	blankLines          = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
)

// ExtractInlineJSONUI strips every <json_ui>...</json_ui> region from text
// and returns the regions that parse as JSON. A region that fails to parse
// is dropped on its own.
func ExtractInlineJSONUI(text string) (string, []json.RawMessage) {
	matches := inlineJSONUIPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(text), nil
	}

	candidates := make([]json.RawMessage, 0, len(matches))
	for _, m := range matches {
		body := strings.TrimSpace(m[1])
		if !json.Valid([]byte(body)) {
			continue
		}
		candidates = append(candidates, json.RawMessage(body))
	}

	sanitized := inlineJSONUIPattern.ReplaceAllString(text, "")
	sanitized = blankLines.ReplaceAllString(sanitized, "\n\n")
	return strings.TrimSpace(sanitized), candidates
}
