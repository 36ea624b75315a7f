package assembleresponse

import "swaad-chat/internal/models"

// Input is the finished agent run a process hands over for block assembly.
type Input struct {
	SessionID    string                     `json:"sessionId,omitempty"`
	UserMessage  string                     `json:"userMessage"`
	FinalText    string                     `json:"finalText"`
	Transcript   []models.TranscriptMessage `json:"transcript"`
	Prior        []models.TranscriptMessage `json:"prior,omitempty"`
	Cart         []models.CartItem          `json:"cart,omitempty"`
	EnableJSONUI *bool                      `json:"enableJsonUi,omitempty"`
}

type Output struct {
	Blocks      []models.MessageBlock `json:"blocks"`
	TextContent string                `json:"textContent"`
	BlockTypes  []string              `json:"blockTypes"`
}
