// Package history keeps the per-session conversation window the chat
// service reads before a turn and appends to after it.
package history

import (
	"context"

	"swaad-chat/internal/models"
)

// DefaultMaxMessages is the window size; older messages are evicted FIFO.
const DefaultMaxMessages = 20

// Store is safe for concurrent use across sessions.
type Store interface {
	Get(ctx context.Context, sessionID string) ([]models.TranscriptMessage, error)
	Append(ctx context.Context, sessionID string, msgs ...models.TranscriptMessage) error
	Evict(ctx context.Context, sessionID string) error
}

// trimWindow keeps the newest max messages.
func trimWindow(msgs []models.TranscriptMessage, max int) []models.TranscriptMessage {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}
	return msgs[len(msgs)-max:]
}
