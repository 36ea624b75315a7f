package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"

	"swaad-chat/internal/common/logger"
)

// Per-message overhead for role and framing tokens.
const messageOverhead = 4

// TokenCounter returns the token count of s.
type TokenCounter func(s string) int

// Clipper drops the oldest history so a prompt fits the model budget. The
// system prompt and the newest message always survive.
type Clipper struct {
	count  TokenCounter
	logger logger.Logger
}

// NewClipper counts with the model's tiktoken encoding, or cl100k_base
// when the model is unknown to tiktoken. The encoding loads lazily.
func NewClipper(model string, log logger.Logger) *Clipper {
	var (
		once sync.Once
		enc  *tiktoken.Tiktoken
	)
	counter := func(s string) int {
		once.Do(func() {
			var err error
			enc, err = tiktoken.EncodingForModel(model)
			if err != nil {
				enc, err = tiktoken.GetEncoding("cl100k_base")
			}
			if err != nil {
				log.Warn("token encoding unavailable, prompt clipping disabled", map[string]interface{}{
					"error": err,
				})
			}
		})
		if enc == nil {
			return -1
		}
		return len(enc.Encode(s, nil, nil))
	}
	return &Clipper{count: counter, logger: log}
}

// NewClipperWithCounter is used where a tokenizer download is unwanted.
func NewClipperWithCounter(count TokenCounter, log logger.Logger) *Clipper {
	return &Clipper{count: count, logger: log}
}

// Clip keeps messages[0] (system) and the newest messages that fit within
// maxPromptTokens minus the response reserve. A negative count from the
// counter disables clipping.
func (c *Clipper) Clip(messages []openai.ChatCompletionMessage, maxPromptTokens, reserve int) []openai.ChatCompletionMessage {
	if len(messages) <= 2 {
		return messages
	}
	budget := maxPromptTokens - reserve
	if budget <= 0 {
		budget = maxPromptTokens
	}

	system := messages[0]
	total := c.count(system.Content)
	if total < 0 {
		return messages
	}
	total += messageOverhead

	rest := messages[1:]
	keepFrom := len(rest)
	for i := len(rest) - 1; i >= 0; i-- {
		n := c.count(rest[i].Content)
		if n < 0 {
			return messages
		}
		n += messageOverhead
		if total+n > budget && i != len(rest)-1 {
			break
		}
		total += n
		keepFrom = i
	}

	if keepFrom == 0 {
		return messages
	}

	c.logger.Debug("prompt clipped", map[string]interface{}{
		"dropped": keepFrom,
		"tokens":  total,
		"budget":  budget,
	})
	out := make([]openai.ChatCompletionMessage, 0, len(rest)-keepFrom+1)
	out = append(out, system)
	return append(out, rest[keepFrom:]...)
}
