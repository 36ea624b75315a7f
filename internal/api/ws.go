package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/models"
)

const (
	wsPingInterval = 15 * time.Second
	wsWriteWait    = 5 * time.Second
	wsPongWait     = 45 * time.Second

	frameChat      = "chat"
	frameReset     = "reset"
	frameResponse  = "chat.response"
	frameResetDone = "reset.done"
	frameError     = "error"
)

// wsFrame is one client message. Payload carries the same body as
// POST /api/chat.
type wsFrame struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsReply struct {
	ID           string                `json:"id,omitempty"`
	Type         string                `json:"type"`
	Blocks       []models.MessageBlock `json:"blocks,omitempty"`
	TextContent  string                `json:"textContent,omitempty"`
	Error        string                `json:"error,omitempty"`
	Code         string                `json:"code,omitempty"`
	RetryAfterMs int64                 `json:"retryAfterMs,omitempty"`
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) send(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func (s *Server) upgrader() *websocket.Upgrader {
	allowed := s.allowedOrigins()
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowed {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// handleChatSocket runs chat turns over one websocket. Frames are handled
// in arrival order so a session's turns never overlap.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	conn := &wsConn{c: c}
	defer c.Close()

	_ = c.SetReadDeadline(time.Now().Add(wsPongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.ping(); err != nil {
					return
				}
			}
		}
	}()

	ctx := r.Context()
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket closed", map[string]interface{}{"error": err.Error()})
			}
			return
		}
		_ = c.SetReadDeadline(time.Now().Add(wsPongWait))

		if err := conn.send(s.handleFrame(ctx, data)); err != nil {
			return
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, data []byte) wsReply {
	var frame wsFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return errorReply("", apperrors.NewParseError(err))
	}

	switch frame.Type {
	case frameChat:
		req, err := decodeChatRequest(frame.Payload)
		if err != nil {
			return errorReply(frame.ID, err)
		}
		if err := s.allow(ctx, req.SessionID); err != nil {
			return errorReply(frame.ID, err)
		}
		resp := s.deps.Chat.Chat(ctx, req)
		return wsReply{ID: frame.ID, Type: frameResponse, Blocks: resp.Blocks, TextContent: resp.TextContent}

	case frameReset:
		var body struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal(frame.Payload, &body); err != nil || body.SessionID == "" {
			return errorReply(frame.ID, apperrors.NewInvalidSessionError("sessionId is required"))
		}
		if err := s.deps.Chat.Reset(ctx, truncate(body.SessionID, MaxSessionIDLength)); err != nil {
			return errorReply(frame.ID, apperrors.NewHistoryStoreFailedError("evict", err))
		}
		return wsReply{ID: frame.ID, Type: frameResetDone}

	default:
		return errorReply(frame.ID, apperrors.NewParseError(errUnknownFrame(frame.Type)))
	}
}

type errUnknownFrame string

func (e errUnknownFrame) Error() string { return "unknown frame type " + string(e) }

func errorReply(id string, err error) wsReply {
	stdErr := apperrors.AsStandardError(err)
	reply := wsReply{ID: id, Type: frameError, Error: stdErr.Message, Code: string(stdErr.Code)}
	if ms, ok := stdErr.Metadata["retryAfterMs"].(int64); ok {
		reply.RetryAfterMs = ms
	}
	return reply
}
