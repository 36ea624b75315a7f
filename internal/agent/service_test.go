package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/history"
	"swaad-chat/internal/llm"
	"swaad-chat/internal/models"
)

type fakeRunner struct {
	result *llm.Result
	err    error
	last   llm.Request
}

func (f *fakeRunner) Run(_ context.Context, req llm.Request) (*llm.Result, error) {
	f.last = req
	return f.result, f.err
}

type brokenStore struct{ history.Store }

func (brokenStore) Get(context.Context, string) ([]models.TranscriptMessage, error) {
	return nil, errors.New("redis down")
}

func (brokenStore) Append(context.Context, string, ...models.TranscriptMessage) error {
	return errors.New("redis down")
}

func newService(t *testing.T, runner Runner, store history.Store) *Service {
	log := logger.NewTestLogger(t)
	return NewService(ServiceDependencies{
		Runner:    runner,
		History:   store,
		Toolbox:   newToolbox(t, 0),
		Assembler: newAssembler(t),
		Logger:    log,
	}, true)
}

func TestService_Chat(t *testing.T) {
	store := history.NewMemoryStore(20, time.Hour)
	runner := &fakeRunner{result: &llm.Result{FinalText: "Namaste!", Steps: 1}}
	svc := newService(t, runner, store)
	cart := []models.CartItem{{Food: food(1, "Butter Chicken", "North Indian", 379), Quantity: 1, UnitPrice: 379}}

	resp := svc.Chat(context.Background(), ChatRequest{Message: "hello", SessionID: "s1", Cart: cart})
	assert.Equal(t, "Namaste!", resp.TextContent)
	assert.Equal(t, []models.BlockType{models.BlockText, models.BlockJSONUI}, blockTypes(resp.Blocks))
	assert.Contains(t, runner.last.SystemPrompt, "- 1x Butter Chicken @ ₹379 each")
	assert.Equal(t, "hello", runner.last.Message)
	assert.Empty(t, runner.last.History)
	require.NotNil(t, runner.last.Tools)

	stored, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []models.TranscriptMessage{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "Namaste!"},
	}, stored)

	runner.result = &llm.Result{FinalText: "Today's special:\n<json_ui>{\"version\":\"1\",\"root\":{\"component\":\"badge\",\"props\":{\"label\":\"Diwali Thali\"}}}</json_ui>"}
	resp = svc.Chat(context.Background(), ChatRequest{Message: "anything new?", SessionID: "s1"})
	assert.Equal(t, "Today's special:", resp.TextContent)
	assert.Len(t, runner.last.History, 2)
	require.Equal(t, []models.BlockType{models.BlockText, models.BlockJSONUI}, blockTypes(resp.Blocks))
	assert.Contains(t, marshalBlocks(t, resp.Blocks), "Diwali Thali")

	stored, _ = store.Get(context.Background(), "s1")
	assert.Equal(t, "Today's special:", stored[3].Content)
}

func TestService_ChatFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "auth", err: apperrors.NewLLMAuthFailedError(errors.New("401")), want: authFallback},
		{name: "timeout", err: apperrors.NewLLMTimeoutError(time.Second), want: genericFallback},
		{name: "unknown", err: errors.New("boom"), want: genericFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := history.NewMemoryStore(20, time.Hour)
			svc := newService(t, &fakeRunner{err: tt.err}, store)

			resp := svc.Chat(context.Background(), ChatRequest{Message: "hi", SessionID: "s"})
			require.Len(t, resp.Blocks, 1)
			assert.Equal(t, tt.want, resp.Blocks[0].(models.TextBlock).Content)
			assert.Equal(t, tt.want, resp.TextContent)
			assert.Equal(t, 0, store.Len())
		})
	}
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, llm.Request) (*llm.Result, error) {
	panic("tool blew up")
}

type panicStore struct{ history.Store }

func (panicStore) Get(context.Context, string) ([]models.TranscriptMessage, error) {
	panic("store corrupted")
}

func TestService_ChatRecoversPanics(t *testing.T) {
	tests := []struct {
		name   string
		runner Runner
		store  history.Store
	}{
		{name: "runner", runner: panicRunner{}, store: history.NewMemoryStore(20, time.Hour)},
		{name: "history", runner: &fakeRunner{result: &llm.Result{FinalText: "ok"}}, store: panicStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, tt.runner, tt.store)

			var resp *ChatResponse
			require.NotPanics(t, func() {
				resp = svc.Chat(context.Background(), ChatRequest{Message: "hi", SessionID: "s"})
			})
			require.NotNil(t, resp)
			require.Len(t, resp.Blocks, 1)
			assert.Equal(t, genericFallback, resp.Blocks[0].(models.TextBlock).Content)
			assert.Equal(t, genericFallback, resp.TextContent)
		})
	}
}

func TestService_ChatSurvivesHistoryFailure(t *testing.T) {
	svc := newService(t, &fakeRunner{result: &llm.Result{FinalText: "ok"}}, brokenStore{})
	resp := svc.Chat(context.Background(), ChatRequest{Message: "hi", SessionID: "s"})
	assert.Equal(t, "ok", resp.TextContent)
	assert.Contains(t, marshalBlocks(t, resp.Blocks), "Welcome to Swaad")
}

func TestService_Reset(t *testing.T) {
	store := history.NewMemoryStore(20, time.Hour)
	svc := newService(t, &fakeRunner{result: &llm.Result{FinalText: "ok"}}, store)
	svc.Chat(context.Background(), ChatRequest{Message: "hi", SessionID: "s"})
	require.Equal(t, 1, store.Len())

	require.NoError(t, svc.Reset(context.Background(), "s"))
	assert.Equal(t, 0, store.Len())
}
