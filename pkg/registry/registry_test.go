package registry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "place-order", TaskType: "order.place", InputSchema: json.RawMessage(`{"type":"object"}`), Retries: 3},
			{ID: "send-order-confirmation", TaskType: "order.confirmation.send", Retries: 3},
		},
	}
}

func TestWriteAndLoad(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().Write(&buf))

	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 2)

	activity, err := reg.Find("order.place")
	require.NoError(t, err)
	assert.Equal(t, "place-order", activity.ID)
	assert.JSONEq(t, `{"type":"object"}`, string(activity.InputSchema))

	_, err = reg.Find("order.cancel")
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{name: "valid", mutate: func(*ActivityRegistry) {}},
		{
			name:    "missing task type",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].TaskType = "" },
			wantErr: "taskType are required",
		},
		{
			name:    "duplicate task type",
			mutate:  func(r *ActivityRegistry) { r.Activities[1].TaskType = "order.place" },
			wantErr: "duplicate task type",
		},
		{
			name:    "duplicate id",
			mutate:  func(r *ActivityRegistry) { r.Activities[1].ID = "place-order" },
			wantErr: "duplicate activity id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sample()
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry_BadFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities":`), 0o600))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}
