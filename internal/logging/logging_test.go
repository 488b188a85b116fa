package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(b, &entry))
	return entry
}

func TestContextHook(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name:     "op and item",
			ctx:      WithItemID(WithOp(context.Background(), "update"), "12"),
			wantKeys: []string{"op", "item_id"},
		},
		{
			name:      "op only",
			ctx:       WithOp(context.Background(), "list"),
			wantKeys:  []string{"op"},
			wantEmpty: []string{"item_id"},
		},
		{
			name:      "background",
			ctx:       context.Background(),
			wantEmpty: []string{"op", "item_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.ctx).Msg("test")

			entry := decode(t, buf.Bytes())
			for _, k := range tt.wantKeys {
				assert.Contains(t, entry, k)
			}
			for _, k := range tt.wantEmpty {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shoplist.log")

	logger, closer, err := New("debug", path)
	require.NoError(t, err)
	logger.Debug().Ctx(WithOp(context.Background(), "create")).Msg("hello")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entry := decode(t, bytes.TrimSpace(data))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "create", entry["op"])
	assert.Contains(t, entry, "time")
}

func TestNewFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shoplist.log")

	logger, closer, err := New("warn", path)
	require.NoError(t, err)
	logger.Info().Msg("dropped")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	assert.NotNil(t, closer)
}

func TestComponent(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	SetDefault(zerolog.New(&buf))

	logger := Component("items")
	logger.Info().Msg("test message")

	entry := decode(t, buf.Bytes())
	assert.Equal(t, "items", entry["cmp"])
	assert.Equal(t, "test message", entry["message"])
}
