package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, fields ...string) *slog.Logger {
	return slog.New(newLogHandler(slog.NewJSONHandler(buf, nil), "emailcode", fields))
}

func TestLogHandler_MasksAndTags(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := newTestLogger(&buf, "emailCode", "KEY")
	ctx := SetCorrelationID(context.Background(), "cid-1")

	// Act
	logger.InfoContext(ctx, "request",
		"emailCode", "4821",
		"query", map[string]string{"key": "k1", "execution": "e1"},
		"body", `{"emailCode":"4821","resend":""}`,
		"realm", "acme",
	)

	// Assert
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "***", got["emailCode"])
	assert.Equal(t, map[string]any{"key": "***", "execution": "e1"}, got["query"])
	assert.JSONEq(t, `{"emailCode":"***","resend":""}`, got["body"].(string))
	assert.Equal(t, "acme", got["realm"])
	assert.Equal(t, "cid-1", got["_cID"])
	assert.Equal(t, "emailcode", got["service"])
}

func TestLogHandler_NoCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf).Info("startup")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	_, ok := got["_cID"]
	assert.False(t, ok)
}

func TestCorrelationID(t *testing.T) {
	assert.Equal(t, invalidCorrelationID, GetCorrelationID(context.Background()))

	ctx := SetCorrelationID(context.Background(), "")
	assert.NotEqual(t, invalidCorrelationID, GetCorrelationID(ctx))
	assert.Len(t, GetCorrelationID(ctx), 36)
}
