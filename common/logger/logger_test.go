package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	prod := NewConfig("production")
	assert.Equal(t, "json", prod.Encoding)
	assert.Equal(t, "timestamp", prod.EncoderConfig.TimeKey)
	assert.Equal(t, zapcore.InfoLevel, prod.Level.Level())

	dev := NewConfig("development")
	assert.Equal(t, "console", dev.Encoding)
	assert.Equal(t, zapcore.DebugLevel, dev.Level.Level())
}

func TestNew_WritesJSONToSink(t *testing.T) {
	var sink bytes.Buffer
	log, err := New("production", &sink)
	require.NoError(t, err)

	log.Info("order created", zap.String("order_number", "#ORD-a1b2c3d"))
	log.Debug("not at info level")
	_ = log.Sync()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(sink.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, "#ORD-a1b2c3d", entry["order_number"])
}
