package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*SessionLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: level, Format: "text", Output: &buf})
	return l, &buf
}

func TestSessionLoggerRendersKeyValuePairs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.Warn("agent decision failed", "agent", "Claude", "error", "boom")

	out := buf.String()
	assert.Contains(t, out, `msg="agent decision failed"`)
	assert.Contains(t, out, "agent=Claude")
	assert.Contains(t, out, "error=boom")
	assert.NotContains(t, out, "%!")
}

func TestSessionLoggerCarriesContextAttrs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.WithComponent("driver").WithSession("abc123").Info("driver started", "rom", "red.gb")

	out := buf.String()
	assert.Contains(t, out, "component=driver")
	assert.Contains(t, out, "session_id=abc123")
	assert.Contains(t, out, "rom=red.gb")
}

func TestSessionLoggerLevelFilter(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)

	l.Info("quiet", "key", "value")
	assert.Empty(t, buf.String())

	l.Warn("loud")
	assert.Contains(t, buf.String(), "msg=loud")
}

func TestLogDecisionAttrs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogDecision("Grok", "battle", 2, 50*time.Millisecond, nil)
	assert.Contains(t, buf.String(), `msg="decision completed"`)
	assert.Contains(t, buf.String(), "agent=Grok")

	buf.Reset()
	l.LogDecision("Grok", "battle", 0, time.Second, errors.New("upstream down"))
	assert.Contains(t, buf.String(), `msg="decision failed"`)
	assert.Contains(t, buf.String(), `error="upstream down"`)
}

func TestParseLogLevel(t *testing.T) {
	for token, want := range map[string]LogLevel{
		"debug": LogLevelDebug,
		"INFO":  LogLevelInfo,
		"warn":  LogLevelWarn,
		"error": LogLevelError,
	} {
		got, err := ParseLogLevel(token)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLogLevel("loudest")
	assert.Error(t, err)
}
