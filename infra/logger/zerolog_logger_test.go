package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriter_ComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "allocation", "debug")
	l.Debugw("category allocated", map[string]any{"category": "organic", "records": 3})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "allocation", line["component"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "organic", line["category"])
	assert.Equal(t, float64(3), line["records"])
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "api", "")
	l.Debugf("hidden")
	assert.Empty(t, buf.String())
	l.Warnf("shown %d", 1)
	assert.True(t, strings.Contains(buf.String(), "shown 1"))

	buf.Reset()
	l = NewWithWriter(&buf, "api", "error")
	l.Warnf("hidden")
	assert.Empty(t, buf.String())
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Infof("nothing %s", "here")
}
