package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("LOGISIM_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("LOGISIM_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("warehouse", &buf, "info")
	l.Infof("loaded %d units", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warehouse", line["component"])
	assert.Equal(t, "loaded 3 units", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestZerologLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("fleet", &buf, "warn")
	l.Debugf("hidden")
	l.Infof("hidden")
	l.Warnf("shown")
	out := strings.TrimSpace(buf.String())
	assert.Equal(t, 1, len(strings.Split(out, "\n")))
	assert.Contains(t, out, "shown")
}

func TestNewWithWriterDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("x", &buf, "bogus")
	l.Debugf("hidden")
	assert.Empty(t, buf.String())
}
