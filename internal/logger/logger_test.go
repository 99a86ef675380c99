package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	SetLevel("warn")
	defer SetLevel("info")

	Info("hidden")
	Warn("shown", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] logger_test.go:")
	assert.Contains(t, out, "shown 3")
}

func TestObjectsRenderedAsJSON(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	SetLevel("debug")
	defer SetLevel("info")

	Debug("payload", map[string]int{"goals": 2})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "[Object of type map[string]int]")
	assert.Contains(t, buf.String(), `"goals": 2`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matchcast.log")
	SetLogFile(path)
	require.NoError(t, SetLogOutput('f'))
	defer func() {
		_ = Close()
		_ = SetLogOutput('c')
	}()

	Error("written to file")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[ERROR]")
	assert.Contains(t, string(data), "written to file")

	assert.Error(t, SetLogOutput('z'))
}
