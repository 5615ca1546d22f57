package debug

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveAndRestoreState snapshots the package state and returns the restore func.
func saveAndRestoreState() func() {
	originalDebug := EnableDebug
	originalMode := MCPMode
	originalOutput := output
	originalFile := logFile
	originalTimestamp := timestamp
	return func() {
		EnableDebug = originalDebug
		MCPMode = originalMode
		output = originalOutput
		logFile = originalFile
		timestamp = originalTimestamp
	}
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("SMELLSCAN_DEBUG", "")
	t.Setenv("DEBUG", "")

	EnableDebug = "false"
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())

	SetMCPMode(true)
	assert.False(t, IsDebugEnabled(), "MCP mode silences debug output")
	SetMCPMode(false)

	EnableDebug = "false"
	t.Setenv("SMELLSCAN_DEBUG", "1")
	assert.True(t, IsDebugEnabled())
}

func TestComponentLoggers(t *testing.T) {
	defer saveAndRestoreState()()
	EnableDebug = "true"
	MCPMode = false

	var buf bytes.Buffer
	SetDebugOutput(&buf)

	LogAnalysis("rule %s\n", "LODViolation")
	LogWorkspace("codebase %d\n", 2)
	LogParse("parsed %s\n", "a.cs")
	LogMCP("tool %s\n", "list_rules")
	Printf("plain\n")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG:ANALYSIS] rule LODViolation")
	assert.Contains(t, out, "[DEBUG:WORKSPACE] codebase 2")
	assert.Contains(t, out, "[DEBUG:PARSE] parsed a.cs")
	assert.Contains(t, out, "[DEBUG:MCP] tool list_rules")
	assert.Contains(t, out, "[DEBUG] plain")
}

func TestLogSuppressed(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)

	EnableDebug = "true"
	MCPMode = true
	Log("TEST", "hidden")
	assert.Empty(t, buf.String())

	MCPMode = false
	SetDebugOutput(nil)
	assert.NotPanics(t, func() { Log("TEST", "no writer") })
}

func TestFatalReturnsError(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	MCPMode = false

	err := Fatal("cannot load %s", "shop.sln")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot load shop.sln")
	assert.Contains(t, buf.String(), "[FATAL] cannot load shop.sln")
}

func TestInitDebugLogFile(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("TMPDIR", t.TempDir())

	path, err := InitDebugLogFile()
	require.NoError(t, err)
	require.NoError(t, CloseDebugLog())

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.NoError(t, CloseDebugLog(), "closing twice is a no-op")
}
