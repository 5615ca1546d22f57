// Package debug is the component-tagged diagnostic log of smellscan.
// Output is off unless debug mode is on and a writer is configured, and it
// is always suppressed while serving MCP over stdio.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug can be set at build time:
// go build -ldflags "-X github.com/standardbeagle/smellscan/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set by the mcp command; stdio then belongs to the protocol.
var MCPMode = false

// Components used as log tags.
const (
	ComponentAnalysis  = "ANALYSIS"
	ComponentWorkspace = "WORKSPACE"
	ComponentParse     = "PARSE"
	ComponentMCP       = "MCP"
)

var (
	mu        sync.Mutex
	output    io.Writer
	logFile   *os.File
	timestamp = false
)

// SetMCPMode toggles MCP mode.
func SetMCPMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	MCPMode = enabled
}

// SetDebugOutput directs debug output to w. A nil writer disables output.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetTimestamps prefixes every line with the wall-clock time.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamp = on
}

// InitDebugLogFile opens a timestamped log file under the temp directory
// and routes debug output to it. It returns the file path.
func InitDebugLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "smellscan-debug-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}
	logFile = f
	output = f
	return path, nil
}

// CloseDebugLog closes the log file opened by InitDebugLogFile.
func CloseDebugLog() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	output = nil
	return err
}

// IsDebugEnabled reports whether debug output is wanted. The build flag
// wins; SMELLSCAN_DEBUG or DEBUG set to 1/true enable it at runtime.
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	for _, env := range []string{"SMELLSCAN_DEBUG", "DEBUG"} {
		if v := os.Getenv(env); v == "1" || v == "true" {
			return true
		}
	}
	return false
}

func write(prefix, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if output == nil {
		return
	}
	if timestamp {
		fmt.Fprintf(output, "%s ", time.Now().Format(time.RFC3339))
	}
	fmt.Fprintf(output, prefix+" "+format, args...)
}

// Printf writes an untagged debug message.
func Printf(format string, args ...interface{}) {
	write("[DEBUG]", format, args...)
}

// Log writes a debug message tagged with component.
func Log(component, format string, args ...interface{}) {
	write("[DEBUG:"+component+"]", format, args...)
}

// LogAnalysis logs rule and metric evaluation.
func LogAnalysis(format string, args ...interface{}) {
	Log(ComponentAnalysis, format, args...)
}

// LogWorkspace logs codebase discovery and loading.
func LogWorkspace(format string, args ...interface{}) {
	Log(ComponentWorkspace, format, args...)
}

// LogParse logs source parsing and symbol linking.
func LogParse(format string, args ...interface{}) {
	Log(ComponentParse, format, args...)
}

// LogMCP logs MCP server activity.
func LogMCP(format string, args ...interface{}) {
	Log(ComponentMCP, format, args...)
}

// Fatal records msg in the debug log and returns it as an error; callers
// decide whether to exit.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		mu.Lock()
		if output != nil {
			fmt.Fprintf(output, "[FATAL] %s\n", msg)
		}
		mu.Unlock()
	}
	return fmt.Errorf("fatal error: %s", msg)
}
