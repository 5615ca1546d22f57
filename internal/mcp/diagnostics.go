package mcp

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DiagnosticLogger handles the diagnostic output of the MCP server. In MCP
// mode everything goes to a log file; stdio belongs to the protocol.
type DiagnosticLogger struct {
	mu       sync.Mutex
	file     *os.File
	logger   *log.Logger
	filePath string
}

// NewDiagnosticLogger creates a logger. In MCP mode it writes to a
// timestamped file under the temp directory, falling back to discarding
// output when no file can be created; otherwise it writes to stderr.
func NewDiagnosticLogger(isMCP bool) *DiagnosticLogger {
	dl := &DiagnosticLogger{}
	if !isMCP {
		dl.logger = log.New(os.Stderr, "[MCP] ", log.LstdFlags)
		return dl
	}

	logDir := filepath.Join(os.TempDir(), "smellscan-mcp-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		dl.logger = log.New(io.Discard, "", 0)
		return dl
	}
	logPath := filepath.Join(logDir, fmt.Sprintf("mcp-%s-%d.log", time.Now().Format("2006-01-02T150405"), os.Getpid()))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		dl.logger = log.New(io.Discard, "", 0)
		return dl
	}

	dl.file = file
	dl.filePath = logPath
	dl.logger = log.New(file, "[MCP] ", log.LstdFlags|log.Lshortfile)
	return dl
}

// Printf logs a diagnostic message.
func (dl *DiagnosticLogger) Printf(format string, v ...any) {
	if dl == nil || dl.logger == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Printf(format, v...)
}

// Errorf logs an error.
func (dl *DiagnosticLogger) Errorf(format string, v ...any) {
	dl.Printf("ERROR: "+format, v...)
}

// Close closes the log file if one is open.
func (dl *DiagnosticLogger) Close() error {
	if dl == nil {
		return nil
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file == nil {
		return nil
	}
	err := dl.file.Close()
	dl.file = nil
	dl.logger = log.New(io.Discard, "", 0)
	return err
}

// LogPath returns the log file path, or "" when not logging to a file.
func (dl *DiagnosticLogger) LogPath() string {
	if dl == nil {
		return ""
	}
	return dl.filePath
}
