// internal/logging/logging.go
// Package logging writes application events to a log file. The interactive
// interface owns the terminal, so nothing is ever written to stdout.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init opens the log file at logPath and routes the standard logger to it.
// Calling Init again closes the previous file first.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	if logPath == "" {
		log.SetOutput(io.Discard)
		return nil
	}

	if dir := filepath.Dir(logPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = file
	log.SetOutput(logFile)
	return nil
}

// Close flushes and closes the log file, restoring the default logger output.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// LogEvent records a formatted application event.
func LogEvent(format string, args ...any) {
	log.Println(fmt.Sprintf(format, args...))
}

// LogRequest records a request or response payload exchanged with a provider.
// Direction is conventionally "RECALL->LLM" or "LLM->RECALL".
func LogRequest(direction, provider, model string, payload any) {
	log.Println(buildRequestMessage(direction, provider, model, payload))
}

func buildRequestMessage(direction, provider, model string, payload any) string {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	providerValue := strings.TrimSpace(provider)
	if providerValue == "" {
		providerValue = "unknown"
	}
	modelValue := strings.TrimSpace(model)
	if modelValue == "" {
		modelValue = "unknown"
	}
	parts := []string{
		fmt.Sprintf("[%s]", dir),
		fmt.Sprintf("provider=%s", providerValue),
		fmt.Sprintf("model=%s", modelValue),
		fmt.Sprintf("payload=%s", formatPayload(payload)),
	}
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return `""`
		}
		return string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
