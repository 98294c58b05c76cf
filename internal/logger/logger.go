package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Fields represents structured logging fields
type Fields map[string]interface{}

// Logger provides leveled structured logging. Loggers are constructed
// explicitly and passed to the components that need them; there is no
// package-level default.
type Logger struct {
	mu        sync.Mutex
	level     Level
	out       io.Writer
	component string
	format    string // "text" or "json"
}

// New creates a new logger writing to stdout
func New(levelStr, format, component string) *Logger {
	return &Logger{
		level:     parseLevel(levelStr),
		out:       os.Stdout,
		component: component,
		format:    format,
	}
}

// WithComponent creates a logger scoped to a specific component name.
// The output writer is copied under the lock so derivation is safe
// against a concurrent SetOutput.
func (l *Logger) WithComponent(component string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &Logger{
		level:     l.level,
		out:       l.out,
		component: component,
		format:    l.format,
	}
}

// SetOutput redirects log output, primarily for tests
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(DEBUG, msg, mergeFields(fields...))
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(INFO, msg, mergeFields(fields...))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(WARN, msg, mergeFields(fields...))
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(ERROR, msg, mergeFields(fields...))
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	if l.format == "json" {
		l.logJSON(timestamp, level, msg, fields)
	} else {
		l.logText(timestamp, level, msg, fields)
	}
}

// logText writes: [TIMESTAMP] LEVEL [component] message key=value ...
func (l *Logger) logText(timestamp string, level Level, msg string, fields Fields) {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %-5s", timestamp, levelNames[level])
	if l.component != "" {
		fmt.Fprintf(&b, " [%s]", l.component)
	}
	fmt.Fprintf(&b, " %s", msg)

	// Sorted for stable output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	b.WriteString("\n")
	fmt.Fprint(l.out, b.String())
}

// logJSON writes one JSON object per line
func (l *Logger) logJSON(timestamp string, level Level, msg string, fields Fields) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     levelNames[level],
		"message":   msg,
	}
	if l.component != "" {
		entry["component"] = l.component
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			entry[k] = err.Error()
			continue
		}
		entry[k] = v
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// A field that cannot be marshaled must not lose the message
		fmt.Fprintf(l.out, `{"timestamp":%q,"level":%q,"message":%q}`+"\n", timestamp, levelNames[level], msg)
		return
	}
	fmt.Fprintf(l.out, "%s\n", data)
}

// parseLevel converts a level string to a Level, defaulting to INFO
func parseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// mergeFields combines multiple Fields maps
func mergeFields(fields ...Fields) Fields {
	if len(fields) == 0 {
		return Fields{}
	}

	result := Fields{}
	for _, f := range fields {
		for k, v := range f {
			result[k] = v
		}
	}
	return result
}
