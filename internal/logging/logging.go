// Package logging wraps logrus behind the small Logger capability the backend
// modules depend on.
package logging

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Fields are extra structured values attached to a single log line.
type Fields map[string]any

// Logger is the logging capability handed to backend modules.
type Logger interface {
	// Child returns a logger that tags every line with the given values.
	Child(tags map[string]string) Logger
	Debug(msg string, extra ...Fields)
	Info(msg string, extra ...Fields)
	Warn(msg string, extra ...Fields)
	Error(msg string, extra ...Fields)
}

type entryLogger struct {
	entry *log.Entry
}

// New returns a Logger writing through l. A nil l uses the logrus standard logger.
func New(l *log.Logger) Logger {
	if l == nil {
		l = log.StandardLogger()
	}
	return &entryLogger{entry: log.NewEntry(l)}
}

func (e *entryLogger) Child(tags map[string]string) Logger {
	fields := make(log.Fields, len(tags))
	for k, v := range tags {
		fields[k] = v
	}
	return &entryLogger{entry: e.entry.WithFields(fields)}
}

func (e *entryLogger) Debug(msg string, extra ...Fields) {
	e.with(extra).Debug(msg)
}

func (e *entryLogger) Info(msg string, extra ...Fields) {
	e.with(extra).Info(msg)
}

func (e *entryLogger) Warn(msg string, extra ...Fields) {
	e.with(extra).Warn(msg)
}

func (e *entryLogger) Error(msg string, extra ...Fields) {
	e.with(extra).Error(msg)
}

func (e *entryLogger) with(extra []Fields) *log.Entry {
	if len(extra) == 0 {
		return e.entry
	}
	fields := log.Fields{}
	for _, f := range extra {
		for k, v := range f {
			fields[k] = v
		}
	}
	return e.entry.WithFields(fields)
}

// severities maps logrus levels to the "severity" field of JSON output, in
// the vocabulary log collectors such as Cloud Logging expect.
var severities = map[log.Level]string{
	log.PanicLevel: "EMERGENCY",
	log.FatalLevel: "CRITICAL",
	log.ErrorLevel: "ERROR",
	log.WarnLevel:  "WARNING",
	log.InfoLevel:  "INFO",
	log.DebugLevel: "DEBUG",
	log.TraceLevel: "DEBUG",
}

// Configure applies the level and output format to logger. Valid formats are
// "text", "json" and "console"; json lines carry a "severity" field.
func Configure(logger *log.Logger, level, format string, out io.Writer) error {
	if logger == nil {
		return nil
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("could not parse log level: %w", err)
	}
	logger.SetLevel(lvl)

	if out != nil {
		logger.SetOutput(out)
	}

	switch format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
		logger.AddHook(severityHook{})
	case "console":
		logger.SetFormatter(&ConsoleFormatter{})
	default:
		return fmt.Errorf("unsupported log format: %s", format)
	}
	return nil
}

type severityHook struct{}

func (severityHook) Levels() []log.Level {
	return log.AllLevels
}

func (severityHook) Fire(entry *log.Entry) error {
	if _, ok := entry.Data["severity"]; ok {
		return nil
	}
	sev, ok := severities[entry.Level]
	if !ok {
		sev = "DEFAULT"
	}
	entry.Data["severity"] = sev
	return nil
}
