package logging

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
)

// ConsoleFormatter renders one human-oriented line per entry:
//
//	15:04:05 WARN  GITHUB_TOKEN not set ... module=catalog-debug
type ConsoleFormatter struct {
	// TimestampFormat defaults to "15:04:05".
	TimestampFormat string
}

var levelColors = map[log.Level]*color.Color{
	log.PanicLevel: color.New(color.FgRed, color.Bold),
	log.FatalLevel: color.New(color.FgRed, color.Bold),
	log.ErrorLevel: color.New(color.FgRed),
	log.WarnLevel:  color.New(color.FgYellow),
	log.InfoLevel:  color.New(color.FgCyan),
	log.DebugLevel: color.New(color.FgWhite),
	log.TraceLevel: color.New(color.FgWhite),
}

func (f *ConsoleFormatter) Format(entry *log.Entry) ([]byte, error) {
	tsFormat := f.TimestampFormat
	if tsFormat == "" {
		tsFormat = "15:04:05"
	}

	var b bytes.Buffer
	b.WriteString(entry.Time.Format(tsFormat))
	b.WriteByte(' ')

	level := fmt.Sprintf("%-5s", strings.ToUpper(levelLabel(entry.Level)))
	if c, ok := levelColors[entry.Level]; ok {
		b.WriteString(c.Sprint(level))
	} else {
		b.WriteString(level)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	faint := color.New(color.Faint)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(faint.Sprintf("%s=", k))
		fmt.Fprint(&b, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelLabel(level log.Level) string {
	if level == log.WarnLevel {
		return "warn"
	}
	return level.String()
}
