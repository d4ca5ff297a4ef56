// Package logger builds component loggers on top of logrus.
//
// Every component gets its own logger tagged with a short upper-case name and
// a terminal colour, so interleaved output from the API, the experiment
// manager and the storage layer stays readable:
//
//	2025/02/08 11:02:17 [EXPERIMENT] [INFO] experiment finished id=... trials=40
package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beka-birhanu/vinom-search/config"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006/01/02 15:04:05"

var (
	ErrEmptyName = errors.New("logger name must not be empty")
	ErrNoWriter  = errors.New("logger writer must not be nil")
)

// Formatter renders entries as "time [NAME] [LEVEL] message key=value ...".
type Formatter struct {
	Name          string
	Color         string
	DisableColors bool
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	b.WriteString(e.Time.Format(timestampFormat))
	b.WriteByte(' ')
	if f.DisableColors || f.Color == "" {
		fmt.Fprintf(&b, "[%s] ", f.Name)
	} else {
		fmt.Fprintf(&b, "%s[%s]%s ", f.Color, f.Name, config.ColorReset)
	}
	fmt.Fprintf(&b, "%s %s", f.levelTag(e.Level), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *Formatter) levelTag(level logrus.Level) string {
	tag := "[" + strings.ToUpper(level.String()) + "]"
	if f.DisableColors {
		return tag
	}
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return config.LogErrorColor + tag + config.LogColorReset
	case logrus.WarnLevel:
		return config.LogWarnColor + tag + config.LogColorReset
	case logrus.InfoLevel:
		return config.LogInfoColor + tag + config.LogColorReset
	default:
		return tag
	}
}

// New creates a logger for the named component writing to w.
func New(name, color string, w io.Writer) (*logrus.Logger, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if w == nil {
		return nil, ErrNoWriter
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&Formatter{Name: name, Color: color})
	l.SetLevel(logrus.InfoLevel)
	return l, nil
}

// NewWithLevel is New followed by parsing level ("debug", "info", ...).
func NewWithLevel(name, color, level string, w io.Writer) (*logrus.Logger, error) {
	l, err := New(name, color, w)
	if err != nil {
		return nil, err
	}
	if level == "" {
		return l, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level for %s: %w", name, err)
	}
	l.SetLevel(lvl)
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
