package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Component names the subsystem a log line came from.
type Component string

const (
	Terminal Component = "terminal"
	WS       Component = "ws"
	HTTP     Component = "http"
	Store    Component = "store"
)

var components = []Component{Terminal, WS, HTTP, Store}

// Config selects level, encoding and sinks. An empty Level means info; no
// OutputPaths means stdout.
type Config struct {
	Level       string
	Development bool
	OutputPaths []string
}

// Logger is the root logger plus one named child per Component, all sharing
// a single level.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
	named map[Component]*zap.Logger
}

// New builds the root logger: JSON in production, colored console output
// in development.
func New(cfg Config) (*Logger, error) {
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zc := production()
	if cfg.Development {
		zc = development()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}

	root, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return withComponents(root, zc.Level), nil
}

// NewNop discards everything.
func NewNop() *Logger {
	return withComponents(zap.NewNop(), zap.NewAtomicLevel())
}

func withComponents(root *zap.Logger, level zap.AtomicLevel) *Logger {
	l := &Logger{Logger: root, level: level, named: make(map[Component]*zap.Logger, len(components))}
	for _, c := range components {
		l.named[c] = root.Named(string(c))
	}
	return l
}

// Component returns the child logger for c.
func (l *Logger) Component(c Component) *zap.Logger {
	if log, ok := l.named[c]; ok {
		return log
	}
	return l.Named(string(c))
}

// SetLevel changes the level for the root and every component.
func (l *Logger) SetLevel(level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(lvl)
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

func production() zap.Config {
	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.OutputPaths = []string{"stdout"}
	zc.DisableStacktrace = true
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.MessageKey = "message"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	return zc
}

func development() zap.Config {
	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{"stdout"}
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc
}
