package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Level  string    `yaml:"level"`
	Format string    `yaml:"format"` // "text", "json"
	Output io.Writer `yaml:"-"`
}

var (
	once sync.Once
	lg   *logrus.Logger
)

// Init 初始化全局日志，只生效一次
func Init(cfg Config) {
	once.Do(func() {
		lg = New(cfg)
	})
}

// New 按配置创建独立的 logger
func New(cfg Config) *logrus.Logger {
	l := logrus.New()
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	l.SetOutput(cfg.Output)
	l.SetLevel(parseLevel(cfg.Level))
	l.SetFormatter(newFormatter(cfg.Format))
	return l
}

// L 返回全局 logger，未初始化时使用默认配置
func L() *logrus.Logger {
	Init(Config{Level: "debug", Format: "text"})
	return lg
}

func parseLevel(levelStr string) logrus.Level {
	switch strings.ToLower(levelStr) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func newFormatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{TimestampFormat: "15:04:05.000"}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	}
}
