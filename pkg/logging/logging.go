// Package logging 基于 zerolog 提供全局结构化日志。
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Logger().Info().Str("user", "42").Msg("recommend")
//
// 组件通过 logging.With("ranker") 获取带 component 字段的子 logger。
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	// Level：trace/debug/info/warn/error/disabled，默认 info
	Level string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`

	// Format：json 或 console，默认 json
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`

	Caller    bool `koanf:"caller"`
	Timestamp bool `koanf:"timestamp"`

	// Output 默认 os.Stderr
	Output io.Writer `koanf:"-"`
}

// DefaultConfig 返回默认日志配置。
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	initLogger(DefaultConfig())
}

// Init 用 cfg 重新配置全局 logger，可重复调用。
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	initLogger(cfg)
}

func initLogger(cfg Config) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(output)
	if cfg.Timestamp {
		l = l.With().Timestamp().Logger()
	}
	if cfg.Caller {
		l = l.With().Caller().Logger()
	}
	log = l
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger 返回全局 logger。
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// With 返回带 component 字段的子 logger。
func With(component string) zerolog.Logger {
	l := Logger()
	return l.With().Str("component", component).Logger()
}

// Nop 返回丢弃所有输出的 logger，组件未注入 logger 时使用。
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
