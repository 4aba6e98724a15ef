// logger.go

package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Logger 全局日志
	Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	// Sampled 高频路径使用的采样日志，例如每帧发送失败
	Sampled = Logger
)

// ParseLevel 将配置中的级别名转换为 zerolog 级别，未知值按 info 处理
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init 初始化全局日志。debug 模式使用带颜色的控制台输出，否则输出 JSON 行
func Init(level string, debug bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	lvl := ParseLevel(level)
	if debug && lvl > zerolog.DebugLevel {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	w := out
	if debug {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	Logger = zerolog.New(w).With().Timestamp().Logger()

	// 每10秒最多5条，之后每100条取1条
	Sampled = Logger.With().Bool("sampled", true).Logger().Sample(&zerolog.BurstSampler{
		Burst:       5,
		Period:      10 * time.Second,
		NextSampler: &zerolog.BasicSampler{N: 100},
	})

	Logger.Info().Str("loglevel", lvl.String()).Bool("debug", debug).Msg("日志已初始化")
}

// With 创建带组件名的子日志
func With(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
