package logx

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the logging threshold
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	OffLevel
)

// zap has no trace level; it sits one below debug
const zapTraceLevel = zapcore.DebugLevel - 1

func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	case OffLevel:
		return "OFF"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel parses a level name, case-insensitively. Unknown names yield InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TraceLevel
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	case "OFF", "NONE":
		return OffLevel
	default:
		return InfoLevel
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case TraceLevel:
		return zapTraceLevel
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.FatalLevel + 1
	}
}

// Format selects the encoder
type Format string

const (
	FormatConsole    Format = "console"
	FormatJSON       Format = "json"
	FormatCloudWatch Format = "cloudwatch"
)

// Options configures the package logger
type Options struct {
	Level  Level
	Format Format
	Color  bool
	Caller bool
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_COLOR and LOG_CALLER
func OptionsFromEnv() Options {
	opts := Options{
		Level:  InfoLevel,
		Format: FormatConsole,
		Color:  true,
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		opts.Level = ParseLevel(v)
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok {
		switch Format(strings.ToLower(v)) {
		case FormatJSON:
			opts.Format = FormatJSON
		case FormatCloudWatch:
			opts.Format = FormatCloudWatch
		}
	}
	if v, ok := os.LookupEnv("LOG_COLOR"); ok {
		opts.Color = isTrue(v)
	}
	if v, ok := os.LookupEnv("LOG_CALLER"); ok {
		opts.Caller = isTrue(v)
	}
	if opts.Format != FormatConsole {
		opts.Color = false
	}
	return opts
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

var (
	current     atomic.Pointer[zap.Logger]
	threshold   atomic.Int32
	atomicLevel = zap.NewAtomicLevel()
)

func init() {
	Configure(OptionsFromEnv())
}

// Configure rebuilds the package logger
func Configure(opts Options) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = levelEncoder(opts.Color)
	if !opts.Caller {
		encCfg.CallerKey = zapcore.OmitKey
	}

	var enc zapcore.Encoder
	switch opts.Format {
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(encCfg)
	case FormatCloudWatch:
		encCfg.ConsoleSeparator = " "
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), atomicLevel)
	SetLogger(zap.New(core, zap.WithCaller(opts.Caller), zap.AddCallerSkip(2)))
	SetLevel(opts.Level)
}

// SetLogger replaces the underlying zap logger. The package threshold still applies.
func SetLogger(l *zap.Logger) {
	current.Store(l)
}

// SetLevel changes the threshold
func SetLevel(level Level) {
	threshold.Store(int32(level))
	atomicLevel.SetLevel(level.zap())
}

// GetLevel returns the current threshold
func GetLevel() Level {
	return Level(threshold.Load())
}

// IsLevelEnabled reports whether messages at level are emitted
func IsLevelEnabled(level Level) bool {
	return level != OffLevel && level >= GetLevel() && current.Load().Core().Enabled(level.zap())
}

// traceColor ignores color.NoColor; Options.Color alone decides
var traceColor = func() *color.Color {
	c := color.New(color.FgHiBlack)
	c.EnableColor()
	return c
}()

func levelEncoder(colored bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if l == zapTraceLevel {
			if colored {
				enc.AppendString(traceColor.Sprint("TRACE"))
				return
			}
			enc.AppendString("TRACE")
			return
		}
		if colored {
			zapcore.CapitalColorLevelEncoder(l, enc)
			return
		}
		zapcore.CapitalLevelEncoder(l, enc)
	}
}

func logf(level Level, format string, args ...any) {
	if !IsLevelEnabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if ce := current.Load().Check(level.zap(), msg); ce != nil {
		ce.Write()
	}
}

func Trace(format string, args ...any) { logf(TraceLevel, format, args...) }
func Debug(format string, args ...any) { logf(DebugLevel, format, args...) }
func Info(format string, args ...any)  { logf(InfoLevel, format, args...) }
func Warn(format string, args ...any)  { logf(WarnLevel, format, args...) }
func Error(format string, args ...any) { logf(ErrorLevel, format, args...) }

// Fatal logs and exits the process
func Fatal(format string, args ...any) {
	logf(FatalLevel, format, args...)
	os.Exit(1)
}

// DebugStruct logs v as indented JSON at debug level
func DebugStruct(name string, v any) {
	if !IsLevelEnabled(DebugLevel) {
		return
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logf(DebugLevel, "%s: %+v", name, v)
		return
	}
	logf(DebugLevel, "%s:\n%s", name, b)
}

// With returns a structured zap logger for callers that want fields
func With(fields ...zap.Field) *zap.Logger {
	return current.Load().WithOptions(zap.AddCallerSkip(-2)).With(fields...)
}
