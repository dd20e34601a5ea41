package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// Config はログ設定
type Config struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, console
	Output     string `yaml:"output"` // stdout, file, both
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
}

// DefaultConfig はデフォルトのログ設定を返す
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "both",
		FilePath:   "logs/data_processing.log",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Init はグローバルロガーを差し替える
func Init(cfg *Config) {
	l := New(cfg)
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		_ = log.Sync()
	}
	log = l
}

// New はロガーを作成
func New(cfg *Config) *zap.Logger {
	if cfg == nil {
		cfg = &Config{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		}
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// 標準出力のコンソール形式だけレベルを色付けする
	fileEncoder := newEncoder(cfg.Format, encoderConfig)
	consoleConfig := encoderConfig
	if cfg.Format != "json" {
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	stdoutEncoder := newEncoder(cfg.Format, consoleConfig)

	level := ParseLevel(cfg.Level)

	var cores []zapcore.Core
	if WritesStdout(cfg.Output) {
		cores = append(cores, zapcore.NewCore(stdoutEncoder, zapcore.AddSync(os.Stdout), level))
	}
	if WritesFile(cfg.Output) && cfg.FilePath != "" {
		writer := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level))
	}
	if len(cores) == 0 {
		// 出力先がなければ標準出力に書く
		cores = append(cores, zapcore.NewCore(stdoutEncoder, zapcore.AddSync(os.Stdout), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func newEncoder(format string, cfg zapcore.EncoderConfig) zapcore.Encoder {
	if format == "json" {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// WritesStdout は出力先に標準出力が含まれるか
func WritesStdout(output string) bool {
	return output == "stdout" || output == "both" || output == ""
}

// WritesFile は出力先にファイルが含まれるか
func WritesFile(output string) bool {
	return output == "file" || output == "both"
}

// ParseLevel は文字列からログレベルを取得
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// L はグローバルロガーを取得
func L() *zap.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = New(nil)
	}
	return log
}

// Or は l が nil の場合にグローバルロガーを返す
func Or(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return L()
}

// Sync はバッファをフラッシュ
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if log != nil {
		_ = log.Sync()
	}
}
