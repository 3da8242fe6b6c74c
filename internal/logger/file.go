package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions describes a rotating log file.
type FileOptions struct {
	// Path is the log file location.
	Path string
	// MaxSizeMB is the size in megabytes that triggers rotation.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int
}

const (
	// defaultMaxSizeMB is used when FileOptions.MaxSizeMB is not set.
	defaultMaxSizeMB = 10
	// defaultMaxBackups is used when FileOptions.MaxBackups is not set.
	defaultMaxBackups = 3
)

// NewFile creates a logger writing plain (uncolored) console lines into a rotating file.
// It is used while the terminal UI owns stdout.
func NewFile(level zapcore.LevelEnabler, opts FileOptions, options ...zap.Option) *zap.SugaredLogger {
	if level == nil {
		level = defaultLevel
	}

	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = defaultMaxSizeMB
	}

	if opts.MaxBackups <= 0 {
		opts.MaxBackups = defaultMaxBackups
	}

	//nolint:exhaustruct // Compression and local time use lumberjack defaults.
	sink := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	encoderConfig := consoleEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(sink),
		level,
	)

	return zap.New(core, options...).Sugar()
}
