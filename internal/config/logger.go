package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig controls the file logger. The terminal belongs to the UI so
// nothing is ever logged to the console.
type LoggingConfig struct {
	Level       string `toml:"level"`
	Destination string `toml:"destination"`
	Mode        string `toml:"mode"`
}

// Validate checks level and mode values
func (conf LoggingConfig) Validate() error {
	switch conf.Level {
	case "none", "normal", "debug":
	default:
		return fmt.Errorf("unknown logging level %q", conf.Level)
	}
	switch conf.Mode {
	case "", "append", "overwrite":
	default:
		return fmt.Errorf("unknown logging mode %q", conf.Mode)
	}
	return nil
}

// Prepare returns configured zap logger for use by the program.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	var level zap.AtomicLevel
	switch conf.Level {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "normal":
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		return zap.NewNop(), nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if conf.Mode == "overwrite" {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	dest := conf.Destination
	if dest == "" {
		dest = "deckview.log"
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(dest, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to access file log destination (%s): %w", dest, err)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(f), level)

	return zap.New(core, zap.AddCaller()).Named("deckview"), nil
}
