// Package logging builds the service's zap logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the logger flavour.
type Options struct {
	Production bool
	Level      string
	// File, when set, receives JSON logs rotated by size.
	File string
}

// New returns a production JSON logger or a development console logger. With
// a File the output is teed to stdout and a rotated JSON file.
func New(o Options) (*zap.Logger, error) {
	var cfg zap.Config
	if o.Production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if o.Level != "" {
		lvl, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	cfg.OutputPaths = []string{"stdout"}

	if o.File == "" {
		logger, err := cfg.Build(zap.AddCaller())
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		return logger, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
	}
	console := zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	if o.Production {
		console = zapcore.NewJSONEncoder(cfg.EncoderConfig)
	}
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotator), cfg.Level),
		zapcore.NewCore(console, zapcore.AddSync(os.Stdout), cfg.Level),
	)
	return zap.New(core, zap.AddCaller()), nil
}
