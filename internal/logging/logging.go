// Package logging builds the zap logger shared by the Lambda mains and the
// local server.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json or console
	OutputPath string // stdout when empty
}

// New builds a logger from cfg. An unknown level falls back to info and an
// unknown encoding to json.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	lvl := strings.ToLower(cfg.Level)
	if lvl == "" {
		lvl = "info"
	}
	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		// logger does not exist yet
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info: %v\n", cfg.Level, err)
		level.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "console" && encoding != "json" {
		encoding = "json"
	}
	out := cfg.OutputPath
	if out == "" {
		out = "stdout"
	}

	zc := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{out},
		ErrorOutputPaths:  []string{"stderr"},
	}
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
