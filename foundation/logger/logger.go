// Package logger builds the zap logger shared by the services.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production logger writing to <logDirectory>/<service>.log.
// An empty logDirectory logs to stdout.
func New(logDirectory string, service string, version string) (*zap.SugaredLogger, error) {
	outputPath := "stdout"

	if logDirectory != "" {
		if err := os.MkdirAll(logDirectory, os.ModePerm); err != nil {
			return nil, err
		}

		outputPath = filepath.Join(logDirectory, service+".log")

		file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			return nil, err
		}
		file.Close()
	}

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{outputPath}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]any{
		"service": service,
		"version": version,
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}
