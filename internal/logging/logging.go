package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"tss-backtest/internal/config"
)

// Setup configures the standard logrus logger from cfg and writes to stdout.
func Setup(cfg config.LoggingConfig) error {
	return SetupTo(logrus.StandardLogger(), cfg, os.Stdout)
}

// SetupTo configures l and points it at out.
func SetupTo(l *logrus.Logger, cfg config.LoggingConfig, out io.Writer) error {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level = parsed
	}
	l.SetLevel(level)
	l.SetOutput(out)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
