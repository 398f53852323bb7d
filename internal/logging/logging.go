// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"flowerShopCRM/internal/config"
)

// New returns a logger configured from cfg. When cfg.File is set, output goes
// to a rotating file; otherwise to stderr.
func New(cfg config.LoggingConfig) (*log.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    32, // megabytes
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	l := log.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&log.TextFormatter{
		PadLevelText:    true,
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return l, nil
}

func parseLevel(s string) (log.Level, error) {
	switch s {
	case "trace":
		return log.TraceLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	case "panic":
		return log.PanicLevel, nil
	}
	return 0, fmt.Errorf("unknown logging level %q", s)
}

// Discard returns a logger that writes nowhere. Handy in tests.
func Discard() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
