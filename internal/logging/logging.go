// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Console is the log file value that keeps output on stderr.
const Console = "console"

// Options selects the level and destination of the host log.
type Options struct {
	Level   string
	File    string // "" or Console writes to stderr
	Verbose bool   // forces debug
	Quiet   bool   // forces error
}

// Init parses the level and installs the formatter and output on the
// standard logrus logger.
func Init(opts Options) error {
	return Configure(log.StandardLogger(), opts)
}

// Configure applies opts to logger.
func Configure(logger *log.Logger, opts Options) error {
	level, err := resolveLevel(opts)
	if err != nil {
		return err
	}

	logger.SetOutput(output(opts.File))
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	logger.SetLevel(level)
	return nil
}

func resolveLevel(opts Options) (log.Level, error) {
	switch {
	case opts.Verbose:
		return log.DebugLevel, nil
	case opts.Quiet:
		return log.ErrorLevel, nil
	case opts.Level == "":
		return log.InfoLevel, nil
	}
	return log.ParseLevel(opts.Level)
}

func output(file string) io.Writer {
	if file == "" || file == Console {
		return os.Stderr
	}
	return &lumberjack.Logger{
		// Log file absolute path, os agnostic
		Filename:   filepath.ToSlash(file),
		MaxSize:    5, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}
}
