package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger: a console or JSON writer on stderr,
// teed into a size-rotated file when cfg.LogFile is set. The returned closer
// flushes the file and must be called on shutdown.
func NewLogger(cfg Config, stderr io.Writer) (zerolog.Logger, io.Closer) {
	if stderr == nil {
		stderr = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = stderr
	if cfg.LogFormat != "json" {
		console = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	w := console
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		// The file always gets JSON lines.
		w = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
