package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger at the given level: debug, info, warn,
// error (anything else means info). Output is human-readable on a terminal and
// JSON otherwise, so CloudWatch receives structured lines.
func Init(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// InitWriter sends JSON log lines to w. Full-screen programs use it to keep
// log output off the terminal.
func InitWriter(level string, w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
