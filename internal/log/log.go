// Package log provides structured, colored logging for the jetton ledger.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers. Minter and Wallet get an account field attached per
// transaction by the chain runtime.
var (
	Chain   zerolog.Logger
	Minter  zerolog.Logger
	Wallet  zerolog.Logger
	RPC     zerolog.Logger
	Storage zerolog.Logger
	Node    zerolog.Logger
	Token   zerolog.Logger
)

const timeFormat = "15:04:05"

func init() {
	Logger = newLogger(consoleWriter(os.Stdout), zerolog.InfoLevel)
	initComponentLoggers()
}

// Init configures the global logger. Console output is colored unless
// jsonOutput is set. When file is non-empty every entry is also appended
// to it as JSON.
func Init(level string, jsonOutput bool, file string) error {
	var out io.Writer = os.Stdout
	if !jsonOutput {
		out = consoleWriter(os.Stdout)
	}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		out = zerolog.MultiLevelWriter(out, f)
	}

	Logger = newLogger(out, ParseLevel(level))
	initComponentLoggers()
	return nil
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
}

func newLogger(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func initComponentLoggers() {
	Chain = WithComponent("chain")
	Minter = WithComponent("minter")
	Wallet = WithComponent("wallet")
	RPC = WithComponent("rpc")
	Storage = WithComponent("storage")
	Node = WithComponent("node")
	Token = WithComponent("token")
}
