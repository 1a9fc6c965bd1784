package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/drover/pkg/domain/types"
)

// Logger holds logger configuration
type Logger struct {
	Level   string
	JSON    bool
	NoColor bool
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("DROVER_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Output logs in JSON format",
			Value:       false,
			Destination: &c.JSON,
			Sources:     cli.EnvVars("DROVER_LOG_JSON"),
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored console output",
			Value:       false,
			Destination: &c.NoColor,
			Sources:     cli.EnvVars("NO_COLOR"),
		},
	}
}

// Configure configures and returns a logger. Token-like values are redacted
// from every record.
func (c *Logger) Configure() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.New("invalid log level",
			goerr.V("level", c.Level), goerr.T(types.TagConfig))
	}

	redactor := masq.New(
		masq.WithFieldName("Token"),
		masq.WithFieldName("token"),
		masq.WithFieldPrefix("secret"),
	)

	if c.JSON {
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redactor,
		})
		return slog.New(handler), nil
	}

	color.NoColor = c.NoColor
	handler := clog.New(
		clog.WithWriter(os.Stdout),
		clog.WithLevel(level),
		clog.WithColor(!c.NoColor),
		clog.WithReplaceAttr(redactor),
	)
	return slog.New(handler), nil
}
