// Command rinkctl ranks a dataset from the terminal and imports JSON
// exports into SQLite.
package main

import (
	"errors"
	"os"
	"runtime/debug"

	"github.com/jessevdk/go-flags"

	"github.com/okian/rinkrank/pkg/logger"
)

var version = "unknown" //nolint:gochecknoglobals // build stamp

var options struct { //nolint:gochecknoglobals // flag target
	Rank   RankCmd   `command:"rank" description:"print the ranked leaderboard as a table"`
	Import ImportCmd `command:"import" description:"copy JSON exports into a SQLite dataset"`

	LogLevel string `long:"log-level" env:"RINK_LOG_LEVEL" default:"warn" description:"log level (debug, info, warn, error)"`
	JSONLogs bool   `long:"json-logs" description:"log as JSON lines"`
}

func getVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

func main() {
	p := flags.NewParser(&options, flags.Default)
	p.CommandHandler = func(c flags.Commander, args []string) error {
		format := logger.FormatText
		if options.JSONLogs {
			format = logger.FormatJSON
		}
		if err := logger.InitWithOptions(logger.Options{Level: options.LogLevel, Format: format, Writer: os.Stderr}); err != nil {
			return err
		}
		return c.Execute(args)
	}

	if _, err := p.Parse(); err != nil {
		if errors.Is(err, flags.ErrHelp) {
			os.Exit(0)
		}
		var ferr *flags.Error
		if !errors.As(err, &ferr) {
			os.Stderr.WriteString("rinkctl " + getVersion() + ": " + err.Error() + "\n")
		}
		os.Exit(1)
	}
}
