package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/arko-chat/nativetoolkit/internal/config"
	"github.com/arko-chat/nativetoolkit/internal/dialogs"
	"github.com/arko-chat/nativetoolkit/internal/localization"
	"github.com/arko-chat/nativetoolkit/internal/logger"
)

const usage = `usage: nativetoolkit <command> [flags]

commands:
  simulate   serve the browser dialog simulator for the editor platform
  show       show one native dialog on this machine and print the result
  buildenv   print the build settings read from a .env file
  localize   check the label catalog and generate per-language assets
`

type command func(ctx context.Context, env *environment, args []string) error

var commands = map[string]command{
	"simulate": runSimulate,
	"show":     runShow,
	"buildenv": runBuildEnv,
	"localize": runLocalize,
}

type environment struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	bootstrap := logger.New(os.Stderr, slog.LevelInfo, false)
	cfg, err := config.Load(bootstrap)
	if err != nil {
		bootstrap.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		bootstrap.Warn("falling back to info logging", "err", err)
	}
	slogger := logger.New(os.Stderr, level, false)

	dialogs.Configure(
		dialogs.WithLogger(slogger),
		dialogs.WithTimeout(time.Duration(cfg.DialogTimeout)),
		dialogs.WithLabels(localization.Default().Labels(cfg.Locale)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd(ctx, &environment{cfg: cfg, logger: slogger}, os.Args[2:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		slogger.Error("command failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}
