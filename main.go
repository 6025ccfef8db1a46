package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/vbisect/internal/commands"
	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/eventbus"
	"github.com/colonyops/vbisect/internal/core/logging"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/data/db"
	"github.com/colonyops/vbisect/internal/data/stores"
	"github.com/colonyops/vbisect/internal/vbisect"
	"github.com/colonyops/vbisect/internal/vbisect/sweep"
	"github.com/colonyops/vbisect/pkg/executil"
	"github.com/colonyops/vbisect/pkg/logutils"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// buildString falls back to module and VCS info for `go install` builds.
func buildString() string {
	v, c, d := version, commit, date
	if info, ok := debug.ReadBuildInfo(); ok && v == "dev" {
		if mv := info.Main.Version; mv != "" && mv != "(devel)" {
			v = mv
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				c = s.Value
			case "vcs.time":
				d = s.Value
			}
		}
	}
	return fmt.Sprintf("%s (%.7s) %s", v, c, d)
}

// lifecycle owns the resources opened in Before and released in After.
type lifecycle struct {
	flags *commands.Flags
	app   *vbisect.App

	database  *db.DB
	closeLog  func()
	stopBgJob context.CancelFunc
}

func (r *lifecycle) setup(ctx context.Context, _ *cli.Command) (context.Context, error) {
	logger, closeLog, err := logutils.New(r.flags.LogLevel, r.flags.LogPath())
	if err != nil {
		return ctx, fmt.Errorf("setup logger: %w", err)
	}
	logging.Install(logger)
	r.closeLog = closeLog

	cfg, err := config.Load(r.flags.ConfigPath, r.flags.DataDir)
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	r.flags.Config = cfg

	if err := styles.ApplyTheme(cfg.TUI.Theme, cfg.TUI.Colors); err != nil {
		return ctx, fmt.Errorf("apply theme: %w", err)
	}

	database, backup, err := stores.OpenWithRecovery(cfg.DataDir, db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	})
	if err != nil {
		return ctx, fmt.Errorf("open database: %w", err)
	}
	if backup != "" {
		log.Warn().Str("backup", backup).Msg("database was corrupt, moved aside and recreated")
	}
	r.database = database

	bgCtx, cancel := context.WithCancel(context.Background())
	r.stopBgJob = cancel

	bus := eventbus.New(64)
	eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
	eventbus.NewNotificationRouter(bus).Register()
	go bus.Start(bgCtx)

	// Commands were registered against r.app before flags were parsed.
	*r.app = *vbisect.NewApp(cfg, database, bus, &executil.RealExecutor{})

	go sweep.Start(bgCtx, r.app.KV, r.app.History, sweep.Options{
		Interval:  cfg.History.SweepInterval,
		Retention: cfg.History.Retention,
	})

	return ctx, nil
}

func (r *lifecycle) teardown(context.Context, *cli.Command) error {
	if r.stopBgJob != nil {
		r.stopBgJob()
	}

	var err error
	if r.database != nil {
		if err = r.database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}

	if r.closeLog != nil {
		r.closeLog()
	}
	return err
}

func main() {
	// SIGINT interrupts a running test command and closes the session.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rt := &lifecycle{flags: &commands.Flags{}, app: &vbisect.App{}}
	root := commands.NewRoot(rt.flags, rt.app, buildString())
	root.Before = rt.setup
	root.After = rt.teardown

	err := root.Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
