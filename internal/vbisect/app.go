// Package vbisect wires the core packages into the services commands and the
// TUI consume.
package vbisect

import (
	"github.com/colonyops/vbisect/internal/core/appstate"
	"github.com/colonyops/vbisect/internal/core/catalog"
	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/eventbus"
	"github.com/colonyops/vbisect/internal/data/db"
	"github.com/colonyops/vbisect/internal/data/stores"
	"github.com/colonyops/vbisect/pkg/executil"
)

// App is the central entry point for all vbisect operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	DB      *db.DB
	KV      *stores.KVStore
	History *stores.BisectStore
	Catalog *catalog.Catalog
	State   *appstate.State
	Bus     *eventbus.EventBus
	Exec    executil.Executor
}

// NewApp constructs an App from explicit dependencies.
func NewApp(cfg *config.Config, database *db.DB, bus *eventbus.EventBus, exec executil.Executor) *App {
	kvStore := stores.NewKVStore(database)
	historyStore := stores.NewBisectStore(database)

	return &App{
		Config:  cfg,
		DB:      database,
		KV:      kvStore,
		History: historyStore,
		Catalog: catalog.New(cfg.Catalog, kvStore, catalog.WithBus(bus)),
		State: appstate.New(cfg,
			appstate.WithExecutor(exec),
			appstate.WithHistory(historyStore),
			appstate.WithBus(bus),
		),
		Bus:  bus,
		Exec: exec,
	}
}

// Runner returns an automatic bisect runner bound to the app's state.
func (a *App) Runner(opts RunnerOptions) *Runner {
	return NewRunner(a.Config, a.State, a.Exec, opts)
}
