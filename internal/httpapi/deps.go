package httpapi

import (
	"sync/atomic"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/dashboard"
	"layoffs-engine/internal/events"
	"layoffs-engine/internal/poll"
	"layoffs-engine/internal/store"
)

type Deps struct {
	Hub *events.Hub

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	ScrapeStatus *atomic.Value // stores types.ScrapeStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Cache   *dashboard.Cache
	History *store.History // nil when history is disabled
	Poller  *poll.Poller
}

func (d Deps) config() config.Config {
	cfg, _ := d.CfgVal.Load().(config.Config)
	return cfg
}

// dashboard reads the table named by the live config.
func (d Deps) dashboard() *dashboard.Service {
	return dashboard.NewService(d.config().CSVPath(), d.Cache)
}
