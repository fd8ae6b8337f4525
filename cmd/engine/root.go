package main

import (
	"path/filepath"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/logging"

	"github.com/spf13/cobra"
)

// app holds what every subcommand needs after flags are parsed.
type app struct {
	dataDir    string
	defaultCfg string

	cfg     config.Config
	cfgPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "engine",
		Short:        "Track WARN layoff notices and serve dashboard analytics",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", config.DataDir(),
		"directory holding config.yml, the notice CSV and run history (env "+config.DataDirEnv+")")
	root.PersistentFlags().StringVar(&a.defaultCfg, "default-config", filepath.Join("config", "config.yml"),
		"config copied into the data dir on first run")

	root.AddCommand(
		a.serveCmd(),
		a.checkCmd(),
		a.initCmd(),
		a.statsCmd(),
		a.lookupCmd(),
		a.runsCmd(),
		a.passwordCmd(),
	)
	return root
}

func (a *app) load() error {
	res, err := config.Resolve(a.dataDir, a.defaultCfg)
	if err != nil {
		return err
	}
	a.cfg = res.Config
	a.cfgPath = res.Path

	logging.Configure(a.cfg.App.LogLevel, a.cfg.App.LogFormat)
	log := logging.Component("config")
	for _, w := range res.Validation.Warnings {
		log.Warn().Str("path", res.Path).Msg(w)
	}
	log.Debug().Str("path", res.Path).Str("data_dir", a.cfg.App.DataDir).Msg("config loaded")
	return nil
}
