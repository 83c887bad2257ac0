package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/assortlab/skualloc/internal/config"
	"github.com/assortlab/skualloc/pkg/core/alloc"
	"github.com/assortlab/skualloc/pkg/core/solver"
	"github.com/assortlab/skualloc/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	engine *alloc.Engine
	logger *zap.Logger
	ctx    context.Context
}

var (
	configPath string
	logDir     string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skualloc",
		Short: "SKU allocation CLI - distribute style supply across stores",
		Long:  `A CLI tool for allocating a style's SKU supply across retail stores, maximizing assortment diversity under tier capacity rules.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: skualloc.yaml in cwd or home)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "logs", "Directory for JSON log files (empty disables file logging)")

	rootCmd.AddCommand(allocateCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(scenariosCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and the allocation engine
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(logDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if configPath != "" {
		app.cfg, err = config.LoadFromPath(configPath)
	} else {
		app.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded",
		zap.Int("tiers", len(app.cfg.Tiers)),
		zap.Int("scenarios", len(app.cfg.Scenarios)),
	)

	app.engine = alloc.NewEngine(solver.NewCPSAT(), app.cfg.TierSpecs(), app.logger)
	return nil
}
