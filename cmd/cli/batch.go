package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/assortlab/skualloc/pkg/core/model"
	"github.com/assortlab/skualloc/pkg/loader"
)

func batchCmd() *cobra.Command {
	var (
		skuFile   string
		storeFile string
		scenarios []string
		method    string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every style in the SKU table against one or more scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			skuRows, err := loader.LoadSKUTable(skuFile)
			if err != nil {
				return err
			}
			storeRows, err := loader.LoadStoreTable(storeFile)
			if err != nil {
				return err
			}

			if len(scenarios) == 0 {
				scenarios = app.cfg.ScenarioNames()
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			styles := loader.Styles(skuRows)
			app.logger.Info("Starting batch run",
				zap.Int("styles", len(styles)),
				zap.Strings("scenarios", scenarios),
			)

			var ok, infeasible int
			for _, scenario := range scenarios {
				sc, err := app.cfg.Scenario(scenario)
				if err != nil {
					return err
				}
				for _, style := range styles {
					tables, err := loader.BuildTables(skuRows, storeRows, style)
					if err != nil {
						return err
					}

					result, err := app.engine.Run(app.ctx, tables, runParams(scenario, sc, method))
					if err != nil {
						// An infeasible style must not abort the rest of the batch.
						var inf *model.InfeasibleError
						if errors.As(err, &inf) {
							infeasible++
							app.logger.Warn("Style infeasible, skipping",
								zap.String("style", inf.Style),
								zap.String("scenario", inf.Scenario),
								zap.String("stage", inf.Stage),
							)
							continue
						}
						return err
					}
					ok++

					if outDir != "" {
						out := filepath.Join(outDir, fmt.Sprintf("%s_%s.csv", style, scenario))
						if err := writeAllocationCSV(out, result); err != nil {
							return err
						}
					}
					app.logger.Info("Style allocated",
						zap.String("style", style),
						zap.String("scenario", scenario),
						zap.String("status", result.Status),
						zap.Int("allocated", result.Report.TotalAllocated),
						zap.Int("supply", result.Report.TotalSupply),
					)
				}
			}

			app.logger.Info("Batch run finished",
				zap.Int("succeeded", ok),
				zap.Int("infeasible", infeasible),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&skuFile, "sku-file", "", "SKU supply CSV (PART_CD,COLOR_CD,SIZE_CD,ORD_QTY)")
	cmd.Flags().StringVar(&storeFile, "store-file", "", "Store CSV (SHOP_ID,SHOP_NAME,QTY_SUM)")
	cmd.Flags().StringSliceVar(&scenarios, "scenarios", nil, "Scenarios to run (default: all configured)")
	cmd.Flags().StringVar(&method, "method", "three-step", "Algorithm: three-step or integrated")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for per-run allocation CSVs")
	cmd.MarkFlagRequired("sku-file")
	cmd.MarkFlagRequired("store-file")

	return cmd
}
