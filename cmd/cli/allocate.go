package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/assortlab/skualloc/internal/config"
	"github.com/assortlab/skualloc/pkg/core/alloc"
	"github.com/assortlab/skualloc/pkg/core/model"
	"github.com/assortlab/skualloc/pkg/loader"
)

func allocateCmd() *cobra.Command {
	var (
		skuFile   string
		storeFile string
		style     string
		scenario  string
		method    string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Run one style/scenario allocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := app.cfg.Scenario(scenario)
			if err != nil {
				return err
			}

			tables, err := loadTables(skuFile, storeFile, style)
			if err != nil {
				return err
			}

			result, err := app.engine.Run(app.ctx, tables, runParams(scenario, sc, method))
			if err != nil {
				return err
			}

			printResult(result)

			if outFile != "" {
				if err := writeAllocationCSV(outFile, result); err != nil {
					return err
				}
				app.logger.Info("Allocation written", zap.String("path", outFile))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&skuFile, "sku-file", "", "SKU supply CSV (PART_CD,COLOR_CD,SIZE_CD,ORD_QTY)")
	cmd.Flags().StringVar(&storeFile, "store-file", "", "Store CSV (SHOP_ID,SHOP_NAME,QTY_SUM)")
	cmd.Flags().StringVar(&style, "style", "", "Style (PART_CD) to allocate")
	cmd.Flags().StringVar(&scenario, "scenario", "deterministic", "Scenario name from the config file")
	cmd.Flags().StringVar(&method, "method", string(alloc.MethodThreeStep), "Algorithm: three-step or integrated")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the allocation matrix CSV to this path")
	cmd.MarkFlagRequired("sku-file")
	cmd.MarkFlagRequired("store-file")
	cmd.MarkFlagRequired("style")

	return cmd
}

func loadTables(skuFile, storeFile, style string) (model.Tables, error) {
	skuRows, err := loader.LoadSKUTable(skuFile)
	if err != nil {
		return model.Tables{}, err
	}
	storeRows, err := loader.LoadStoreTable(storeFile)
	if err != nil {
		return model.Tables{}, err
	}
	return loader.BuildTables(skuRows, storeRows, style)
}

func runParams(name string, sc config.Scenario, method string) alloc.Params {
	return alloc.Params{
		Scenario:    name,
		Method:      alloc.Method(method),
		Temperature: sc.PriorityTemperature,
		Seed:        sc.Seed,
		Weights:     sc.Weights(),
		TimeLimit:   time.Duration(sc.SolverTimeLimitSeconds) * time.Second,
	}
}

func printResult(result *alloc.Result) {
	r := result.Report

	fmt.Printf("\nRun %s (%s / %s, %s)\n", result.RunID, result.Style, result.Scenario, result.Method)
	fmt.Printf("Status:     %s\n", result.Status)
	fmt.Printf("Allocated:  %d / %d units (%.1f%%)\n", r.TotalAllocated, r.TotalSupply, r.AllocationRate*100)
	fmt.Printf("Stores:     %d of %d served\n", r.StoresServed, len(result.Stores))
	fmt.Printf("Coverage:   colors %.1f%%, sizes %.1f%% (store average)\n", r.AvgColorCoverage*100, r.AvgSizeCoverage*100)
	if result.Method == alloc.MethodThreeStep {
		fmt.Printf("Stages:     %d pairs selected, %d units fitted, %d residual units\n",
			result.Stages.Stage1Pairs, result.Stages.Stage2Units, result.Stages.Stage3Units)
	}

	fmt.Printf("\nTier balance:\n")
	for _, tb := range r.TierBalance {
		fmt.Printf("  T%d: %3d stores, units min %d / max %d / mean %.1f (stddev %.2f)\n",
			tb.Tier, tb.Stores, tb.MinUnits, tb.MaxUnits, tb.MeanUnits, tb.StdDev)
	}
	fmt.Println()
}

func writeAllocationCSV(path string, result *alloc.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"SHOP_ID", "SKU", "QTY"}); err != nil {
		return err
	}
	for _, row := range result.Allocation.Rows(result.Stores, result.SKUs) {
		if err := w.Write([]string{row.ShopID, row.SKUKey, strconv.Itoa(row.Qty)}); err != nil {
			return err
		}
	}
	return nil
}
