package cmd

import (
	"context"
	"fmt"

	"freight-reconciler/core/config"
	"freight-reconciler/core/database"
	"freight-reconciler/core/logger"
	"freight-reconciler/core/reconcile"
	"freight-reconciler/core/store"
	"freight-reconciler/feature/mismatch"
	"freight-reconciler/feature/ratecard"
	"freight-reconciler/feature/shipment"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	inputDir      string
	mismatchPath  string
	shipmentsPath string
	outputPath    string
	skipHistory   bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run a reconciliation batch over the mismatch filing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if inputDir != "" {
			cfg.Paths.Input = inputDir
		}
		if mismatchPath != "" {
			cfg.Paths.Mismatch = mismatchPath
		}
		if shipmentsPath != "" {
			cfg.Paths.Shipments = shipmentsPath
		}
		if outputPath != "" {
			cfg.Paths.Output = outputPath
		}

		log, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer log.Sync()

		return runReconcile(cmd.Context(), cfg, log)
	},
}

func runReconcile(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	cards, err := ratecard.LoadDir(cfg.Paths.Input, log)
	if err != nil {
		return err
	}
	log.Info("Loaded rate cards", zap.Int("agreements", len(cards)))

	shipments, err := shipment.Load(cfg.Paths.Shipments, log)
	if err != nil {
		return err
	}

	rows, err := mismatch.Load(cfg.Paths.Mismatch, log)
	if err != nil {
		return err
	}

	var runStore *store.Store
	var run *store.RunRecord
	if !skipHistory {
		db, err := database.Connect(ctx, &cfg.Database)
		if err != nil {
			log.Warn("Run history disabled", zap.Error(err))
		} else if runStore, err = store.New(db); err != nil {
			log.Warn("Run history disabled", zap.Error(err))
			runStore = nil
		} else if run, err = runStore.Begin(ctx, cfg.Paths.Mismatch); err != nil {
			log.Warn("Run history disabled", zap.Error(err))
			runStore = nil
		}
	}

	cache := reconcile.NewAccessorialCache(ratecard.NewAccessorialLoader(cfg.Paths.Input, log))
	engine := reconcile.NewEngine(log, cards, shipments, cache)

	results := engine.ReconcileAll(rows)

	if err := mismatch.Write(cfg.Paths.Output, rows, results); err != nil {
		return err
	}
	log.Info("Wrote results", zap.String("path", cfg.Paths.Output), zap.Int("rows", len(results)))

	if runStore != nil && run != nil {
		records := make([]store.RowRecord, len(rows))
		for i, row := range rows {
			records[i] = store.RowRecord{
				ETOF:      row.ETOF,
				Agreement: row.Agreement,
				CostType:  row.CostType,
				RateBy:    results[i].RateBy,
				AppliesIf: results[i].AppliesIf,
				Reason:    results[i].Reason,
			}
		}
		if err := runStore.Finish(ctx, run, cfg.Paths.Output, records); err != nil {
			log.Warn("Failed to store run history", zap.Error(err))
		} else {
			log.Info("Stored run history", zap.String("run", run.ID))
		}
	}

	return nil
}

func init() {
	reconcileCmd.Flags().StringVar(&inputDir, "input", "", "directory with rate card and accessorial workbooks")
	reconcileCmd.Flags().StringVar(&mismatchPath, "mismatch", "", "mismatch filing workbook")
	reconcileCmd.Flags().StringVar(&shipmentsPath, "shipments", "", "joined LC/ETOF shipment workbook")
	reconcileCmd.Flags().StringVar(&outputPath, "output", "", "result workbook path")
	reconcileCmd.Flags().BoolVar(&skipHistory, "no-history", false, "skip recording the run in the history store")

	RootCmd.AddCommand(reconcileCmd)
}
