package cmd

import (
	"fmt"
	"os"

	"freight-reconciler/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "freight-reconciler",
	Short: "Freight cost reconciliation",
	Long: `freight-reconciler derives the expected price for flagged freight cost
mismatches. It loads carrier agreement rate cards and accessorial cost
workbooks, verifies each cost's Applies If conditions against the joined
LC/ETOF shipment data and writes a result workbook with a reason per row.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level gives readable CLI error output
		// with ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "directory containing the .env configuration file")
}
