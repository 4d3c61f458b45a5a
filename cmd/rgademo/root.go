package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	withCounters bool
	verbose      bool
	logger       *zap.Logger
	sess         *session
)

var rootCmd = &cobra.Command{
	Use:   "rgademo",
	Short: "Scenario demos for the S4Vector replicated growable array",
	Long: `rgademo drives a pair of in-process RGA replicas through the
convergence scenarios described by the S4Vector specification: local
inserts, deletes, updates, and out-of-order remote delivery through the
causal buffer.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return err
		}
		sess = newSession(logger, withCounters)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&withCounters, "with-counters", false, "attach a PNCounter to each replica and report applied-op totals")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "emit debug-level structured logs")

	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(syncCmd)
}
