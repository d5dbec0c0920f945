package cmd

import (
	"github.com/spf13/cobra"
)

func newComputeMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compute-metrics",
		Short: "Align the corpora, drop duplicates, and score every article.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := rt.pipe.ComputeMetrics(cmd.Context())
			return err
		},
	}
}

func newAggregateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "Roll per-article metrics up to per-issue and per-year CSVs.",
		RunE: func(*cobra.Command, []string) error {
			return rt.pipe.Aggregate()
		},
	}
}

func newVisualizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visualize",
		Short: "Render yearly readability trend charts to HTML.",
		RunE: func(*cobra.Command, []string) error {
			return rt.pipe.Visualize()
		},
	}
}
