package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/periodical-labs/readlevel/internal/pipeline"
)

func yearFlags(cmd *cobra.Command, from, to *int) {
	cmd.Flags().IntVar(from, "from", 0, "first year to crawl (required)")
	cmd.Flags().IntVar(to, "to", 0, "last year to crawl (default: same as --from)")
	_ = cmd.MarkFlagRequired("from")
}

func newFetchMagazineCmd() *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "fetch-magazine",
		Short: "Crawl magazine issues and store their articles.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			years, err := pipeline.YearsFromRange(from, to)
			if err != nil {
				return err
			}
			summary, err := rt.pipe.FetchMagazine(cmd.Context(), years)
			if err != nil {
				rt.logger.Error("magazine fetch aborted",
					zap.Int("fetched_before_abort", summary.Fetched),
					zap.Error(err),
				)
				return err
			}
			return nil
		},
	}
	yearFlags(cmd, &from, &to)
	return cmd
}

func newFetchWebCmd() *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "fetch-web",
		Short: "Crawl web-only articles near each stored issue date.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			years, err := pipeline.YearsFromRange(from, to)
			if err != nil {
				return err
			}
			summary, err := rt.pipe.FetchWeb(cmd.Context(), years)
			if err != nil {
				rt.logger.Error("web fetch aborted",
					zap.Int("fetched_before_abort", summary.Fetched),
					zap.Error(err),
				)
				return err
			}
			return nil
		},
	}
	yearFlags(cmd, &from, &to)
	return cmd
}
