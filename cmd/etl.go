package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newETLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "etl",
		Short: "Extracts, transforms in process and loads the ITBI datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, log, err := newPipeline()
			if err != nil {
				return err
			}
			defer p.Close()

			summary, err := p.RunETL()
			if err != nil {
				log.Error(fmt.Sprintf("Error running ETL pipeline: %v", err))
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ETL finished: %d records, %d columns, %d failed operations\n",
				summary.TotalRecords, summary.Columns, summary.Failures)
			for _, y := range summary.Years {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: extracted %d, transformed %d, dropped %d, loaded %d\n",
					y.Year, y.Extracted, y.Transformed, y.Dropped, y.Loaded)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Consolidated file: %s\nQuality report: %s\nDuration: %s\n",
				summary.Files.CSV, summary.Quality.Text, summary.Duration)
			return nil
		},
	}
}
