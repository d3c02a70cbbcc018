package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newELTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elt",
		Short: "Loads the raw ITBI datasets and transforms them inside DuckDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, log, err := newPipeline()
			if err != nil {
				return err
			}
			defer p.Close()

			summary, err := p.RunELT()
			if err != nil {
				log.Error(fmt.Sprintf("Error running ELT pipeline: %v", err))
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ELT finished: %d raw records, %d transformed, %d failed operations\n",
				summary.RawLoaded, summary.Transformed, summary.Failures)
			for _, y := range summary.Years {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: transformed %d, derived %d, metrics %d\n",
					y.Year, y.Transformed, y.Derived, y.AggregatedMetrics)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Duration: %s\n", summary.Duration)
			return nil
		},
	}
}
