package cmd

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Prints temporal, geographic and property type insights from the warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, log, err := newPipeline()
			if err != nil {
				return err
			}
			defer p.Close()

			if _, err := p.Analyze(cmd.OutOrStdout()); err != nil {
				log.Error(err.Error())
				return err
			}
			return nil
		},
	}
}
