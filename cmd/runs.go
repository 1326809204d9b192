package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded scoring runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %6s  %8s  %7s\n",
			"run id", "started", "areas", "dropped", "orphans")
		for _, r := range runs {
			p.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %6d  %8d  %7d\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Areas, r.PointsDropped, r.OrphanRows)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
