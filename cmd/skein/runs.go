package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List persisted reconciliation runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			for _, r := range runs {
				fmt.Printf("%s  %s  %4d transactions  +$%s  -$%s\n",
					r.GeneratedAt.Format("2006-01-02 15:04"),
					r.RunID,
					r.Transactions,
					r.TotalDeposits.StringFixed(2),
					r.TotalDebits.StringFixed(2))
			}
			return nil
		},
	}
}
