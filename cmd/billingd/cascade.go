package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hourbook/billing/internal/core/service"
	"github.com/hourbook/billing/pkg/logger"
)

// newCascadeRateCmd re-runs the fixed-rate cascade for one project, which
// finishes a cascade interrupted by a failed project update.
func newCascadeRateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "cascade-rate <project>",
		Short: "Force the fixed-rate sentinel onto every time log of a project",
		Long: `Rewrites rate=-1 and rate_type=fixed on every time log of the named
project, billed or not. Logs that already carry those values are left alone,
so running it again is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, closeStore, err := rt.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			projects := service.NewProjectService(store.Projects, store.TimeLogs, logger.Component("projects"))
			n, err := projects.CascadeFixedRate(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d time logs updated for %q\n", n, args[0])
			return nil
		},
	}
}
