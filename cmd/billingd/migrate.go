package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "One-off data migrations",
	}

	var from, to string
	rename := &cobra.Command{
		Use:   "rename-field",
		Short: "Rename a field on every time log that has it",
		Example: `  billingd migrate rename-field --from project --to projectName
  billingd migrate rename-field --from projectName --to project`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, _, closeStore, err := rt.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := store.TimeLogs.RenameTimeLogField(ctx, from, to)
			if err != nil {
				return err
			}
			rt.log.Info().
				Str("from", from).
				Str("to", to).
				Int64("matched", res.Matched).
				Int64("modified", res.Modified).
				Msg("time log field renamed")
			fmt.Fprintf(cmd.OutOrStdout(), "matched %d, modified %d\n", res.Matched, res.Modified)
			return nil
		},
	}
	rename.Flags().StringVar(&from, "from", "", "current field name")
	rename.Flags().StringVar(&to, "to", "", "new field name")
	_ = rename.MarkFlagRequired("from")
	_ = rename.MarkFlagRequired("to")

	migrate.AddCommand(rename)
	return migrate
}
