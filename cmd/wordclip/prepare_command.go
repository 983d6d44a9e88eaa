package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/wordclip/internal/bootstrap"
	"github.com/maauso/wordclip/internal/workbook"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var (
		columns string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "prepare <unit|collection...>",
		Short: "Hide learned rows, export keep lists and cut",
		Long: `Prepare runs the whole round for the given units: rows whose answers are
done are hidden in the workbook, the remaining words are exported as keep
lists and the units are cut.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := workbook.ParseColumns(columns)
			if err != nil {
				return err
			}
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				units := deps.Collections.Resolve(args)
				out := cmd.OutOrStdout()

				hidden, err := deps.Workbook.HideCompleted(units, cols)
				if err != nil {
					return fmt.Errorf("hide completed rows: %w", err)
				}
				printHidden(out, units, hidden)

				exported, err := deps.Workbook.ExportKeep(units, deps.Config.IntermediateDir)
				if err != nil {
					return fmt.Errorf("export keep lists: %w", err)
				}
				printExport(out, exported)

				return cutUnits(cmd, deps, units, publish)
			})
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "answer check columns, e.g. F,H")
	cmd.Flags().BoolVar(&publish, "publish", false, "upload finished tracks to S3")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}
