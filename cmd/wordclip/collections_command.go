package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maauso/wordclip/internal/bootstrap"
)

func newCollectionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the unit collections from COLLECTIONS_FILE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				out := cmd.OutOrStdout()
				names := deps.Collections.Names()
				if len(names) == 0 {
					fmt.Fprintf(out, "No collections in %s\n", deps.Config.CollectionsFile)
					return nil
				}
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, strings.Join(deps.Collections.Collections[name], ", ")})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Collection", "Units"}, rows, nil))
				return nil
			})
		},
	}
}
