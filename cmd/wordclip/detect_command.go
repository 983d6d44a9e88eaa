package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maauso/wordclip/internal/bootstrap"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <unit>",
		Short: "Print the non-silent intervals of a unit recording",
		Long: `Detect runs silence detection on <unit>.mp3 with the configured settings
and prints the intervals found. Compare their count with the word list to
tune MIN_SILENCE_MS and SILENCE_THRESH_DB.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				det, err := deps.Cuts.Detect(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %d intervals in %s\n", det.Unit.Name, len(det.Intervals), formatMs(det.TrackMs))
				if len(det.Intervals) == 0 {
					return nil
				}

				rows := make([][]string, 0, len(det.Intervals))
				for i, iv := range det.Intervals {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						strconv.Itoa(iv.StartMs),
						strconv.Itoa(iv.EndMs),
						strconv.Itoa(iv.DurationMs()),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"#", "Start ms", "End ms", "Length ms"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}
