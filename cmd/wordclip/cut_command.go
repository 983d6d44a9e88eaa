package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maauso/wordclip/internal/bootstrap"
	"github.com/maauso/wordclip/internal/job"
)

func newCutCommand(ctx *commandContext) *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "cut [unit|collection...]",
		Short: "Cut the kept words of units into new tracks",
		Long: `Cut reads <unit>.txt and Keep_<unit>.txt, aligns the word list with the
recording <unit>.mp3 and writes Cutted_<unit>.mp3 holding the kept words in
keep-list order. Without arguments every recording is processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				units, err := resolveUnits(deps, args)
				if err != nil {
					return err
				}
				return cutUnits(cmd, deps, units, publish)
			})
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "upload finished tracks to S3")
	return cmd
}

// cutUnits runs a batch and prints its reports. It fails only when a unit
// failed; skipped and empty units are reported.
func cutUnits(cmd *cobra.Command, deps *bootstrap.Dependencies, units []string, publish bool) error {
	out := cmd.OutOrStdout()
	if len(units) == 0 {
		fmt.Fprintln(out, "No units to cut")
		return nil
	}

	reports := deps.Cuts.ProcessBatch(cmd.Context(), units, publish)
	printReports(out, reports)

	sum := job.Summarize(reports)
	fmt.Fprintf(out, "%d exported, %d empty, %d skipped, %d failed\n",
		sum.Exported, sum.Empty, sum.Skipped, sum.Failed)

	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d units failed", sum.Failed, len(units))
	}
	return nil
}

func printReports(w io.Writer, reports []job.Report) {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.Unit,
			string(r.Outcome),
			strconv.Itoa(r.Words),
			strconv.Itoa(r.Intervals),
			strconv.Itoa(r.Exported),
			strings.Join(r.Unlocated(), ", "),
			reportDetail(r),
		})
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"Unit", "Outcome", "Words", "Intervals", "Exported", "Not found", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
}

func reportDetail(r job.Report) string {
	switch {
	case r.Reason != "":
		return r.Reason
	case r.Warning != "":
		return "warning: " + r.Warning
	case r.URL != "":
		return r.URL
	default:
		return r.OutputPath
	}
}

func formatMs(ms int) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
