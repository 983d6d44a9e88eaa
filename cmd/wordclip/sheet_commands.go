package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maauso/wordclip/internal/bootstrap"
	"github.com/maauso/wordclip/internal/workbook"
)

func newSheetCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Edit the vocabulary workbook",
	}
	cmd.AddCommand(
		newImportCSVCommand(ctx),
		newHideDoneCommand(ctx),
		newExportKeepCommand(ctx),
		newExportOriginCommand(ctx),
		newWidenCommand(ctx),
	)
	return cmd
}

func newImportCSVCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "import-csv",
		Short: "Import word tables from CSV files into sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				if dir == "" {
					dir = deps.Config.CSVDir
				}
				imports, err := deps.Workbook.ImportCSV(cmd.Context(), dir)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(imports) == 0 {
					fmt.Fprintf(out, "No CSV files in %s\n", dir)
					return nil
				}
				rows := make([][]string, 0, len(imports))
				for _, imp := range imports {
					rows = append(rows, []string{imp.Sheet, strconv.Itoa(imp.Rows), yesNo(imp.Created)})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Sheet", "Rows", "Created"}, rows,
					[]columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "CSV folder (default CSV_DIR)")
	return cmd
}

func newHideDoneCommand(ctx *commandContext) *cobra.Command {
	var columns string

	cmd := &cobra.Command{
		Use:   "hide-done <sheet|collection...>",
		Short: "Hide rows whose answers are all done",
		Long: `Hide-done unhides every row of the given sheets and hides the word rows
whose answer checks all pass. For each check column the answer is the cell
to its left; a blank answer or one matching column B or C counts as done.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := workbook.ParseColumns(columns)
			if err != nil {
				return err
			}
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				sheets := deps.Collections.Resolve(args)
				res, err := deps.Workbook.HideCompleted(sheets, cols)
				if err != nil {
					return err
				}
				printHidden(cmd.OutOrStdout(), sheets, res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "answer check columns, e.g. F,H")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

func newExportKeepCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export-keep <sheet|collection...>",
		Short: "Write the visible words of sheets as keep lists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				if dir == "" {
					dir = deps.Config.IntermediateDir
				}
				res, err := deps.Workbook.ExportKeep(deps.Collections.Resolve(args), dir)
				if err != nil {
					return err
				}
				printExport(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output folder (default INTERMEDIATE_DIR)")
	return cmd
}

func newExportOriginCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export-origin",
		Short: "Write the full word list of every sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				if dir == "" {
					dir = deps.Config.OriginWordsDir
				}
				res, err := deps.Workbook.ExportOrigin(dir)
				if err != nil {
					return err
				}
				printExport(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output folder (default ORIGIN_WORDS_DIR)")
	return cmd
}

func newWidenCommand(ctx *commandContext) *cobra.Command {
	var width float64

	cmd := &cobra.Command{
		Use:   "widen",
		Short: "Set the column width of every sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(deps *bootstrap.Dependencies) error {
				if width == 0 {
					width = deps.Config.ColumnWidth
				}
				sheets, err := deps.Workbook.Widen(width)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Widened %d sheets to %g\n", len(sheets), width)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "column width (default COLUMN_WIDTH)")
	return cmd
}

func printHidden(w io.Writer, sheets []string, res workbook.HideResult) {
	rows := make([][]string, 0, len(res.Hidden))
	for _, sheet := range sheets {
		if n, ok := res.Hidden[sheet]; ok {
			rows = append(rows, []string{sheet, strconv.Itoa(n)})
		}
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable(w, []string{"Sheet", "Hidden rows"}, rows,
			[]columnAlignment{alignLeft, alignRight}))
	}
	if len(res.Unknown) > 0 {
		fmt.Fprintf(w, "Unknown sheets: %s\n", strings.Join(res.Unknown, ", "))
	}
}

func printExport(w io.Writer, res workbook.ExportResult) {
	if len(res.Files) > 0 {
		rows := make([][]string, 0, len(res.Files))
		for _, f := range res.Files {
			rows = append(rows, []string{f.Sheet, strconv.Itoa(f.Lines), f.Path})
		}
		fmt.Fprintln(w, renderTable(w, []string{"Sheet", "Lines", "File"}, rows,
			[]columnAlignment{alignLeft, alignRight}))
	}
	if len(res.Empty) > 0 {
		fmt.Fprintf(w, "Nothing to export: %s\n", strings.Join(res.Empty, ", "))
	}
	if len(res.Unknown) > 0 {
		fmt.Fprintf(w, "Unknown sheets: %s\n", strings.Join(res.Unknown, ", "))
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
