package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "wordclip",
		Short: "Cut kept vocabulary words out of unit recordings",
		Long: `wordclip aligns the words of a unit's word list with the spoken words of
its recording and writes a shorter track holding only the words still to
be learned. The vocabulary workbook decides which words are kept.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&ctx.quiet, "quiet", "q", false, "only log errors")

	rootCmd.AddCommand(newCutCommand(ctx))
	rootCmd.AddCommand(newPrepareCommand(ctx))
	rootCmd.AddCommand(newDetectCommand(ctx))
	rootCmd.AddCommand(newSheetCommand(ctx))
	rootCmd.AddCommand(newCollectionsCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
