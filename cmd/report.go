package cmd

import (
	"fmt"

	"github.com/KaramelBytes/evdash/internal/report"
	"github.com/KaramelBytes/evdash/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	repOutputPath string
	repLang       string
	repSel        selectionFlags
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a Markdown comparison report for a selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		tag, err := language.Parse(repLang)
		if err != nil {
			return fmt.Errorf("invalid --lang: %w", err)
		}
		sel, res := repSel.resolve(cmd, ds)
		rep, err := report.Build(ds, sel, res.View, message.NewPrinter(tag))
		if err != nil {
			return err
		}
		md := rep.Markdown()

		if repOutputPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := utils.SafeWriteFile(repOutputPath, []byte(md)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", repOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repOutputPath, "output", "o", "", "write the report to this file instead of stdout")
	reportCmd.Flags().StringVar(&repLang, "lang", "en", "language tag for number formatting")
	repSel.register(reportCmd.Flags())
}
