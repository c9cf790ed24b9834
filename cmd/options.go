package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/evdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	optJSON  bool
	optTable bool
	optSel   selectionFlags
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the brand, drivetrain and model options for a selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		sel, res := optSel.resolve(cmd, ds)
		out := cmd.OutOrStdout()

		if optJSON {
			b, err := utils.PrettyJSON(map[string]any{
				"selection": sel,
				"options":   res,
				"rows":      len(res.View),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		printFacet(out, "Brands", res.Brands, sel.Brands)
		printFacet(out, "Drivetrains", res.Drivetrains, sel.Drivetrains)
		printFacet(out, "Models", res.Models, sel.Models)
		if res.Empty() {
			fmt.Fprintln(out, "\nPlease select at least one EV model to compare.")
			return nil
		}
		fmt.Fprintf(out, "\n%d of %d rows selected\n", len(res.View), ds.Len())
		if optTable {
			fmt.Fprintln(out)
			for _, v := range res.View {
				fmt.Fprintf(out, "- %s\n", strings.Join([]string{v.Brand, v.Model, v.Drivetrain}, " / "))
			}
		}
		return nil
	},
}

// printFacet lists options, marking the selected ones with '*'.
func printFacet(w io.Writer, title string, opts, chosen []string) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(opts) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	set := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		set[c] = true
	}
	for _, o := range opts {
		mark := " "
		if set[o] {
			mark = "*"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, o)
	}
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.Flags().BoolVar(&optJSON, "json", false, "print options as JSON")
	optionsCmd.Flags().BoolVar(&optTable, "rows", false, "also list the selected rows")
	optSel.register(optionsCmd.Flags())
}
