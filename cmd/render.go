package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/evdash/internal/charts"
	"github.com/KaramelBytes/evdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	rndOutputDir string
	rndFormat    string
	rndKinds     []string
	rndWidth     int
	rndHeight    int
	rndQuiet     bool
	rndSel       selectionFlags
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the comparison charts for a selection as PNG, SVG or plotly JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := charts.ParseFormat(rndFormat)
		if err != nil {
			return err
		}
		kinds := charts.Kinds
		if len(rndKinds) > 0 {
			kinds = nil
			for _, name := range rndKinds {
				k, err := charts.ParseKind(name)
				if err != nil {
					return err
				}
				kinds = append(kinds, k)
			}
		}

		ds, _, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		c := currentConfig()
		dir := rndOutputDir
		if dir == "" {
			dir = c.OutputDir
		}
		width, height := c.ChartWidth, c.ChartHeight
		if rndWidth > 0 {
			width = rndWidth
		}
		if rndHeight > 0 {
			height = rndHeight
		}

		sel, res := rndSel.resolve(cmd, ds)
		if res.Empty() {
			fmt.Fprintln(os.Stderr, "⚠ Warning: Please select at least one EV model to compare.")
			return nil
		}
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
		if !rndQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Selection: brands=%v drivetrains=%v models=%v\n", sel.Brands, sel.Drivetrains, sel.Models)
		}

		total := len(kinds)
		for i, k := range kinds {
			spec, err := charts.SpecFor(k)
			if err != nil {
				return err
			}
			fig, err := charts.Build(spec, res.View)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			err = charts.Render(&buf, fig, format, width, height)
			if errors.Is(err, charts.ErrEmptyFigure) {
				fmt.Fprintf(os.Stderr, "⚠ Warning: [%d/%d] %s chart has no plottable rows, skipped\n", i+1, total, k)
				continue
			}
			if err != nil {
				return err
			}
			out := filepath.Join(dir, fmt.Sprintf("%s.%s", k, format))
			if err := utils.SafeWriteFile(out, buf.Bytes()); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			if !rndQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ [%d/%d] Wrote %s\n", i+1, total, out)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&rndOutputDir, "output-dir", "o", "", "directory for chart files (overrides config output_dir)")
	renderCmd.Flags().StringVarP(&rndFormat, "format", "f", "png", "output format: png|svg|json")
	renderCmd.Flags().StringSliceVar(&rndKinds, "chart", nil, "chart kinds to render: bubble,line,bar,radar (default: all)")
	renderCmd.Flags().IntVar(&rndWidth, "width", 0, "image width in pixels (overrides config chart_width)")
	renderCmd.Flags().IntVar(&rndHeight, "height", 0, "image height in pixels (overrides config chart_height)")
	renderCmd.Flags().BoolVarP(&rndQuiet, "quiet", "q", false, "suppress progress output")
	rndSel.register(renderCmd.Flags())
}
