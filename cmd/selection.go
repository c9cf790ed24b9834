package cmd

import (
	"math/rand"
	"strings"

	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/KaramelBytes/evdash/internal/filter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// selectionFlags are shared by every command that works on a selection.
type selectionFlags struct {
	brands      []string
	drivetrains []string
	models      []string
	seed        int64
	sampleSize  int
}

func (s *selectionFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&s.brands, "brand", nil, "brand(s) to compare; repeat or comma-separate (default: random sample)")
	fs.StringSliceVar(&s.drivetrains, "drivetrain", nil, "drivetrain(s) to keep (default: all offered)")
	fs.StringSliceVar(&s.models, "model", nil, "model(s) to compare (default: random sample)")
	fs.Int64Var(&s.seed, "seed", 0, "seed for the default random selection (default: clock)")
	fs.IntVar(&s.sampleSize, "sample-size", 0, "how many brands and models the default selection picks (overrides config)")
}

// reset clears values and Changed state so a command can run twice in one process.
func (s *selectionFlags) reset(fs *pflag.FlagSet) {
	*s = selectionFlags{}
	for _, name := range []string{"brand", "drivetrain", "model", "seed", "sample-size"} {
		if fl := fs.Lookup(name); fl != nil {
			fl.Changed = false
		}
	}
}

// selection turns the flags into a filter.Selection. A flag that was not
// given leaves its facet nil; --brand "" selects nothing.
func (s *selectionFlags) selection(cmd *cobra.Command) filter.Selection {
	f := cmd.Flags()
	pick := func(name string, vals []string) []string {
		if !f.Changed(name) {
			return nil
		}
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return filter.Selection{
		Brands:      pick("brand", s.brands),
		Drivetrains: pick("drivetrain", s.drivetrains),
		Models:      pick("model", s.models),
	}
}

func (s *selectionFlags) rand(cmd *cobra.Command) *rand.Rand {
	if cmd.Flags().Changed("seed") {
		return rand.New(rand.NewSource(s.seed))
	}
	return filter.NewRand()
}

func (s *selectionFlags) size() int {
	if s.sampleSize > 0 {
		return s.sampleSize
	}
	return currentConfig().SampleSize
}

// resolve fills unspecified facets and applies the selection.
func (s *selectionFlags) resolve(cmd *cobra.Command, ds *dataset.Dataset) (filter.Selection, filter.Result) {
	sel := filter.Resolve(ds, s.selection(cmd), s.rand(cmd), s.size())
	return sel, filter.Apply(ds, sel)
}
