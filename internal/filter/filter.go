// Package filter computes the cascading brand → drivetrain → model option
// lists and the filtered vehicle view for a selection.
package filter

import (
	"math/rand"
	"sort"
	"time"

	"github.com/KaramelBytes/evdash/internal/dataset"
)

// DefaultSampleSize is how many brands and models the default selection picks.
const DefaultSampleSize = 5

// Selection is the user's choice per facet. A nil facet means "not chosen
// yet" and is filled by Resolve; an empty non-nil facet selects nothing.
type Selection struct {
	Brands      []string `json:"brands"`
	Drivetrains []string `json:"drivetrains"`
	Models      []string `json:"models"`
}

// Result is the outcome of applying a selection to a dataset.
type Result struct {
	Brands      []string          `json:"brand_options"`
	Drivetrains []string          `json:"drivetrain_options"`
	Models      []string          `json:"model_options"`
	View        []dataset.Vehicle `json:"-"`
}

// Empty reports whether no vehicle matched the selection.
func (r Result) Empty() bool { return len(r.View) == 0 }

// NewRand returns a clock-seeded random source for default selections.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Apply computes the option lists and the filtered view. It does not modify
// ds or sel.
func Apply(ds *dataset.Dataset, sel Selection) Result {
	var rows []dataset.Vehicle
	if ds != nil {
		rows = ds.Vehicles
	}
	brands := toSet(sel.Brands)
	drivetrains := toSet(sel.Drivetrains)
	models := toSet(sel.Models)

	allBrands := map[string]struct{}{}
	dtOpts := map[string]struct{}{}
	modelOpts := map[string]struct{}{}
	var view []dataset.Vehicle
	for _, v := range rows {
		addNonEmpty(allBrands, v.Brand)
		if !has(brands, v.Brand) {
			continue
		}
		addNonEmpty(dtOpts, v.Drivetrain)
		if !has(drivetrains, v.Drivetrain) {
			continue
		}
		addNonEmpty(modelOpts, v.Model)
		if has(models, v.Model) {
			view = append(view, v)
		}
	}
	return Result{
		Brands:      sortedKeys(allBrands),
		Drivetrains: sortedKeys(dtOpts),
		Models:      sortedKeys(modelOpts),
		View:        view,
	}
}

// Defaults returns the initial selection: a random sample of up to n brands,
// every drivetrain available for them, and a random sample of up to n of the
// models left.
func Defaults(ds *dataset.Dataset, rng *rand.Rand, n int) Selection {
	return Resolve(ds, Selection{}, rng, n)
}

// Resolve fills the facets sel leaves nil with the default policy, top-down,
// and drops chosen values that are not offered under the facets above them.
func Resolve(ds *dataset.Dataset, sel Selection, rng *rand.Rand, n int) Selection {
	if n <= 0 {
		n = DefaultSampleSize
	}
	if rng == nil {
		rng = NewRand()
	}
	var out Selection

	opts := Apply(ds, out)
	if sel.Brands == nil {
		out.Brands = sample(opts.Brands, n, rng)
	} else {
		out.Brands = keep(sel.Brands, opts.Brands)
	}

	opts = Apply(ds, out)
	if sel.Drivetrains == nil {
		out.Drivetrains = append([]string{}, opts.Drivetrains...)
	} else {
		out.Drivetrains = keep(sel.Drivetrains, opts.Drivetrains)
	}

	opts = Apply(ds, out)
	if sel.Models == nil {
		out.Models = sample(opts.Models, n, rng)
	} else {
		out.Models = keep(sel.Models, opts.Models)
	}
	return out
}

// Cascade clears the facets of sel whose option list differs from the one
// prev was chosen against, so Resolve gives them the default again. A new
// brand set that changes the drivetrain options resets drivetrains and
// models; a change of model options alone resets models.
func Cascade(ds *dataset.Dataset, prev, sel Selection) Selection {
	before := Apply(ds, prev)
	after := Apply(ds, Selection{Brands: sel.Brands, Drivetrains: sel.Drivetrains})
	if !equal(before.Drivetrains, after.Drivetrains) {
		sel.Drivetrains, sel.Models = nil, nil
		return sel
	}
	if !equal(before.Models, after.Models) {
		sel.Models = nil
	}
	return sel
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sample picks min(n, len(opts)) distinct options, returned in option order.
func sample(opts []string, n int, rng *rand.Rand) []string {
	if n > len(opts) {
		n = len(opts)
	}
	picked := rng.Perm(len(opts))[:n]
	sort.Ints(picked)
	out := make([]string, 0, n)
	for _, i := range picked {
		out = append(out, opts[i])
	}
	return out
}

// keep returns the distinct chosen values that appear in opts, in opts order.
func keep(chosen, opts []string) []string {
	set := toSet(chosen)
	out := make([]string, 0, len(chosen))
	for _, o := range opts {
		if has(set, o) {
			out = append(out, o)
		}
	}
	return out
}

// toSet ignores empty values: a blank cell never matches a selection.
func toSet(vals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		addNonEmpty(m, v)
	}
	return m
}

func has(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
