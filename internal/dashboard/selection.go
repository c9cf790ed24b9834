package dashboard

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/evdash/internal/filter"
)

// Query parameter names for the three facets.
const (
	paramBrand      = "brand"
	paramDrivetrain = "drivetrain"
	paramModel      = "model"

	// The form echoes the brands and drivetrains it was rendered with so a
	// change of options upstream can reset the facets below it.
	paramPrevBrand      = "prev_brand"
	paramPrevDrivetrain = "prev_drivetrain"
)

// parseSelection reads the facets from q. An absent parameter leaves the
// facet nil (default policy); a present one, even if only "brand=", gives a
// non-nil list with blanks removed.
func parseSelection(q url.Values) filter.Selection {
	return filter.Selection{
		Brands:      facet(q, paramBrand),
		Drivetrains: facet(q, paramDrivetrain),
		Models:      facet(q, paramModel),
	}
}

// parsePrevious returns the selection the submitting form was rendered with,
// or false when q carries none (a share link or a plain API call).
func parsePrevious(q url.Values) (filter.Selection, bool) {
	if _, ok := q[paramPrevBrand]; !ok {
		return filter.Selection{}, false
	}
	return filter.Selection{
		Brands:      facet(q, paramPrevBrand),
		Drivetrains: facet(q, paramPrevDrivetrain),
	}, true
}

func facet(q url.Values, name string) []string {
	raw, ok := q[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// encodeSelection is the inverse of parseSelection. Empty facets are encoded
// as a single blank value so they stay explicit.
func encodeSelection(sel filter.Selection) url.Values {
	q := url.Values{}
	put := func(name string, vals []string) {
		switch {
		case vals == nil:
		case len(vals) == 0:
			q[name] = []string{""}
		default:
			q[name] = append([]string(nil), vals...)
		}
	}
	put(paramBrand, sel.Brands)
	put(paramDrivetrain, sel.Drivetrains)
	put(paramModel, sel.Models)
	return q
}

var supportedLangs = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Dutch,
}

var langMatcher = language.NewMatcher(supportedLangs)

// printerFor picks number formatting from ?lang= or the Accept-Language header.
func printerFor(r *http.Request) *message.Printer {
	tag, _ := language.MatchStrings(langMatcher, r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
	return message.NewPrinter(tag)
}
