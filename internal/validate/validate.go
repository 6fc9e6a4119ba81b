// Package validate checks catalog documents before they ship.
//
// Validation is exhaustive and diagnostic: every problem across every city is
// collected. Structural and uniqueness problems are errors; placeholders, empty
// includes, missing disclaimers and unknown specialty slugs are warnings. The
// runtime readiness gate lives in package catalog and is deliberately cheaper.
package validate

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/glowheal/catalog/internal/catalog"
)

// KnownSpecialties are the specialty slugs the site's service and doctor pages
// know how to map. The list is advisory only.
var KnownSpecialties = map[string]bool{
	"dermatology":         true,
	"hair-care":           true,
	"weight-management":   true,
	"mental-health":       true,
	"nutrition-dietetics": true,
	"womens-health":       true,
	"mens-health":         true,
	"sleep-stress":        true,
	"gut-health":          true,
	"metabolic-health":    true,
	"preventive-labs":     true,
	"iv-therapy":          true,
	"orthopedics":         true,
	"cardiology":          true,
	"gynecology":          true,
	"pediatrics":          true,
}

// Input is the raw content of one city's files. A nil slice means the file
// does not exist.
type Input struct {
	City    catalog.City
	Path    string
	Catalog []byte
	Addons  []byte
}

// Report collects the outcome of a validation run.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Infos    []string `json:"infos"`
	Cities   int      `json:"cities"`
}

// Failed reports whether any error was recorded.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// Print writes the report in the validator's console format.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "Glowheal catalog validation")
	fmt.Fprintln(w, "================================")
	for _, l := range r.Infos {
		fmt.Fprintln(w, l)
	}

	fmt.Fprintln(w, "\n================================")
	fmt.Fprintln(w, "Validation results")
	fmt.Fprintln(w, "================================")

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, m := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", m)
		}
	}
	if r.Failed() {
		fmt.Fprintln(w, "\nErrors:")
		for _, m := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintf(w, "\nValidation failed with %d error(s)\n", len(r.Errors))
		return
	}
	fmt.Fprintln(w, "\nAll catalogs valid!")
	fmt.Fprintf(w, "   %d cities validated\n", r.Cities)
}

// Validate checks every input. Cities are checked independently and in
// parallel; cross-city code collisions are found afterwards by merging the
// per-city code lists in input order.
func Validate(inputs []Input) *Report {
	results := make([]*cityResult, len(inputs))

	var g errgroup.Group
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			results[i] = validateCity(in)
			return nil
		})
	}
	g.Wait()

	r := &Report{Cities: len(inputs)}
	owner := make(map[string]catalog.City)
	for _, res := range results {
		r.Infos = append(r.Infos, res.infos...)
		r.Warnings = append(r.Warnings, res.warnings...)
		r.Errors = append(r.Errors, res.errors...)
		r.Errors = append(r.Errors, collisions(res, owner)...)
	}
	return r
}

// collisions records res's codes in owner and returns an error for every
// code already owned by an earlier city.
func collisions(res *cityResult, owner map[string]catalog.City) []string {
	var errs []string
	for _, code := range res.codes {
		prev, ok := owner[code]
		switch {
		case !ok:
			owner[code] = res.city
		case prev != res.city:
			errs = append(errs, fmt.Sprintf(
				"[%s] Code collision across cities: %s (already used in %s)", res.city, code, prev))
		}
	}
	return errs
}

// cityResult is the outcome of validating one city in isolation.
type cityResult struct {
	city     catalog.City
	codes    []string
	errors   []string
	warnings []string
	infos    []string
}

func (c *cityResult) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf("[%s] ", c.city)+fmt.Sprintf(format, args...))
}

func (c *cityResult) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf("[%s] ", c.city)+fmt.Sprintf(format, args...))
}

func (c *cityResult) infof(format string, args ...any) {
	c.infos = append(c.infos, fmt.Sprintf(format, args...))
}

func validateCity(in Input) *cityResult {
	res := &cityResult{city: in.City}

	if in.Catalog == nil {
		res.errorf("Missing catalog file for %s: %s", in.City, in.Path)
		return res
	}

	res.infof("\nValidating %s catalog...", in.City)
	if err := checkCatalog(res, in.Catalog); err != nil {
		res.errorf("Error validating %s catalog: %v", in.City, err)
	}

	if in.Addons == nil {
		res.warnf("No add-ons file for %s", in.City)
		return res
	}
	res.infof("\nValidating %s add-ons...", in.City)
	if err := checkAddons(res, in.Addons); err != nil {
		res.errorf("Error validating %s add-ons: %v", in.City, err)
	}
	return res
}

// present reports whether a field was present and not null.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
