// Package tier classifies a set of mapped target fields into the data
// capability tier it supports.
package tier

import "github.com/plantmetrics/schemamap/internal/catalog"

// Result describes the outcome of a classification.
type Result struct {
	Tier int           `json:"tier"`
	Info *catalog.Tier `json:"tier_info"`

	// MissingForNextTier lists the next tier's required fields absent from
	// the mapped set, in catalog tier order. Empty at the top tier.
	MissingForNextTier []string `json:"missing_for_next_tier"`

	// Coverage is the fraction of the achieved tier's own required fields
	// that are present. Always 1.0 for any tier above the base tier.
	Coverage float64 `json:"coverage"`
}

// Classifier evaluates tier definitions against mapped field sets.
type Classifier struct {
	catalog *catalog.Registry
}

// NewClassifier creates a classifier over the given catalog.
func NewClassifier(reg *catalog.Registry) *Classifier {
	return &Classifier{catalog: reg}
}

// Classify returns the highest tier whose entire required-field set is
// covered by targetFields. Because each tier's requirements subsume the
// previous tier's, checking from the top down is unambiguous. When not even
// the base tier is fully covered, the base tier is reported with partial
// coverage.
func (c *Classifier) Classify(targetFields []string) Result {
	present := make(map[string]bool, len(targetFields))
	for _, f := range targetFields {
		if f != "" {
			present[f] = true
		}
	}

	tiers := c.catalog.Tiers()
	for i := len(tiers) - 1; i >= 0; i-- {
		t := tiers[i]
		if i > 0 && !covers(present, t.RequiredFields) {
			continue
		}

		res := Result{Tier: t.Tier, Info: t, Coverage: 1.0}
		if i == 0 {
			// Base tier is the floor: report partial coverage instead
			// of failing.
			res.Coverage = coverage(present, t.RequiredFields)
		}
		if i < len(tiers)-1 {
			res.MissingForNextTier = missing(present, tiers[i+1].RequiredFields)
		}
		return res
	}

	// Unreachable for a validly built catalog (Build requires >= 1 tier).
	return Result{}
}

func covers(present map[string]bool, required []string) bool {
	for _, f := range required {
		if !present[f] {
			return false
		}
	}
	return true
}

func coverage(present map[string]bool, required []string) float64 {
	if len(required) == 0 {
		return 1.0
	}
	n := 0
	for _, f := range required {
		if present[f] {
			n++
		}
	}
	return float64(n) / float64(len(required))
}

func missing(present map[string]bool, required []string) []string {
	out := []string{}
	for _, f := range required {
		if !present[f] {
			out = append(out, f)
		}
	}
	return out
}
