package mapping

import (
	"fmt"
	"strings"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/tier"
)

// lowConfidenceThreshold flags mappings that deserve a human look before
// the upload is committed.
const lowConfidenceThreshold = 0.85

// ValidationResult is the outcome of checking a mapping batch. Errors block
// acceptance; warnings are advisory and never affect Valid.
type ValidationResult struct {
	Valid    bool        `json:"valid"`
	Errors   []string    `json:"errors"`
	Warnings []string    `json:"warnings"`
	DataTier tier.Result `json:"data_tier"`
}

// Validator checks a (possibly hand-edited) mapping batch for required-field
// coverage, duplicate assignments, and low-confidence entries. It does not
// trust the resolver's invariants: a human editor may have reintroduced
// duplicates or dropped required fields after auto-mapping.
type Validator struct {
	catalog    *catalog.Registry
	classifier *tier.Classifier
}

// NewValidator creates a validator over the given catalog.
func NewValidator(reg *catalog.Registry) *Validator {
	return &Validator{catalog: reg, classifier: tier.NewClassifier(reg)}
}

// Validate runs all checks and reports the recomputed tier. Checks are
// independent; every applicable error and warning is accumulated.
func (v *Validator) Validate(mappings []Mapping) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	mapped := TargetFields(mappings)
	res.DataTier = v.classifier.Classify(mapped)

	present := make(map[string]bool, len(mapped))
	counts := make(map[string]int, len(mapped))
	for _, f := range mapped {
		present[f] = true
		counts[f]++
	}

	var missingRequired []string
	for _, f := range v.catalog.BaseTier().RequiredFields {
		if !present[f] {
			missingRequired = append(missingRequired, f)
		}
	}
	if len(missingRequired) > 0 {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"missing required fields: %s", strings.Join(missingRequired, ", ")))
	}

	for _, m := range mappings {
		if m.TargetField != "" && counts[m.TargetField] > 1 {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"target field %q is assigned to multiple source columns", m.TargetField))
			counts[m.TargetField] = 0 // report each duplicate once
		}
	}

	for _, m := range mappings {
		if m.TargetField != "" && m.Confidence < lowConfidenceThreshold {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"low confidence mapping %q -> %q (%.2f); review before accepting",
				m.SourceColumn, m.TargetField, m.Confidence))
		}
	}

	if res.DataTier.Tier >= 2 && !v.hasTemporalField(mapped) {
		res.Warnings = append(res.Warnings,
			"no date field is mapped; trend and baseline analyses will be degraded")
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func (v *Validator) hasTemporalField(mapped []string) bool {
	for _, key := range mapped {
		if f := v.catalog.Field(key); f != nil && f.DataType == catalog.TypeDate {
			return true
		}
	}
	return false
}
