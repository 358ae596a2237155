package mapping

import (
	"fmt"
	"strings"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/tier"
)

// MissingField describes one unmapped required field, with example headers
// the user could add or rename a column to.
type MissingField struct {
	TargetField string   `json:"target_field"`
	DisplayName string   `json:"display_name"`
	Examples    []string `json:"examples,omitempty"`
}

// Report is the user-facing summary of an auto-mapping run, rendered by the
// upload UI and the CLI.
type Report struct {
	Success         bool           `json:"success"`
	MappedCount     int            `json:"mapped_count"`
	MissingRequired []MissingField `json:"missing_required"`
	Message         string         `json:"message"`
	TierMessage     string         `json:"tier_message"`
}

// BuildReport summarizes an auto-mapping result and its tier classification
// into a human-readable report.
func BuildReport(reg *catalog.Registry, res AutoMapResult, tr tier.Result) Report {
	r := Report{MissingRequired: []MissingField{}}

	present := make(map[string]bool)
	for _, m := range res.Mappings {
		if m.TargetField != "" {
			present[m.TargetField] = true
			r.MappedCount++
		}
	}

	for _, key := range reg.BaseTier().RequiredFields {
		if present[key] {
			continue
		}
		f := reg.Field(key)
		mf := MissingField{TargetField: key, DisplayName: f.DisplayName}
		if len(f.Examples) > 0 {
			mf.Examples = f.Examples
		} else if len(f.Synonyms) > 0 {
			n := min(3, len(f.Synonyms))
			mf.Examples = f.Synonyms[:n]
		}
		r.MissingRequired = append(r.MissingRequired, mf)
	}

	r.Success = len(r.MissingRequired) == 0
	r.Message = buildMessage(r)
	r.TierMessage = buildTierMessage(reg, tr)
	return r
}

func buildMessage(r Report) string {
	if r.Success {
		return "All required columns mapped."
	}
	var b strings.Builder
	b.WriteString("Missing required fields: ")
	for i, mf := range r.MissingRequired {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(mf.DisplayName)
		if len(mf.Examples) > 0 {
			fmt.Fprintf(&b, " (e.g. %q)", mf.Examples[0])
		}
	}
	b.WriteString(". Add these columns, or map them manually.")
	return b.String()
}

func buildTierMessage(reg *catalog.Registry, tr tier.Result) string {
	if tr.Info == nil {
		return ""
	}
	msg := fmt.Sprintf("%s data tier", tr.Info.Name)
	if len(tr.Info.Capabilities) > 0 {
		n := min(2, len(tr.Info.Capabilities))
		msg += " - unlocking: " + strings.Join(tr.Info.Capabilities[:n], ", ")
	}
	next := reg.Tier(tr.Tier + 1)
	if next != nil && len(tr.MissingForNextTier) > 0 {
		msg += fmt.Sprintf(". To reach the %s tier, add: %s",
			next.Name, strings.Join(tr.MissingForNextTier, ", "))
	}
	return msg
}
