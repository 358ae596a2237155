// Package mapping turns raw upload headers into a conflict-free assignment
// of source columns to catalog target fields, and validates (possibly
// user-edited) assignments against tier requirements.
package mapping

import (
	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/match"
)

// acceptThreshold is the minimum match score the resolver accepts. Below
// it a header stays unmapped rather than risk a wrong assignment.
const acceptThreshold = 0.8

// Mapping is the resolved (or user-edited) assignment for one source column.
// An empty TargetField means the column is unmapped/ignored.
type Mapping struct {
	SourceColumn string           `json:"source_column"`
	TargetField  string           `json:"target_field,omitempty"`
	Confidence   float64          `json:"confidence"`
	MatchType    match.Type       `json:"match_type"`
	DataType     catalog.DataType `json:"data_type,omitempty"`
	Required     bool             `json:"required"`
}

// AutoMapResult is the outcome of automatic header assignment.
type AutoMapResult struct {
	Mappings        []Mapping `json:"mappings"`
	UnmappedColumns []string  `json:"unmapped_columns"`

	// Confidence is the arithmetic mean over accepted mappings, 0 when
	// nothing was accepted.
	Confidence float64 `json:"confidence"`
}

// Assigner produces a one-to-one header assignment. The greedy Resolver is
// the production implementation; the interface exists so a globally optimal
// assigner can be substituted without touching the matcher or classifier.
type Assigner interface {
	AutoMap(headers []string) AutoMapResult
}

// Resolver assigns headers to catalog fields greedily, in caller-supplied
// header order. An earlier header that claims a field blocks every later
// header from claiming it, even if the later header matches better. This is
// a deliberate first-come-first-served simplification; output is fully
// deterministic for a fixed catalog and header order.
type Resolver struct {
	catalog *catalog.Registry
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(reg *catalog.Registry) *Resolver {
	return &Resolver{catalog: reg}
}

var _ Assigner = (*Resolver)(nil)

// AutoMap scores every header against every unclaimed catalog field and
// accepts the best candidate per header when it clears the acceptance
// threshold. Headers that clear nothing are reported in UnmappedColumns and
// carry an empty target with match type "none".
func (r *Resolver) AutoMap(headers []string) AutoMapResult {
	res := AutoMapResult{
		Mappings:        make([]Mapping, 0, len(headers)),
		UnmappedColumns: []string{},
	}
	claimed := make(map[string]bool)

	var sum float64
	var accepted int

	for _, header := range headers {
		var best match.Result
		var bestField *catalog.Field

		for _, field := range r.catalog.Fields() {
			if claimed[field.TargetField] {
				continue
			}
			m := match.Header(header, field)
			if m.Score > best.Score {
				best = m
				bestField = field
			}
		}

		if bestField == nil || best.Score < acceptThreshold {
			res.Mappings = append(res.Mappings, Mapping{
				SourceColumn: header,
				MatchType:    match.TypeNone,
			})
			res.UnmappedColumns = append(res.UnmappedColumns, header)
			continue
		}

		claimed[bestField.TargetField] = true
		res.Mappings = append(res.Mappings, Mapping{
			SourceColumn: header,
			TargetField:  bestField.TargetField,
			Confidence:   best.Score,
			MatchType:    best.Type,
			DataType:     bestField.DataType,
			Required:     bestField.Required,
		})
		sum += best.Score
		accepted++
	}

	if accepted > 0 {
		res.Confidence = sum / float64(accepted)
	}
	return res
}

// TargetFields returns the non-empty target fields of a mapping batch, in
// order of appearance.
func TargetFields(mappings []Mapping) []string {
	out := make([]string, 0, len(mappings))
	for _, m := range mappings {
		if m.TargetField != "" {
			out = append(out, m.TargetField)
		}
	}
	return out
}
