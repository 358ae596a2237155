// Package catalog defines the canonical target-field and data-tier registry.
//
// The registry is constructed once at process start (usually from the
// embedded default document, see Default) and consumed read-only by the
// header matcher, the assignment resolver, the tier classifier, and the
// mapping validator. It is never mutated after Build returns, so it is safe
// for concurrent use without locking.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
)

// DataType classifies the cell values expected under a target field.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
)

// Field describes one canonical schema field and how to recognize it from
// raw spreadsheet headers.
type Field struct {
	// TargetField is the canonical key, unique across the catalog
	// (e.g. "work_order_number").
	TargetField string `json:"target_field"`
	DisplayName string `json:"display_name"`

	// Required marks fields that form the tier-1 baseline.
	Required bool     `json:"required"`
	DataType DataType `json:"data_type"`

	// TierRequired is the lowest tier that needs this field, or 0 when no
	// tier requires it.
	TierRequired int `json:"tier_required,omitempty"`

	// Synonyms are alternate header names compared by similarity scoring.
	// List order is a tie-break: the first qualifying synonym wins.
	Synonyms []string `json:"synonyms,omitempty"`

	// Patterns are structural matchers tested against the normalized
	// header, in listed order. They are compiled case-insensitive.
	Patterns []*regexp.Regexp `json:"-"`

	// Examples document realistic raw headers; they are surfaced in
	// mapping reports but never matched against.
	Examples []string `json:"examples,omitempty"`
}

// Tier describes one capability level and the field coverage it demands.
// Tiers are plain data evaluated top-down by the classifier; there is no
// behavior attached to them.
type Tier struct {
	Tier        int    `json:"tier"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// RequiredFields must all be mapped for the tier to be reached. Each
	// tier's set subsumes the previous tier's (checked by Build).
	RequiredFields []string `json:"required_fields"`
	OptionalFields []string `json:"optional_fields,omitempty"`

	// Capabilities describe what analyses the tier unlocks, and Analyzers
	// names the downstream analyzer keys the dispatcher may run.
	Capabilities []string `json:"capabilities,omitempty"`
	Analyzers    []string `json:"analyzers,omitempty"`
}

// Registry holds the full field and tier catalog. Construct it with Build,
// Load, or Default; never mutate it afterwards.
type Registry struct {
	fields     map[string]*Field
	fieldOrder []string
	tiers      []*Tier // ascending by tier number
}

// Field returns the definition for a target-field key, or nil if unknown.
func (r *Registry) Field(key string) *Field {
	return r.fields[key]
}

// Fields returns all field definitions in catalog order.
func (r *Registry) Fields() []*Field {
	out := make([]*Field, 0, len(r.fieldOrder))
	for _, key := range r.fieldOrder {
		out = append(out, r.fields[key])
	}
	return out
}

// Tiers returns all tier definitions in ascending order of capability.
func (r *Registry) Tiers() []*Tier {
	return r.tiers
}

// Tier returns the definition for a tier number, or nil if unknown.
func (r *Registry) Tier(n int) *Tier {
	for _, t := range r.tiers {
		if t.Tier == n {
			return t
		}
	}
	return nil
}

// BaseTier returns the lowest tier definition.
func (r *Registry) BaseTier() *Tier {
	return r.tiers[0]
}

// TopTier returns the highest tier definition.
func (r *Registry) TopTier() *Tier {
	return r.tiers[len(r.tiers)-1]
}

// ── Construction ────────────────────────────────────────────────────────────

// FieldSpec is the declarative form of a Field, as written in the catalog
// document. Patterns are regular-expression sources matched against
// normalized headers; they are compiled case-insensitive by Build.
type FieldSpec struct {
	TargetField  string   `yaml:"target_field"`
	DisplayName  string   `yaml:"display_name"`
	Required     bool     `yaml:"required"`
	DataType     string   `yaml:"data_type"`
	TierRequired int      `yaml:"tier_required"`
	Synonyms     []string `yaml:"synonyms"`
	Patterns     []string `yaml:"patterns"`
	Examples     []string `yaml:"examples"`
}

// TierSpec is the declarative form of a Tier.
type TierSpec struct {
	Tier           int      `yaml:"tier"`
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	RequiredFields []string `yaml:"required_fields"`
	OptionalFields []string `yaml:"optional_fields"`
	Capabilities   []string `yaml:"capabilities"`
	Analyzers      []string `yaml:"analyzers"`
}

// Spec is a complete catalog document.
type Spec struct {
	Fields []FieldSpec `yaml:"fields"`
	Tiers  []TierSpec  `yaml:"tiers"`
}

// Build compiles and validates a catalog Spec into an immutable Registry.
// It rejects duplicate target-field keys, unknown data types, invalid
// patterns, tier requirements referencing unknown fields, and tier sets
// that do not subsume the previous tier's requirements.
func Build(spec Spec) (*Registry, error) {
	if len(spec.Fields) == 0 {
		return nil, fmt.Errorf("catalog: no fields defined")
	}
	if len(spec.Tiers) == 0 {
		return nil, fmt.Errorf("catalog: no tiers defined")
	}

	r := &Registry{fields: make(map[string]*Field, len(spec.Fields))}

	for _, fs := range spec.Fields {
		if fs.TargetField == "" {
			return nil, fmt.Errorf("catalog: field with empty target_field")
		}
		if _, dup := r.fields[fs.TargetField]; dup {
			return nil, fmt.Errorf("catalog: duplicate target_field %q", fs.TargetField)
		}
		dt, err := parseDataType(fs.DataType)
		if err != nil {
			return nil, fmt.Errorf("catalog: field %q: %w", fs.TargetField, err)
		}
		f := &Field{
			TargetField:  fs.TargetField,
			DisplayName:  fs.DisplayName,
			Required:     fs.Required,
			DataType:     dt,
			TierRequired: fs.TierRequired,
			Synonyms:     fs.Synonyms,
			Examples:     fs.Examples,
		}
		for _, p := range fs.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("catalog: field %q: invalid pattern %q: %w", fs.TargetField, p, err)
			}
			f.Patterns = append(f.Patterns, re)
		}
		r.fields[f.TargetField] = f
		r.fieldOrder = append(r.fieldOrder, f.TargetField)
	}

	tiers := make([]TierSpec, len(spec.Tiers))
	copy(tiers, spec.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Tier < tiers[j].Tier })

	var prev *Tier
	for _, ts := range tiers {
		if prev != nil && ts.Tier <= prev.Tier {
			return nil, fmt.Errorf("catalog: duplicate tier %d", ts.Tier)
		}
		t := &Tier{
			Tier:           ts.Tier,
			Name:           ts.Name,
			Description:    ts.Description,
			RequiredFields: ts.RequiredFields,
			OptionalFields: ts.OptionalFields,
			Capabilities:   ts.Capabilities,
			Analyzers:      ts.Analyzers,
		}
		for _, key := range append(append([]string{}, t.RequiredFields...), t.OptionalFields...) {
			if r.fields[key] == nil {
				return nil, fmt.Errorf("catalog: tier %d references unknown field %q", t.Tier, key)
			}
		}
		if prev != nil {
			for _, key := range prev.RequiredFields {
				if !containsKey(t.RequiredFields, key) {
					return nil, fmt.Errorf("catalog: tier %d does not subsume tier %d requirement %q", t.Tier, prev.Tier, key)
				}
			}
		}
		r.tiers = append(r.tiers, t)
		prev = t
	}

	return r, nil
}

func parseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case TypeString, TypeNumber, TypeDate, TypeBoolean:
		return DataType(s), nil
	case "":
		return TypeString, nil
	default:
		return "", fmt.Errorf("unknown data_type %q", s)
	}
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
