package match

import "github.com/plantmetrics/schemamap/internal/catalog"

// Type names the strategy that produced a match.
type Type string

const (
	TypeExact        Type = "exact"
	TypeSynonym      Type = "synonym"
	TypePattern      Type = "pattern"
	TypeFuzzy        Type = "fuzzy"
	TypeFuzzyDisplay Type = "fuzzy-display"
	TypeManual       Type = "manual"
	TypeNone         Type = "none"
)

const (
	// synonymThreshold is deliberately strict: synonym lists are curated,
	// so only near-identical headers should qualify.
	synonymThreshold = 0.95

	// patternScore is the fixed score for a structural pattern match.
	patternScore = 0.9

	// fuzzyThreshold gates the last-resort edit-distance strategies, which
	// are prone to false positives on short or generic headers.
	fuzzyThreshold = 0.7
)

// Result is the outcome of scoring one header against one field.
type Result struct {
	Score float64 `json:"score"`
	Type  Type    `json:"type"`
}

// Header scores a raw header against a field definition using the strategy
// chain, in strict priority order: exact key match, synonym similarity,
// structural pattern, fuzzy key similarity, fuzzy display-name similarity.
// The first qualifying strategy wins; a header that qualifies nowhere
// returns {0, TypeNone}.
func Header(header string, field *catalog.Field) Result {
	normalized := Normalize(header)

	if normalized == Normalize(field.TargetField) {
		return Result{Score: 1.0, Type: TypeExact}
	}

	for _, syn := range field.Synonyms {
		if score := Similarity(header, syn); score >= synonymThreshold {
			return Result{Score: score, Type: TypeSynonym}
		}
	}

	for _, re := range field.Patterns {
		if re.MatchString(normalized) {
			return Result{Score: patternScore, Type: TypePattern}
		}
	}

	if score := Similarity(header, field.TargetField); score >= fuzzyThreshold {
		return Result{Score: score, Type: TypeFuzzy}
	}

	if score := Similarity(header, field.DisplayName); score >= fuzzyThreshold {
		return Result{Score: score, Type: TypeFuzzyDisplay}
	}

	return Result{Score: 0, Type: TypeNone}
}
