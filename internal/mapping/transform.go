package mapping

// Apply rewrites parsed rows from source-column keys to target-field keys
// using an accepted mapping. Columns without a target are dropped; source
// columns absent from a row are skipped. The input rows are not modified.
func Apply(mappings []Mapping, rows []map[string]string) []map[string]string {
	byName := make(map[string]string, len(mappings))
	for _, m := range mappings {
		if m.TargetField != "" {
			byName[m.SourceColumn] = m.TargetField
		}
	}

	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		tr := make(map[string]string, len(byName))
		for src, target := range byName {
			if v, ok := row[src]; ok {
				tr[target] = v
			}
		}
		out = append(out, tr)
	}
	return out
}
