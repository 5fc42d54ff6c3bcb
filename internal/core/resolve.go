package core

import "strings"

// ColumnMapping assigns each target field to a chosen source column, or
// to "" when unmapped. Two target fields may independently select the
// same source column; that is an intentional allowance, not deduplicated.
type ColumnMapping map[string]string

// IsEmpty reports whether no target field has a source column.
func (m ColumnMapping) IsEmpty() bool {
	for _, src := range m {
		if src != "" {
			return false
		}
	}
	return true
}

// Revalidate clears entries whose chosen source column is no longer in
// sourceColumns. A vanished column re-resolves to unmapped rather than
// failing later during ingestion.
func (m ColumnMapping) Revalidate(sourceColumns []string) {
	for field, src := range m {
		if src != "" && !contains(sourceColumns, src) {
			m[field] = ""
		}
	}
}

// Resolve computes a source-to-target column assignment for the given
// target fields, walking fields in schema order and applying, per field:
//
//  1. preset exact match: the preset's header string for this field is
//     present in sourceColumns (case-sensitive literal match);
//  2. smart substring match: the first source column whose lowercased
//     name contains, or is contained by, the lowercased field name;
//  3. otherwise unmapped.
//
// The caller-facing form lets the user override any assignment before
// confirming, so first-hit-wins is deliberate: there is no scoring.
func Resolve(fields []string, sourceColumns []string, preset *Preset) ColumnMapping {
	mapping := make(ColumnMapping, len(fields))
	for _, field := range fields {
		mapping[field] = resolveField(field, sourceColumns, preset)
	}
	return mapping
}

func resolveField(field string, sourceColumns []string, preset *Preset) string {
	if preset != nil {
		if header := preset.Headers[field]; header != "" && contains(sourceColumns, header) {
			return header
		}
	}
	return smartMatch(field, sourceColumns)
}

// smartMatch scans sourceColumns in order and returns the first column
// related to field by lowercase substring containment in either
// direction. "Qty" does not match "Quantity" ("qty" is not a substring
// of "quantity" nor the reverse), which is why manual override exists.
func smartMatch(field string, sourceColumns []string) string {
	lf := strings.ToLower(field)
	if lf == "" {
		return ""
	}
	for _, src := range sourceColumns {
		ls := strings.ToLower(src)
		if ls == "" {
			continue
		}
		if strings.Contains(ls, lf) || strings.Contains(lf, ls) {
			return src
		}
	}
	return ""
}
