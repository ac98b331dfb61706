package domain

// CompletionMap tracks whether a section's validation has passed at least
// once. It gates non-sequential navigation: a section is reachable only if
// it is the current one, an earlier one, or already marked complete.
type CompletionMap map[string]bool

// CompletionFromDraft reads a CompletionMap out of its stored draft form.
// Anything that is not a bool true counts as incomplete; malformed entries
// never produce an error.
func CompletionFromDraft(d SectionDraft) CompletionMap {
	m := make(CompletionMap, len(d))
	for k, v := range d {
		b, ok := v.(bool)
		m[k] = ok && b
	}
	return m
}

// Draft converts the map into its stored form.
func (m CompletionMap) Draft() SectionDraft {
	d := make(SectionDraft, len(m))
	for k, v := range m {
		d[k] = v
	}
	return d
}
