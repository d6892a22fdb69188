package quiz

import "strings"

// NormalizeTags trims whitespace and removes case-insensitive duplicates,
// preserving first-appearance order and original casing.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		cleaned := strings.TrimSpace(tag)
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(cleaned)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, cleaned)
	}
	return normalized
}

// AllowedTagLookup maps lower-cased tags to their canonical casing as
// declared in a subject's allowed-tag vocabulary.
func AllowedTagLookup(allowed []string) map[string]string {
	lookup := make(map[string]string, len(allowed))
	for _, tag := range allowed {
		cleaned := strings.TrimSpace(tag)
		if cleaned == "" {
			continue
		}
		lookup[strings.ToLower(cleaned)] = cleaned
	}
	return lookup
}

// FilterAllowedTags intersects candidate tags with an allowed vocabulary,
// preserving candidate order and the vocabulary's canonical casing. An
// empty lookup means no vocabulary is configured and candidates are only
// normalized.
func FilterAllowedTags(tags []string, lookup map[string]string) []string {
	if len(lookup) == 0 {
		return NormalizeTags(tags)
	}
	filtered := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		cleaned := strings.TrimSpace(tag)
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(cleaned)
		canonical, ok := lookup[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		filtered = append(filtered, canonical)
	}
	return filtered
}
