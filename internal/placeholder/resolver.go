// Package placeholder extracts and substitutes {{key}} tokens in prompt
// templates. Resolution is a single pass over the template: substituted text
// is never re-scanned, so values containing brace tokens cannot trigger
// recursive expansion.
package placeholder

import "regexp"

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// ExtractKeys returns the distinct placeholder keys of a template in
// first-seen order.
func ExtractKeys(template string) []string {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		key := m[1]
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// Resolve replaces every placeholder occurrence with its mapped value.
// Missing keys resolve to the empty string; a partially-filled scene is
// normal, not an error.
func Resolve(template string, values map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := tokenPattern.FindStringSubmatch(token)[1]
		return values[key]
	})
}
