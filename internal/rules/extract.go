package rules

import (
	"regexp"
	"strings"
)

var urlRe = regexp.MustCompile(`https?://[^\s"'<>]+`)

// ExtractURLs returns the http(s) URLs embedded in free text, in order of
// first appearance with duplicates removed. It never fails; text without
// URLs yields an empty slice.
func ExtractURLs(text string) []string {
	matches := urlRe.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, m := range matches {
		// Sentences often end right after a URL.
		m = strings.TrimRight(m, ".,;:!?)")
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		urls = append(urls, m)
	}
	return urls
}
