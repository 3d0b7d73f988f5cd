package scoring

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeTitle strips brackets, turns colons into " - " and collapses whitespace.
// It returns nil when nothing is left.
func SanitizeTitle(title string) *string {
	if title == "" {
		return nil
	}
	cleaned := strings.NewReplacer("[", "", "]", "", ":", " - ").Replace(title)
	cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
