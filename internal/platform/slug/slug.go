package slug

import (
	"regexp"
	"strings"
)

var unsafeRun = regexp.MustCompile(`[^a-z0-9._]+`)

// Make joins the non-empty parts into one lower-case file name component.
func Make(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		s := strings.ToLower(strings.TrimSpace(part))
		s = unsafeRun.ReplaceAllString(s, "-")
		s = strings.Trim(s, "-.")
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return "bundle"
	}
	return strings.Join(cleaned, "-")
}
