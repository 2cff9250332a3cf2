// Package htmlsanitize cleans user-supplied text before it is placed into
// notification emails.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Strip removes every tag from s and returns plain text with entities
// decoded. Contact fields (names, notes, job titles) go through this.
func Strip(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
