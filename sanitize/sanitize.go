// Package sanitize normalizes user-supplied text before validation.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Clean strips every markup construct from s and trims surrounding
// whitespace. It never fails; input that is nothing but markup degrades
// to the empty string.
func Clean(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
