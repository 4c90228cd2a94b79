package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// HTML sanitizes HTML input using bluemonday's UGC policy.
func HTML(htmlInput string) string {
	return ugcPolicy.Sanitize(htmlInput)
}

// Text strips all HTML from the input, leaving plain text only.
// Used for user-controlled strings (file names, repository names)
// that end up inside rendered pages.
func Text(input string) string {
	return strictPolicy.Sanitize(input)
}
