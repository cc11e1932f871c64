// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from user-supplied text. Pin
// descriptions are free text, never HTML; anything tag-shaped a client
// submits is removed before storage so markup never reaches the document
// store or other viewers' browsers.
package htmlsanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Strip removes all HTML, returning plain text. bluemonday entity-escapes
// stray angle brackets while stripping, so the result is unescaped back
// to the literal characters the user typed ("5 < 10" survives intact).
// Escaping for display is the renderer's job.
func Strip(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
