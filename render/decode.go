package render

import "html"

// Decode replaces HTML entities such as "&amp;" or "&#39;" with the
// characters they stand for.
func Decode(s string) string {
	return html.UnescapeString(s)
}
