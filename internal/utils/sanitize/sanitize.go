package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every HTML tag and attribute. bluemonday.Policy is read-only
// after build, so sharing one instance across goroutines is safe. Never call
// mutating helpers (AddAttr, AllowElements, ...) on it after init.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Clean strips HTML and normalizes whitespace for storage.
// All note titles, bodies and labels pass through Clean before they reach the
// repository; repositories assume already-clean input.
//
//   - "<script>alert(1)</script>hi" -> "hi"
//   - "<b>a</b> <b>b</b>"           -> "a b"
//   - "**markdown**"                -> "**markdown**" (preserved)
func Clean(s string) string {
	out := strict.Sanitize(s)
	out = strings.TrimSpace(out)

	// Unescape entities so &#13; etc. survive as single characters
	out = html.UnescapeString(out)

	// Non-breaking spaces hurt search and comparison
	out = strings.ReplaceAll(out, " ", " ")

	// Collapse runs of spaces per line, keeping newlines intact
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}
