package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/refdocs/internal/doctree"
)

// headerRe matches numbered headers such as:
//
//	## 1. Title
//	### 1.1 Title
//	## §1 Title
//
// Whitespace classes are horizontal only so a match never crosses a line.
var headerRe = regexp.MustCompile(`(?m)^(#{2,4})[ \t]*[§S]?[ \t]*(\d[\d.]*?)\.?[ \t]+(.+)$`)

// Scan returns every numbered header in text, in document order.
// End is left unset; see BuildSpans.
func Scan(text string) []doctree.Header {
	matches := headerRe.FindAllStringSubmatchIndex(text, -1)
	headers := make([]doctree.Header, 0, len(matches))
	for _, m := range matches {
		headers = append(headers, doctree.Header{
			Ref:       text[m[4]:m[5]],
			Title:     strings.TrimSpace(text[m[6]:m[7]]),
			Level:     m[3] - m[2],
			Start:     m[0],
			HeaderEnd: m[1],
		})
	}
	return headers
}
