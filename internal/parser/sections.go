package parser

import "github.com/dgallion1/refdocs/internal/doctree"

// BuildSpans sets End on every header. A section runs until the next
// header at the same or a shallower level, or to textLen.
func BuildSpans(headers []doctree.Header, textLen int) {
	// Indices of headers whose section is still open. Levels strictly
	// increase from bottom to top.
	open := make([]int, 0, 4)

	for i := range headers {
		level := headers[i].Level
		for len(open) > 0 && headers[open[len(open)-1]].Level >= level {
			headers[open[len(open)-1]].End = headers[i].Start
			open = open[:len(open)-1]
		}
		open = append(open, i)
	}

	for _, idx := range open {
		headers[idx].End = textLen
	}
}
