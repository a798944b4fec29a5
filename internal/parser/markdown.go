package parser

import (
	"sort"

	"github.com/dgallion1/refdocs/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// byteRange is a half-open [start, stop) byte range.
type byteRange struct {
	start, stop int
}

// codeRanges returns the byte ranges of all fenced and indented code
// block bodies in src, in document order.
func codeRanges(src []byte) []byteRange {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var ranges []byteRange
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			lines := n.Lines()
			if lines.Len() > 0 {
				ranges = append(ranges, byteRange{
					start: lines.At(0).Start,
					stop:  lines.At(lines.Len() - 1).Stop,
				})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	return ranges
}

// dropCodeHeaders removes headers that start inside a code block body.
func dropCodeHeaders(src string, headers []doctree.Header) []doctree.Header {
	if len(headers) == 0 {
		return headers
	}
	ranges := codeRanges([]byte(src))
	if len(ranges) == 0 {
		return headers
	}

	kept := headers[:0]
	r := 0
	for _, h := range headers {
		// Headers and ranges are both sorted, so walk them together.
		for r < len(ranges) && ranges[r].stop <= h.Start {
			r++
		}
		if r < len(ranges) && ranges[r].start <= h.Start {
			continue
		}
		kept = append(kept, h)
	}
	return kept
}
