package parser

import "github.com/dgallion1/refdocs/internal/doctree"

// Options tunes header discovery.
type Options struct {
	// IgnoreFencedCode drops headers that sit inside fenced or indented
	// code blocks. Off by default: every line is matched on its own.
	IgnoreFencedCode bool
}

// Parse scans text for numbered headers and computes their spans.
func Parse(name, text string, opts Options) *doctree.Document {
	headers := Scan(text)
	if opts.IgnoreFencedCode {
		headers = dropCodeHeaders(text, headers)
	}
	BuildSpans(headers, len(text))

	return &doctree.Document{
		Name:    name,
		Text:    text,
		Headers: headers,
	}
}
