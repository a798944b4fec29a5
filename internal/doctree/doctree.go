package doctree

import "strings"

// Header is a numbered section header discovered in a document.
type Header struct {
	Ref       string // Dotted numeric path as written, e.g. "4.1.2"
	Title     string // Trimmed text after the number
	Level     int    // Marker count, 2..4
	Start     int    // Byte offset of the header line
	HeaderEnd int    // Byte offset just past the header line (newline excluded)
	End       int    // Byte offset of the first byte outside the section
}

// Label renders the header the way diagnostics list it, e.g. "§2.1 Details".
func (h Header) Label() string {
	return "§" + h.Ref + " " + h.Title
}

// Document is the raw text of a document together with its parsed headers.
type Document struct {
	Name    string
	Text    string
	Headers []Header // Document order, spans filled in
}

// Find returns the first header whose ref matches exactly.
func (d *Document) Find(ref string) (Header, bool) {
	for _, h := range d.Headers {
		if h.Ref == ref {
			return h, true
		}
	}
	return Header{}, false
}

// Section returns the text covered by h, header line included, trimmed.
func (d *Document) Section(h Header) string {
	return strings.TrimSpace(d.Text[h.Start:h.End])
}

// Labels lists every header label in document order.
func (d *Document) Labels() []string {
	labels := make([]string, 0, len(d.Headers))
	for _, h := range d.Headers {
		labels = append(labels, h.Label())
	}
	return labels
}
