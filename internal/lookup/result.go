package lookup

import (
	"bytes"
	"encoding/json"
)

// Outcome classifies a lookup result.
type Outcome string

const (
	OutcomeFound            Outcome = "found"
	OutcomeTruncated        Outcome = "truncated"
	OutcomeDocumentNotFound Outcome = "document_not_found"
	OutcomeSectionNotFound  Outcome = "section_not_found"
)

// Result is either section content or a diagnostic listing valid
// alternatives.
type Result struct {
	Outcome Outcome

	Content string

	Error              string
	AvailableDocuments []string // Set on OutcomeDocumentNotFound
	AvailableSections  []string // Set on OutcomeSectionNotFound
}

// IsError reports whether the result is a diagnostic.
func (r Result) IsError() bool {
	return r.Error != ""
}

// MarshalJSON encodes the result in its wire shape:
//
//	{"content": "..."}
//	{"error": "...", "available_files": [...]}
//	{"error": "...", "available_sections": [...]}
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Outcome {
	case OutcomeDocumentNotFound:
		return marshalText(struct {
			Error          string   `json:"error"`
			AvailableFiles []string `json:"available_files"`
		}{r.Error, nonNil(r.AvailableDocuments)})
	case OutcomeSectionNotFound:
		return marshalText(struct {
			Error             string   `json:"error"`
			AvailableSections []string `json:"available_sections"`
		}{r.Error, nonNil(r.AvailableSections)})
	default:
		return marshalText(struct {
			Content string `json:"content"`
		}{r.Content})
	}
}

// marshalText encodes v without HTML escaping; section text routinely
// contains <, > and &.
func marshalText(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
