// Package lookup resolves (document, section reference) pairs against a
// document store.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/refdocs/internal/docstore"
	"github.com/dgallion1/refdocs/internal/doctree"
	"github.com/dgallion1/refdocs/internal/metrics"
	"github.com/dgallion1/refdocs/internal/parser"
)

const (
	// CanonicalExt is the extension every document name resolves to.
	CanonicalExt = ".md"
	// AlternateExt is accepted from callers and rewritten to CanonicalExt.
	AlternateExt = ".txt"

	DefaultMaxChars  = 8000
	TruncationMarker = "\n\n[... truncated — request a more specific sub-section]"
)

// Config tunes the lookup service.
type Config struct {
	MaxChars int // Section size cap in characters; <= 0 means DefaultMaxChars
	Parse    parser.Options
}

// Service answers section lookups. It keeps no per-document state and is
// safe for concurrent use.
type Service struct {
	store   docstore.Store
	log     *slog.Logger
	metrics *metrics.Metrics
	cfg     Config
}

// NewService creates a lookup service. m may be nil.
func NewService(store docstore.Store, log *slog.Logger, m *metrics.Metrics, cfg Config) *Service {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:   store,
		log:     log,
		metrics: m,
		cfg:     cfg,
	}
}

// NormalizeName maps a caller-supplied document name onto the canonical
// extension: "X.txt" and "X" both become "X.md".
func NormalizeName(name string) string {
	switch {
	case strings.HasSuffix(name, AlternateExt):
		return strings.TrimSuffix(name, AlternateExt) + CanonicalExt
	case !strings.HasSuffix(name, CanonicalExt):
		return name + CanonicalExt
	}
	return name
}

// Lookup resolves sectionRef inside documentName. It never fails: misses
// come back as diagnostic results.
func (s *Service) Lookup(ctx context.Context, documentName, sectionRef string) Result {
	start := time.Now()
	res := s.lookup(ctx, documentName, sectionRef)
	s.metrics.ObserveLookup(string(res.Outcome), time.Since(start))
	return res
}

func (s *Service) lookup(ctx context.Context, documentName, sectionRef string) Result {
	name := NormalizeName(documentName)

	doc, err := s.load(ctx, name)
	if err != nil {
		return Result{
			Outcome:            OutcomeDocumentNotFound,
			Error:              fmt.Sprintf("File '%s' not found.", name),
			AvailableDocuments: s.Documents(ctx),
		}
	}

	target := strings.TrimSpace(sectionRef)
	h, ok := doc.Find(target)
	if !ok {
		return Result{
			Outcome:           OutcomeSectionNotFound,
			Error:             fmt.Sprintf("Section '%s' not found in '%s'.", sectionRef, name),
			AvailableSections: doc.Labels(),
		}
	}

	content := doc.Section(h)
	s.metrics.ObserveSection(utf8.RuneCountInString(content))

	content, truncated := Truncate(content, s.cfg.MaxChars)
	if truncated {
		s.log.Debug("section truncated", "document", name, "section", target, "max_chars", s.cfg.MaxChars)
		return Result{Outcome: OutcomeTruncated, Content: content}
	}
	return Result{Outcome: OutcomeFound, Content: content}
}

// Outline returns the parsed document for documentName after name
// normalization.
func (s *Service) Outline(ctx context.Context, documentName string) (*doctree.Document, error) {
	name := NormalizeName(documentName)
	doc, err := s.load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return doc, nil
}

// Documents returns the sorted document list. Store failures are logged
// and yield an empty list.
func (s *Service) Documents(ctx context.Context) []string {
	names, err := s.store.List(ctx)
	if err != nil {
		s.metrics.StoreError("list", "error")
		s.log.Error("list documents failed", "error", err)
		return []string{}
	}
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return sorted
}

func (s *Service) load(ctx context.Context, name string) (*doctree.Document, error) {
	text, err := s.store.Read(ctx, name)
	if err != nil {
		// Callers only ever see "not found"; keep the real cause visible here.
		if errors.Is(err, docstore.ErrNotFound) {
			s.metrics.StoreError("read", "not_found")
			s.log.Debug("document not found", "document", name)
		} else {
			s.metrics.StoreError("read", "error")
			s.log.Warn("read document failed", "document", name, "error", err)
		}
		return nil, err
	}
	return parser.Parse(name, text, s.cfg.Parse), nil
}

// Truncate caps content at maxChars characters, appending
// TruncationMarker when anything was cut.
func Truncate(content string, maxChars int) (string, bool) {
	if utf8.RuneCountInString(content) <= maxChars {
		return content, false
	}
	n := 0
	for i := range content {
		if n == maxChars {
			return content[:i] + TruncationMarker, true
		}
		n++
	}
	return content, false
}
