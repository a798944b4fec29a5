// Package docstore defines the document store the lookup service reads
// from, plus filesystem and in-memory implementations.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// ErrNotFound is returned by Read when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Store lists and reads documents by name.
type Store interface {
	// List returns all document names, sorted.
	List(ctx context.Context) ([]string, error)
	// Read returns the full text of a document.
	Read(ctx context.Context, name string) (string, error)
}

// utf8BOM is stripped from document text so a header on the first line
// still starts at offset 0.
const utf8BOM = "\uFEFF"

// DecodeText validates raw document bytes as UTF-8 and strips a BOM.
func DecodeText(name string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document %s is not valid UTF-8", name)
	}
	return strings.TrimPrefix(string(data), utf8BOM), nil
}

// Memory is an in-memory Store, mainly for tests and local tooling.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]string
}

func NewMemory(docs map[string]string) *Memory {
	m := &Memory{docs: make(map[string]string, len(docs))}
	for k, v := range docs {
		m.docs[k] = v
	}
	return m
}

// Put adds or replaces a document.
func (m *Memory) Put(name, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = text
}

func (m *Memory) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Read(ctx context.Context, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.docs[name]
	if !ok {
		return "", fmt.Errorf("read %s: %w", name, ErrNotFound)
	}
	return text, nil
}

// Dir serves documents from a local directory. Names are slash-separated
// paths relative to the root, mirroring blob names in a container.
type Dir struct {
	root     string
	maxBytes int64
}

// NewDir creates a directory store. maxBytes <= 0 disables the size cap.
func NewDir(root string, maxBytes int64) *Dir {
	return &Dir{root: root, maxBytes: maxBytes}
}

func (d *Dir) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != d.root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.root, err)
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) Read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := d.resolve(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("read %s: %w", name, ErrNotFound)
	}
	if d.maxBytes > 0 && info.Size() > d.maxBytes {
		return "", fmt.Errorf("document %s exceeds max size (%d bytes)", name, d.maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return DecodeText(name, data)
}

// resolve maps a document name to a path under root, refusing names
// that would escape it.
func (d *Dir) resolve(name string) (string, error) {
	if name == "" || !fs.ValidPath(name) {
		return "", fmt.Errorf("read %q: %w", name, ErrNotFound)
	}
	return filepath.Join(d.root, filepath.FromSlash(name)), nil
}
