package source

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
)

// pageBreak separates pages inside a loaded text file.
const pageBreak = "\f"

// MemoryFinder is an in-memory Finder safe for concurrent use.
type MemoryFinder struct {
	mu   sync.RWMutex
	docs map[string][]Document
}

var _ Finder = (*MemoryFinder)(nil)

// NewMemoryFinder creates an empty MemoryFinder.
func NewMemoryFinder() *MemoryFinder {
	return &MemoryFinder{docs: make(map[string][]Document)}
}

// Put stores docs under ref, replacing anything stored there before.
func (f *MemoryFinder) Put(ref string, docs ...Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[ref] = slices.Clone(docs)
}

// Refs returns the stored references in sorted order.
func (f *MemoryFinder) Refs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	refs := make([]string, 0, len(f.docs))
	for ref := range f.docs {
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs
}

// FindChunks returns the documents stored under ref.
func (f *MemoryFinder) FindChunks(ctx context.Context, ref string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	docs, ok := f.docs[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return slices.Clone(docs), nil
}

// LoadFS stores every .txt and .md file of fsys as one document. The
// reference and ID are the file path without its extension, the title is
// the file name, and form feeds split the text into pages. Markdown pages
// are stored as plain text.
func LoadFS(f *MemoryFinder, fsys fs.FS) (int, error) {
	loaded := 0
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(name))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		pages := strings.Split(string(data), pageBreak)
		if ext == ".md" {
			for i, page := range pages {
				pages[i] = markdownText([]byte(page))
			}
		}

		ref := strings.TrimSuffix(name, path.Ext(name))
		f.Put(ref, Document{
			ID:    ref,
			Title: path.Base(name),
			Pages: pages,
		})
		loaded++
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("failed to load source documents: %w", err)
	}
	return loaded, nil
}
