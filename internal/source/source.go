package source

import (
	"context"
	"errors"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when a reference matches no stored document.
var ErrNotFound = errors.New("source document not found")

// Separators used by Assemble.
const (
	documentSeparator = "\n\n---\n\n"
	pageSeparator     = "\n\n"
	titlePrefix       = "SOURCE: "
)

// Document is one stored note with its extracted pages in reading order.
type Document struct {
	ID    string
	Title string
	Pages []string
}

// Finder resolves a reference to the documents it names.
type Finder interface {
	FindChunks(ctx context.Context, ref string) ([]Document, error)
}

// Assemble joins docs into a single source text. Each document is rendered
// as "SOURCE: <title>\n<pages>" with pages separated by blank lines, and
// documents are separated by a horizontal rule. At most maxChars characters
// of page text are taken in total; later pages and documents are dropped
// once the budget is spent. Documents without text are skipped. A
// non-positive maxChars disables the bound.
func Assemble(docs []Document, maxChars int) string {
	chunks := make([]string, 0, len(docs))
	remaining := maxChars

	for _, doc := range docs {
		if maxChars > 0 && remaining <= 0 {
			break
		}

		pages := make([]string, 0, len(doc.Pages))
		for _, page := range doc.Pages {
			text := strings.TrimSpace(page)
			if text == "" {
				continue
			}
			if maxChars > 0 {
				if remaining <= 0 {
					break
				}
				text = truncateRunes(text, remaining)
				remaining -= len([]rune(text))
			}
			pages = append(pages, text)
		}

		combined := strings.TrimSpace(strings.Join(pages, pageSeparator))
		if combined == "" {
			continue
		}
		chunks = append(chunks, titlePrefix+documentTitle(doc)+"\n"+combined)
	}

	return strings.TrimSpace(strings.Join(chunks, documentSeparator))
}

// maxConcurrentLookups bounds the FindChunks calls Resolve runs at once.
const maxConcurrentLookups = 4

// Resolve looks up every ref with finder and assembles the result in ref
// order. Lookups run concurrently; the first failure cancels the rest and is
// returned.
func Resolve(ctx context.Context, finder Finder, refs []string, maxChars int) (string, error) {
	found := make([][]Document, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, ref := range refs {
		g.Go(func() error {
			docs, err := finder.FindChunks(gctx, ref)
			if err != nil {
				return err
			}
			found[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return Assemble(slices.Concat(found...), maxChars), nil
}

func documentTitle(doc Document) string {
	if title := strings.TrimSpace(doc.Title); title != "" {
		return title
	}
	if id := strings.TrimSpace(doc.ID); id != "" {
		return id
	}
	return "Untitled"
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
