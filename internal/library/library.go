// Package library locates book files on disk and loads them into the
// document model. Each supported format registers a loader keyed by file
// extension; dispatch never needs to know about concrete formats.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/bookspeak/internal/document"
)

// Loader finds and loads documents of one format from a books directory.
type Loader interface {
	// FindAll returns every document of this format in the books
	// directory, without loading pages.
	FindAll() ([]*document.Document, error)
	// FindByName returns the named document, or an error when it does not
	// exist or is not this loader's format. Pages stay unloaded.
	FindByName(filename string) (*document.Document, error)
	// LoadPages fills doc.Pages and doc.Metadata, loading at most maxPages
	// pages when maxPages > 0.
	LoadPages(doc *document.Document, maxPages int) error
	// Extensions lists the dotted, lowercase extensions this loader
	// handles (e.g. ".pdf").
	Extensions() []string
}

// LoaderFactory builds a loader rooted at a books directory.
type LoaderFactory func(booksDir string) Loader

var (
	registryMu sync.RWMutex
	registry   = make(map[string]LoaderFactory)
)

// Register associates a file extension with a loader factory. Extensions
// are normalized to a dotted lowercase form. New formats register from
// init in their own file.
func Register(ext string, factory LoaderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[normalizeExt(ext)] = factory
}

// SupportedExtensions returns all registered extensions, sorted.
func SupportedExtensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForFile returns a loader for the given file path, dispatching on its
// extension.
func ForFile(path, booksDir string) (Loader, error) {
	return ForExtension(filepath.Ext(path), booksDir)
}

// ForExtension returns a loader for the given extension.
func ForExtension(ext, booksDir string) (Loader, error) {
	registryMu.RLock()
	factory, ok := registry[normalizeExt(ext)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported document type: %q (supported: %s)",
			ext, strings.Join(SupportedExtensions(), ", "))
	}
	return factory(booksDir), nil
}

// FindAllBooks returns every document any registered loader can handle,
// sorted by file name. Loader errors are logged and skipped so one bad
// format never hides the rest of the library.
func FindAllBooks(booksDir string) []*document.Document {
	var books []*document.Document
	for _, ext := range SupportedExtensions() {
		loader, err := ForExtension(ext, booksDir)
		if err != nil {
			continue
		}
		docs, err := loader.FindAll()
		if err != nil {
			log.Warn("Could not list documents", "ext", ext, "err", err)
			continue
		}
		books = append(books, docs...)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].FileName < books[j].FileName
	})
	return books
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// findByGlob lists files in dir matching pattern and wraps them as
// unloaded documents of the given format.
func findByGlob(dir, pattern, format string) ([]*document.Document, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("unable to scan books directory: %w", err)
	}
	docs := make([]*document.Document, 0, len(matches))
	for _, path := range matches {
		docs = append(docs, document.New(path, format))
	}
	return docs, nil
}

// statFile verifies a candidate book file exists and has the wanted
// extension before a loader claims it.
func statFile(dir, filename, wantExt string) (string, error) {
	path := filepath.Join(dir, filename)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("document not found: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a document", path)
	}
	if !strings.EqualFold(filepath.Ext(filename), wantExt) {
		return "", fmt.Errorf("%s is not a %s file", filename, wantExt)
	}
	return path, nil
}
