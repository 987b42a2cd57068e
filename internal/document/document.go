// Package document defines the format-agnostic document model shared by
// all loaders and the conversion pipeline.
package document

import (
	"path/filepath"
	"strings"
)

// Metadata holds descriptive information about a document.
type Metadata struct {
	Title     string
	Author    string
	Date      string
	Language  string
	PageCount int
}

// Page is a single unit of extracted document text. Chunks, when present,
// are the pre-split speakable pieces of Content; loaders that already
// produce bounded text (e.g. per-paragraph) may fill them, otherwise the
// pipeline segments Content itself.
type Page struct {
	Content    string
	PageNumber int
	Chunks     []string
}

// Document is a book-like input file with its extracted pages. Pages are
// ordered; that order is the source of stable chunk indexing, so it must
// never be rearranged after loading.
type Document struct {
	FilePath string
	FileName string
	Format   string
	Metadata Metadata
	Pages    []Page
}

// New creates a Document for the given path. Pages stay empty until a
// loader populates them.
func New(path, format string) *Document {
	return &Document{
		FilePath: path,
		FileName: filepath.Base(path),
		Format:   format,
	}
}

// BookID returns the stable identifier for this document: the file name
// with its extension stripped. Progress is tracked under this key, so it
// must not depend on anything but the file name.
func (d *Document) BookID() string {
	name := d.FileName
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// Extension returns the lowercased file extension without the dot, or ""
// when the file name has none.
func (d *Document) Extension() string {
	ext := filepath.Ext(d.FileName)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AddPage appends a page with the given content, preserving insertion
// order.
func (d *Document) AddPage(content string, pageNumber int) {
	d.Pages = append(d.Pages, Page{Content: content, PageNumber: pageNumber})
}
