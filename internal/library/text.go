package library

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgnsrekt/bookspeak/internal/document"
	"github.com/dgnsrekt/bookspeak/internal/textproc"
)

func init() {
	Register(".txt", func(booksDir string) Loader {
		return &textLoader{booksDir: booksDir}
	})
}

// textLoader loads plain-text files. Form feeds mark page breaks; a file
// without any becomes a single page.
type textLoader struct {
	booksDir string
}

func (l *textLoader) Extensions() []string {
	return []string{".txt"}
}

func (l *textLoader) FindAll() ([]*document.Document, error) {
	return findByGlob(l.booksDir, "*.txt", "txt")
}

func (l *textLoader) FindByName(filename string) (*document.Document, error) {
	path, err := statFile(l.booksDir, filename, ".txt")
	if err != nil {
		return nil, err
	}
	return document.New(path, "txt"), nil
}

func (l *textLoader) LoadPages(doc *document.Document, maxPages int) error {
	data, err := os.ReadFile(doc.FilePath)
	if err != nil {
		return fmt.Errorf("unable to read text file: %w", err)
	}

	doc.Pages = nil
	for _, raw := range strings.Split(string(data), "\f") {
		if maxPages > 0 && len(doc.Pages) >= maxPages {
			break
		}
		if content := textproc.CleanText(raw); content != "" {
			doc.AddPage(content, len(doc.Pages)+1)
		}
	}

	doc.Metadata.Title = doc.BookID()
	doc.Metadata.PageCount = len(doc.Pages)
	return nil
}
