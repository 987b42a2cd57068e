package library

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"

	"github.com/dgnsrekt/bookspeak/internal/document"
	"github.com/dgnsrekt/bookspeak/internal/textproc"
)

func init() {
	Register(".pdf", func(booksDir string) Loader {
		return &pdfLoader{booksDir: booksDir}
	})
}

// pdfLoader extracts one document page per PDF page.
type pdfLoader struct {
	booksDir string
}

func (l *pdfLoader) Extensions() []string {
	return []string{".pdf"}
}

func (l *pdfLoader) FindAll() ([]*document.Document, error) {
	return findByGlob(l.booksDir, "*.pdf", "pdf")
}

func (l *pdfLoader) FindByName(filename string) (*document.Document, error) {
	path, err := statFile(l.booksDir, filename, ".pdf")
	if err != nil {
		return nil, err
	}
	return document.New(path, "pdf"), nil
}

func (l *pdfLoader) LoadPages(doc *document.Document, maxPages int) error {
	f, reader, err := pdf.Open(doc.FilePath)
	if err != nil {
		return fmt.Errorf("unable to open PDF: %w", err)
	}
	defer f.Close() //nolint:errcheck

	total := reader.NumPage()
	limit := total
	if maxPages > 0 && maxPages < total {
		limit = maxPages
	}

	doc.Pages = nil
	for pageNum := 1; pageNum <= limit; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the book.
			log.Warn("Could not extract page text", "book", doc.FileName, "page", pageNum, "err", err)
			continue
		}

		content := textproc.CleanText(text)
		if content == "" {
			continue
		}
		doc.AddPage(content, pageNum)
	}

	l.loadMetadata(doc, reader, total)
	return nil
}

// loadMetadata fills in what the PDF Info dictionary provides; most PDFs
// in the wild are missing some or all of it.
func (l *pdfLoader) loadMetadata(doc *document.Document, reader *pdf.Reader, pageCount int) {
	doc.Metadata.PageCount = pageCount
	doc.Metadata.Title = doc.BookID()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return
	}
	if title := strings.TrimSpace(info.Key("Title").Text()); title != "" {
		doc.Metadata.Title = title
	}
	if author := strings.TrimSpace(info.Key("Author").Text()); author != "" {
		doc.Metadata.Author = author
	}
	if date := strings.TrimSpace(info.Key("CreationDate").Text()); date != "" {
		doc.Metadata.Date = date
	}
}
