package library

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/bookspeak/internal/document"
	"github.com/dgnsrekt/bookspeak/internal/textproc"
)

func init() {
	Register(".epub", func(booksDir string) Loader {
		return &epubLoader{booksDir: booksDir}
	})
}

// epubLoader loads EPUB archives: one document page per spine item
// (chapter), in spine order. An EPUB is a zip with an OPF package file;
// the container manifest points at it.
type epubLoader struct {
	booksDir string
}

// container.xml structure pointing at the OPF package file.
type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Metadata struct {
		Title    string `xml:"title"`
		Creator  string `xml:"creator"`
		Date     string `xml:"date"`
		Language string `xml:"language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

var (
	htmlTagRegex    = regexp.MustCompile(`(?s)<[^>]*>`)
	htmlScriptRegex = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	htmlBlockRegex  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|br|tr)>|<br\s*/?>`)
)

func (l *epubLoader) Extensions() []string {
	return []string{".epub"}
}

func (l *epubLoader) FindAll() ([]*document.Document, error) {
	return findByGlob(l.booksDir, "*.epub", "epub")
}

func (l *epubLoader) FindByName(filename string) (*document.Document, error) {
	path, err := statFile(l.booksDir, filename, ".epub")
	if err != nil {
		return nil, err
	}
	return document.New(path, "epub"), nil
}

func (l *epubLoader) LoadPages(doc *document.Document, maxPages int) error {
	archive, err := zip.OpenReader(doc.FilePath)
	if err != nil {
		return fmt.Errorf("unable to open EPUB: %w", err)
	}
	defer archive.Close() //nolint:errcheck

	files := make(map[string]*zip.File, len(archive.File))
	for _, f := range archive.File {
		files[f.Name] = f
	}

	opfPath, err := findPackagePath(files)
	if err != nil {
		return err
	}

	var pkg epubPackage
	if err := readXML(files, opfPath, &pkg); err != nil {
		return fmt.Errorf("unable to parse EPUB package: %w", err)
	}

	hrefByID := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		if strings.Contains(item.MediaType, "html") {
			hrefByID[item.ID] = item.Href
		}
	}

	opfDir := path.Dir(opfPath)
	doc.Pages = nil
	pageNum := 0
	for _, ref := range pkg.Spine.ItemRefs {
		if maxPages > 0 && pageNum >= maxPages {
			break
		}
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			continue
		}

		chapterPath := href
		if opfDir != "." {
			chapterPath = path.Join(opfDir, href)
		}
		f, ok := files[chapterPath]
		if !ok {
			log.Warn("EPUB spine references missing file", "book", doc.FileName, "href", chapterPath)
			continue
		}

		content, err := readAll(f)
		if err != nil {
			log.Warn("Could not read EPUB chapter", "book", doc.FileName, "href", chapterPath, "err", err)
			continue
		}

		text := textproc.CleanText(stripHTML(string(content)))
		if text == "" {
			continue
		}
		pageNum++
		doc.AddPage(text, pageNum)
	}

	doc.Metadata = document.Metadata{
		Title:     strings.TrimSpace(pkg.Metadata.Title),
		Author:    strings.TrimSpace(pkg.Metadata.Creator),
		Date:      strings.TrimSpace(pkg.Metadata.Date),
		Language:  strings.TrimSpace(pkg.Metadata.Language),
		PageCount: len(doc.Pages),
	}
	if doc.Metadata.Title == "" {
		doc.Metadata.Title = doc.BookID()
	}
	return nil
}

func findPackagePath(files map[string]*zip.File) (string, error) {
	var container epubContainer
	if err := readXML(files, "META-INF/container.xml", &container); err != nil {
		return "", fmt.Errorf("unable to read EPUB container: %w", err)
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("EPUB container lists no package file")
	}
	return container.Rootfiles[0].FullPath, nil
}

func readXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("missing %s", name)
	}
	data, err := readAll(f)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", f.Name, err)
	}
	defer rc.Close() //nolint:errcheck
	return io.ReadAll(rc)
}

// stripHTML reduces chapter XHTML to readable text: block-level closers
// become newlines so sentences on either side stay separated, everything
// else is dropped.
func stripHTML(html string) string {
	html = htmlScriptRegex.ReplaceAllString(html, " ")
	html = htmlBlockRegex.ReplaceAllString(html, "\n")
	html = htmlTagRegex.ReplaceAllString(html, " ")
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&amp;", "&")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&quot;", `"`)
	html = strings.ReplaceAll(html, "&#39;", "'")
	return html
}
