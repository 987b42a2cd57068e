package library

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestForFileDispatch(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"book.pdf", false},
		{"book.epub", false},
		{"book.txt", false},
		{"BOOK.TXT", false},
		{"book.docx", true},
		{"book", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.path, t.TempDir())
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestForExtensionNormalizes(t *testing.T) {
	for _, ext := range []string{"txt", ".txt", "TXT", ".TXT"} {
		if _, err := ForExtension(ext, t.TempDir()); err != nil {
			t.Errorf("ForExtension(%q) failed: %v", ext, err)
		}
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	want := map[string]bool{".epub": true, ".pdf": true, ".txt": true}
	for _, ext := range exts {
		delete(want, ext)
	}
	if len(want) != 0 {
		t.Errorf("missing registered extensions: %v (got %v)", want, exts)
	}
}

func TestTextLoader(t *testing.T) {
	dir := t.TempDir()
	content := "  First line.  \n\n\nSecond line here.\n"
	if err := os.WriteFile(filepath.Join(dir, "sample.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loader, err := ForExtension(".txt", dir)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := loader.FindByName("sample.txt")
	if err != nil {
		t.Fatal(err)
	}
	if doc.BookID() != "sample" {
		t.Errorf("BookID = %q, want sample", doc.BookID())
	}
	if len(doc.Pages) != 0 {
		t.Error("FindByName should not load pages")
	}

	if err := loader.LoadPages(doc, 0); err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("text file should load as a single page, got %d", len(doc.Pages))
	}
	want := "First line.\nSecond line here."
	if doc.Pages[0].Content != want {
		t.Errorf("page content = %q, want %q", doc.Pages[0].Content, want)
	}
	if doc.Metadata.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", doc.Metadata.PageCount)
	}
}

func TestTextLoaderFormFeedPages(t *testing.T) {
	dir := t.TempDir()
	content := "Page one text.\n\fPage two text.\n\fPage three text.\n"
	if err := os.WriteFile(filepath.Join(dir, "paged.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loader, err := ForExtension(".txt", dir)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := loader.FindByName("paged.txt")
	if err != nil {
		t.Fatal(err)
	}

	if err := loader.LoadPages(doc, 0); err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("page count = %d, want 3", len(doc.Pages))
	}
	if doc.Pages[1].Content != "Page two text." {
		t.Errorf("page 2 content = %q", doc.Pages[1].Content)
	}

	// The page cap applies to form-feed pages too.
	doc2, err := loader.FindByName("paged.txt")
	if err != nil {
		t.Fatal(err)
	}
	if err := loader.LoadPages(doc2, 2); err != nil {
		t.Fatal(err)
	}
	if len(doc2.Pages) != 2 {
		t.Errorf("capped page count = %d, want 2", len(doc2.Pages))
	}
}

func TestTextLoaderFindByNameMissing(t *testing.T) {
	loader, err := ForExtension(".txt", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.FindByName("nope.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

// writeTestEPUB builds a minimal two-chapter EPUB archive.
func writeTestEPUB(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	add := func(name, content string) {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	add("META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	add("OEBPS/content.opf", `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <metadata>
    <dc:title>Test Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`)

	add("OEBPS/ch1.xhtml", `<html><body><h1>Chapter One</h1><p>First chapter text.</p></body></html>`)
	add("OEBPS/ch2.xhtml", `<html><body><p>Second chapter text.</p><script>ignore();</script></body></html>`)
	add("OEBPS/style.css", `body { color: black; }`)

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEPUBLoader(t *testing.T) {
	dir := t.TempDir()
	writeTestEPUB(t, dir, "test.epub")

	loader, err := ForExtension(".epub", dir)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := loader.FindByName("test.epub")
	if err != nil {
		t.Fatal(err)
	}
	if err := loader.LoadPages(doc, 0); err != nil {
		t.Fatal(err)
	}

	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 chapter pages, got %d", len(doc.Pages))
	}
	if !strings.Contains(doc.Pages[0].Content, "First chapter text.") {
		t.Errorf("page 1 missing chapter text: %q", doc.Pages[0].Content)
	}
	if !strings.Contains(doc.Pages[1].Content, "Second chapter text.") {
		t.Errorf("page 2 missing chapter text: %q", doc.Pages[1].Content)
	}
	if strings.Contains(doc.Pages[1].Content, "ignore()") {
		t.Error("script content leaked into page text")
	}

	if doc.Metadata.Title != "Test Book" {
		t.Errorf("Title = %q, want Test Book", doc.Metadata.Title)
	}
	if doc.Metadata.Author != "Test Author" {
		t.Errorf("Author = %q, want Test Author", doc.Metadata.Author)
	}
	if doc.Metadata.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", doc.Metadata.PageCount)
	}
}

func TestEPUBLoaderMaxPages(t *testing.T) {
	dir := t.TempDir()
	writeTestEPUB(t, dir, "test.epub")

	loader, err := ForExtension(".epub", dir)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := loader.FindByName("test.epub")
	if err != nil {
		t.Fatal(err)
	}
	if err := loader.LoadPages(doc, 1); err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 1 {
		t.Errorf("maxPages=1 loaded %d pages", len(doc.Pages))
	}
}

func TestFindAllBooks(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "zeta.txt"), []byte("z"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeTestEPUB(t, dir, "alpha.epub")
	if err := os.WriteFile(filepath.Join(dir, "ignored.docx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	books := FindAllBooks(dir)
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].FileName != "alpha.epub" || books[1].FileName != "zeta.txt" {
		t.Errorf("books not sorted by name: %v, %v", books[0].FileName, books[1].FileName)
	}
}
