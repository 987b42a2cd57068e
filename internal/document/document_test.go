package document

import "testing"

func TestBookID(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		expected string
	}{
		{"simple pdf", "moby-dick.pdf", "moby-dick"},
		{"epub", "dracula.epub", "dracula"},
		{"plain text", "notes.txt", "notes"},
		{"multiple dots", "my.book.v2.pdf", "my.book.v2"},
		{"no extension", "README", "README"},
		{"leading dot only", ".hidden", ".hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Document{FileName: tt.fileName}
			if got := d.BookID(); got != tt.expected {
				t.Errorf("BookID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		fileName string
		expected string
	}{
		{"book.PDF", "pdf"},
		{"book.epub", "epub"},
		{"book", ""},
		{"archive.tar.gz", "gz"},
	}

	for _, tt := range tests {
		d := &Document{FileName: tt.fileName}
		if got := d.Extension(); got != tt.expected {
			t.Errorf("Extension(%q) = %q, want %q", tt.fileName, got, tt.expected)
		}
	}
}

func TestAddPagePreservesOrder(t *testing.T) {
	d := New("/books/sample.txt", "txt")

	d.AddPage("first", 1)
	d.AddPage("second", 2)
	d.AddPage("third", 3)

	if len(d.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(d.Pages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if d.Pages[i].Content != want {
			t.Errorf("page %d content = %q, want %q", i, d.Pages[i].Content, want)
		}
		if d.Pages[i].PageNumber != i+1 {
			t.Errorf("page %d number = %d, want %d", i, d.Pages[i].PageNumber, i+1)
		}
	}
}
