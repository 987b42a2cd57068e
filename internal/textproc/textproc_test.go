package textproc

import (
	"strings"
	"testing"
)

func TestSplitChunksEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \n"} {
		if got := SplitChunks(input, 100); len(got) != 0 {
			t.Errorf("SplitChunks(%q) = %v, want empty", input, got)
		}
	}
}

func TestSplitChunksSentencePacking(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  []string
	}{
		{
			name:      "all sentences fit one chunk",
			input:     "Hello world. How are you? Fine!",
			maxLength: 100,
			expected:  []string{"Hello world. How are you? Fine!"},
		},
		{
			name:      "one sentence per chunk",
			input:     "First sentence here. Second sentence here. Third sentence here.",
			maxLength: 25,
			expected:  []string{"First sentence here.", "Second sentence here.", "Third sentence here."},
		},
		{
			name:      "two sentences pack then overflow",
			input:     "One two. Three four. Five six seven.",
			maxLength: 20,
			expected:  []string{"One two. Three four.", "Five six seven."},
		},
		{
			name:      "stacked punctuation stays attached",
			input:     "Really?! Yes. Good.",
			maxLength: 10,
			expected:  []string{"Really?!", "Yes. Good."},
		},
		{
			name:      "whitespace runs between sentences collapse",
			input:     "First.   Second.\n\nThird.",
			maxLength: 100,
			expected:  []string{"First. Second. Third."},
		},
		{
			name:      "no terminal punctuation is one sentence",
			input:     "just some words without an ending",
			maxLength: 100,
			expected:  []string{"just some words without an ending"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitChunks(tt.input, tt.maxLength)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %d chunks %v, want %d %v", len(got), got, len(tt.expected), tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSplitChunksExactCapacityStartsNewChunk(t *testing.T) {
	// "Aaaa bbb." is exactly 9 runes; with maxLength 9 the next sentence
	// can never join it.
	got := SplitChunks("Aaaa bbb. Cc dd.", 9)
	want := []string{"Aaaa bbb.", "Cc dd."}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSplitChunksOversizedSentence(t *testing.T) {
	t.Run("breaks at whitespace inside window", func(t *testing.T) {
		input := "aaaa bbbb cccc dddd."
		got := SplitChunks(input, 10)
		for i, chunk := range got {
			if len([]rune(chunk)) > 10 {
				t.Errorf("chunk %d %q exceeds max length", i, chunk)
			}
			if strings.TrimSpace(chunk) == "" {
				t.Errorf("chunk %d is blank", i)
			}
		}
		// No word may be cut: every piece must be whole words.
		joined := strings.Join(got, " ")
		if joined != "aaaa bbbb cccc dddd." {
			t.Errorf("joined = %q, want original text", joined)
		}
	})

	t.Run("breaks at boundary when no whitespace", func(t *testing.T) {
		input := "abcdefghijklmnopqrstuvwxyz."
		got := SplitChunks(input, 10)
		var rebuilt strings.Builder
		for i, chunk := range got {
			if len([]rune(chunk)) > 10 {
				t.Errorf("chunk %d %q exceeds max length", i, chunk)
			}
			rebuilt.WriteString(chunk)
		}
		// Boundary splits drop no characters.
		if rebuilt.String() != input {
			t.Errorf("rebuilt = %q, want %q", rebuilt.String(), input)
		}
	})

	t.Run("flushes in-progress chunk first", func(t *testing.T) {
		got := SplitChunks("Hi. aaaaaaaaaaaaaaaaaaaaaaaaa.", 10)
		if len(got) == 0 || got[0] != "Hi." {
			t.Fatalf("got %v, want leading %q chunk", got, "Hi.")
		}
	})
}

func TestSplitChunksLengthBound(t *testing.T) {
	inputs := []string{
		"Hello world. This is a longer sentence that will not fit. Tiny.",
		"Averyveryverylongsinglewordwithoutanyspacesatallinit and then more.",
		"One. Two. Three. Four. Five. Six. Seven. Eight. Nine. Ten.",
	}
	for _, input := range inputs {
		for _, max := range []int{1, 5, 12, 40, 4096} {
			for i, chunk := range SplitChunks(input, max) {
				if n := len([]rune(chunk)); n > max {
					t.Errorf("max=%d chunk %d has length %d: %q", max, i, n, chunk)
				}
				if chunk != strings.TrimSpace(chunk) {
					t.Errorf("chunk %d not trimmed: %q", i, chunk)
				}
			}
		}
	}
}

func TestSplitChunksReconstruction(t *testing.T) {
	// Joining all chunks with single spaces must reproduce the input with
	// whitespace normalized, as long as no word had to be cut.
	inputs := []string{
		"Hello world. Second chunk.",
		"First.  Second.\nThird one here. And a fourth sentence to pack!",
		"A much longer sentence with plenty of words to break at spaces.",
	}
	for _, input := range inputs {
		got := SplitChunks(input, 30)
		joined := strings.Join(got, " ")
		normalized := strings.Join(strings.Fields(input), " ")
		if joined != normalized {
			t.Errorf("reconstruction mismatch:\n got %q\nwant %q", joined, normalized)
		}
	}
}

func TestSplitChunksDeterministic(t *testing.T) {
	input := "Some repeated input. With several sentences. And one more for luck."
	first := SplitChunks(input, 25)
	for i := 0; i < 10; i++ {
		again := SplitChunks(input, 25)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d chunks, first run produced %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d chunk %d = %q, first run %q", i, j, again[j], first[j])
			}
		}
	}
}

func TestCleanText(t *testing.T) {
	input := "  line one  \n\n\t\nline two\n   "
	want := "line one\nline two"
	if got := CleanText(input); got != want {
		t.Errorf("CleanText = %q, want %q", got, want)
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"short text unchanged", "Hello.", 100, "Hello."},
		{"cuts at sentence boundary", "First sentence. Second sentence runs long.", 20, "First sentence."},
		{"hard cut without boundary", "nosentenceboundaryhere", 10, "nosentence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateText(tt.input, tt.maxLength); got != tt.expected {
				t.Errorf("TruncateText = %q, want %q", got, tt.expected)
			}
		})
	}
}
