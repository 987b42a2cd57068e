// Package convert drives document-to-audiobook conversion: it flattens a
// loaded document into globally indexed chunks, filters out work already
// recorded in the progress ledger, dispatches the rest to a synthesizer
// (serially or on a bounded worker pool), and records what succeeded.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/bookspeak/internal/document"
	"github.com/dgnsrekt/bookspeak/internal/ledger"
	"github.com/dgnsrekt/bookspeak/internal/textproc"
	"github.com/dgnsrekt/bookspeak/internal/tts"
)

// PageLoader loads a document's pages before conversion starts. It is
// called exactly once per job.
type PageLoader interface {
	LoadPages(doc *document.Document, maxPages int) error
}

// Options configures one conversion job.
type Options struct {
	// OutputDir is the root under which the per-book directory is created.
	OutputDir string
	// Audio is the synthesis configuration; zero value means defaults.
	Audio tts.AudioConfig
	// BatchSize selects dispatch: <=1 synthesizes chunks one at a time,
	// >1 uses a worker pool of min(BatchSize, NumCPU).
	BatchSize int
	// Resume skips chunks the ledger already records as completed.
	Resume bool
	// MaxPages caps how many pages are loaded; 0 means all.
	MaxPages int
}

// Converter runs conversion jobs. The loader, synthesizer and ledger are
// fixed at construction; options vary per job.
type Converter struct {
	loader PageLoader
	synth  tts.Synthesizer
	ledger *ledger.Ledger
}

// New creates a converter from its three collaborators.
func New(loader PageLoader, synth tts.Synthesizer, led *ledger.Ledger) *Converter {
	return &Converter{loader: loader, synth: synth, ledger: led}
}

// chunk is one unit of synthesis: text plus its global index. The index
// is assigned by flattening pages in order and is the resumption key, so
// it must come out identical on every run of the same document and
// segmentation length.
type chunk struct {
	text  string
	index int
}

// chunkResult is the outcome for one dispatched chunk. Failures stay
// local to their chunk; they are excluded from the saved progress and
// retried on the next resumed run.
type chunkResult struct {
	index int
	path  string
	err   error
}

// Convert runs one conversion job and returns the per-book output
// directory. An empty path with a nil error means nothing needed doing:
// the document had no pages, or every chunk was already completed.
func (c *Converter) Convert(ctx context.Context, doc *document.Document, opts Options) (string, error) {
	if err := c.loader.LoadPages(doc, opts.MaxPages); err != nil {
		return "", fmt.Errorf("unable to load document: %w", err)
	}
	if len(doc.Pages) == 0 {
		log.Warn("No pages loaded, nothing to convert", "book", doc.FileName)
		return "", nil
	}

	bookID := doc.BookID()
	bookDir := filepath.Join(opts.OutputDir, bookID)
	if err := os.MkdirAll(bookDir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}

	audio := opts.Audio
	if audio == (tts.AudioConfig{}) {
		log.Warn("No audio config provided, using defaults")
		audio = tts.DefaultAudioConfig()
	}
	if audio.MaxTextLength <= 0 {
		audio.MaxTextLength = tts.DefaultMaxTextLength
	}

	all := flattenChunks(doc, audio.MaxTextLength)

	// Progress must be read before any dispatch so completed chunks are
	// never redone within a run.
	completed := make(map[int]bool)
	if opts.Resume {
		completed = c.ledger.Load(bookID)
	}

	work := make([]chunk, 0, len(all))
	for _, ch := range all {
		if !completed[ch.index] {
			work = append(work, ch)
		}
	}

	if len(work) == 0 {
		// Nothing to dispatch; leave the ledger untouched.
		log.Info("All chunks already processed or no chunks to process", "book", bookID)
		return "", nil
	}

	var results []chunkResult
	if opts.BatchSize > 1 {
		log.Info("Processing chunks in parallel", "book", bookID, "chunks", len(work), "batch_size", opts.BatchSize)
		results = c.dispatchParallel(ctx, work, bookDir, audio, opts.BatchSize)
	} else {
		log.Info("Processing chunks serially", "book", bookID, "chunks", len(work))
		results = c.dispatchSequential(ctx, work, bookDir, audio)
	}

	succeeded := 0
	for _, res := range results {
		if res.err == nil && res.path != "" {
			completed[res.index] = true
			succeeded++
		}
	}
	log.Info("Dispatch finished", "book", bookID, "succeeded", succeeded, "failed", len(work)-succeeded)

	// The saved entry only ever grows: a run without --resume re-does
	// chunks but never erases progress another run already recorded.
	merged := c.ledger.Load(bookID)
	for idx := range completed {
		merged[idx] = true
	}
	if err := c.ledger.Save(bookID, merged); err != nil {
		// The audio already exists; losing the ledger entry only means
		// this run's chunks get redone on the next resume.
		log.Error("Could not save progress", "book", bookID, "err", err)
		log.Warn("Progress was not recorded; a resumed run will re-synthesize this batch", "book", bookID)
	}

	return bookDir, nil
}

// flattenChunks produces the global, index-ordered chunk list: pages
// contribute their pre-split chunks when present, otherwise their content
// is segmented here. Page order fixes chunk order.
func flattenChunks(doc *document.Document, maxLength int) []chunk {
	var chunks []chunk
	for _, page := range doc.Pages {
		pieces := page.Chunks
		if len(pieces) == 0 {
			pieces = textproc.SplitChunks(page.Content, maxLength)
		}
		for _, text := range pieces {
			chunks = append(chunks, chunk{text: text, index: len(chunks)})
		}
	}
	return chunks
}

// dispatchSequential synthesizes the work set one chunk at a time in
// ascending index order. A failed chunk is logged and skipped, never
// aborting the remainder.
func (c *Converter) dispatchSequential(ctx context.Context, work []chunk, bookDir string, audio tts.AudioConfig) []chunkResult {
	results := make([]chunkResult, len(work))
	for pos, ch := range work {
		path, err := c.synth.Synthesize(ctx, ch.text, bookDir, ch.index, audio)
		results[pos] = chunkResult{index: ch.index, path: path, err: err}
		if err != nil {
			log.Error("Error processing chunk", "chunk", ch.index+1, "err", err)
			continue
		}
		log.Debug("Processed chunk", "chunk", ch.index+1, "path", path)
	}
	return results
}

// dispatchParallel synthesizes the work set on a fixed pool of
// min(batchSize, NumCPU) workers. Results are stored by work-set
// position, so completion order never affects the outcome. Workers only
// touch the synthesizer; the ledger is read and written solely by
// Convert.
func (c *Converter) dispatchParallel(ctx context.Context, work []chunk, bookDir string, audio tts.AudioConfig, batchSize int) []chunkResult {
	workers := batchSize
	if n := runtime.NumCPU(); workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]chunkResult, len(work))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pos := range jobs {
				ch := work[pos]
				path, err := c.synth.Synthesize(ctx, ch.text, bookDir, ch.index, audio)
				results[pos] = chunkResult{index: ch.index, path: path, err: err}
				if err != nil {
					log.Error("Error processing chunk", "chunk", ch.index+1, "err", err)
				} else {
					log.Debug("Processed chunk", "chunk", ch.index+1, "path", path)
				}
			}
		}()
	}

	for pos := range work {
		jobs <- pos
	}
	close(jobs)
	wg.Wait()

	return results
}
