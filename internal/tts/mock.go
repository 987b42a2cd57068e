package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

func init() {
	RegisterEngine("mock", func(EngineConfig) (Synthesizer, error) {
		return NewMockSynthesizer(), nil
	})
}

// Call records one Synthesize invocation on the mock.
type Call struct {
	Text       string
	OutputDir  string
	ChunkIndex int
}

// MockSynthesizer implements Synthesizer for testing and dry runs. It
// writes placeholder artifact files and supports per-index failure
// injection and per-index delays so tests can force out-of-order
// completion.
type MockSynthesizer struct {
	mu          sync.Mutex
	calls       []Call
	failIndices map[int]bool
	delays      map[int]time.Duration
	delay       time.Duration
}

// NewMockSynthesizer creates a mock that succeeds for every chunk.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{
		failIndices: make(map[int]bool),
		delays:      make(map[int]time.Duration),
	}
}

// FailOn makes synthesis fail for the given chunk indices.
func (m *MockSynthesizer) FailOn(indices ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, idx := range indices {
		m.failIndices[idx] = true
	}
}

// DelayFor delays synthesis of one chunk index, letting tests control
// completion order under parallel dispatch.
func (m *MockSynthesizer) DelayFor(index int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[index] = d
}

// SetDelay applies a uniform delay to every call.
func (m *MockSynthesizer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns a copy of all recorded invocations.
func (m *MockSynthesizer) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Synthesize has been invoked.
func (m *MockSynthesizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Synthesize records the call, sleeps any configured delay, then either
// fails (when the index is marked) or writes a placeholder artifact.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text, outputDir string, chunkIndex int, _ AudioConfig) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Text: text, OutputDir: outputDir, ChunkIndex: chunkIndex})
	shouldFail := m.failIndices[chunkIndex]
	wait := m.delay
	if d, ok := m.delays[chunkIndex]; ok {
		wait = d
	}
	m.mu.Unlock()

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if shouldFail {
		return "", fmt.Errorf("mock synthesis failed for chunk %d", chunkIndex+1)
	}
	if text == "" {
		return "", ErrEmptyText
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(outputDir, ChunkFilename(chunkIndex))
	if err := os.WriteFile(outPath, []byte("mock audio: "+text), 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}
