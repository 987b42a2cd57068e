// Package tts defines the synthesis contract the conversion pipeline
// depends on, plus the engines that implement it.
package tts

import (
	"context"
	"fmt"
	"time"
)

// Models accepted by the OpenAI speech endpoint.
const (
	ModelStandard    = "tts-1"
	ModelHighQuality = "tts-1-hd"
	ModelGPT4oMini   = "gpt-4o-mini-tts"
)

// DefaultMaxTextLength is the largest chunk the speech endpoint accepts.
const DefaultMaxTextLength = 4096

var knownVoices = map[string]bool{
	"alloy":   true,
	"ash":     true,
	"ballad":  true,
	"coral":   true,
	"echo":    true,
	"fable":   true,
	"nova":    true,
	"onyx":    true,
	"sage":    true,
	"shimmer": true,
}

var knownModels = map[string]bool{
	ModelStandard:    true,
	ModelHighQuality: true,
	ModelGPT4oMini:   true,
}

// AudioConfig carries the per-job synthesis settings. MaxTextLength also
// drives segmentation, so changing it changes chunk boundaries and
// invalidates saved progress for a book.
type AudioConfig struct {
	Model         string
	Voice         string
	MaxTextLength int
	SampleRate    int
}

// DefaultAudioConfig returns the settings used when the caller provides
// none.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		Model:         ModelStandard,
		Voice:         "shimmer",
		MaxTextLength: DefaultMaxTextLength,
		SampleRate:    22050,
	}
}

// AudioConfigFromStrings builds an AudioConfig from user-supplied model
// and voice names, falling back to the defaults for anything unknown or
// empty.
func AudioConfigFromStrings(model, voice string) AudioConfig {
	cfg := DefaultAudioConfig()
	if knownModels[model] {
		cfg.Model = model
	}
	if knownVoices[voice] {
		cfg.Voice = voice
	}
	return cfg
}

// ChunkFilename returns the artifact name for a chunk's global index:
// 1-based, zero-padded to at least three digits. The name is a pure
// function of the index, so re-synthesizing a chunk overwrites its
// previous artifact instead of duplicating it.
func ChunkFilename(index int) string {
	return fmt.Sprintf("chunk_%03d.mp3", index+1)
}

// Synthesizer turns one text chunk into one audio file. Implementations
// must create outputDir when absent, write the artifact at the path
// derived from chunkIndex, and be safe for concurrent calls with
// disjoint indices.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputDir string, chunkIndex int, cfg AudioConfig) (string, error)
}

// EngineConfig holds engine construction settings, overridable from the
// environment.
type EngineConfig struct {
	APIKey            string        `env:"OPENAI_API_KEY"`
	BaseURL           string        `env:"BOOKSPEAK_TTS_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Timeout           time.Duration `env:"BOOKSPEAK_TTS_TIMEOUT" envDefault:"60s"`
	RequestsPerMinute int           `env:"BOOKSPEAK_TTS_REQUESTS_PER_MINUTE" envDefault:"50"`
	CacheDir          string        `env:"BOOKSPEAK_TTS_CACHE_DIR"`
}
