package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/bookspeak/internal/cache"
)

func init() {
	RegisterEngine("openai", func(cfg EngineConfig) (Synthesizer, error) {
		return NewOpenAIEngine(cfg)
	})
}

// OpenAIEngine synthesizes speech through the OpenAI audio API. Requests
// are rate limited to stay inside the API's per-minute budget, and
// generated audio is optionally cached on disk keyed by model, voice and
// text.
type OpenAIEngine struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// NewOpenAIEngine creates the engine from the given settings. The API key
// is required; everything else has defaults.
func NewOpenAIEngine(cfg EngineConfig) (*OpenAIEngine, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 50
	}

	e := &OpenAIEngine{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
	}

	if cfg.CacheDir != "" {
		c, err := cache.New(cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("unable to open audio cache: %w", err)
		}
		e.cache = c
	}

	return e, nil
}

// Synthesize sends one chunk to the speech endpoint and writes the
// returned audio to the artifact path for chunkIndex.
func (e *OpenAIEngine) Synthesize(ctx context.Context, text, outputDir string, chunkIndex int, cfg AudioConfig) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}
	maxLen := cfg.MaxTextLength
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLength
	}
	if len([]rune(text)) > maxLen {
		return "", fmt.Errorf("%w: %d characters (max %d)", ErrTextTooLong, len([]rune(text)), maxLen)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}
	outPath := filepath.Join(outputDir, ChunkFilename(chunkIndex))

	var cacheKey string
	if e.cache != nil {
		cacheKey = cache.Key(cfg.Model, cfg.Voice, text)
		if audio, ok := e.cache.Get(cacheKey); ok {
			log.Debug("Audio cache hit", "chunk", chunkIndex+1)
			if err := os.WriteFile(outPath, audio, 0o644); err != nil {
				return "", fmt.Errorf("unable to write audio file: %w", err)
			}
			return outPath, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	audio, err := e.requestSpeech(ctx, text, cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(outPath, audio, 0o644); err != nil {
		return "", fmt.Errorf("unable to write audio file: %w", err)
	}

	if e.cache != nil {
		if err := e.cache.Put(cacheKey, audio); err != nil {
			log.Debug("Could not cache audio", "chunk", chunkIndex+1, "err", err)
		}
	}

	log.Debug("Audio saved", "chunk", chunkIndex+1, "path", outPath)
	return outPath, nil
}

func (e *OpenAIEngine) requestSpeech(ctx context.Context, text string, cfg AudioConfig) ([]byte, error) {
	payload, err := json.Marshal(speechRequest{
		Model: cfg.Model,
		Voice: cfg.Voice,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech API error: %d - %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read audio response: %w", err)
	}
	return audio, nil
}
