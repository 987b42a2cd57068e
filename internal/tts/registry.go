package tts

import (
	"fmt"
	"sort"
	"sync"

	"github.com/caarlos0/env/v11"
)

// Factory constructs a Synthesizer from engine settings.
type Factory func(cfg EngineConfig) (Synthesizer, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// RegisterEngine makes an engine available under name. Engines register
// from init; adding one never touches the dispatch below.
func RegisterEngine(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Engines returns the registered engine names, sorted.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSynthesizer builds the named engine, filling unset config fields
// from the environment first.
func NewSynthesizer(name string, cfg EngineConfig) (Synthesizer, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownEngine, name, Engines())
	}

	envCfg, err := env.ParseAs[EngineConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing engine config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = envCfg.APIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = envCfg.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = envCfg.Timeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = envCfg.RequestsPerMinute
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = envCfg.CacheDir
	}

	return factory(cfg)
}
