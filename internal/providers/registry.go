package providers

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/research-orchestrator/internal/config"
)

// Registry holds the configured providers in their trial order plus the
// operator-controlled enable/disable overlay (supplementing, not
// replacing, the per-process degraded latch each adapter owns - see
// app/config.py's SEARCH_CHANNELS_ENABLED, carried forward as a
// persisted toggle rather than a JSON file).
type Registry struct {
	mu        sync.RWMutex
	order     []string
	providers map[string]Provider
	disabled  map[string]bool
}

func NewRegistry(cfg *config.ProvidersConfig, timeout time.Duration, maxRetries int, log *logrus.Entry) *Registry {
	r := &Registry{
		order:     append([]string{}, cfg.Order...),
		providers: make(map[string]Provider, len(cfg.Order)),
		disabled:  make(map[string]bool),
	}

	for _, name := range cfg.Order {
		key := cfg.APIKeys[name]
		switch name {
		case "serper":
			r.providers[name] = NewSerperAdapter(key, timeout, maxRetries, log)
		case "tavily":
			r.providers[name] = NewTavilyAdapter(key, timeout, maxRetries, log)
		case "exa":
			r.providers[name] = NewExaAdapter(key, timeout, maxRetries, log)
		case "jina":
			r.providers[name] = NewJinaAdapter(key, timeout, maxRetries, log)
		case "perplexity":
			r.providers[name] = NewPerplexityAdapter(key, timeout, maxRetries, log)
		}
	}
	return r
}

// Ordered returns providers in trial order, skipping unknown names and
// anything the operator has disabled.
func (r *Registry) Ordered() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		if p, ok := r.providers[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) SetEnabled(name string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[name] = !enabled
}

func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}
