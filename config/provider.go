package config

import (
	"sync/atomic"
)

// Provider hands out the current *Config and allows atomic replacement.
// Handlers read a snapshot per request via Get; a snapshot is never
// mutated after publication.
type Provider struct {
	current atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.current.Store(cfg)
	return p
}

func (p *Provider) Get() *Config {
	return p.current.Load()
}

func (p *Provider) Update(cfg *Config) {
	p.current.Store(cfg)
}
