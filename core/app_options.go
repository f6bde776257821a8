package core

import (
	"fmt"
	"log/slog"

	"github.com/caasmo/authrelay/cache"
	"github.com/caasmo/authrelay/config"
	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/llm"
	"github.com/caasmo/authrelay/metrics"
	"github.com/caasmo/authrelay/oauth2"
	"github.com/caasmo/authrelay/router"
)

type Option func(*App)

func errMissingDependency(what string) error {
	return fmt.Errorf("core: %s is required but was not provided", what)
}

// WithDbApp sets all store roles from one implementation.
func WithDbApp(d db.DbApp) Option {
	return func(a *App) {
		a.SetDb(d)
	}
}

// WithCache sets the cache implementation
func WithCache(c cache.Cache[string, interface{}]) Option {
	return func(a *App) {
		a.cache = c
	}
}

// WithRouter sets the router implementation
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithParamGeter sets the path parameter extractor matching the router
// implementation.
func WithParamGeter(p router.ParamGeter) Option {
	return func(a *App) {
		a.params = p
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithOAuth2Providers sets the configured identity providers.
func WithOAuth2Providers(p map[string]*oauth2.Provider) Option {
	return func(a *App) {
		a.providers = p
	}
}

// WithGenerator sets the chat relay's upstream text generator.
func WithGenerator(g llm.Generator) Option {
	return func(a *App) {
		a.generator = g
	}
}

// WithMetricsSketch sets the request traffic sketch.
func WithMetricsSketch(s *metrics.Sketch) Option {
	return func(a *App) {
		a.sketch = s
	}
}
