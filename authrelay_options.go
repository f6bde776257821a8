package authrelay

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caasmo/authrelay/cache/ristretto"
	"github.com/caasmo/authrelay/core"
	"github.com/caasmo/authrelay/db/zombiezen"
	"github.com/caasmo/authrelay/llm"
	"github.com/caasmo/authrelay/metrics"
	"github.com/caasmo/authrelay/oauth2"
	"github.com/caasmo/authrelay/router/httprouter"
	phuslog "github.com/phuslu/log"
	"zombiezen.com/go/sqlite/sqlitex"
)

// WithZombiezenPool configures the App to use the sqlite store on an
// existing pool. The caller owns the pool's lifecycle; sharing one pool
// between the app and any direct database access avoids SQLITE_BUSY
// surprises.
func WithZombiezenPool(pool *sqlitex.Pool) core.Option {
	dbInstance, err := zombiezen.New(pool)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize sqlite store: %v", err))
	}
	return core.WithDbApp(dbInstance)
}

func WithRouterHttprouter() core.Option {
	return func(a *core.App) {
		core.WithRouter(httprouter.New())(a)
		core.WithParamGeter(httprouter.NewParamGeter())(a)
	}
}

func WithCacheRistretto() core.Option {
	c, err := ristretto.New[interface{}]("small")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize ristretto cache: %v", err))
	}
	return core.WithCache(c)
}

// DefaultLoggerOptions provides default settings for slog handlers.
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelInfo,
}

// WithPhusLogger configures slog with phuslu/log's JSON handler.
// Uses DefaultLoggerOptions if opts is nil.
func WithPhusLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	logger := slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts))
	return core.WithLogger(logger)
}

// WithTextLogger configures slog with the standard library's text
// handler, useful for development.
func WithTextLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
	return core.WithLogger(logger)
}

// WithOAuth2FromConfig builds provider clients from the loaded
// configuration. Providers without credentials are skipped.
func WithOAuth2FromConfig() core.Option {
	return func(a *core.App) {
		cfg := a.Config()
		core.WithOAuth2Providers(oauth2.NewProviders(cfg.OAuth2Providers, cfg.PublicBaseURL))(a)
	}
}

// WithGeminiGenerator wires the chat relay to the configured Gemini
// endpoint.
func WithGeminiGenerator() core.Option {
	return func(a *core.App) {
		core.WithGenerator(llm.NewGemini(a.Config().Llm))(a)
	}
}

// WithMetricsFromConfig enables the request traffic sketch when the
// metrics section asks for it.
func WithMetricsFromConfig() core.Option {
	return func(a *core.App) {
		cfg := a.Config()
		if !cfg.Metrics.Enabled {
			return
		}
		core.WithMetricsSketch(metrics.New(cfg.Metrics.TopK, 0))(a)
	}
}
