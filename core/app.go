package core

import (
	"log/slog"

	"github.com/caasmo/authrelay/cache"
	"github.com/caasmo/authrelay/config"
	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/llm"
	"github.com/caasmo/authrelay/metrics"
	"github.com/caasmo/authrelay/oauth2"
	"github.com/caasmo/authrelay/router"
	"github.com/caasmo/authrelay/router/httprouter"
)

// App is the application wide context.
// db connections and permanent structs go here.
//
// For simplicity, all handlers and middleware have App as receiver.
type App struct {
	dbAuth    db.DbAuth
	dbSession db.DbSession
	dbAccount db.DbAccount
	dbToken   db.DbToken
	dbChat    db.DbChat
	dbQueue   db.DbQueue

	router         router.Router
	params         router.ParamGeter
	cache          cache.Cache[string, interface{}]
	configProvider *config.Provider
	logger         *slog.Logger

	sessions  *SessionManager
	validator Validator
	providers map[string]*oauth2.Provider
	generator llm.Generator
	sketch    *metrics.Sketch
}

// NewApp assembles the application from options. The db, config
// provider and logger are required; the rest have working defaults or
// are optional features.
func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.dbAuth == nil {
		return nil, errMissingDependency("db (use WithDbApp)")
	}
	if a.configProvider == nil {
		return nil, errMissingDependency("config provider (use WithConfigProvider)")
	}
	if a.logger == nil {
		return nil, errMissingDependency("logger (use WithLogger)")
	}

	if a.validator == nil {
		a.validator = NewValidator()
	}
	if a.sessions == nil {
		a.sessions = NewSessionManager(a.dbSession, a.dbAuth, a.configProvider)
	}
	if a.params == nil {
		a.params = httprouter.NewParamGeter()
	}

	return a, nil
}

func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) DbAuth() db.DbAuth {
	return a.dbAuth
}

func (a *App) DbSession() db.DbSession {
	return a.dbSession
}

func (a *App) DbAccount() db.DbAccount {
	return a.dbAccount
}

func (a *App) DbToken() db.DbToken {
	return a.dbToken
}

func (a *App) DbChat() db.DbChat {
	return a.dbChat
}

func (a *App) DbQueue() db.DbQueue {
	return a.dbQueue
}

// SetDb sets all store roles from one implementation.
func (a *App) SetDb(dbApp db.DbApp) {
	if dbApp == nil {
		panic("DbApp cannot be nil")
	}
	a.dbAuth = dbApp
	a.dbSession = dbApp
	a.dbAccount = dbApp
	a.dbToken = dbApp
	a.dbChat = dbApp
	a.dbQueue = dbApp
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) Cache() cache.Cache[string, interface{}] {
	return a.cache
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) Sessions() *SessionManager {
	return a.sessions
}

func (a *App) Validator() Validator {
	return a.validator
}

func (a *App) Providers() map[string]*oauth2.Provider {
	return a.providers
}

func (a *App) Generator() llm.Generator {
	return a.generator
}

func (a *App) Sketch() *metrics.Sketch {
	return a.sketch
}
