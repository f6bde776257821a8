package authrelay

import (
	"fmt"
	"log/slog"

	"github.com/caasmo/authrelay/config"
	"github.com/caasmo/authrelay/core"
	"github.com/caasmo/authrelay/mail"
	"github.com/caasmo/authrelay/queue"
	"github.com/caasmo/authrelay/queue/executor"
	"github.com/caasmo/authrelay/queue/handlers"
	scl "github.com/caasmo/authrelay/queue/scheduler"
	"github.com/caasmo/authrelay/router"
	"github.com/caasmo/authrelay/server"
)

// New assembles the application and server from a config file path and
// options. A missing config path runs on built-in defaults plus
// environment secrets.
func New(configPath string, opts ...core.Option) (*core.App, *server.Server, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	configProvider := config.NewProvider(cfg)

	allOpts := []core.Option{core.WithConfigProvider(configProvider)}
	allOpts = append(allOpts, opts...)

	app, err := core.NewApp(allOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	if app.Router() == nil {
		return nil, nil, fmt.Errorf("a router is required (use WithRouterHttprouter)")
	}

	route(app)

	scheduler, err := SetupScheduler(configProvider, app, app.Logger())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup scheduler: %w", err)
	}

	// identity resolution and the traffic sketch run before routing,
	// panic recovery wraps everything
	handler := router.NewChain(app.Router()).
		WithMiddleware(app.Recoverer, app.ObserveTraffic, app.LoadIdentity).
		Handler()

	srv := server.NewServer(configProvider, handler, app.Logger(), nil)
	srv.AddDaemon(scheduler)

	return app, srv, nil
}

// SetupScheduler initializes the job scheduler. Email handlers are
// registered only when SMTP is enabled; without them email jobs stay
// queued until their attempts run out.
func SetupScheduler(configProvider *config.Provider, app *core.App, logger *slog.Logger) (*scl.Scheduler, error) {
	hdls := make(map[string]executor.JobHandler)

	cfg := configProvider.Get()
	if cfg.Smtp.Enabled {
		mailer, err := mail.New(cfg.Smtp)
		if err != nil {
			return nil, fmt.Errorf("failed to create mailer: %w", err)
		}

		hdls[queue.JobTypeEmailVerification] = handlers.NewEmailVerificationHandler(app.DbAuth(), app.DbToken(), configProvider, mailer)
		hdls[queue.JobTypePasswordReset] = handlers.NewPasswordResetHandler(app.DbAuth(), app.DbToken(), configProvider, mailer)
	}

	return scl.NewScheduler(configProvider, app.DbQueue(), executor.NewExecutor(hdls), logger), nil
}
