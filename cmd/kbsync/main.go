// Command kbsync is the knowledge base synchronisation client.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/kbsync/internal/adapters/driven/api"
	"github.com/custodia-labs/kbsync/internal/adapters/driven/auth"
	"github.com/custodia-labs/kbsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kbsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kbsync/internal/adapters/driven/transport"
	"github.com/custodia-labs/kbsync/internal/adapters/driven/validate"
	"github.com/custodia-labs/kbsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/services"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetInitializer(wire)

	err := cli.Execute(context.Background())
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// wire builds the adapters and services for one command run.
func wire(ctx context.Context, opts cli.GlobalOptions) (cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("loading config: %w", err)
	}
	settings := file.LoadSettings(configStore, nil)
	if settings.Verbose {
		logger.SetVerbose(true)
	}
	logger.Section("Startup")
	logger.Debug("config %s, backend %s", configStore.Path(), settings.BaseURL)

	store, err := sqlite.NewStore(filepath.Join(filepath.Dir(configStore.Path()), "data"))
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
	}

	sessionStore := store.SessionStore()
	session := services.NewSessionService(sessionStore, auth.NewJWTInspector())
	if _, err := session.Bootstrap(ctx); err != nil {
		cleanup()
		return cli.Services{}, nil, err
	}
	if err := applyOverrides(ctx, session, settings); err != nil {
		cleanup()
		return cli.Services{}, nil, err
	}

	gateway := api.NewGateway(api.Config{
		BaseURL:   settings.BaseURL,
		Timeout:   settings.Timeout,
		RateLimit: settings.RateLimit,
		Burst:     settings.Burst,
		UserAgent: "kbsync/" + version,
	}, sessionStore, api.WithAuthRequiredHandler(session.HandleAuthRequired))
	client := api.NewClient(gateway, api.WithQueryTimeout(settings.QueryTimeout))

	queryTransport := transport.NewLazy(settings.Transport, client)

	state := memory.NewState()
	categories := services.NewCategoryService(store.CategoryStore())
	synchronizer := services.NewSynchronizer(client, state.Items,
		services.WithDebounce(settings.Debounce),
		services.WithCategoryResolver(categories),
	)
	query := services.NewQueryController(queryTransport, state.Messages, categories)
	upload := services.NewUploadPipeline(client, state.Items, state.Items, validate.New())

	session.Subscribe(synchronizer)
	session.Subscribe(query)
	session.Subscribe(upload)

	schedulerConfig := domain.DefaultSchedulerConfig()
	schedulerConfig.TaskConfigs[domain.TaskIDDocumentRefresh] = domain.TaskConfig{
		Enabled:  true,
		Interval: settings.PollInterval,
	}
	scheduler := services.NewDocumentRefreshScheduler(schedulerConfig, store.SchedulerStore(), synchronizer)

	watcher := file.NewWatcher(configStore, func(ctx context.Context, organization string) {
		if err := session.SwitchOrganization(ctx, organization); err != nil {
			logger.Error("switching organization: %v", err)
		}
	})

	return cli.Services{
		Synchronizer:  synchronizer,
		Query:         query,
		Upload:        upload,
		Session:       session,
		Categories:    categories,
		Health:        client,
		Scheduler:     scheduler,
		ConfigWatcher: watcher,
	}, cleanup, nil
}

// applyOverrides applies the organization and token given by configuration
// or environment. The configured organization only fills an empty session;
// 'kbsync org switch' takes precedence. Listeners are not subscribed yet,
// so nothing reloads.
func applyOverrides(ctx context.Context, session *services.SessionService, settings file.Settings) error {
	current, err := session.Current(ctx)
	if err != nil {
		return err
	}
	if settings.Organization != "" && current.Organization == "" {
		if err := session.SwitchOrganization(ctx, settings.Organization); err != nil {
			return err
		}
	}
	if settings.Token == "" || current.Token == settings.Token {
		return nil
	}
	return session.Login(ctx, settings.Token, current.Email)
}
