// Package wire provides dependency injection for the courier application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/courier/internal/adapters/maildir"
	"github.com/example/courier/internal/adapters/runner"
	"github.com/example/courier/internal/adapters/sqlite"
	"github.com/example/courier/internal/app"
	"github.com/example/courier/internal/config"
	"github.com/example/courier/internal/db"
	"github.com/example/courier/internal/ports/primary"
	"github.com/example/courier/internal/ports/secondary"
)

var (
	configPath string

	cfg            *config.Config
	mailboxService primary.MailboxService
	panelService   primary.PanelService
	sessionRunner  secondary.SessionRunner
	logger         *log.Logger
	once           sync.Once
)

// SetConfigPath overrides the config file location. Must be called before
// any service accessor; later calls have no effect.
func SetConfigPath(path string) {
	configPath = path
}

// Config returns the loaded configuration singleton.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// MailboxService returns the singleton MailboxService instance.
func MailboxService() primary.MailboxService {
	once.Do(initServices)
	return mailboxService
}

// PanelService returns the singleton PanelService instance.
func PanelService() primary.PanelService {
	once.Do(initServices)
	return panelService
}

// SessionRunner returns the singleton SessionRunner selected by the
// configured spawn mode.
func SessionRunner() secondary.SessionRunner {
	once.Do(initServices)
	return sessionRunner
}

// Logger returns the shared stderr logger.
func Logger() *log.Logger {
	once.Do(initServices)
	return logger
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	logger = log.New(os.Stderr, "", log.LstdFlags)

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to resolve working directory: %v", err)
	}

	cfg, err = config.LoadConfig(cwd, configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize message store: %v", err)
	}

	mailboxService = app.NewMailboxService(store, logger)
	panelService = app.NewPanelService(cfg, mailboxService)

	sessionRunner, err = openRunner(cfg)
	if err != nil {
		log.Fatalf("failed to initialize session runner: %v", err)
	}
}

// openStore selects the message store backend from configuration.
func openStore(cfg *config.Config) (secondary.MessageStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		database, err := db.Open(filepath.Join(filepath.Dir(cfg.MaildirRoot), "courier.db"))
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(database), nil
	default:
		return maildir.NewStore(cfg.MaildirRoot), nil
	}
}

// openRunner selects the session runner from the configured spawn mode.
func openRunner(cfg *config.Config) (secondary.SessionRunner, error) {
	if cfg.SpawnMode == config.SpawnTmux {
		tmux, err := runner.NewTmuxRunner()
		if err != nil {
			return nil, err
		}
		return tmux, nil
	}
	return &runner.ExecRunner{}, nil
}
