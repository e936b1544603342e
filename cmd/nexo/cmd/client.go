package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nexocrm/nexo-go/auth"
	"github.com/nexocrm/nexo-go/config"
	bboltstore "github.com/nexocrm/nexo-go/store/bbolt"
)

const (
	identityBucket = "identity"
	employeeIDKey  = "employee_id"
)

// appContext bundles the pieces every subcommand needs.
type appContext struct {
	cfg      config.Config
	logger   *slog.Logger
	logLevel *slog.LevelVar
	repo     *bboltstore.Store
	store    auth.CredentialStore
	manager  *auth.Manager
}

func (a *appContext) close() {
	if a.repo != nil {
		a.repo.Close()
	}
}

func newAppContext() (*appContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, logLevel := newLogger(cfg.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.DataPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := bboltstore.NewRepositoryFromFile(cfg.DataPath, nil)
	if err != nil {
		return nil, fmt.Errorf("opening client state db: %w", err)
	}

	store := auth.NewRepositoryCredentialStore(repo)
	manager := auth.New(cfg.APIBaseURL, store, &cliNavigator{},
		auth.WithLogger(logger),
		auth.WithTokenTTL(cfg.TokenTTL.Std()),
	)

	return &appContext{
		cfg:      cfg,
		logger:   logger,
		logLevel: logLevel,
		repo:     repo,
		store:    store,
		manager:  manager,
	}, nil
}

// newLogger builds the process logger. The returned LevelVar lets a config
// reload change the level without rebuilding the handler.
func newLogger(level string) (*slog.Logger, *slog.LevelVar) {
	lvl := new(slog.LevelVar)
	lvl.Set(parseLevel(level))
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), lvl
}

func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// cliNavigator is the CLI's navigation boundary: there is no login surface
// to redirect to, so a forced logout prints the reason and the next command
// starts unauthenticated.
type cliNavigator struct{}

func (cliNavigator) AtLogin() bool { return false }

func (cliNavigator) ShowLogin(reason string) {
	fmt.Fprintf(os.Stderr, "\nSesión terminada: %s\nEjecuta `nexo login` para volver a entrar.\n", reason)
}

func (a *appContext) saveEmployeeID(id string) error {
	return a.repo.Put(identityBucket, employeeIDKey, []byte(id))
}

func (a *appContext) employeeID() (string, error) {
	data, err := a.repo.Get(identityBucket, employeeIDKey)
	if err != nil {
		return "", fmt.Errorf("no stored identity, run `nexo login` first: %w", err)
	}
	return string(data), nil
}
