package cli

import (
	"context"
	"fmt"

	"github.com/existflow/animeshelf/internal/catalog"
	"github.com/existflow/animeshelf/internal/config"
	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/prefs"
	"github.com/existflow/animeshelf/internal/session"
	"github.com/existflow/animeshelf/internal/storage"
)

// app bundles what every command needs: local state and the API client
type app struct {
	cfg     *config.Config
	store   *storage.SQLite
	session *session.Store
	prefs   *prefs.Prefs
	api     *catalog.Client
}

// openApp opens the state database, restores the session and builds the
// catalog client from the loaded config
func openApp(ctx context.Context) (*app, error) {
	c := cfg
	if c == nil {
		c = config.DefaultConfig()
	}

	store, err := storage.Open(c.DBPath)
	if err != nil {
		logger.Error("Failed to open database", logger.F("error", err), logger.F("path", c.DBPath))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log := logger.Default()
	api, err := catalog.New(c.APIURL,
		catalog.WithTimeout(c.RequestTimeout),
		catalog.WithUserAgent("animeshelf/"+Version),
		catalog.WithLogger(log),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	return &app{
		cfg:     c,
		store:   store,
		session: session.Restore(ctx, store, session.WithLogger(log)),
		prefs:   prefs.New(store, log),
		api:     api,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close database", logger.F("error", err))
		return
	}
	logger.Debug("Database closed")
}

// requireLogin returns the session user or a hint to log in
func (a *app) requireLogin() (string, error) {
	if !a.session.LoggedIn() {
		return "", fmt.Errorf("not logged in, run 'animeshelf auth login' first")
	}
	return a.session.UserID(), nil
}
