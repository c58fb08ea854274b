// Package app provides the application context and dependency management
// for the resdesk CLI. It centralizes configuration, logging, and the
// lazily-constructed resdesk instance behind a single App type.
package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voyagekit/resdesk"
	"github.com/voyagekit/resdesk/pkg/constants"
	"github.com/voyagekit/resdesk/pkg/errors"
	"github.com/voyagekit/resdesk/pkg/extract"
	"github.com/voyagekit/resdesk/pkg/store"
)

// App represents the resdesk application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Resdesk instance (lazy-initialized, singleton)
	mu      sync.RWMutex
	resdesk resdesk.Resdesk
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Resdesk returns the resdesk instance, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Resdesk(ctx context.Context) (resdesk.Resdesk, error) {
	a.mu.RLock()
	if a.resdesk != nil {
		rd := a.resdesk
		a.mu.RUnlock()
		return rd, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.resdesk != nil {
		return a.resdesk, nil
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	extractor, err := a.buildExtractor(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	rd, err := resdesk.New(
		resdesk.WithStore(st),
		resdesk.WithExtractor(extractor),
		resdesk.WithLogger(a.logger),
	)
	if err != nil {
		_ = st.Close()
		return nil, errors.Wrap(err, "creating resdesk")
	}

	a.resdesk = rd
	return rd, nil
}

// Shutdown performs graceful shutdown of the application, closing the
// underlying store if one was opened.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	rd := a.resdesk
	a.mu.RUnlock()

	if rd != nil {
		if err := rd.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close store during shutdown")
			return err
		}
	}
	return nil
}

// openStore opens the persistence backend selected by configuration.
// The literal path "memory" selects the in-process store.
func (a *App) openStore(ctx context.Context) (store.Store, error) {
	if a.config.DBPath == "memory" {
		return store.NewMemory(), nil
	}

	if dir := filepath.Dir(a.config.DBPath); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.Wrapf(err, "creating database directory %s", dir)
		}
	}
	return store.NewSQLite(ctx, a.config.DBPath)
}

// buildExtractor constructs the extraction oracle client. Without an API
// key the CLI still works: drafts are completed by hand against the
// fallback extractor's empty guess.
func (a *App) buildExtractor(ctx context.Context) (extract.Extractor, error) {
	if a.config.GeminiAPIKey == "" {
		a.logger.Debug().Msg("GEMINI_API_KEY not set, using fallback extractor")
		return extract.Fallback{}, nil
	}

	var opts []extract.GeminiOption
	if a.config.GeminiModel != "" {
		opts = append(opts, extract.WithModel(a.config.GeminiModel))
	}
	return extract.NewGemini(ctx, a.config.GeminiAPIKey, opts...)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithResdesk sets a custom resdesk instance (useful for testing).
func WithResdesk(rd resdesk.Resdesk) Option {
	return func(a *App) error {
		a.resdesk = rd
		return nil
	}
}
