// Package app wires the engine's collaborators into one context object
// shared by every CLI command.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/lacquer/internal/application/port"
	"github.com/bnema/lacquer/internal/catalog"
	"github.com/bnema/lacquer/internal/config"
	"github.com/bnema/lacquer/internal/domain/repository"
	"github.com/bnema/lacquer/internal/engine"
	"github.com/bnema/lacquer/internal/fonts"
	"github.com/bnema/lacquer/internal/infrastructure/colorscheme"
	"github.com/bnema/lacquer/internal/infrastructure/storage"
	"github.com/bnema/lacquer/internal/infrastructure/surface"
	"github.com/bnema/lacquer/internal/logging"
	"github.com/bnema/lacquer/internal/registry"
)

const surfaceFileName = "current.css"

// App holds the initialized component graph. Construct once per process with
// NewApp; commands reach everything through it.
type App struct {
	Ctx      context.Context
	Config   *config.Config
	Store    repository.Store
	Registry *registry.Registry
	Resolver port.ColorSchemeResolver
	Engine   *engine.Engine
	Catalog  *catalog.Fetcher
	Loader   *fonts.Loader
	Surface  *surface.CSSFile
	Version  string

	watcher *colorscheme.Watcher
}

// NewApp builds and initializes the full component graph: config, logging,
// storage (with silent degradation), registry, platform signal, fonts,
// catalog, and the switching engine.
func NewApp(version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Logging.Level)
	logCfg.Format = cfg.Logging.Format
	logger := logging.New(logCfg)
	ctx := logging.WithContext(context.Background(), logger)

	store, err := storage.Open(ctx, storage.Options{
		DBPath:   cfg.Storage.DBPath,
		FilePath: cfg.Storage.FilePath,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	reg := registry.New(store, cfg.ManifestPath)
	if err := reg.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initialize registry: %w", err)
	}

	resolver := colorscheme.NewResolver()
	resolver.RegisterDetector(colorscheme.NewEnvDetector())
	resolver.RegisterDetector(colorscheme.NewGsettingsDetector())

	watchPath := cfg.SettingsWatchPath
	if watchPath == "" {
		watchPath = colorscheme.DefaultSettingsPath()
	}
	watcher, err := colorscheme.NewWatcher(ctx, watchPath, resolver)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("settings watcher unavailable, live mode changes disabled")
	}

	loader := fonts.NewLoader(cfg.Fonts.HostURL, cfg.Fonts.BatchWindow)

	dirs, err := config.GetXDGDirs()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	sheet := surface.NewCSSFile(filepath.Join(dirs.StateHome, surfaceFileName))

	eng := engine.New(engine.Options{
		Registry:       reg,
		Store:          store,
		Resolver:       resolver,
		Surface:        sheet,
		Loader:         loader,
		DebounceWindow: cfg.Engine.DebounceWindow,
		PopularSkins:   cfg.Engine.PopularSkins,
	})
	if err := eng.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initialize engine: %w", err)
	}

	return &App{
		Ctx:      ctx,
		Config:   cfg,
		Store:    store,
		Registry: reg,
		Resolver: resolver,
		Engine:   eng,
		Catalog:  catalog.New(cfg.Catalog.URL, cfg.Catalog.TTL, store, version),
		Loader:   loader,
		Surface:  sheet,
		Version:  version,
		watcher:  watcher,
	}, nil
}

// FetchInstallData resolves a skin source argument to raw install data and
// its origin: an http(s) URL is fetched, anything else is read as a file.
func (a *App) FetchInstallData(ctx context.Context, source string) (data []byte, originURL string, err error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := &http.Client{Timeout: 30 * time.Second}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("fetch %s: %w", source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("fetch %s: unexpected status %d", source, resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, "", err
		}
		return data, source, nil
	}

	data, err = os.ReadFile(source)
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

// Close flushes pending engine state and releases the store and watcher.
func (a *App) Close() error {
	a.Engine.Close()
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	return a.Store.Close()
}
