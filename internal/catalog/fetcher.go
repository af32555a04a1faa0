// Package catalog refreshes the remote list of installable skins, cached
// locally with a time-to-live.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/bnema/lacquer/internal/domain/repository"
	"github.com/bnema/lacquer/internal/logging"
)

// Entry is one installable skin advertised by the remote catalog.
type Entry struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	// MinEngine is the lowest engine version the skin supports, semver.
	// Empty means any.
	MinEngine string `json:"minEngine,omitempty"`
}

type remoteDoc struct {
	Skins []Entry `json:"skins"`
}

// Fetcher caches the remote catalog in the state store.
type Fetcher struct {
	url    string
	ttl    time.Duration
	state  repository.StateStore
	client *http.Client

	// engineVersion filters entries whose MinEngine exceeds it. Nil skips
	// the filter (dev builds carry no parseable version).
	engineVersion *semver.Version

	// now is replaceable for TTL tests.
	now func() time.Time
}

// New creates a fetcher. version is the running engine version; an
// unparseable version disables compatibility filtering.
func New(url string, ttl time.Duration, state repository.StateStore, version string) *Fetcher {
	engineVersion, err := semver.NewVersion(version)
	if err != nil {
		engineVersion = nil
	}
	return &Fetcher{
		url:           url,
		ttl:           ttl,
		state:         state,
		client:        &http.Client{Timeout: 15 * time.Second},
		engineVersion: engineVersion,
		now:           time.Now,
	}
}

// Names returns the installable skin names: the cached list while within the
// TTL (unless force), a fresh fetch otherwise. A failed fetch falls back to
// the stale cache when one exists and surfaces the error when none does.
func (f *Fetcher) Names(ctx context.Context, force bool) ([]string, error) {
	log := logging.FromContext(ctx)

	cached, fetchedAt, haveCache := f.cached(ctx)
	if haveCache && !force && f.now().Sub(fetchedAt) < f.ttl {
		log.Debug().Int("names", len(cached)).Time("fetched_at", fetchedAt).Msg("catalog cache hit")
		return cached, nil
	}

	names, err := f.fetch(ctx)
	if err != nil {
		if haveCache {
			log.Warn().Err(err).Msg("catalog refresh failed, serving stale cache")
			return cached, nil
		}
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}

	f.persist(ctx, names)
	return names, nil
}

func (f *Fetcher) cached(ctx context.Context) ([]string, time.Time, bool) {
	raw, ok, err := f.state.GetValue(ctx, repository.KeyCatalogNames)
	if err != nil || !ok {
		return nil, time.Time{}, false
	}
	stamp, ok, err := f.state.GetValue(ctx, repository.KeyCatalogFetchedAt)
	if err != nil || !ok {
		return nil, time.Time{}, false
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, time.Time{}, false
	}
	fetchedAt, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return nil, time.Time{}, false
	}
	return names, fetchedAt, true
}

func (f *Fetcher) fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var doc remoteDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	names := make([]string, 0, len(doc.Skins))
	for _, entry := range doc.Skins {
		if entry.Name == "" {
			continue
		}
		if !f.compatible(ctx, entry) {
			continue
		}
		names = append(names, entry.Name)
	}
	return names, nil
}

// compatible filters out entries requiring a newer engine.
func (f *Fetcher) compatible(ctx context.Context, entry Entry) bool {
	if entry.MinEngine == "" || f.engineVersion == nil {
		return true
	}
	minVersion, err := semver.NewVersion(entry.MinEngine)
	if err != nil {
		// A malformed constraint should not hide the skin.
		return true
	}
	if f.engineVersion.LessThan(minVersion) {
		logging.FromContext(ctx).Debug().
			Str("skin", entry.Name).
			Str("min_engine", entry.MinEngine).
			Msg("catalog entry requires newer engine")
		return false
	}
	return true
}

func (f *Fetcher) persist(ctx context.Context, names []string) {
	log := logging.FromContext(ctx)

	encoded, err := json.Marshal(names)
	if err != nil {
		return
	}
	if err := f.state.SetValue(ctx, repository.KeyCatalogNames, string(encoded)); err != nil {
		log.Warn().Err(err).Msg("could not cache catalog names")
		return
	}
	if err := f.state.SetValue(ctx, repository.KeyCatalogFetchedAt, f.now().Format(time.RFC3339)); err != nil {
		log.Warn().Err(err).Msg("could not cache catalog timestamp")
	}
}
