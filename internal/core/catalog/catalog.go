// Package catalog assembles the list of versions offered for bisection from
// the remote release feed, the local cache, the bundled snapshot and locally
// built versions.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/eventbus"
	"github.com/colonyops/vbisect/internal/core/kv"
	"github.com/colonyops/vbisect/internal/core/logging"
	"github.com/colonyops/vbisect/internal/core/version"
)

const cacheNamespace = "catalog"

// staleCacheLimit bounds how long a cached feed may serve as the offline
// fallback before the sweeper removes it.
const staleCacheLimit = 30 * 24 * time.Hour

//go:embed releases.json
var snapshotJSON []byte

// Origin names where the remote part of a listing came from.
type Origin string

const (
	OriginNetwork    Origin = "network"
	OriginCache      Origin = "cache"
	OriginStaleCache Origin = "stale-cache"
	OriginSnapshot   Origin = "snapshot"
)

// Release is one entry of the release feed.
type Release struct {
	Version string `json:"version"`
	Date    string `json:"date,omitempty"`
}

// Listing is the result of loading the catalog.
type Listing struct {
	Versions  []version.Version // newest first
	Origin    Origin
	FetchedAt time.Time // zero for the bundled snapshot
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithHTTPClient replaces the default retrying client.
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *Catalog) { c.client = client }
}

// WithBus publishes catalog.refreshed after every load.
func WithBus(bus *eventbus.EventBus) Option {
	return func(c *Catalog) { c.bus = bus }
}

// WithClock overrides time.Now for cache age checks.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// Catalog loads and filters versions.
type Catalog struct {
	cfg    config.CatalogConfig
	store  kv.KV
	client *retryablehttp.Client
	bus    *eventbus.EventBus
	now    func() time.Time
	log    zerolog.Logger
}

// New creates a catalog. store may be nil, in which case nothing is cached.
func New(cfg config.CatalogConfig, store kv.KV, opts ...Option) *Catalog {
	c := &Catalog{
		cfg:   cfg,
		store: store,
		now:   time.Now,
		log:   logging.Component("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = NewHTTPClient(c.log)
	}
	return c
}

// VersionsToShow returns the filtered, deduplicated, newest-first list the
// range selector is built over.
func (c *Catalog) VersionsToShow(ctx context.Context) ([]version.Version, error) {
	listing, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Versions, nil
}

// Load returns the listing, using a fresh cache entry when one exists.
func (c *Catalog) Load(ctx context.Context) (Listing, error) {
	return c.load(ctx, false)
}

// Refresh is Load but always tries the network first.
func (c *Catalog) Refresh(ctx context.Context) (Listing, error) {
	return c.load(ctx, true)
}

func (c *Catalog) load(ctx context.Context, force bool) (Listing, error) {
	releases, origin, fetchedAt, err := c.remote(ctx, force)
	if err != nil {
		return Listing{}, err
	}

	var candidates []version.Version
	for _, r := range releases {
		v, err := version.Parse(r.Version, version.SourceRemote)
		if err != nil {
			c.log.Debug().Str("version", r.Version).Msg("skipping invalid release")
			continue
		}
		candidates = append(candidates, v)
	}

	filter := NewFilter(c.cfg)
	versions := filter.Apply(candidates)
	versions = append(versions, filter.ApplyLocal(c.local())...)
	versions = dedupe(versions)
	version.SortNewestFirst(versions)

	c.log.Debug().
		Str("origin", string(origin)).
		Int("releases", len(releases)).
		Int("shown", len(versions)).
		Msg("catalog loaded")

	if c.bus != nil {
		c.bus.PublishCatalogRefreshed(eventbus.CatalogRefreshedPayload{
			Count:  len(versions),
			Origin: string(origin),
		})
	}

	return Listing{Versions: versions, Origin: origin, FetchedAt: fetchedAt}, nil
}

// remote resolves the release list: fresh cache, then network, then stale
// cache, then the bundled snapshot.
func (c *Catalog) remote(ctx context.Context, force bool) ([]Release, Origin, time.Time, error) {
	if c.cfg.ReleasesURL == "" {
		releases, err := Snapshot()
		return releases, OriginSnapshot, time.Time{}, err
	}

	var (
		cached    []Release
		cachedAt  time.Time
		haveCache bool
	)
	if c.store != nil {
		rel, at, err := kv.NewCache[[]Release](c.store, cacheNamespace).Get(ctx, c.cfg.ReleasesURL)
		switch {
		case err == nil && len(rel) > 0:
			cached, cachedAt, haveCache = rel, at, true
		case err != nil && !kv.IsNotFound(err):
			c.log.Warn().Err(err).Msg("read release cache")
		}
	}

	if haveCache && !force && c.now().Sub(cachedAt) < c.cfg.CacheTTL {
		return cached, OriginCache, cachedAt, nil
	}

	releases, err := c.fetch(ctx)
	if err == nil {
		now := c.now()
		if c.store != nil {
			cache := kv.NewCache[[]Release](c.store, cacheNamespace)
			if err := cache.Put(ctx, c.cfg.ReleasesURL, releases, staleCacheLimit); err != nil {
				c.log.Warn().Err(err).Msg("write release cache")
			}
		}
		return releases, OriginNetwork, now, nil
	}

	if ctx.Err() != nil {
		return nil, "", time.Time{}, ctx.Err()
	}

	c.log.Warn().Err(err).Str("url", c.cfg.ReleasesURL).Msg("fetch releases failed")

	if haveCache {
		return cached, OriginStaleCache, cachedAt, nil
	}

	releases, err = Snapshot()
	return releases, OriginSnapshot, time.Time{}, err
}

func (c *Catalog) fetch(ctx context.Context) ([]Release, error) {
	body, err := c.fetchReleasesJSON(ctx)
	if err != nil {
		return nil, err
	}
	return parseReleases(body)
}

func (c *Catalog) local() []version.Version {
	out := make([]version.Version, 0, len(c.cfg.Local))
	for _, raw := range c.cfg.Local {
		v, err := version.Parse(raw, version.SourceLocal)
		if err != nil {
			c.log.Warn().Str("version", raw).Msg("skipping invalid local version")
			continue
		}
		out = append(out, v)
	}
	return out
}

// Snapshot returns the release list bundled with the binary.
func Snapshot() ([]Release, error) {
	releases, err := parseReleases(snapshotJSON)
	if err != nil {
		return nil, fmt.Errorf("bundled snapshot: %w", err)
	}
	return releases, nil
}

func dedupe(vs []version.Version) []version.Version {
	seen := make(map[version.Version]struct{}, len(vs))
	out := vs[:0]
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
