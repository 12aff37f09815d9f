package di

import (
	"context"
	"net/http"
	"strings"
	"sync"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-codex/internal/cache"
	"github.com/goliatone/go-codex/internal/catalog"
	"github.com/goliatone/go-codex/internal/commands"
	catalogcmd "github.com/goliatone/go-codex/internal/commands/catalog"
	"github.com/goliatone/go-codex/internal/content"
	codexhttp "github.com/goliatone/go-codex/internal/http"
	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/internal/markdown"
	"github.com/goliatone/go-codex/internal/mathtex"
	"github.com/goliatone/go-codex/internal/metrics"
	"github.com/goliatone/go-codex/internal/migrations"
	"github.com/goliatone/go-codex/internal/remote"
	"github.com/goliatone/go-codex/internal/routing"
	"github.com/goliatone/go-codex/internal/runtimeconfig"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// Container wires module dependencies from a validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	metrics        interfaces.PipelineMetrics
	recorder       *metrics.Recorder

	dbOnce        sync.Once
	bunDB         *bun.DB
	dbErr         error
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	source     interfaces.ContentSource
	documents  *content.BunSource
	markdown   *markdown.Service
	opener     routing.Opener
	resolver   *routing.Resolver
	vanity     *routing.Vanity
	httpClient *http.Client
	fetchCache *cache.StaleCache[string]
	fetcher    *remote.GitHubFetcher
	api        *codexhttp.API
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithMetrics overrides the Prometheus recorder.
func WithMetrics(m interfaces.PipelineMetrics) Option {
	return func(c *Container) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithBunDB supplies the writable database holding documents and catalog
// tables instead of opening one from the storage config.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		if db != nil {
			c.dbOnce.Do(func() { c.bunDB = db })
		}
	}
}

// WithCache overrides the repository cache used in front of the documents
// table.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithContentSource replaces the configured content source.
func WithContentSource(source interfaces.ContentSource) Option {
	return func(c *Container) {
		if source != nil {
			c.source = source
		}
	}
}

// WithOpener replaces the read-only catalog opener used by the resolver.
func WithOpener(open routing.Opener) Option {
	return func(c *Container) {
		if open != nil {
			c.opener = open
		}
	}
}

// WithHTTPClient sets the client used for GitHub requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	steps := []func() error{
		c.configureLogger,
		c.configureMetrics,
		c.configureSource,
		c.configureMarkdown,
		c.configureRouting,
		c.configureRemote,
		c.configureHTTP,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	logging.ModuleLogger(c.loggerProvider, "codex.di").Info("container.configured",
		"content_source", normalized(cfg.Content.Source),
		"storage_driver", normalized(cfg.Storage.Driver),
		"probes", len(c.resolver.Probes()),
		"remote", c.fetcher != nil,
	)
	return c, nil
}

func (c *Container) configureMetrics() error {
	if c.metrics != nil {
		return nil
	}
	if !c.Config.Metrics.Enabled {
		c.metrics = metrics.NoOp{}
		return nil
	}
	c.recorder = metrics.NewRecorder()
	c.metrics = c.recorder
	return nil
}

func (c *Container) configureSource() error {
	if c.source != nil {
		return nil
	}
	cfg := c.Config.Content
	switch normalized(cfg.Source) {
	case "filesystem", "fs":
		opts := []content.FileOption{content.WithFileLogger(logging.ContentLogger(c.loggerProvider))}
		if cfg.DocumentDir != "" {
			opts = append(opts, content.WithDocumentDir(cfg.DocumentDir))
		}
		if len(cfg.Extensions) > 0 {
			opts = append(opts, content.WithExtensions(cfg.Extensions...))
		}
		source, err := content.NewFileSource(cfg.Root, opts...)
		if err != nil {
			return err
		}
		c.source = source
	default:
		db, err := c.Database()
		if err != nil {
			return err
		}
		if c.Config.Storage.AutoMigrate {
			applied, err := migrations.Apply(context.Background(), db)
			if err != nil {
				return err
			}
			if len(applied) > 0 {
				logging.ModuleLogger(c.loggerProvider, "codex.di").Info("container.migrations.applied", "migrations", applied)
			}
		}
		if c.Config.Cache.Repository {
			c.configureCacheDefaults()
			c.documents = content.NewBunSourceWithCache(db, c.cacheService, c.keySerializer)
		} else {
			c.documents = content.NewBunSource(db)
		}
		c.source = c.documents
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if c.cacheService != nil && c.keySerializer != nil {
		return
	}
	cfg := repocache.DefaultConfig()
	if c.Config.Cache.TTL > 0 {
		cfg.TTL = c.Config.Cache.TTL
	}
	service, err := repocache.NewCacheService(cfg)
	if err != nil {
		logging.ModuleLogger(c.loggerProvider, "codex.di").Warn("container.repository_cache.disabled", "error", err)
		return
	}
	c.cacheService = service
	c.keySerializer = repocache.NewDefaultKeySerializer()
}

func (c *Container) configureMarkdown() error {
	macros := mathtex.DefaultMacros()
	for name, expansion := range c.Config.Math.Macros {
		macros[name] = expansion
	}
	c.markdown = markdown.NewService(c.source,
		markdown.WithParseOptions(interfaces.ParseOptions{
			Extensions: c.Config.Markdown.Extensions,
			HardWraps:  c.Config.Markdown.HardWraps,
			SafeMode:   c.Config.Markdown.SafeMode,
		}),
		markdown.WithMathRenderer(mathtex.NewMarkupRenderer(macros)),
		markdown.WithMath(c.Config.Math.Enabled),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
		markdown.WithMetrics(c.metrics),
	)
	return nil
}

func (c *Container) configureRouting() error {
	if c.opener == nil {
		open, err := routing.NewOpener(c.Config.Storage.Driver, c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.opener = open
	}
	probes, err := routing.ProbesFor(c.Config.Routing.ProbeOrder)
	if err != nil {
		return err
	}
	resolver, err := routing.NewResolver(c.opener,
		routing.WithProbes(probes),
		routing.WithTimeout(c.Config.Routing.Timeout),
		routing.WithLogger(logging.RoutingLogger(c.loggerProvider)),
		routing.WithMetrics(c.metrics),
	)
	if err != nil {
		return err
	}
	c.resolver = resolver

	targets := make(map[string]routing.VanityTarget, len(c.Config.Routing.Vanity))
	for slug, target := range c.Config.Routing.Vanity {
		targets[slug] = routing.VanityTarget{Type: target.Type, Category: target.Category, Slug: target.Slug}
	}
	vanity, err := routing.NewVanity(targets)
	if err != nil {
		return err
	}
	c.vanity = vanity
	return nil
}

func (c *Container) configureRemote() error {
	cfg := c.Config.Remote
	if !cfg.Enabled {
		return nil
	}
	logger := logging.RemoteLogger(c.loggerProvider)

	cacheCfg := cache.DefaultConfig()
	cacheCfg.Name = "github"
	if c.Config.Cache.TTL > 0 {
		cacheCfg.TTL = c.Config.Cache.TTL
	}
	cacheCfg.StaleWindow = c.Config.Cache.StaleWindow
	if c.Config.Cache.Capacity > 0 {
		cacheCfg.Capacity = c.Config.Cache.Capacity
	}
	fetchCache, err := cache.New[string](cacheCfg, cache.WithLogger(logger), cache.WithMetrics(c.metrics))
	if err != nil {
		return err
	}
	c.fetchCache = fetchCache

	fetcher, err := remote.NewGitHubFetcher(remote.Config{
		BaseURL:      cfg.BaseURL,
		AllowedOwner: cfg.AllowedOwner,
		Token:        cfg.Token,
		Timeout:      cfg.Timeout,
		Attempts:     cfg.Attempts,
		Delay:        cfg.Delay,
	},
		remote.WithCache(fetchCache),
		remote.WithLogger(logger),
		remote.WithHTTPClient(c.httpClient),
	)
	if err != nil {
		return err
	}
	c.fetcher = fetcher
	return nil
}

func (c *Container) configureHTTP() error {
	opts := []codexhttp.Option{
		codexhttp.WithContentSource(c.source),
		codexhttp.WithProcessor(c.markdown),
		codexhttp.WithResolver(c.resolver),
		codexhttp.WithVanity(c.vanity),
		codexhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.fetcher != nil {
		opts = append(opts, codexhttp.WithFileFetcher(c.fetcher))
	}
	if c.recorder != nil {
		opts = append(opts, codexhttp.WithMetricsHandler(c.Config.Metrics.Path, c.recorder.Handler()))
	}
	c.api = codexhttp.NewAPI(opts...)
	return nil
}

// Database opens the writable storage database on first use.
func (c *Container) Database() (*bun.DB, error) {
	c.dbOnce.Do(func() {
		c.bunDB, c.dbErr = openDatabase(c.Config.Storage.Driver, c.Config.Storage.DSN)
	})
	if c.dbErr != nil {
		return nil, c.dbErr
	}
	return c.bunDB, nil
}

// SyncCatalogHandler builds the catalog sync command handler. Runs write to
// the storage database; documents are mirrored into the documents table
// when the relational source is configured.
func (c *Container) SyncCatalogHandler() (*catalogcmd.SyncCatalogHandler, error) {
	db, err := c.Database()
	if err != nil {
		return nil, err
	}
	syncOpts := []catalog.Option{catalog.WithDB(db)}
	if c.documents != nil {
		syncOpts = append(syncOpts, catalog.WithDocumentStore(c.documents))
	}

	var fileOpts []content.FileOption
	if dir := c.Config.Content.DocumentDir; dir != "" {
		fileOpts = append(fileOpts, content.WithDocumentDir(dir))
	}
	if exts := c.Config.Content.Extensions; len(exts) > 0 {
		fileOpts = append(fileOpts, content.WithExtensions(exts...))
	}
	fileOpts = append(fileOpts, content.WithFileLogger(logging.ContentLogger(c.loggerProvider)))

	var observer commands.CommandMetrics
	if m, ok := c.metrics.(commands.CommandMetrics); ok {
		observer = m
	}
	return catalogcmd.NewSyncCatalogHandler(
		catalogcmd.FileSources(fileOpts...),
		commands.Logger(c.loggerProvider, "catalog"),
		syncOpts,
		commands.WithTelemetry(commands.ObservedTelemetry[catalogcmd.SyncCatalogCommand](observer)),
	), nil
}

// Close releases the storage database when the container opened it.
func (c *Container) Close() error {
	if c.bunDB == nil {
		return nil
	}
	return c.bunDB.Close()
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) Metrics() interfaces.PipelineMetrics {
	return c.metrics
}

func (c *Container) ContentSource() interfaces.ContentSource {
	return c.source
}

// DocumentStore is nil unless the relational source is configured.
func (c *Container) DocumentStore() *content.BunSource {
	return c.documents
}

func (c *Container) MarkdownService() *markdown.Service {
	return c.markdown
}

func (c *Container) Resolver() *routing.Resolver {
	return c.resolver
}

func (c *Container) Vanity() *routing.Vanity {
	return c.vanity
}

// GitHubFetcher is nil when remote files are disabled.
func (c *Container) GitHubFetcher() *remote.GitHubFetcher {
	return c.fetcher
}

func (c *Container) API() *codexhttp.API {
	return c.api
}

func normalized(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
