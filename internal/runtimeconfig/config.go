package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-codex/internal/content"
)

var (
	ErrContentRootRequired      = errors.New("codex config: content root is required for the filesystem source")
	ErrContentSourceUnknown     = errors.New("codex config: content source is invalid")
	ErrStorageDriverUnknown     = errors.New("codex config: storage driver is invalid")
	ErrStorageDSNRequired       = errors.New("codex config: storage dsn is required")
	ErrProbeOrderEmpty          = errors.New("codex config: routing probe order is empty")
	ErrProbeTypeUnknown         = errors.New("codex config: routing probe order names an unknown content type")
	ErrProbeTypeDuplicate       = errors.New("codex config: routing probe order lists a type twice")
	ErrVanityTargetInvalid      = errors.New("codex config: vanity target is invalid")
	ErrCacheTTLInvalid          = errors.New("codex config: cache ttl must be positive")
	ErrRemoteOwnerRequired      = errors.New("codex config: remote allowed owner is required when remote is enabled")
	ErrMarkdownExtensionUnknown = errors.New("codex config: markdown extension is unknown")
	ErrHTTPAddressRequired      = errors.New("codex config: http address is required")
	ErrLoggingProviderRequired  = errors.New("codex config: logging provider is required")
	ErrLoggingProviderUnknown   = errors.New("codex config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("codex config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("codex config: logging format is invalid")
)

// Config aggregates every runtime setting of the codex server and CLI.
type Config struct {
	Content  ContentConfig  `mapstructure:"content"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Math     MathConfig     `mapstructure:"math"`
	Markdown MarkdownConfig `mapstructure:"markdown"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ContentConfig selects where raw documents are read from.
type ContentConfig struct {
	// Source is "filesystem" or "database".
	Source      string   `mapstructure:"source"`
	Root        string   `mapstructure:"root"`
	DocumentDir string   `mapstructure:"document_dir"`
	Extensions  []string `mapstructure:"extensions"`
}

// StorageConfig points at the relational store holding the per-type
// catalog tables and the documents table.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// AutoMigrate applies the documents table migrations when the database
	// content source opens the store.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// RoutingConfig drives slug resolution.
type RoutingConfig struct {
	ProbeOrder   []string                `mapstructure:"probe_order"`
	Vanity       map[string]VanityConfig `mapstructure:"vanity"`
	StrictUnique bool                    `mapstructure:"strict_unique"`
	Timeout      time.Duration           `mapstructure:"timeout"`
}

// VanityConfig names the document served for a vanity slug.
type VanityConfig struct {
	Type     string `mapstructure:"type"`
	Category string `mapstructure:"category"`
	Slug     string `mapstructure:"slug"`
}

type MathConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Macros  map[string]string `mapstructure:"macros"`
}

type MarkdownConfig struct {
	Extensions []string `mapstructure:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// CacheConfig sizes the process-wide fetch cache and toggles the
// repository cache in front of the documents table.
type CacheConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	StaleWindow time.Duration `mapstructure:"stale_window"`
	Capacity    int           `mapstructure:"capacity"`
	Repository  bool          `mapstructure:"repository"`
}

type RemoteConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	AllowedOwner string        `mapstructure:"allowed_owner"`
	Token        string        `mapstructure:"token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Attempts     uint          `mapstructure:"attempts"`
	Delay        time.Duration `mapstructure:"delay"`
}

type HTTPConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig mirrors the layout of the original site: a content tree
// under ./content and a sqlite catalog under ./public/data.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Source:      "filesystem",
			Root:        "content",
			DocumentDir: "content",
			Extensions:  []string{".mdx", ".md"},
		},
		Storage: StorageConfig{
			Driver:      "sqlite",
			DSN:         "public/data/content.db",
			AutoMigrate: true,
		},
		Routing: RoutingConfig{
			ProbeOrder: []string{"blog", "essays", "fiction", "news", "notes", "ocs", "papers", "progymnasmata", "reviews", "verse"},
			Vanity: map[string]VanityConfig{
				"me":     {Type: "notes", Category: "on-myself", Slug: "about-kris"},
				"logo":   {Type: "notes", Category: "on-myself", Slug: "about-my-logo"},
				"about":  {Type: "notes", Category: "website", Slug: "about-this-website"},
				"design": {Type: "notes", Category: "website", Slug: "design-of-this-website"},
				"donate": {Type: "notes", Category: "website", Slug: "donate"},
				"faq":    {Type: "notes", Category: "website", Slug: "faq"},
			},
			Timeout: 5 * time.Second,
		},
		Math: MathConfig{
			Enabled: true,
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm", "footnote"},
		},
		Cache: CacheConfig{
			TTL:         5 * time.Minute,
			StaleWindow: 24 * time.Hour,
			Capacity:    1024,
		},
		Remote: RemoteConfig{
			BaseURL:  "https://api.github.com",
			Timeout:  10 * time.Second,
			Attempts: 3,
			Delay:    200 * time.Millisecond,
		},
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Content.Source) {
	case "filesystem", "fs":
		if strings.TrimSpace(cfg.Content.Root) == "" {
			return ErrContentRootRequired
		}
	case "database", "db":
	default:
		return fmt.Errorf("%w: %s", ErrContentSourceUnknown, cfg.Content.Source)
	}

	switch normalize(cfg.Storage.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pg":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}

	if len(cfg.Routing.ProbeOrder) == 0 {
		return ErrProbeOrderEmpty
	}
	seen := map[string]bool{}
	for _, name := range cfg.Routing.ProbeOrder {
		t, ok := content.ParseType(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrProbeTypeUnknown, name)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: %s", ErrProbeTypeDuplicate, t.Name)
		}
		seen[t.Name] = true
	}
	for slug, target := range cfg.Routing.Vanity {
		if _, ok := content.ParseType(target.Type); !ok || strings.TrimSpace(target.Slug) == "" {
			return fmt.Errorf("%w: %s", ErrVanityTargetInvalid, slug)
		}
	}

	if cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Remote.Enabled && strings.TrimSpace(cfg.Remote.AllowedOwner) == "" {
		return ErrRemoteOwnerRequired
	}
	for _, ext := range cfg.Markdown.Extensions {
		if !isKnownExtension(ext) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, ext)
		}
	}
	if strings.TrimSpace(cfg.HTTP.Address) == "" {
		return ErrHTTPAddressRequired
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isKnownExtension(name string) bool {
	switch normalize(name) {
	case "gfm", "table", "tables", "strikethrough", "linkify", "autolink", "tasklist", "definition", "footnote", "typographer":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
