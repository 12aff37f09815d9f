package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CODEX_STORAGE_DSN.
const EnvPrefix = "CODEX"

// Load reads the config file at path (any format viper understands) on top
// of DefaultConfig, applies CODEX_* environment overrides and validates the
// result. An empty path searches ./codex.* and ./config/codex.* and is not
// an error when nothing is found.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path == "" {
		v.SetConfigName("codex")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("codex config: read %s: %w", describe(path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("codex config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func describe(path string) string {
	if path == "" {
		return "codex config file"
	}
	return path
}

// setDefaults registers every leaf key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("content.source", cfg.Content.Source)
	v.SetDefault("content.root", cfg.Content.Root)
	v.SetDefault("content.document_dir", cfg.Content.DocumentDir)
	v.SetDefault("content.extensions", cfg.Content.Extensions)

	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)
	v.SetDefault("storage.auto_migrate", cfg.Storage.AutoMigrate)

	v.SetDefault("routing.probe_order", cfg.Routing.ProbeOrder)
	vanity := make(map[string]any, len(cfg.Routing.Vanity))
	for slug, target := range cfg.Routing.Vanity {
		vanity[slug] = map[string]any{"type": target.Type, "category": target.Category, "slug": target.Slug}
	}
	v.SetDefault("routing.vanity", vanity)
	v.SetDefault("routing.strict_unique", cfg.Routing.StrictUnique)
	v.SetDefault("routing.timeout", cfg.Routing.Timeout)

	v.SetDefault("math.enabled", cfg.Math.Enabled)
	v.SetDefault("math.macros", map[string]any{})

	v.SetDefault("markdown.extensions", cfg.Markdown.Extensions)
	v.SetDefault("markdown.hard_wraps", cfg.Markdown.HardWraps)
	v.SetDefault("markdown.safe_mode", cfg.Markdown.SafeMode)

	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.stale_window", cfg.Cache.StaleWindow)
	v.SetDefault("cache.capacity", cfg.Cache.Capacity)
	v.SetDefault("cache.repository", cfg.Cache.Repository)

	v.SetDefault("remote.enabled", cfg.Remote.Enabled)
	v.SetDefault("remote.base_url", cfg.Remote.BaseURL)
	v.SetDefault("remote.allowed_owner", cfg.Remote.AllowedOwner)
	v.SetDefault("remote.token", cfg.Remote.Token)
	v.SetDefault("remote.timeout", cfg.Remote.Timeout)
	v.SetDefault("remote.attempts", cfg.Remote.Attempts)
	v.SetDefault("remote.delay", cfg.Remote.Delay)

	v.SetDefault("http.address", cfg.HTTP.Address)
	v.SetDefault("http.read_timeout", cfg.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", cfg.HTTP.WriteTimeout)
	v.SetDefault("http.shutdown_timeout", cfg.HTTP.ShutdownTimeout)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)

	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
}
