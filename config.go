package codex

import "github.com/goliatone/go-codex/internal/runtimeconfig"

var (
	ErrContentRootRequired      = runtimeconfig.ErrContentRootRequired
	ErrContentSourceUnknown     = runtimeconfig.ErrContentSourceUnknown
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrProbeOrderEmpty          = runtimeconfig.ErrProbeOrderEmpty
	ErrProbeTypeUnknown         = runtimeconfig.ErrProbeTypeUnknown
	ErrProbeTypeDuplicate       = runtimeconfig.ErrProbeTypeDuplicate
	ErrVanityTargetInvalid      = runtimeconfig.ErrVanityTargetInvalid
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrRemoteOwnerRequired      = runtimeconfig.ErrRemoteOwnerRequired
	ErrMarkdownExtensionUnknown = runtimeconfig.ErrMarkdownExtensionUnknown
	ErrHTTPAddressRequired      = runtimeconfig.ErrHTTPAddressRequired
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ContentConfig  = runtimeconfig.ContentConfig
	StorageConfig  = runtimeconfig.StorageConfig
	RoutingConfig  = runtimeconfig.RoutingConfig
	VanityConfig   = runtimeconfig.VanityConfig
	MathConfig     = runtimeconfig.MathConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	CacheConfig    = runtimeconfig.CacheConfig
	RemoteConfig   = runtimeconfig.RemoteConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	MetricsConfig  = runtimeconfig.MetricsConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads path (or ./codex.* when empty) and CODEX_* overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
