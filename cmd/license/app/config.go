package app

import "time"

type SourceType string

const (
	SourceSPDX   SourceType = "spdx"
	SourceGithub SourceType = "github"
)

type CacheType string

const (
	CacheTypeRedis CacheType = "redis"
)

// Config is a top-level app config
type Config struct {
	// Debug is a flag to enable debug logging
	Debug bool

	// DataDir is a directory for downloaded license texts.
	// Per-user data directory of the OS is used if not set.
	DataDir string `toml:",omitempty"`

	Upstream Upstream

	Github Github

	// Overrides contains set of rules to override license names and text locations
	Overrides []Override

	// Cache is optional cache of fetched texts placed before upstream.
	// Cache will not be used if not present.
	Cache *Cache
}

// Upstream describes where license texts are downloaded from
type Upstream struct {
	// Source is an upstream type
	// Available types:
	// * spdx - text files of spdx/license-list-data repository (default)
	// * github - GitHub licenses API
	Source SourceType

	// Ref is a git ref of spdx/license-list-data: "master", "main" or a release tag (i.e. "v3.22")
	Ref string `toml:",omitempty"`

	// URLTemplate overrides a text location template. {ref} and {id} placeholders are replaced.
	URLTemplate string `toml:",omitempty"`

	// Timeout limits whole download time. Default is 5s, negative value disables timeout.
	Timeout time.Duration

	// UserAgent is an optional User-Agent header value
	UserAgent string `toml:",omitempty"`

	// LogRequests enables logging of all upstream requests
	LogRequests bool
}

// Github contains github client configuration
type Github struct {
	// BaseURL is an optional GitHub Enterprise API url
	BaseURL MaskedURL `toml:",omitempty"`

	// AccessToken is optional github access token
	// It's needed to increase rate-limit
	AccessToken MaskedString `toml:",omitempty"`
}

// Override is a single override for license metadata
type Override struct {
	// Match is a regular expression to match license identifier
	Match string

	// Name is a replacement for a human-readable name.
	// Regexp capturing group placeholders (i.e $1, $2) may be used here.
	Name string `toml:",omitempty"`

	// URL is a replacement for a license text location.
	// Regexp capturing group placeholders (i.e $1, $2) may be used here.
	URL string `toml:",omitempty"`
}

// Cache represents cache configuration.
// Downloaded texts are shared between processes and hosts through it.
type Cache struct {
	// Type is a cache type
	// Available types:
	// * redis
	Type CacheType

	Redis *Redis `toml:",omitempty"`
}

// Redis represents redis configuration
type Redis struct {
	// Addrs is a slice of connection addresses
	// If more than one provided cluster client will be used
	Addrs []string

	// TTL is optional ttl for keys. Keys will not expire when TTL is not set.
	TTL time.Duration

	// PoolSize is a connection pool size. Default value is 10
	PoolSize int

	// DB allows to select db number
	DB int

	// Password is an optional password
	Password MaskedString `toml:",omitempty"`

	// ConnectTimeout is an optional connect timeout
	ConnectTimeout time.Duration

	// ReadTimeout is an optional timeout to receive data
	ReadTimeout time.Duration

	// WriteTimeout is an optional timeout to send data
	WriteTimeout time.Duration
}
