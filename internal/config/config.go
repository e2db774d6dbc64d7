package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/rohmanhakim/last-updated/internal/commits"
	"github.com/rohmanhakim/last-updated/internal/datefmt"
	"github.com/rohmanhakim/last-updated/pkg/hashutil"
	"github.com/rohmanhakim/last-updated/pkg/urlutil"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	DefaultElementID = "last-updated"
)

// Target is one page to stamp.
type Target struct {
	// HTML file on disk
	File string
	// id of the element receiving the text
	ElementID string
	// repository coordinates of the source file behind the page
	Owner    string
	Repo     string
	FilePath string
	// display today's date instead of "unknown" when the lookup fails
	FallbackToNow bool
}

type Config struct {
	//===============
	// Pages
	//===============
	targets []Target

	//===============
	// API
	//===============
	// Root of the commit-history API
	apiBaseURL string
	// User agent sent with every request
	userAgent string
	// Per-request deadline; zero leaves requests bounded only by the run's context
	timeout time.Duration
	// Credential for the API. Never read from a file, only set explicitly
	token string

	//===============
	// Cache
	//===============
	// memory or redis
	cacheBackend  string
	redisAddr     string
	redisDB       int
	redisPassword string
	// Expiry of redis entries; zero keeps them forever
	cacheTTL time.Duration

	//===============
	// Run
	//===============
	// Maximum number of pages stamped at the same time
	concurrency int
	// Algorithm used to detect unchanged pages
	hashAlgo hashutil.HashAlgo
	// Resolve and render without writing files
	dryRun bool

	//===============
	// Rendering
	//===============
	// IANA zone in which calendar days are counted
	timezone string
	location *time.Location
	locale   datefmt.Locale
}

type targetDTO struct {
	File          string `json:"file"`
	ElementID     string `json:"elementId,omitempty"`
	Owner         string `json:"owner"`
	Repo          string `json:"repo"`
	FilePath      string `json:"filePath"`
	FallbackToNow *bool  `json:"fallbackToNow,omitempty"`
}

type configDTO struct {
	Targets       []targetDTO `json:"targets"`
	Owner         string      `json:"owner,omitempty"`
	Repo          string      `json:"repo,omitempty"`
	APIBaseURL    string      `json:"apiBaseUrl,omitempty"`
	UserAgent     string      `json:"userAgent,omitempty"`
	Timeout       string      `json:"timeout,omitempty"`
	CacheBackend  string      `json:"cacheBackend,omitempty"`
	RedisAddr     string      `json:"redisAddr,omitempty"`
	RedisDB       int         `json:"redisDb,omitempty"`
	RedisPassword string      `json:"redisPassword,omitempty"`
	CacheTTL      string      `json:"cacheTtl,omitempty"`
	Concurrency   int         `json:"concurrency,omitempty"`
	HashAlgo      string      `json:"hashAlgo,omitempty"`
	DryRun        bool        `json:"dryRun,omitempty"`
	Timezone      string      `json:"timezone,omitempty"`
	Locale        string      `json:"locale,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	targets := make([]Target, 0, len(dto.Targets))
	for _, t := range dto.Targets {
		target := Target{
			File:          t.File,
			ElementID:     t.ElementID,
			Owner:         t.Owner,
			Repo:          t.Repo,
			FilePath:      t.FilePath,
			FallbackToNow: true,
		}
		// owner and repo may be given once for the whole site
		if target.Owner == "" {
			target.Owner = dto.Owner
		}
		if target.Repo == "" {
			target.Repo = dto.Repo
		}
		if t.FallbackToNow != nil {
			target.FallbackToNow = *t.FallbackToNow
		}
		targets = append(targets, target)
	}

	builder := WithDefault(targets)

	if dto.APIBaseURL != "" {
		builder = builder.WithAPIBaseURL(dto.APIBaseURL)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}
	if dto.Timeout != "" {
		timeout, err := time.ParseDuration(dto.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: timeout: %s", ErrConfigParsingFail, err.Error())
		}
		builder = builder.WithTimeout(timeout)
	}
	if dto.CacheBackend != "" {
		builder = builder.WithCacheBackend(dto.CacheBackend)
	}
	if dto.RedisAddr != "" {
		builder = builder.WithRedis(dto.RedisAddr, dto.RedisPassword, dto.RedisDB)
	}
	if dto.CacheTTL != "" {
		ttl, err := time.ParseDuration(dto.CacheTTL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: cacheTtl: %s", ErrConfigParsingFail, err.Error())
		}
		builder = builder.WithCacheTTL(ttl)
	}
	if dto.Concurrency != 0 {
		builder = builder.WithConcurrency(dto.Concurrency)
	}
	if dto.HashAlgo != "" {
		builder = builder.WithHashAlgo(hashutil.HashAlgo(dto.HashAlgo))
	}
	// DryRun is a boolean; the DTO value is used as-is since false is the default
	builder = builder.WithDryRun(dto.DryRun)
	if dto.Timezone != "" {
		builder = builder.WithTimezone(dto.Timezone)
	}
	if dto.Locale != "" {
		locale, err := datefmt.ParseLocale(dto.Locale)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
		builder = builder.WithLocale(locale)
	}

	return builder.Build()
}

// WithConfigFile loads and validates a JSON config file.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with the provided targets and default values for all other fields.
// Targets are mandatory; Build reports an error when there are none.
func WithDefault(targets []Target) *Config {
	defaultConfig := Config{
		targets:      targets,
		apiBaseURL:   commits.DefaultBaseURL,
		userAgent:    commits.DefaultUserAgent,
		timeout:      0,
		cacheBackend: CacheBackendMemory,
		cacheTTL:     0,
		concurrency:  4,
		hashAlgo:     hashutil.HashAlgoBLAKE3,
		dryRun:       false,
		timezone:     "UTC",
		locale:       datefmt.EnUS,
	}
	return &defaultConfig
}

func (c *Config) WithTargets(targets []Target) *Config {
	c.targets = targets
	return c
}

func (c *Config) WithAPIBaseURL(baseURL string) *Config {
	c.apiBaseURL = baseURL
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithToken(token string) *Config {
	c.token = token
	return c
}

func (c *Config) WithCacheBackend(backend string) *Config {
	c.cacheBackend = backend
	return c
}

func (c *Config) WithRedis(addr, password string, db int) *Config {
	c.redisAddr = addr
	c.redisPassword = password
	c.redisDB = db
	return c
}

func (c *Config) WithCacheTTL(ttl time.Duration) *Config {
	c.cacheTTL = ttl
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithHashAlgo(algo hashutil.HashAlgo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) WithTimezone(timezone string) *Config {
	c.timezone = timezone
	return c
}

func (c *Config) WithLocale(locale datefmt.Locale) *Config {
	c.locale = locale
	return c
}

func (c *Config) Build() (Config, error) {
	if len(c.targets) == 0 {
		return Config{}, fmt.Errorf("%w: at least one target is required", ErrInvalidConfig)
	}

	for i := range c.targets {
		t := &c.targets[i]
		if t.ElementID == "" {
			t.ElementID = DefaultElementID
		}
		switch {
		case t.File == "":
			return Config{}, fmt.Errorf("%w: target %d: file is required", ErrInvalidConfig, i)
		case t.Owner == "":
			return Config{}, fmt.Errorf("%w: target %d (%s): owner is required", ErrInvalidConfig, i, t.File)
		case t.Repo == "":
			return Config{}, fmt.Errorf("%w: target %d (%s): repo is required", ErrInvalidConfig, i, t.File)
		case t.FilePath == "":
			return Config{}, fmt.Errorf("%w: target %d (%s): filePath is required", ErrInvalidConfig, i, t.File)
		}
	}

	switch c.cacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.redisAddr == "" {
			return Config{}, fmt.Errorf("%w: redis cache backend needs a redis address", ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.cacheBackend)
	}

	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.timeout < 0 || c.cacheTTL < 0 {
		return Config{}, fmt.Errorf("%w: durations cannot be negative", ErrInvalidConfig)
	}

	baseURL, err := urlutil.NormalizeBaseURL(c.apiBaseURL)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	c.apiBaseURL = baseURL

	algo, err := hashutil.ParseHashAlgo(string(c.hashAlgo))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	c.hashAlgo = algo

	location, err := time.LoadLocation(c.timezone)
	if err != nil {
		return Config{}, fmt.Errorf("%w: timezone %q: %s", ErrInvalidConfig, c.timezone, err.Error())
	}
	c.location = location

	return *c, nil
}

func (c Config) Targets() []Target {
	targets := make([]Target, len(c.targets))
	copy(targets, c.targets)
	return targets
}

func (c Config) APIBaseURL() string {
	return c.apiBaseURL
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) Token() string {
	return c.token
}

func (c Config) CacheBackend() string {
	return c.cacheBackend
}

func (c Config) RedisAddr() string {
	return c.redisAddr
}

func (c Config) RedisDB() int {
	return c.redisDB
}

func (c Config) RedisPassword() string {
	return c.redisPassword
}

func (c Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) HashAlgo() hashutil.HashAlgo {
	return c.hashAlgo
}

func (c Config) DryRun() bool {
	return c.dryRun
}

func (c Config) Timezone() string {
	return c.timezone
}

func (c Config) Location() *time.Location {
	return c.location
}

func (c Config) Locale() datefmt.Locale {
	return c.locale
}

// ClientParam derives the API client parameters.
func (c Config) ClientParam() commits.ClientParam {
	param := commits.NewClientParam(c.apiBaseURL, c.userAgent, c.timeout)
	if c.token != "" {
		param = param.WithToken(c.token)
	}
	return param
}
