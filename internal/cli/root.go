package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/apex/log"
	"github.com/rohmanhakim/last-updated/internal/build"
	"github.com/rohmanhakim/last-updated/internal/cache"
	"github.com/rohmanhakim/last-updated/internal/commits"
	"github.com/rohmanhakim/last-updated/internal/config"
	"github.com/rohmanhakim/last-updated/internal/datefmt"
	"github.com/rohmanhakim/last-updated/internal/metadata"
	"github.com/rohmanhakim/last-updated/internal/runner"
	"github.com/rohmanhakim/last-updated/internal/stamper"
	"github.com/rohmanhakim/last-updated/internal/storage"
	"github.com/spf13/cobra"
)

// EnvToken names the environment variable holding the API token.
// The token is never accepted as a flag or from the config file.
const EnvToken = "LAST_UPDATED_GITHUB_TOKEN"

var (
	cfgFile       string
	file          string
	elementID     string
	owner         string
	repo          string
	filePath      string
	fallbackToNow bool
	apiBaseURL    string
	userAgent     string
	timeout       time.Duration
	cacheBackend  string
	redisAddr     string
	concurrency   int
	dryRun        bool
	timezone      string
	locale        string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "last-updated",
	Short: "Stamp HTML pages with the date of their latest commit.",
	Long: `last-updated looks up the newest commit touching a file in a GitHub
repository and writes "Last updated: <date>" into an element of an HTML page.

Pages are given either one at a time with --file/--owner/--repo/--path or as
a list of targets in a JSON config file. Lookups are cached for the whole run
(or across runs, with the redis cache backend).`,
	Version: build.Description(),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := InitConfigWithError()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			cmd.Usage()
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		summary, err := Stamp(ctx, cfg, cmd.OutOrStdout())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		if summary.HasFailures() {
			os.Exit(1)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., ./last-updated.json)")
	rootCmd.PersistentFlags().StringVar(&file, "file", "", "HTML file to stamp")
	rootCmd.PersistentFlags().StringVar(&elementID, "element-id", config.DefaultElementID, "id of the element receiving the text")
	rootCmd.PersistentFlags().StringVar(&owner, "owner", "", "repository owner")
	rootCmd.PersistentFlags().StringVar(&repo, "repo", "", "repository name")
	rootCmd.PersistentFlags().StringVar(&filePath, "path", "", "path of the source file inside the repository")
	rootCmd.PersistentFlags().BoolVar(&fallbackToNow, "fallback-to-now", true, "show today's date when the commit date cannot be found")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-base-url", "", "root of the GitHub API (default "+commits.DefaultBaseURL+")")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for API requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for API requests (0 for none)")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache-backend", "", "commit date cache: memory or redis")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "redis address for the redis cache backend")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of pages stamped at the same time")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "stamp without writing files")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "IANA time zone used for dates (default UTC)")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "date format: en-US or en-GB")
}

// InitConfigWithError builds the config from the config file when one is
// given, otherwise from the single-page flags. Setting flags override both.
// The token is taken from the environment in both cases.
func InitConfigWithError() (config.Config, error) {
	var configBuilder *config.Config

	if cfgFile != "" {
		if file != "" || owner != "" || repo != "" || filePath != "" {
			return config.Config{}, fmt.Errorf("%w: --file, --owner, --repo and --path cannot be combined with --config-file", config.ErrInvalidConfig)
		}
		log.WithField("path", cfgFile).Info("initializing config from file")
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		configBuilder = &cfg
	} else {
		if file == "" {
			return config.Config{}, fmt.Errorf("%w: --file or --config-file is required", config.ErrInvalidConfig)
		}
		target := config.Target{
			File:          file,
			ElementID:     elementID,
			Owner:         owner,
			Repo:          repo,
			FilePath:      filePath,
			FallbackToNow: fallbackToNow,
		}
		configBuilder = config.WithDefault([]config.Target{target})
	}

	configBuilder, err := applyFlagOverrides(configBuilder)
	if err != nil {
		return config.Config{}, err
	}
	return configBuilder.Build()
}

// applyFlagOverrides sets every run-wide value whose flag was given.
func applyFlagOverrides(configBuilder *config.Config) (*config.Config, error) {
	if token := os.Getenv(EnvToken); token != "" {
		configBuilder = configBuilder.WithToken(token)
	}

	if apiBaseURL != "" {
		configBuilder = configBuilder.WithAPIBaseURL(apiBaseURL)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if cacheBackend != "" {
		configBuilder = configBuilder.WithCacheBackend(cacheBackend)
	}

	if redisAddr != "" {
		configBuilder = configBuilder.WithRedis(redisAddr, configBuilder.RedisPassword(), configBuilder.RedisDB())
	}

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}

	if timezone != "" {
		configBuilder = configBuilder.WithTimezone(timezone)
	}

	if locale != "" {
		parsed, err := datefmt.ParseLocale(locale)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
		}
		configBuilder = configBuilder.WithLocale(parsed)
	}

	return configBuilder, nil
}

// Stamp wires the components described by cfg, stamps every target and
// prints one line per target to out.
func Stamp(ctx context.Context, cfg config.Config, out io.Writer) (runner.Summary, error) {
	recorder := metadata.NewRecorder(log.Log)

	commitCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return runner.Summary{}, err
	}
	defer closeCache()

	fetcher := commits.NewCommitFetcher(recorder, commitCache, cfg.ClientParam())
	s := stamper.New(
		fetcher,
		stamper.WithLocale(cfg.Locale()),
		stamper.WithLocation(cfg.Location()),
	)
	storageSink := storage.NewLocalSink(recorder, cfg.HashAlgo(), cfg.DryRun())
	r := runner.NewRunner(recorder, recorder, s, &storageSink, cfg.Concurrency())

	summary, runErr := r.Run(ctx, cfg.Targets())
	printSummary(out, summary)
	return summary, runErr
}

func newCache(ctx context.Context, cfg config.Config) (cache.Cache, func(), error) {
	if cfg.CacheBackend() != config.CacheBackendRedis {
		return cache.NewMemoryCache(), func() {}, nil
	}

	client := cache.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword(), cfg.RedisDB())
	redisCache := cache.NewRedisCache(client, cfg.CacheTTL(), log.Log)
	if err := redisCache.Ping(ctx); err != nil {
		redisCache.Close()
		return nil, nil, fmt.Errorf("redis cache at %s is unreachable: %w", cfg.RedisAddr(), err)
	}
	return redisCache, func() { redisCache.Close() }, nil
}

func printSummary(out io.Writer, summary runner.Summary) {
	for _, o := range summary.Outcomes {
		switch {
		case o.Err != nil:
			fmt.Fprintf(out, "%-9s %s: %s\n", o.Status, o.Target.File, o.Err)
		case o.Display != "":
			suffix := ""
			if o.Write.DryRun() {
				suffix = " (dry run)"
			}
			fmt.Fprintf(out, "%-9s %s: %s%s\n", o.Status, o.Target.File, o.Display, suffix)
		default:
			fmt.Fprintf(out, "%-9s %s\n", o.Status, o.Target.File)
		}
	}
}

func ResetFlags() {
	cfgFile = ""
	file = ""
	elementID = config.DefaultElementID
	owner = ""
	repo = ""
	filePath = ""
	fallbackToNow = true
	apiBaseURL = ""
	userAgent = ""
	timeout = 0
	cacheBackend = ""
	redisAddr = ""
	concurrency = 0
	dryRun = false
	timezone = ""
	locale = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetTargetForTest(f, id, o, r, p string) {
	file = f
	elementID = id
	owner = o
	repo = r
	filePath = p
}

func SetFallbackToNowForTest(fallback bool) {
	fallbackToNow = fallback
}

func SetAPIBaseURLForTest(baseURL string) {
	apiBaseURL = baseURL
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetCacheBackendForTest(backend, addr string) {
	cacheBackend = backend
	redisAddr = addr
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetTimezoneForTest(tz string) {
	timezone = tz
}

func SetLocaleForTest(tag string) {
	locale = tag
}
