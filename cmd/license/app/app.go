package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	gh "github.com/google/go-github/v18/github"
	"github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/xakep666/license/pkg/cache"
	"github.com/xakep666/license/pkg/fetch"
	"github.com/xakep666/license/pkg/github"
	"github.com/xakep666/license/pkg/license"
	"github.com/xakep666/license/pkg/observ"
	"github.com/xakep666/license/pkg/override"
	"github.com/xakep666/license/pkg/spdx"
	"github.com/xakep666/license/pkg/store"
)

// DestinationFile is a name of file created by Apply
const DestinationFile = "LICENSE.txt"

// DestinationExistsError returned by Apply when destination file already exists.
// Existing file is left untouched.
type DestinationExistsError string

func (e DestinationExistsError) Error() string {
	return fmt.Sprintf("%s already exists", string(e))
}

func (e DestinationExistsError) Unwrap() error { return fs.ErrExist }

type App struct {
	logger   *zap.Logger
	resolver *license.Resolver
	store    *store.Store
	closers  []func() error
}

func NewApp(cfg Config) (*App, error) {
	var logger *zap.Logger
	if cfg.Debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logCfg := zap.NewProductionConfig()
		logCfg.Encoding = "console"
		logCfg.EncoderConfig.TimeKey = ""
		logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, _ = logCfg.Build()
	}

	a, err := NewAppWithLogger(logger, cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return a, nil
}

// NewAppWithLogger builds an App writing logs to provided logger
func NewAppWithLogger(logger *zap.Logger, cfg Config) (*App, error) {
	logger.Debug("Running with config", zap.Reflect("config", cfg))

	dataDir, err := DataDir(&cfg)
	if err != nil {
		return nil, err
	}

	ref, err := upstreamRef(&cfg)
	if err != nil {
		return nil, fmt.Errorf("upstream ref check failed: %w", err)
	}

	overriders, err := overriders(logger, &cfg)
	if err != nil {
		return nil, fmt.Errorf("overrides init failed: %w", err)
	}

	a := &App{
		logger: logger,
		closers: []func() error{
			func() error {
				// syncing stderr fails on some platforms
				_ = logger.Sync()
				return nil
			},
		},
	}

	source, urlTemplate, err := setupSource(logger, &cfg)
	if err != nil {
		return nil, fmt.Errorf("setup source failed: %w", err)
	}

	c, err := a.setupCache(&cfg, cache.Direct{Source: source})
	if err != nil {
		return nil, fmt.Errorf("setup cache failed: %w", err)
	}

	a.resolver = license.NewResolver(license.ResolverParams{
		DataDir:     dataDir,
		URLTemplate: urlTemplate,
		Ref:         ref,
		Overriders:  overriders,
	})

	a.store = store.NewStore(logger, store.StoreParams{
		Dir:        dataDir,
		Downloader: fetch.NewFileDownloader(logger, c),
	})

	return a, nil
}

// Apply puts license text to DestinationFile inside dir.
// It fails with DestinationExistsError if file is already there.
func (a *App) Apply(ctx context.Context, id, dir string) (err error) {
	dst := filepath.Join(dir, DestinationFile)

	// fail early to not download text which can't be written anyway
	if _, err := os.Lstat(dst); err == nil {
		return DestinationExistsError(dst)
	}

	lic, err := a.resolver.Resolve(id)
	if err != nil {
		return err
	}

	src, err := a.ensureOpen(ctx, lic)
	if err != nil {
		return err
	}

	defer src.Close()

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case errors.Is(err, fs.ErrExist):
		return DestinationExistsError(dst)
	case err != nil:
		return fmt.Errorf("create %s failed: %w", dst, err)
	}

	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s failed: %w", dst, closeErr)
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err := io.Copy(f, src); err != nil {
		return fmt.Errorf("write %s failed: %w", dst, err)
	}

	a.logger.Info("License applied", zap.Stringer("license", &lic), zap.String("path", dst))

	return nil
}

// Read writes license text to w
func (a *App) Read(ctx context.Context, id string, w io.Writer) error {
	lic, err := a.resolver.Resolve(id)
	if err != nil {
		return err
	}

	src, err := a.ensureOpen(ctx, lic)
	if err != nil {
		return err
	}

	defer src.Close()

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("read %s failed: %w", lic.Path, err)
	}

	return nil
}

// List writes identifiers of already downloaded licenses to w, one per line
func (a *App) List(w io.Writer) error {
	ids, err := a.store.List()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (a *App) ensureOpen(ctx context.Context, lic license.License) (io.ReadCloser, error) {
	if err := a.store.Ensure(ctx, lic); err != nil {
		return nil, err
	}

	return a.store.Open(lic)
}

func upstreamRef(cfg *Config) (string, error) {
	switch ref := cfg.Upstream.Ref; ref {
	case "", "master", "main":
		return ref, nil
	default:
		if _, err := semver.NewVersion(ref); err != nil {
			return "", fmt.Errorf("ref %s is neither a main branch nor a release tag: %w", ref, err)
		}
		return ref, nil
	}
}

func overriders(log *zap.Logger, cfg *Config) ([]license.Overrider, error) {
	var rules []override.Rule

	for _, item := range cfg.Overrides {
		m, err := regexp.Compile(item.Match)
		if err != nil {
			return nil, fmt.Errorf("invalid match %s: %w", item.Match, err)
		}

		rules = append(rules, override.Rule{
			Match: m,
			Name:  item.Name,
			URL:   item.URL,
		})
	}

	return []license.Overrider{
		override.NewOverrider(log, rules),
		spdx.Table{},
	}, nil
}

// setupSource builds upstream source and returns url template matching it
func setupSource(log *zap.Logger, cfg *Config) (fetch.Source, string, error) {
	httpSource := fetch.NewHTTPSource(log, fetch.HTTPSourceParams{
		Client:    &http.Client{Transport: logTransport(log, cfg, "spdx", nil)},
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
	})

	switch cfg.Upstream.Source {
	case "", SourceSPDX:
		return httpSource, cfg.Upstream.URLTemplate, nil
	case SourceGithub:
		client, err := githubClient(log, cfg, httpSource)
		if err != nil {
			return nil, "", err
		}

		urlTemplate := cfg.Upstream.URLTemplate
		if urlTemplate == "" {
			urlTemplate = github.URLTemplate(client)
		}

		return &fetch.ChainedSource{
			Sources: []fetch.Source{
				github.NewSource(log, github.SourceParams{Client: client}),
				httpSource,
			},
		}, urlTemplate, nil
	default:
		return nil, "", fmt.Errorf("invalid upstream source: %s", cfg.Upstream.Source)
	}
}

func githubClient(log *zap.Logger, cfg *Config, httpSource *fetch.HTTPSource) (*gh.Client, error) {
	httpClient := &http.Client{}

	if cfg.Github.AccessToken != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: string(cfg.Github.AccessToken),
		}))
	}

	httpClient.Transport = logTransport(log, cfg, "github", httpClient.Transport)
	httpClient.Timeout = httpSource.Timeout()

	if cfg.Github.BaseURL == "" {
		return gh.NewClient(httpClient), nil
	}

	client, err := gh.NewEnterpriseClient(string(cfg.Github.BaseURL), string(cfg.Github.BaseURL), httpClient)
	if err != nil {
		return nil, fmt.Errorf("github enterprise client setup failed: %w", err)
	}

	return client, nil
}

func logTransport(log *zap.Logger, cfg *Config, serviceName string, rt http.RoundTripper) http.RoundTripper {
	if !cfg.Upstream.LogRequests {
		return rt
	}

	return &observ.LogTransport{
		RoundTripper: rt,
		ServiceName:  serviceName,
		Log:          log,
	}
}

func setupRedis(cfg *Config) (radix.Client, error) {
	if cfg.Cache.Redis == nil || len(cfg.Cache.Redis.Addrs) == 0 {
		return nil, fmt.Errorf("redis addres(es) required for using redis as cache")
	}

	addrs := cfg.Cache.Redis.Addrs

	var dialOpts []radix.DialOpt
	if cfg.Cache.Redis.DB > 0 {
		dialOpts = append(dialOpts, radix.DialSelectDB(cfg.Cache.Redis.DB))
	}
	if cfg.Cache.Redis.Password != "" {
		dialOpts = append(dialOpts, radix.DialAuthPass(string(cfg.Cache.Redis.Password)))
	}
	if cfg.Cache.Redis.ConnectTimeout > 0 {
		dialOpts = append(dialOpts, radix.DialConnectTimeout(cfg.Cache.Redis.ConnectTimeout))
	}
	if cfg.Cache.Redis.ReadTimeout > 0 {
		dialOpts = append(dialOpts, radix.DialReadTimeout(cfg.Cache.Redis.ReadTimeout))
	}
	if cfg.Cache.Redis.WriteTimeout > 0 {
		dialOpts = append(dialOpts, radix.DialWriteTimeout(cfg.Cache.Redis.WriteTimeout))
	}

	customConnFunc := func(network, addr string) (radix.Conn, error) {
		return radix.Dial(network, addr, dialOpts...)
	}

	poolSize := 10
	if cfg.Cache.Redis.PoolSize > 0 {
		poolSize = cfg.Cache.Redis.PoolSize
	}

	if len(addrs) == 1 {
		return radix.NewPool("tcp", addrs[0], poolSize, radix.PoolConnFunc(customConnFunc))
	}

	return radix.NewCluster(addrs, radix.ClusterPoolFunc(func(network, addr string) (radix.Client, error) {
		return radix.NewPool(network, addr, poolSize, radix.PoolConnFunc(customConnFunc))
	}))
}

func (a *App) setupCache(cfg *Config, cacher cache.Cacher) (cache.Cacher, error) {
	if cfg.Cache == nil {
		return cacher, nil
	}

	switch cfg.Cache.Type {
	case CacheTypeRedis:
		redisClient, err := setupRedis(cfg)
		if err != nil {
			return nil, fmt.Errorf("redis client setup failed: %w", err)
		}

		a.closers = append(a.closers, redisClient.Close)

		return &cache.RedisCache{
			Backed: cacher,
			Client: redisClient,
			TTL:    cfg.Cache.Redis.TTL,
		}, nil
	default:
		return nil, fmt.Errorf("invalid cache type: %s", cfg.Cache.Type)
	}
}
