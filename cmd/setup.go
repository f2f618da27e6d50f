package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/theopenlane/spectra/config"
	"github.com/theopenlane/spectra/internal/analyzer"
	"github.com/theopenlane/spectra/internal/brand"
	"github.com/theopenlane/spectra/internal/emailauth"
	"github.com/theopenlane/spectra/internal/history"
	"github.com/theopenlane/spectra/internal/intel"
	"github.com/theopenlane/spectra/internal/probe"
	"github.com/theopenlane/spectra/internal/rdap"
	"github.com/theopenlane/spectra/internal/reputation"
	"github.com/theopenlane/spectra/internal/scanner"
	"github.com/theopenlane/spectra/internal/slack"
	"github.com/theopenlane/spectra/internal/urlintel"
	"github.com/theopenlane/spectra/internal/virustotal"
)

// services holds every collaborator built from config
type services struct {
	intel    *intel.Manager
	engine   *urlintel.Engine
	scanner  *scanner.Scanner
	analyzer *analyzer.Analyzer
	history  history.Store
	slack    *slack.Client

	closers []func()
}

// close releases connections held by the services in reverse order of creation
func (s *services) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// setupServices wires the scanner stack from config
func setupServices(ctx context.Context, cfg *config.Config) (*services, error) {
	svc := &services{}

	manager, err := setupIntel(cfg)
	if err != nil {
		return nil, fmt.Errorf("setting up intel: %w", err)
	}

	svc.intel = manager

	rep, err := setupReputation(ctx, cfg, svc)
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("setting up reputation: %w", err)
	}

	matcher := brand.NewMatcher(brand.WithBrands(cfg.Engine.Brands))

	svc.engine = urlintel.New(
		urlintel.WithMembership(manager),
		urlintel.WithReputation(rep),
		urlintel.WithMatcher(matcher),
		urlintel.WithHighRiskTLDs(cfg.Engine.HighRiskTLDs),
	)

	svc.scanner = scanner.New(
		svc.engine,
		setupEnricher(cfg),
		scanner.WithScanTimeout(cfg.Scanner.ScanTimeout),
		scanner.WithMaxConcurrency(cfg.Scanner.MaxConcurrency),
		scanner.WithMatcher(matcher),
	)

	store, err := setupHistory(ctx, cfg, svc)
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("setting up history: %w", err)
	}

	svc.history = store

	svc.analyzer = analyzer.New(
		svc.scanner,
		analyzer.WithSenderAuth(emailauth.NewChecker(
			emailauth.WithDNSServer(cfg.Probes.DNSServer),
			emailauth.WithDNSTimeout(cfg.Probes.DNSTimeout),
		)),
		analyzer.WithStore(store),
	)

	svc.slack = setupSlack(cfg)

	return svc, nil
}

// setupIntel initializes the threat feed manager, falling back to the built-in feeds when no
// feed config file exists
func setupIntel(cfg *config.Config) (*intel.Manager, error) {
	feedCfg, err := intel.LoadFeedConfig(cfg.Intel.FeedConfig)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info().Str("path", cfg.Intel.FeedConfig).Msg("feed config not found, using default feeds")

		feedCfg = intel.DefaultFeedConfig()
	case err != nil:
		return nil, fmt.Errorf("loading feed config from %s: %w", cfg.Intel.FeedConfig, err)
	}

	return intel.NewManager(
		feedCfg,
		intel.WithStorageDir(cfg.Intel.StorageDir),
		intel.WithHTTPClient(&http.Client{Timeout: cfg.Intel.RequestTimeout}),
	)
}

// hydrateInBackground starts a feed sync that logs its outcome
func hydrateInBackground(ctx context.Context, manager *intel.Manager) {
	go func() {
		log.Info().Msg("starting automatic intel hydration")

		summary, err := manager.Hydrate(ctx)
		if err != nil {
			log.Error().Err(err).Msg("automatic intel hydration failed")
			return
		}

		log.Info().Int("feeds", summary.SuccessfulFeeds).Int("entries", summary.TotalEntries).Msg("automatic intel hydration complete")
	}()
}

// setupReputation builds the VirusTotal backed reputation service over the configured cache.
// Without an API key the service is built with no fetcher and never reports a verdict
func setupReputation(ctx context.Context, cfg *config.Config, svc *services) (*reputation.Service, error) {
	var cache reputation.Cache = reputation.NewMemoryCache()

	if cfg.Reputation.Backend == config.BackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Reputation.RedisAddr,
			Password: cfg.Reputation.RedisPassword,
			DB:       cfg.Reputation.RedisDB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Reputation.RedisAddr, err)
		}

		svc.closers = append(svc.closers, func() { _ = client.Close() })
		cache = reputation.NewRedisCache(client, cfg.Reputation.TTL)

		log.Info().Str("addr", cfg.Reputation.RedisAddr).Msg("reputation cache backed by redis")
	}

	opts := []reputation.Option{
		reputation.WithTTL(cfg.Reputation.TTL),
		reputation.WithTimeout(cfg.Reputation.LookupTimeout),
	}

	vt, err := virustotal.New(
		cfg.VirusTotal.APIKey,
		virustotal.WithBaseURL(cfg.VirusTotal.BaseURL),
		virustotal.WithHTTPClient(&http.Client{Timeout: cfg.VirusTotal.RequestTimeout}),
		virustotal.WithBreaker(cfg.VirusTotal.BreakerFailures, cfg.VirusTotal.BreakerOpen),
	)
	if err != nil {
		if !errors.Is(err, virustotal.ErrMissingAPIKey) {
			return nil, err
		}

		log.Info().Msg("virustotal api key not configured, reputation lookups disabled")

		return reputation.NewService(cache, nil, opts...), nil
	}

	return reputation.NewService(cache, vt, opts...), nil
}

// setupEnricher builds the top URL probes; disabled probes report defaults
func setupEnricher(cfg *config.Config) *probe.Enricher {
	timeouts := probe.Timeouts{
		TLS:      cfg.Probes.TLSTimeout,
		Geo:      cfg.Probes.GeoTimeout,
		DNS:      cfg.Probes.DNSTimeout,
		Whois:    cfg.Probes.WhoisTimeout,
		Redirect: cfg.Probes.RedirectTimeout,
	}

	if !cfg.Probes.Enabled {
		log.Info().Msg("network probes disabled")

		return probe.NewEnricher(probe.WithTimeouts(timeouts))
	}

	return probe.NewEnricher(
		probe.WithTLSProbe(probe.NewTLSX(probe.WithTLSTimeout(cfg.Probes.TLSTimeout))),
		probe.WithGeoProbe(probe.NewIPAPI(
			probe.WithGeoEndpoint(cfg.Probes.GeoEndpoint),
			probe.WithGeoHTTPClient(&http.Client{Timeout: cfg.Probes.GeoTimeout}),
		)),
		probe.WithDNSProbe(probe.NewResolver(
			probe.WithDNSServer(cfg.Probes.DNSServer),
			probe.WithDNSTimeout(cfg.Probes.DNSTimeout),
		)),
		probe.WithWhoisProbe(probe.NewRegistration(rdap.NewClient(rdap.WithTimeout(cfg.Probes.WhoisTimeout)))),
		probe.WithRedirectProbe(probe.NewRedirects(
			probe.WithRedirectHTTPClient(&http.Client{Timeout: cfg.Probes.RedirectTimeout}),
			probe.WithMaxRedirects(cfg.Probes.MaxRedirects),
		)),
		probe.WithTimeouts(timeouts),
	)
}

// setupHistory opens the configured history backend
func setupHistory(ctx context.Context, cfg *config.Config, svc *services) (history.Store, error) {
	if cfg.History.Backend != config.BackendPostgres {
		return history.NewMemoryStore(cfg.History.MaxRecords), nil
	}

	store, err := history.NewPostgresStore(ctx, cfg.History.DSN, cfg.History.MaxRecords)
	if err != nil {
		return nil, err
	}

	svc.closers = append(svc.closers, store.Close)

	log.Info().Msg("scan history backed by postgres")

	return store, nil
}

// setupSlack initializes the Slack webhook client from config, returning nil when unconfigured
func setupSlack(cfg *config.Config) *slack.Client {
	if cfg.Slack.WebhookURL == "" {
		log.Info().Msg("slack notifications not configured, skipping")
		return nil
	}

	client, err := slack.New(
		cfg.Slack.WebhookURL,
		slack.WithTimeout(cfg.Slack.RequestTimeout),
		slack.WithThreshold(cfg.Slack.Threshold),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize slack client")
		return nil
	}

	log.Info().Float64("threshold", client.Threshold()).Msg("slack notifications configured")

	return client
}
