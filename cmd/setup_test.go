package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mcuadros/go-defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/spectra/config"
	"github.com/theopenlane/spectra/internal/history"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	defaults.SetDefaults(cfg)

	cfg.Probes.Enabled = false
	cfg.Intel.FeedConfig = filepath.Join(t.TempDir(), "missing.json")
	cfg.Intel.StorageDir = t.TempDir()

	return cfg
}

func TestSetupServicesDefaults(t *testing.T) {
	svc, err := setupServices(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(svc.close)

	assert.NotNil(t, svc.scanner)
	assert.NotNil(t, svc.analyzer)
	assert.NotNil(t, svc.engine)
	assert.Nil(t, svc.slack)
	assert.IsType(t, &history.MemoryStore{}, svc.history)
	assert.Equal(t, []string{"openphish"}, svc.intel.Status().Feeds)
}

func TestSetupServicesRedisReputation(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Reputation.Backend = config.BackendRedis
	cfg.Reputation.RedisAddr = mr.Addr()
	cfg.VirusTotal.APIKey = "test-key"
	cfg.Slack.WebhookURL = "https://hooks.slack.example/services/T/B/X"

	svc, err := setupServices(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(svc.close)

	require.NotNil(t, svc.slack)
	assert.InDelta(t, 75, svc.slack.Threshold(), 0.001)
	assert.Len(t, svc.closers, 1)
}

func TestSetupServicesRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Reputation.Backend = config.BackendRedis
	cfg.Reputation.RedisAddr = addr

	_, err := setupServices(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSetupIntelRejectsMalformedFeedConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Intel.FeedConfig = filepath.Join("testdata", "bad_feeds.json")

	_, err := setupIntel(cfg)
	assert.Error(t, err)
}
