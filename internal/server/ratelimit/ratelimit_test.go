package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  600,
		DefaultWindow: time.Minute,
		Whitelist:     make(map[string]bool),
		Blacklist:     make(map[string]bool),
		EndpointConfigs: []EndpointConfig{
			{Path: "/api/match", Method: "POST", Limit: 60, Window: time.Minute, Burst: 2},
			{Path: "/api/beers/", Method: "GET", Limit: 120, Window: time.Minute, Burst: 3},
		},
	}
}

func TestBurstThenLimited(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("1.2.3.4", "/api/match", "POST")
		assert.True(t, allowed, "request %d within burst", i)
		assert.Equal(t, 60, info.Limit)
	}

	allowed, info := l.Allow("1.2.3.4", "/api/match", "POST")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestClientsAreIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/api/match", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("1.2.3.4", "/api/match", "POST")
	require.False(t, allowed)

	allowed, _ = l.Allow("5.6.7.8", "/api/match", "POST")
	assert.True(t, allowed, "a different client has its own bucket")
}

func TestPrefixRuleMatchesPatternedRoutes(t *testing.T) {
	rule := MatchEndpoint("/api/beers/focal%20banger", "GET", testConfig().EndpointConfigs)
	require.NotNil(t, rule)
	assert.Equal(t, 120, rule.Limit)
}

func TestHealthIsUnlimited(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestDisabledAllowsEverything(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/api/match", "POST")
		require.True(t, allowed)
	}
}

func TestBlacklistAlwaysDenied(t *testing.T) {
	cfg := testConfig()
	cfg.Blacklist["6.6.6.6"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	allowed, _ := l.Allow("6.6.6.6", "/api/beers/x", "GET")
	assert.False(t, allowed)
}

func TestWhitelistBypassesLimits(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist["10.0.0.1"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/api/match", "POST")
		require.True(t, allowed)
	}
}

func TestBucketRefills(t *testing.T) {
	// 10 tokens/second, capacity 1: drained bucket readmits after a tick.
	tb := newTokenBucket(1, 10)
	require.True(t, tb.allow())
	require.False(t, tb.allow())

	time.Sleep(150 * time.Millisecond)
	assert.True(t, tb.allow())
}
