package sieveparse

import (
	"testing"
	"time"

	"github.com/migadu/sievefilter/config"
	"github.com/migadu/sievefilter/consts"
	"github.com/migadu/sievefilter/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptCachePutGet(t *testing.T) {
	c := NewScriptCache(newTestParser(t), 10, time.Minute)
	s := &Script{}

	_, ok := c.Get("keep;")
	assert.False(t, ok)

	hits := testutil.ToFloat64(metrics.ScriptCacheHits)
	c.Put("keep;", s)
	got, ok := c.Get("keep;")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.ScriptCacheHits))
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestScriptCacheTTL(t *testing.T) {
	c := NewScriptCache(newTestParser(t), 10, time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("a", &Script{})
	c.Put("b", &Script{})
	now = now.Add(30 * time.Second)
	c.Put("c", &Script{})

	now = now.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok, "entry older than the TTL expires")
	assert.Equal(t, 2, c.Size())

	c.CleanExpired()
	assert.Equal(t, 1, c.Size())
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestScriptCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewScriptCache(newTestParser(t), 2, time.Hour)

	c.Put("a", &Script{})
	c.Put("b", &Script{})
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", &Script{})
	assert.Equal(t, 2, c.Size())
	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestScriptCacheGetOrParse(t *testing.T) {
	cfg := config.NewDefaultConfig().Sieve
	cfg.CheckExecutable = false
	cfg.MaxScriptSize = 32
	p, err := New(cfg)
	require.NoError(t, err)

	c := NewScriptCache(p, 10, time.Hour)
	first, err := c.GetOrParse("keep;\n")
	require.NoError(t, err)
	second, err := c.GetOrParse("keep;\n")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = c.GetOrParse("if true { keep; } if false { discard; }\n")
	assert.ErrorIs(t, err, consts.ErrScriptTooLarge)
	assert.Equal(t, 1, c.Size())
}

func TestScriptCachePerParser(t *testing.T) {
	script := "require [\"vacation\"];\nvacation \"Away\";\n"
	narrow := NewScriptCache(newTestParser(t, func(c *config.SieveConfig) {
		c.SupportedExtensions = []string{"fileinto"}
	}), 10, time.Hour)
	wide := NewScriptCache(newTestParser(t), 10, time.Hour)

	s, err := narrow.GetOrParse(script)
	require.NoError(t, err)
	assert.Equal(t, []string{"vacation"}, s.Unsupported)

	s, err = wide.GetOrParse(script)
	require.NoError(t, err)
	assert.Empty(t, s.Unsupported)
	assert.True(t, s.Valid())
}
