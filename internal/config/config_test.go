package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":5000", c.Addr)
	assert.Equal(t, EnvDevelopment, c.Env)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.Equal(t, 5*time.Minute, c.CacheTTL)
	assert.Equal(t, ImagesFS, c.ImageBackend)
	assert.Equal(t, "admin", c.AdminUsername)
	assert.Empty(t, c.DatabaseURL)
	assert.Empty(t, c.RedisAddr)
	assert.NoError(t, c.Validate())
}

func TestLoad_EnvOverlay(t *testing.T) {
	c, err := Load(nil, envMap(map[string]string{
		"PORT":           "8080",
		"DATABASE_URL":   "postgres://x",
		"REDIS_ADDR":     "redis:6379",
		"CACHE_TTL":      "30s",
		"SUBMIT_DELAY":   "1s",
		"METRICS_TOKEN":  "tok",
		"ADMIN_PASSWORD": "hunter22",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "postgres://x", c.DatabaseURL)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, 30*time.Second, c.CacheTTL)
	assert.Equal(t, time.Second, c.SubmitDelay)
	assert.Equal(t, "tok", c.MetricsToken)
	assert.Equal(t, "hunter22", c.AdminPassword)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	c, err := Load(
		[]string{"-a", "127.0.0.1:9000", "-cache-ttl", "1m", "-images", "fs", "-image-dir", "/tmp/img"},
		envMap(map[string]string{"PORT": "8080", "CACHE_TTL": "30s"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.Addr)
	assert.Equal(t, time.Minute, c.CacheTTL)
	assert.Equal(t, "/tmp/img", c.ImageDir)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]struct {
		args []string
		env  map[string]string
	}{
		"bad port":              {env: map[string]string{"PORT": "http"}},
		"bad duration":          {env: map[string]string{"CACHE_TTL": "soon"}},
		"unknown flag":          {args: []string{"-nope"}},
		"unknown env":           {env: map[string]string{"APP_ENV": "staging"}},
		"short prod secret":     {env: map[string]string{"APP_ENV": "production", "SESSION_SECRET": "short"}},
		"s3 without bucket":     {env: map[string]string{"IMAGE_BACKEND": "s3"}},
		"unknown image backend": {env: map[string]string{"IMAGE_BACKEND": "ftp"}},
	}

	for name, tc := range cases {
		_, err := Load(tc.args, envMap(tc.env))
		assert.Error(t, err, name)
	}
}

func TestLoad_ProductionRejectsDevSecret(t *testing.T) {
	_, err := Load(nil, envMap(map[string]string{"APP_ENV": "production"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET must be set")

	_, err = Load([]string{"-env", "production"}, envMap(map[string]string{"SESSION_SECRET": devSessionSecret}))
	assert.Error(t, err)
}

func TestLoad_ProductionWithSecret(t *testing.T) {
	c, err := Load(nil, envMap(map[string]string{
		"APP_ENV":        "production",
		"SESSION_SECRET": "0123456789abcdef0123456789abcdef",
	}))
	require.NoError(t, err)
	assert.True(t, c.Production())
}
