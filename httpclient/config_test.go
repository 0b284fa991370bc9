// httpclient/config_test.go
package httpclient

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `{
		"instance_name": "acme-prod",
		"access_key_id": "` + testAccessKeyID + `",
		"access_key_secret": "` + testAccessKeySecret + `",
		"log_level": "LogLevelDebug",
		"hide_sensitive_data": true,
		"max_retry_attempts": 4,
		"custom_timeout_seconds": 30,
		"token_refresh_buffer_period_seconds": 120,
		"total_retry_duration_seconds": 90
	}`
	require.NoError(t, afero.WriteFile(fs, "envhub.json", []byte(content), 0o644))

	config, err := loadConfigFromFile(fs, "envhub.json")
	require.NoError(t, err)

	assert.Equal(t, "acme-prod", config.InstanceName)
	assert.Equal(t, testAccessKeyID, config.AccessKeyID)
	assert.Equal(t, "LogLevelDebug", config.LogLevel)
	assert.True(t, config.HideSensitiveData)
	assert.Equal(t, 4, config.MaxRetryAttempts)
	assert.Equal(t, 30*time.Second, config.CustomTimeout)
	assert.Equal(t, 2*time.Minute, config.TokenRefreshBufferPeriod)
	assert.Equal(t, 90*time.Second, config.TotalRetryDuration)
}

func TestLoadConfigFromFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "envhub.yaml", []byte("instance_name: x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "broken.json", []byte("{not json"), 0o644))

	t.Run("wrong extension", func(t *testing.T) {
		_, err := loadConfigFromFile(fs, "envhub.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid file extension")
	})

	t.Run("path traversal", func(t *testing.T) {
		_, err := loadConfigFromFile(fs, "../../etc/envhub.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path traversal")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfigFromFile(fs, "nowhere.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read the configuration file")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := loadConfigFromFile(fs, "broken.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal the configuration file")
	})
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ENVHUB_INSTANCE_NAME", "acme-staging")
	t.Setenv("ENVHUB_ACCESS_KEY_ID", testAccessKeyID)
	t.Setenv("ENVHUB_ACCESS_KEY_SECRET", testAccessKeySecret)
	t.Setenv("ENVHUB_LOG_LEVEL", "LogLevelWarn")
	t.Setenv("ENVHUB_HIDE_SENSITIVE_DATA", "true")
	t.Setenv("ENVHUB_MAX_RETRY_ATTEMPTS", "7")
	t.Setenv("ENVHUB_CUSTOM_TIMEOUT", "30s")
	t.Setenv("ENVHUB_CUSTOM_HEADERS", "X-Team=platform; X-Env=staging")

	config, err := LoadConfigFromEnv(nil)
	require.NoError(t, err)

	assert.Equal(t, "acme-staging", config.InstanceName)
	assert.Equal(t, testAccessKeyID, config.AccessKeyID)
	assert.Equal(t, "LogLevelWarn", config.LogLevel)
	assert.True(t, config.HideSensitiveData)
	assert.Equal(t, 7, config.MaxRetryAttempts)
	assert.Equal(t, 30*time.Second, config.CustomTimeout)
	assert.Equal(t, map[string]string{"X-Team": "platform", "X-Env": "staging"}, config.CustomHeaders)

	// Fields without an environment override pick up defaults.
	assert.Equal(t, DefaultMaxConcurrentRequests, config.MaxConcurrentRequests)
	assert.Equal(t, DefaultTotalRetryDuration, config.TotalRetryDuration)
}

func TestLoadConfigFromEnvOverridesExistingValues(t *testing.T) {
	t.Setenv("ENVHUB_INSTANCE_NAME", "acme-staging")

	base := &ClientConfig{
		InstanceName:    "acme-prod",
		AccessKeyID:     testAccessKeyID,
		AccessKeySecret: testAccessKeySecret,
	}
	config, err := LoadConfigFromEnv(base)
	require.NoError(t, err)

	assert.Equal(t, "acme-staging", config.InstanceName)
	assert.Equal(t, testAccessKeyID, config.AccessKeyID)
}

func TestLoadConfigFromEnvValidates(t *testing.T) {
	t.Setenv("ENVHUB_INSTANCE_NAME", "acme-prod")
	t.Setenv("ENVHUB_ACCESS_KEY_ID", testAccessKeyID)
	t.Setenv("ENVHUB_ACCESS_KEY_SECRET", testAccessKeySecret)
	t.Setenv("ENVHUB_LOG_LEVEL", "LogLevelVerbose")

	_, err := LoadConfigFromEnv(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestSetDefaultValuesClientConfig(t *testing.T) {
	config := &ClientConfig{}
	SetDefaultValuesClientConfig(config)

	assert.Equal(t, DefaultLogLevelString, config.LogLevel)
	assert.Equal(t, DefaultLogOutputFormatString, config.LogOutputFormat)
	assert.Equal(t, DefaultLogConsoleSeparator, config.LogConsoleSeparator)
	assert.Equal(t, DefaultMaxRetryAttempts, config.MaxRetryAttempts)
	assert.Equal(t, DefaultMaxConcurrentRequests, config.MaxConcurrentRequests)
	assert.Equal(t, DefaultCustomTimeout, config.CustomTimeout)
	assert.Equal(t, DefaultTokenRefreshBufferPeriod, config.TokenRefreshBufferPeriod)
	assert.Equal(t, DefaultTotalRetryDuration, config.TotalRetryDuration)
	assert.Equal(t, DefaultMaxRedirects, config.MaxRedirects)

	// Explicit settings survive the defaulting pass.
	config = &ClientConfig{LogLevel: "LogLevelDebug", MaxRetryAttempts: 9}
	SetDefaultValuesClientConfig(config)
	assert.Equal(t, "LogLevelDebug", config.LogLevel)
	assert.Equal(t, 9, config.MaxRetryAttempts)

	// Booleans keep their explicit false, defaulting never flips them.
	config = &ClientConfig{HideSensitiveData: false, FollowRedirects: false}
	SetDefaultValuesClientConfig(config)
	assert.False(t, config.HideSensitiveData)
	assert.False(t, config.FollowRedirects)
}

func TestParseKeyValuePairs(t *testing.T) {
	pairs := parseKeyValuePairs("region=eu-west-1; tier=gold;broken; empty=")
	assert.Equal(t, map[string]string{
		"region": "eu-west-1",
		"tier":   "gold",
		"empty":  "",
	}, pairs)

	assert.Empty(t, parseKeyValuePairs(""))
}
