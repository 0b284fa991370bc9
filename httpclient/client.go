// httpclient/client.go

/* The httpclient package provides a configurable HTTP client for the EnvHub
environment-variable service. It authenticates with an account access key,
keeps the service token fresh across requests, and wraps every call in the
same envelope: concurrency permits, retry with backoff for idempotent
methods, dynamic rate limiting, structured error handling, and detailed
logging. The main Client structure ties together the base URL, the token
handler, and an embedded standard HTTP client. */
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/envhubhq/go-envhub-client/authenticationhandler"
	"github.com/envhubhq/go-envhub-client/concurrency"
	"github.com/envhubhq/go-envhub-client/cookiejar"
	"github.com/envhubhq/go-envhub-client/logger"
	"github.com/envhubhq/go-envhub-client/proxy"
	"github.com/envhubhq/go-envhub-client/redirecthandler"
	"github.com/envhubhq/go-envhub-client/tokencache"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Master struct/object
type Client struct {
	// Private
	config ClientConfig
	http   *http.Client
	lock   sync.Mutex

	// Exported
	BaseURL          string
	Logger           *zap.SugaredLogger
	Concurrency      *concurrency.ConcurrencyHandler
	AuthTokenHandler *authenticationhandler.AuthTokenHandler
	Redirects        *redirecthandler.RedirectHandler
}

// BuildClient creates a new EnvHub client with the provided configuration.
// When populateDefaultValues is true, zero-valued configuration fields are
// filled with the package defaults before validation.
func BuildClient(config ClientConfig, populateDefaultValues bool) (*Client, error) {
	if populateDefaultValues {
		SetDefaultValuesClientConfig(&config)
	}

	if err := validateClientConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.BuildLogger(config.LogLevel, config.LogOutputFormat, config.LogConsoleSeparator)

	baseURL := resolveBaseURL(config)
	log.Info("Initializing EnvHub client", zap.String("base_url", baseURL))

	httpClient := &http.Client{
		Timeout: config.CustomTimeout,
	}

	if err := proxy.InitializeProxy(httpClient, config.ProxyURL, config.ProxyUsername, config.ProxyPassword, config.ProxyAuthToken, log); err != nil {
		log.Error("Failed to configure proxy", zap.Error(err))
		return nil, err
	}

	if err := cookiejar.SetupCookieJar(httpClient, config.CookieJarEnabled, log); err != nil {
		log.Error("Failed to set up cookie jar", zap.Error(err))
		return nil, err
	}

	if err := applyCustomCookies(httpClient, config.CustomCookies, baseURL, log); err != nil {
		return nil, err
	}

	redirectHandler, err := redirecthandler.SetupRedirectHandler(httpClient, config.FollowRedirects, config.MaxRedirects, log)
	if err != nil {
		log.Error("Failed to set up redirect handler", zap.Error(err))
		return nil, err
	}

	concurrencyMetrics := &concurrency.ConcurrencyMetrics{}
	concurrencyHandler := concurrency.NewConcurrencyHandler(
		config.MaxConcurrentRequests,
		log,
		concurrencyMetrics,
	)

	credentials := authenticationhandler.ClientCredentials{
		AccessKeyID:     config.AccessKeyID,
		AccessKeySecret: config.AccessKeySecret,
	}
	authTokenHandler := authenticationhandler.NewAuthTokenHandler(
		log,
		credentials,
		config.InstanceName,
		baseURL,
		config.HideSensitiveData,
		buildTokenCache(config, log),
	)

	client := &Client{
		config:           config,
		http:             httpClient,
		BaseURL:          baseURL,
		Logger:           log,
		Concurrency:      concurrencyHandler,
		AuthTokenHandler: authTokenHandler,
		Redirects:        redirectHandler,
	}

	log.Debug("New EnvHub client initialized",
		zap.String("instance_name", config.InstanceName),
		zap.String("logging_level", config.LogLevel),
		zap.String("log_encoding_format", config.LogOutputFormat),
		zap.Bool("hide_sensitive_data", config.HideSensitiveData),
		zap.Bool("cookie_jar_enabled", config.CookieJarEnabled),
		zap.Int("max_retry_attempts", config.MaxRetryAttempts),
		zap.Bool("enable_dynamic_rate_limiting", config.EnableDynamicRateLimiting),
		zap.Int("max_concurrent_requests", config.MaxConcurrentRequests),
		zap.Bool("follow_redirects", config.FollowRedirects),
		zap.Int("max_redirects", config.MaxRedirects),
		zap.Duration("token_refresh_buffer_period", config.TokenRefreshBufferPeriod),
		zap.Duration("total_retry_duration", config.TotalRetryDuration),
		zap.Duration("custom_timeout", config.CustomTimeout),
	)

	return client, nil
}

// buildTokenCache selects the token cache backend from the configuration:
// redis for fleets sharing one login, a file for reuse across processes on
// one machine, and in-memory otherwise.
func buildTokenCache(config ClientConfig, log *zap.SugaredLogger) tokencache.Store {
	switch {
	case config.RedisAddr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		log.Debug("Token cache backed by redis", zap.String("addr", config.RedisAddr))
		return tokencache.NewRedisStore(client, "")
	case config.TokenCachePath != "":
		log.Debug("Token cache backed by file", zap.String("path", config.TokenCachePath))
		return tokencache.NewFileStore(afero.NewOsFs(), config.TokenCachePath)
	default:
		return tokencache.NewMemoryStore()
	}
}

// applyCustomCookies seeds the cookie jar with the configured cookies so they
// accompany every request to the service.
func applyCustomCookies(httpClient *http.Client, cookies map[string]string, baseURL string, log *zap.SugaredLogger) error {
	if len(cookies) == 0 {
		return nil
	}
	if httpClient.Jar == nil {
		return fmt.Errorf("custom cookies require the cookie jar to be enabled")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return err
	}

	jarCookies := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		jarCookies = append(jarCookies, &http.Cookie{Name: name, Value: value})
	}
	httpClient.Jar.SetCookies(parsedURL, jarCookies)

	log.Debug("Custom cookies set", zap.Int("count", len(jarCookies)))
	return nil
}

// HideSensitiveData reports whether logs should redact credentials and secret values.
func (c *Client) HideSensitiveData() bool {
	return c.config.HideSensitiveData
}
