// httpclient/config.go
// Loads and validates configuration values from a JSON file or environment variables.
package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/envhubhq/go-envhub-client/authenticationhandler"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

const (
	DefaultLogLevelString           = "LogLevelInfo"
	DefaultLogOutputFormatString    = "console"
	DefaultLogConsoleSeparator      = ", "
	DefaultMaxRetryAttempts         = 3
	DefaultMaxConcurrentRequests    = 5
	DefaultCustomTimeout            = 10 * time.Second
	DefaultTokenRefreshBufferPeriod = 5 * time.Minute
	DefaultTotalRetryDuration       = 5 * time.Minute
	DefaultMaxRedirects             = 5

	ConfigFileExtension = ".json"
)

// ClientConfig holds the options for building a Client.
type ClientConfig struct {
	// Service
	InstanceName    string `json:"instance_name"`
	AccessKeyID     string `json:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret"`
	OverrideBaseURL string `json:"override_base_url"` // full scheme+host, e.g. an API gateway in front of the service

	// Log
	LogLevel            string `json:"log_level"`
	LogOutputFormat     string `json:"log_output_format"` // "json" or "console"
	LogConsoleSeparator string `json:"log_console_separator"`
	HideSensitiveData   bool   `json:"hide_sensitive_data"`

	// Cookies and headers
	CookieJarEnabled bool              `json:"cookie_jar_enabled"`
	CustomCookies    map[string]string `json:"custom_cookies"`
	CustomHeaders    map[string]string `json:"custom_headers"`

	// Proxy
	ProxyURL       string `json:"proxy_url"`
	ProxyUsername  string `json:"proxy_username"`
	ProxyPassword  string `json:"proxy_password"`
	ProxyAuthToken string `json:"proxy_auth_token"`

	// Token cache
	TokenCachePath string `json:"token_cache_path"` // file-backed cache; empty keeps the cache in memory
	RedisAddr      string `json:"redis_addr"`       // redis-backed cache for fleets; empty disables
	RedisPassword  string `json:"redis_password"`
	RedisDB        int    `json:"redis_db"`

	// Misc
	MaxRetryAttempts          int           `json:"max_retry_attempts"`
	MaxConcurrentRequests     int           `json:"max_concurrent_requests"`
	EnableDynamicRateLimiting bool          `json:"enable_dynamic_rate_limiting"`
	CustomTimeout             time.Duration `json:"custom_timeout"`
	TokenRefreshBufferPeriod  time.Duration `json:"token_refresh_buffer_period"`
	TotalRetryDuration        time.Duration `json:"total_retry_duration"`
	FollowRedirects           bool          `json:"follow_redirects"`
	MaxRedirects              int           `json:"max_redirects"`
}

// configFile mirrors ClientConfig on disk, with the duration fields also
// accepted as whole seconds so config files do not need nanosecond values.
type configFile struct {
	ClientConfig
	CustomTimeoutSeconds            int `json:"custom_timeout_seconds"`
	TokenRefreshBufferPeriodSeconds int `json:"token_refresh_buffer_period_seconds"`
	TotalRetryDurationSeconds       int `json:"total_retry_duration_seconds"`
}

// LoadConfigFromFile loads configuration values from a JSON file into a
// ClientConfig. Defaults are not populated and the result is not validated;
// both happen in BuildClient.
func LoadConfigFromFile(path string) (*ClientConfig, error) {
	return loadConfigFromFile(afero.NewOsFs(), path)
}

func loadConfigFromFile(fs afero.Fs, path string) (*ClientConfig, error) {
	path, err := validateConfigFilePath(path)
	if err != nil {
		return nil, err
	}

	fileBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the configuration file %s: %w", path, err)
	}

	var file configFile
	if err := json.Unmarshal(fileBytes, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the configuration file %s: %w", path, err)
	}

	config := file.ClientConfig
	if file.CustomTimeoutSeconds > 0 {
		config.CustomTimeout = time.Duration(file.CustomTimeoutSeconds) * time.Second
	}
	if file.TokenRefreshBufferPeriodSeconds > 0 {
		config.TokenRefreshBufferPeriod = time.Duration(file.TokenRefreshBufferPeriodSeconds) * time.Second
	}
	if file.TotalRetryDurationSeconds > 0 {
		config.TotalRetryDuration = time.Duration(file.TotalRetryDurationSeconds) * time.Second
	}

	return &config, nil
}

// LoadConfigFromEnv populates a ClientConfig from ENVHUB_* environment
// variables, falling back to any values already present in the passed config.
// A .env file in the working directory is loaded first so local development
// stays close to production. The result has defaults populated and is
// validated.
func LoadConfigFromEnv(config *ClientConfig) (*ClientConfig, error) {
	if config == nil {
		config = &ClientConfig{}
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	config.InstanceName = getEnvOrDefault("ENVHUB_INSTANCE_NAME", config.InstanceName)
	config.AccessKeyID = getEnvOrDefault("ENVHUB_ACCESS_KEY_ID", config.AccessKeyID)
	config.AccessKeySecret = getEnvOrDefault("ENVHUB_ACCESS_KEY_SECRET", config.AccessKeySecret)
	config.OverrideBaseURL = getEnvOrDefault("ENVHUB_OVERRIDE_BASE_URL", config.OverrideBaseURL)

	config.LogLevel = getEnvOrDefault("ENVHUB_LOG_LEVEL", config.LogLevel)
	config.LogOutputFormat = getEnvOrDefault("ENVHUB_LOG_OUTPUT_FORMAT", config.LogOutputFormat)
	config.LogConsoleSeparator = getEnvOrDefault("ENVHUB_LOG_CONSOLE_SEPARATOR", config.LogConsoleSeparator)
	config.HideSensitiveData = parseBool(getEnvOrDefault("ENVHUB_HIDE_SENSITIVE_DATA", strconv.FormatBool(config.HideSensitiveData)))

	config.CookieJarEnabled = parseBool(getEnvOrDefault("ENVHUB_COOKIE_JAR_ENABLED", strconv.FormatBool(config.CookieJarEnabled)))
	if cookieStr := os.Getenv("ENVHUB_CUSTOM_COOKIES"); cookieStr != "" {
		config.CustomCookies = parseKeyValuePairs(cookieStr)
	}
	if headerStr := os.Getenv("ENVHUB_CUSTOM_HEADERS"); headerStr != "" {
		config.CustomHeaders = parseKeyValuePairs(headerStr)
	}

	config.ProxyURL = getEnvOrDefault("ENVHUB_PROXY_URL", config.ProxyURL)
	config.ProxyUsername = getEnvOrDefault("ENVHUB_PROXY_USERNAME", config.ProxyUsername)
	config.ProxyPassword = getEnvOrDefault("ENVHUB_PROXY_PASSWORD", config.ProxyPassword)
	config.ProxyAuthToken = getEnvOrDefault("ENVHUB_PROXY_AUTH_TOKEN", config.ProxyAuthToken)

	config.TokenCachePath = getEnvOrDefault("ENVHUB_TOKEN_CACHE_PATH", config.TokenCachePath)
	config.RedisAddr = getEnvOrDefault("ENVHUB_REDIS_ADDR", config.RedisAddr)
	config.RedisPassword = getEnvOrDefault("ENVHUB_REDIS_PASSWORD", config.RedisPassword)
	config.RedisDB = parseInt(getEnvOrDefault("ENVHUB_REDIS_DB", strconv.Itoa(config.RedisDB)), config.RedisDB)

	config.MaxRetryAttempts = parseInt(getEnvOrDefault("ENVHUB_MAX_RETRY_ATTEMPTS", strconv.Itoa(config.MaxRetryAttempts)), DefaultMaxRetryAttempts)
	config.MaxConcurrentRequests = parseInt(getEnvOrDefault("ENVHUB_MAX_CONCURRENT_REQUESTS", strconv.Itoa(config.MaxConcurrentRequests)), DefaultMaxConcurrentRequests)
	config.EnableDynamicRateLimiting = parseBool(getEnvOrDefault("ENVHUB_ENABLE_DYNAMIC_RATE_LIMITING", strconv.FormatBool(config.EnableDynamicRateLimiting)))

	config.CustomTimeout = parseDuration(getEnvOrDefault("ENVHUB_CUSTOM_TIMEOUT", config.CustomTimeout.String()), config.CustomTimeout)
	config.TokenRefreshBufferPeriod = parseDuration(getEnvOrDefault("ENVHUB_TOKEN_REFRESH_BUFFER_PERIOD", config.TokenRefreshBufferPeriod.String()), config.TokenRefreshBufferPeriod)
	config.TotalRetryDuration = parseDuration(getEnvOrDefault("ENVHUB_TOTAL_RETRY_DURATION", config.TotalRetryDuration.String()), config.TotalRetryDuration)

	config.FollowRedirects = parseBool(getEnvOrDefault("ENVHUB_FOLLOW_REDIRECTS", strconv.FormatBool(config.FollowRedirects)))
	config.MaxRedirects = parseInt(getEnvOrDefault("ENVHUB_MAX_REDIRECTS", strconv.Itoa(config.MaxRedirects)), DefaultMaxRedirects)

	SetDefaultValuesClientConfig(config)

	if err := validateClientConfig(*config); err != nil {
		return nil, err
	}

	return config, nil
}

// SetDefaultValuesClientConfig fills zero-valued configuration fields with
// the package defaults. Boolean options keep their explicit values.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevelString
	}

	if config.LogOutputFormat == "" {
		config.LogOutputFormat = DefaultLogOutputFormatString
	}

	if config.LogConsoleSeparator == "" {
		config.LogConsoleSeparator = DefaultLogConsoleSeparator
	}

	if config.MaxRetryAttempts == 0 {
		config.MaxRetryAttempts = DefaultMaxRetryAttempts
	}

	if config.MaxConcurrentRequests == 0 {
		config.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}

	if config.CustomTimeout == 0 {
		config.CustomTimeout = DefaultCustomTimeout
	}

	if config.TokenRefreshBufferPeriod == 0 {
		config.TokenRefreshBufferPeriod = DefaultTokenRefreshBufferPeriod
	}

	if config.TotalRetryDuration == 0 {
		config.TotalRetryDuration = DefaultTotalRetryDuration
	}

	if config.MaxRedirects == 0 {
		config.MaxRedirects = DefaultMaxRedirects
	}
}

func validateClientConfig(config ClientConfig) error {
	if config.InstanceName == "" && config.OverrideBaseURL == "" {
		return errors.New("no instance name or override base URL supplied")
	}

	if config.AccessKeyID == "" || config.AccessKeySecret == "" {
		return errors.New("no access key pair supplied")
	}
	if ok, message := authenticationhandler.IsValidAccessKeyID(config.AccessKeyID); !ok {
		return errors.New(message)
	}
	if ok, message := authenticationhandler.IsValidAccessKeySecret(config.AccessKeySecret); !ok {
		return errors.New(message)
	}

	validLogLevels := []string{
		"LogLevelDebug",
		"LogLevelInfo",
		"LogLevelWarn",
		"LogLevelError",
		"LogLevelPanic",
		"LogLevelFatal",
		"debug",
		"info",
		"warn",
		"error",
	}
	if !slices.Contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validLogFormats := []string{
		"json",
		"console",
	}
	if !slices.Contains(validLogFormats, config.LogOutputFormat) {
		return fmt.Errorf("invalid log output format: %s", config.LogOutputFormat)
	}

	if config.MaxRetryAttempts < 0 {
		return errors.New("max retry attempts cannot be less than 0")
	}

	if config.MaxConcurrentRequests < 1 {
		return errors.New("maximum concurrent requests cannot be less than 1")
	}

	if config.CustomTimeout < 0 {
		return errors.New("timeout cannot be less than 0")
	}

	if config.TokenRefreshBufferPeriod < 0 {
		return errors.New("token refresh buffer period cannot be less than 0")
	}

	if config.TotalRetryDuration < 0 {
		return errors.New("total retry duration cannot be less than 0")
	}

	if config.FollowRedirects && config.MaxRedirects < 1 {
		return errors.New("max redirects cannot be less than 1 when following redirects")
	}

	return nil
}

func validateConfigFilePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("invalid path, path traversal patterns detected: %s", path)
	}

	if filepath.Ext(cleanPath) != ConfigFileExtension {
		return "", fmt.Errorf("invalid file extension for configuration file %s, expected %s", path, ConfigFileExtension)
	}

	return cleanPath, nil
}

// Helper function to get environment variable or default value
func getEnvOrDefault(envKey string, defaultValue string) string {
	if value, exists := os.LookupEnv(envKey); exists {
		return value
	}
	return defaultValue
}

// Helper function to parse boolean from environment variable
func parseBool(value string) bool {
	result, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return result
}

// Helper function to parse int from environment variable
func parseInt(value string, defaultVal int) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultVal
	}
	return result
}

// Helper function to parse duration from environment variable
func parseDuration(value string, defaultVal time.Duration) time.Duration {
	result, err := time.ParseDuration(value)
	if err != nil {
		return defaultVal
	}
	return result
}

// parseKeyValuePairs parses a semi-colon separated string of key=value pairs
// into a map, as used for cookies and headers supplied via environment.
func parseKeyValuePairs(raw string) map[string]string {
	pairs := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			pairs[key] = value
		}
	}
	return pairs
}
