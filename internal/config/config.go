package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"futures-testnet-bot/internal/model"
)

const (
	DefaultBaseURL    = "https://demo-fapi.binance.com"
	DefaultRecvWindow = 5 * time.Second
	DefaultTimeout    = 15 * time.Second
	DefaultGUIAddr    = "127.0.0.1:8787"
)

// testnetHosts are the futures sandboxes we accept without an explicit override.
var testnetHosts = map[string]bool{
	"demo-fapi.binance.com":     true,
	"testnet.binancefuture.com": true,
}

// ConfigurationError reports missing credentials or an unsafe endpoint.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Kind() model.ErrorKind { return model.KindConfiguration }

// Credentials is the API key/secret pair. Values are fixed once built.
type Credentials struct {
	apiKey    string
	apiSecret string
}

func NewCredentials(apiKey, apiSecret string) (Credentials, error) {
	apiKey = strings.TrimSpace(apiKey)
	apiSecret = strings.TrimSpace(apiSecret)
	if apiKey == "" {
		return Credentials{}, &ConfigurationError{Key: "BINANCE_API_KEY", Reason: "is required"}
	}
	if apiSecret == "" {
		return Credentials{}, &ConfigurationError{Key: "BINANCE_API_SECRET", Reason: "is required"}
	}
	return Credentials{apiKey: apiKey, apiSecret: apiSecret}, nil
}

func (c Credentials) APIKey() string    { return c.apiKey }
func (c Credentials) APISecret() string { return c.apiSecret }

// String keeps credentials out of logs and %v output.
func (c Credentials) String() string { return "Credentials{REDACTED}" }

func (c Credentials) GoString() string { return c.String() }

type Config struct {
	Credentials Credentials

	BaseURL         string
	AllowProduction bool
	RecvWindow      time.Duration
	HTTPTimeout     time.Duration

	LogLevel string
	LogDir   string

	GUIAddr           string
	GUIAllowedOrigins []string
	GUIPingInterval   time.Duration
}

// Load reads .env (optional) and the environment. Any error is a *ConfigurationError.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

// LogSettings returns LOG_LEVEL and LOG_DIR without requiring credentials,
// so logging can start before the full configuration is valid.
func LogSettings() (level, dir string) {
	_ = godotenv.Load()
	level = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	dir = strings.TrimSpace(os.Getenv("LOG_DIR"))
	if dir == "" {
		dir = "logs"
	}
	return level, dir
}

func fromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		BaseURL:  strings.TrimRight(env("BINANCE_BASE_URL", DefaultBaseURL), "/"),
		LogLevel: env("LOG_LEVEL", "info"),
		LogDir:   env("LOG_DIR", "logs"),
		GUIAddr:  env("GUI_ADDR", DefaultGUIAddr),
	}

	var err error
	cfg.AllowProduction, err = parseBool(env("BINANCE_ALLOW_PRODUCTION", "false"), "BINANCE_ALLOW_PRODUCTION")
	if err != nil {
		return nil, err
	}

	cfg.RecvWindow, err = parseDuration(env("BINANCE_RECV_WINDOW_MS", ""), time.Millisecond, DefaultRecvWindow, "BINANCE_RECV_WINDOW_MS")
	if err != nil {
		return nil, err
	}
	// Binance caps recvWindow at 60s.
	if cfg.RecvWindow > 60*time.Second {
		return nil, &ConfigurationError{Key: "BINANCE_RECV_WINDOW_MS", Reason: "must not exceed 60000"}
	}

	cfg.HTTPTimeout, err = parseDuration(env("BINANCE_HTTP_TIMEOUT_SEC", ""), time.Second, DefaultTimeout, "BINANCE_HTTP_TIMEOUT_SEC")
	if err != nil {
		return nil, err
	}

	cfg.GUIPingInterval, err = parseDuration(env("GUI_PING_INTERVAL_SEC", ""), time.Second, 30*time.Second, "GUI_PING_INTERVAL_SEC")
	if err != nil {
		return nil, err
	}

	if origins := env("GUI_ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.GUIAllowedOrigins = append(cfg.GUIAllowedOrigins, o)
			}
		}
	}

	if err := CheckEndpoint(cfg.BaseURL, cfg.AllowProduction); err != nil {
		return nil, err
	}

	apiKey := firstNonEmpty(getenv("BINANCE_API_KEY"), getenv("BINANCE_TESTNET_API_KEY"))
	apiSecret := firstNonEmpty(getenv("BINANCE_API_SECRET"), getenv("BINANCE_TESTNET_API_SECRET"))
	if (apiKey == "" || apiSecret == "") && env("BINANCE_SECRETS_FILE", "") != "" {
		secrets, err := LoadSecretConfig(env("BINANCE_SECRETS_FILE", ""))
		if err != nil {
			return nil, &ConfigurationError{Key: "BINANCE_SECRETS_FILE", Reason: err.Error()}
		}
		apiKey = firstNonEmpty(apiKey, secrets.Binance.APIKey)
		apiSecret = firstNonEmpty(apiSecret, secrets.Binance.APISecret)
	}

	cfg.Credentials, err = NewCredentials(apiKey, apiSecret)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// CheckEndpoint rejects base URLs outside the testnet unless allowProduction is set.
// Loopback hosts are always accepted so local mocks work.
func CheckEndpoint(baseURL string, allowProduction bool) error {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return &ConfigurationError{Key: "BINANCE_BASE_URL", Reason: fmt.Sprintf("invalid url %q", baseURL)}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return &ConfigurationError{Key: "BINANCE_BASE_URL", Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}

	host := strings.ToLower(u.Hostname())
	if testnetHosts[host] || isLoopback(host) {
		return nil
	}
	if allowProduction {
		return nil
	}
	return &ConfigurationError{
		Key:    "BINANCE_BASE_URL",
		Reason: fmt.Sprintf("%s is not a testnet host; set BINANCE_ALLOW_PRODUCTION=true to override", host),
	}
}

// Testnet reports whether BaseURL points at a futures sandbox.
func (c *Config) Testnet() bool {
	return testnetHosts[c.host()]
}

// Local reports whether BaseURL is a loopback mock.
func (c *Config) Local() bool {
	return isLoopback(c.host())
}

func (c *Config) host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(value, name string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &ConfigurationError{Key: name, Reason: fmt.Sprintf("invalid boolean %q", value)}
	}
	return b, nil
}

func parseDuration(value string, unit, fallback time.Duration, name string) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, &ConfigurationError{Key: name, Reason: fmt.Sprintf("must be a positive integer, got %q", value)}
	}
	return time.Duration(n) * unit, nil
}
