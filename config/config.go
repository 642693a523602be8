package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "10MB"
	defaultBackendTimeout     = 30 * time.Second
	defaultKeepUnusedDataFor  = 60 * time.Second
	defaultAuthCookie         = "token"
	defaultThemeCookie        = "theme"
	defaultLoginPath          = "/login"
	defaultUnauthorizedPath   = "/unauthorized"
	defaultAllowedRole        = "admin"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Backend is the content API the dashboard consumes
	Backend BackendConfig `json:"backend" yaml:"backend"`

	// Cookie names and attributes for the durable client storage
	Cookie CookieConfig `json:"cookie" yaml:"cookie"`

	Auth AuthConfig `json:"auth" yaml:"auth"`

	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Telemetry is optional; tracing stays off when the endpoint is empty
	Telemetry *TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// BackendConfig defines where and how the content API is reached
type BackendConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// CookieConfig defines the cookies that persist the session and theme
type CookieConfig struct {
	AuthToken string        `json:"authToken" yaml:"authToken"`
	Theme     string        `json:"theme" yaml:"theme"`
	Domain    string        `json:"domain" yaml:"domain"`
	Secure    bool          `json:"secure" yaml:"secure"`
	MaxAge    time.Duration `json:"maxAge" yaml:"maxAge"`
}

// AuthConfig defines route guard behaviour
type AuthConfig struct {
	AllowedRoles     []string `json:"allowedRoles" yaml:"allowedRoles"`
	LoginPath        string   `json:"loginPath" yaml:"loginPath"`
	UnauthorizedPath string   `json:"unauthorizedPath" yaml:"unauthorizedPath"`
}

// CacheConfig defines the API cache layer
type CacheConfig struct {
	// How long an entry without subscribers is kept before collection
	KeepUnusedDataFor time.Duration `json:"keepUnusedDataFor" yaml:"keepUnusedDataFor"`

	// Redis enables the shared response store when set
	Redis *RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig defines the optional shared response store
type RedisConfig struct {
	Addr     string        `json:"addr" yaml:"addr"`
	Username string        `json:"username" yaml:"username"`
	Password string        `json:"password" yaml:"password"`
	DB       int           `json:"db" yaml:"db"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
	Prefix   string        `json:"prefix" yaml:"prefix"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// TelemetryConfig defines the OTLP trace exporter
type TelemetryConfig struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Insecure bool   `json:"insecure" yaml:"insecure"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills in values a minimal config file may omit.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = defaultBackendTimeout
	}
	if cfg.Cookie.AuthToken == "" {
		cfg.Cookie.AuthToken = defaultAuthCookie
	}
	if cfg.Cookie.Theme == "" {
		cfg.Cookie.Theme = defaultThemeCookie
	}
	if len(cfg.Auth.AllowedRoles) == 0 {
		cfg.Auth.AllowedRoles = []string{defaultAllowedRole}
	}
	if cfg.Auth.LoginPath == "" {
		cfg.Auth.LoginPath = defaultLoginPath
	}
	if cfg.Auth.UnauthorizedPath == "" {
		cfg.Auth.UnauthorizedPath = defaultUnauthorizedPath
	}
	if cfg.Cache.KeepUnusedDataFor <= 0 {
		cfg.Cache.KeepUnusedDataFor = defaultKeepUnusedDataFor
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
