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
	defaultPath            = "."
	defaultAppID           = "luxe-store-main"
	defaultSeedConcurrency = 1
	defaultMinPassword     = 6
	defaultBcryptCost      = 10
	defaultTokenTTL        = time.Hour
	defaultBodyLimit       = "1M"
	defaultHeartbeat       = 15 * time.Second

	// StoreProviderMemory keeps every document in process.
	StoreProviderMemory = "memory"
	// StoreProviderFirestore talks to Cloud Firestore.
	StoreProviderFirestore = "firestore"

	// AuthProviderMemory keeps accounts in process.
	AuthProviderMemory = "memory"
	// AuthProviderFirebase uses Firebase Authentication.
	AuthProviderFirebase = "firebase"

	// PubSubProviderLocal pushes events to a local HTTP endpoint.
	PubSubProviderLocal = "local"
	// PubSubProviderGoogle publishes events to Google Cloud Pub/Sub.
	PubSubProviderGoogle = "google"
	// PubSubProviderFCM pushes order confirmations through Firebase Cloud Messaging.
	PubSubProviderFCM = "fcm"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
		// Maximum accepted request body, echo BodyLimit syntax ("1M", "512K")
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		// Interval of keep-alive comments on the event stream
		EventsHeartbeat time.Duration `json:"eventsHeartbeat" yaml:"eventsHeartbeat"`
		// Allow admin routes (catalog seed/reset)
		AdminRoutes bool `json:"adminRoutes" yaml:"adminRoutes"`
	} `json:"http" yaml:"http"`

	// Store selects and namespaces the remote document store
	Store *StoreConfig `json:"store" yaml:"store"`

	// Firebase configuration for Firestore and Firebase Authentication
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordStrength *PasswordStrengthConfig `json:"passwordStrength" yaml:"passwordStrength"`

	SecretKey struct {
		// Signing key for ID tokens minted by the in-process identity provider
		IDToken string `json:"idToken" yaml:"idToken"`
	} `json:"secretKey" yaml:"secretKey"`

	// Catalog configuration for demo seeding
	Catalog *CatalogConfig `json:"catalog" yaml:"catalog"`

	// PubSub configuration for order events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// QRCode configuration for order receipts
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// StoreConfig defines the document store backing the storefront
type StoreConfig struct {
	// Provider type: "memory" or "firestore"
	Provider string `json:"provider" yaml:"provider"`

	// Application namespace every collection lives under
	AppID string `json:"appId" yaml:"appId"`
}

// FirebaseConfig defines Firebase project access
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`

	// Firestore database name, "(default)" when empty
	DatabaseID string `json:"databaseId" yaml:"databaseId"`

	// Web API key used for the Identity Toolkit sign-in endpoints
	APIKey string `json:"apiKey" yaml:"apiKey"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	// Provider type: "memory" or "firebase"
	Provider   string        `json:"provider" yaml:"provider"`
	BcryptCost int           `json:"bcryptCost" yaml:"bcryptCost"`
	TokenTTL   time.Duration `json:"tokenTtl" yaml:"tokenTtl"`
}

// PasswordStrengthConfig defines password strength requirements
type PasswordStrengthConfig struct {
	MinLength int `json:"minLength" yaml:"minLength"`
}

// CatalogConfig defines where the demo catalog comes from and how it is written
type CatalogConfig struct {
	// Blob URL of a YAML catalog (file:///..., gs://bucket?...), embedded demo catalog when empty
	Source string `json:"source" yaml:"source"`

	// Object key inside the Source bucket
	Key string `json:"key" yaml:"key"`

	// Number of concurrent product writes while seeding (1 = sequential)
	SeedConcurrency int `json:"seedConcurrency" yaml:"seedConcurrency"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP, "google" for Google Pub/Sub, "fcm" for push notifications
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider), FCM topic prefix (for fcm provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
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

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills the sections a minimal config file may leave out.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultBodyLimit
	}
	if c.HTTP.EventsHeartbeat <= 0 {
		c.HTTP.EventsHeartbeat = defaultHeartbeat
	}

	if c.Store == nil {
		c.Store = &StoreConfig{}
	}
	if strings.TrimSpace(c.Store.Provider) == "" {
		c.Store.Provider = StoreProviderMemory
	}
	if strings.TrimSpace(c.Store.AppID) == "" {
		c.Store.AppID = defaultAppID
	}

	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	if strings.TrimSpace(c.Auth.Provider) == "" {
		c.Auth.Provider = AuthProviderMemory
	}
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = defaultBcryptCost
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = defaultTokenTTL
	}

	if c.PasswordStrength == nil {
		c.PasswordStrength = &PasswordStrengthConfig{}
	}
	if c.PasswordStrength.MinLength <= 0 {
		c.PasswordStrength.MinLength = defaultMinPassword
	}

	if c.Catalog == nil {
		c.Catalog = &CatalogConfig{}
	}
	if c.Catalog.SeedConcurrency <= 0 {
		c.Catalog.SeedConcurrency = defaultSeedConcurrency
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
