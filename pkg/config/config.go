package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "GIFTLY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "GIFTLY_APP_ENV"
	EnvAppPort    = "GIFTLY_APP_PORT"
	EnvDBDSN      = "GIFTLY_DB_DSN"
	EnvDBHost     = "GIFTLY_DB_HOST"
	EnvDBUser     = "GIFTLY_DB_USER"
	EnvDBName     = "GIFTLY_DB_NAME"
	EnvRedisURL   = "GIFTLY_REDIS_URL"
	EnvJWTSecret  = "GIFTLY_JWT_SECRET"
	EnvJWTIssuer  = "GIFTLY_JWT_ISSUER"
	EnvJWTExpMins = "GIFTLY_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Checkout      CheckoutConfig
	Google        GoogleAuthConfig
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Square        SquareConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GIFTLY_APP_ENV" required:"true"`
	Port         string `envconfig:"GIFTLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIFTLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIFTLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GIFTLY_DB_DSN"`
	Driver string `envconfig:"GIFTLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GIFTLY_DB_HOST"`
	LegacyPort     int    `envconfig:"GIFTLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIFTLY_DB_USER"`
	LegacyPassword string `envconfig:"GIFTLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIFTLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIFTLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIFTLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIFTLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIFTLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIFTLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIFTLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GIFTLY_REDIS_ADDR"`
	Password     string        `envconfig:"GIFTLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIFTLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIFTLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIFTLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIFTLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIFTLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIFTLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GIFTLY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GIFTLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GIFTLY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GIFTLY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GIFTLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GIFTLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GIFTLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GIFTLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GIFTLY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GIFTLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GIFTLY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GIFTLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GIFTLY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GIFTLY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GIFTLY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// CheckoutConfig carries the storefront knobs for quoting and placement.
type CheckoutConfig struct {
	PhoneRegion       string        `envconfig:"GIFTLY_CHECKOUT_PHONE_REGION" default:"PK"`
	FlatShippingFee   int           `envconfig:"GIFTLY_CHECKOUT_FLAT_SHIPPING_FEE" default:"0"`
	GuestCartTTL      time.Duration `envconfig:"GIFTLY_GUEST_CART_TTL" default:"720h"`
	GuestDraftTTL     time.Duration `envconfig:"GIFTLY_GUEST_DRAFT_TTL" default:"168h"`
	RecentSearchLimit int           `envconfig:"GIFTLY_RECENT_SEARCH_LIMIT" default:"8"`
	RecentSearchTTL   time.Duration `envconfig:"GIFTLY_RECENT_SEARCH_TTL" default:"720h"`
}

type GoogleAuthConfig struct {
	ClientID string `envconfig:"GIFTLY_GOOGLE_CLIENT_ID"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GIFTLY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GIFTLY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GIFTLY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName      string        `envconfig:"GIFTLY_GCS_BUCKET_NAME"`
	UploadURLExpiry time.Duration `envconfig:"GIFTLY_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"GIFTLY_PUBSUB_ORDERS_TOPIC" default:"gf-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GIFTLY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GIFTLY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GIFTLY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"GIFTLY_SQUARE_ACCESS_TOKEN"`
	LocationID  string `envconfig:"GIFTLY_SQUARE_LOCATION_ID"`
	Env         string `envconfig:"GIFTLY_SQUARE_ENV" default:"sandbox"`
	RedirectURL string `envconfig:"GIFTLY_SQUARE_REDIRECT_URL"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GIFTLY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
