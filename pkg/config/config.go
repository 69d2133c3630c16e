package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable read by Load.
	EnvPrefix = "governport"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GOVERNPORT_DB_DSN"
	EnvDBHost = "GOVERNPORT_DB_HOST"
	EnvDBUser = "GOVERNPORT_DB_USER"
	EnvDBName = "GOVERNPORT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	ChatRateLimit ChatRateLimitConfig
	Chat          ChatConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Documents     DocumentsConfig
	PubSub        PubSubConfig
	Stripe        StripeConfig
	Cron          CronConfig
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
	Env          string `envconfig:"GOVERNPORT_APP_ENV" required:"true"`
	Port         string `envconfig:"GOVERNPORT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GOVERNPORT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GOVERNPORT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GOVERNPORT_DB_DSN"`
	Driver string `envconfig:"GOVERNPORT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GOVERNPORT_DB_HOST"`
	LegacyPort     int    `envconfig:"GOVERNPORT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GOVERNPORT_DB_USER"`
	LegacyPassword string `envconfig:"GOVERNPORT_DB_PASSWORD"`
	LegacyName     string `envconfig:"GOVERNPORT_DB_NAME"`
	LegacySSLMode  string `envconfig:"GOVERNPORT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GOVERNPORT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GOVERNPORT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GOVERNPORT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GOVERNPORT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GOVERNPORT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GOVERNPORT_REDIS_ADDR"`
	Password     string        `envconfig:"GOVERNPORT_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOVERNPORT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOVERNPORT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOVERNPORT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOVERNPORT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOVERNPORT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOVERNPORT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GOVERNPORT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GOVERNPORT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GOVERNPORT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GOVERNPORT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GOVERNPORT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GOVERNPORT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GOVERNPORT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GOVERNPORT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GOVERNPORT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GOVERNPORT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GOVERNPORT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GOVERNPORT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GOVERNPORT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GOVERNPORT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GOVERNPORT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// ChatRateLimitConfig throttles the anonymous chat relay per client address.
type ChatRateLimitConfig struct {
	Window   time.Duration `envconfig:"GOVERNPORT_CHAT_RATE_LIMIT_WINDOW" default:"10m"`
	Limit    int           `envconfig:"GOVERNPORT_CHAT_RATE_LIMIT_MAX" default:"50"`
	Cooldown time.Duration `envconfig:"GOVERNPORT_CHAT_RATE_LIMIT_COOLDOWN" default:"2s"`
}

// ChatConfig points the relay at an OpenAI-compatible completion endpoint.
type ChatConfig struct {
	APIKey         string        `envconfig:"GOVERNPORT_CHAT_API_KEY"`
	BaseURL        string        `envconfig:"GOVERNPORT_CHAT_BASE_URL" default:"https://api.openai.com/v1/chat/completions"`
	Model          string        `envconfig:"GOVERNPORT_CHAT_MODEL" default:"gpt-4o-mini"`
	RequestTimeout time.Duration `envconfig:"GOVERNPORT_CHAT_REQUEST_TIMEOUT" default:"120s"`
	MaxHistory     int           `envconfig:"GOVERNPORT_CHAT_MAX_HISTORY" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GOVERNPORT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GOVERNPORT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GOVERNPORT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GOVERNPORT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOVERNPORT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"GOVERNPORT_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"GOVERNPORT_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"GOVERNPORT_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type DocumentsConfig struct {
	MaxUploadMB int `envconfig:"GOVERNPORT_DOCUMENTS_MAX_UPLOAD_MB" default:"50"`
}

type PubSubConfig struct {
	AuditTopic        string `envconfig:"GOVERNPORT_PUBSUB_AUDIT_TOPIC" default:"gp-audit-events"`
	AuditSubscription string `envconfig:"GOVERNPORT_PUBSUB_AUDIT_SUBSCRIPTION"`
}

type StripeConfig struct {
	APIKey          string `envconfig:"GOVERNPORT_STRIPE_API_KEY"`
	Secret          string `envconfig:"GOVERNPORT_STRIPE_SECRET"`
	Env             string `envconfig:"GOVERNPORT_STRIPE_ENV" default:"test"`
	SuccessURL      string `envconfig:"GOVERNPORT_STRIPE_SUCCESS_URL"`
	CancelURL       string `envconfig:"GOVERNPORT_STRIPE_CANCEL_URL"`
	PortalReturnURL string `envconfig:"GOVERNPORT_STRIPE_PORTAL_RETURN_URL"`
}

type CronConfig struct {
	ReconcileBatchSize int           `envconfig:"GOVERNPORT_CRON_RECONCILE_BATCH_SIZE" default:"50"`
	ReconcileLookback  time.Duration `envconfig:"GOVERNPORT_CRON_RECONCILE_LOOKBACK" default:"24h"`
	ReconcileInterval  time.Duration `envconfig:"GOVERNPORT_CRON_RECONCILE_INTERVAL" default:"1h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
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
