package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
	Metrics      MetricsConfig
	CORS         CORSConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"OMS_APP_ENV" required:"true"`
	Port         string `envconfig:"OMS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OMS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"OMS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"OMS_DB_DSN"`
	Driver string `envconfig:"OMS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OMS_DB_HOST"`
	LegacyPort     int    `envconfig:"OMS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OMS_DB_USER"`
	LegacyPassword string `envconfig:"OMS_DB_PASSWORD"`
	LegacyName     string `envconfig:"OMS_DB_NAME"`
	LegacySSLMode  string `envconfig:"OMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// Applied per transaction with SET LOCAL on Postgres.
	LockTimeout      time.Duration `envconfig:"OMS_DB_LOCK_TIMEOUT" default:"5s"`
	StatementTimeout time.Duration `envconfig:"OMS_DB_STATEMENT_TIMEOUT" default:"15s"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"OMS_REDIS_URL"`
	Address      string        `envconfig:"OMS_REDIS_ADDR"`
	Password     string        `envconfig:"OMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"OMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OMS_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"OMS_IDEMPOTENCY_TTL" default:"24h"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"OMS_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"OMS_METRICS_PATH" default:"/metrics"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"OMS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"OMS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"OMS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"OMS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"OMS_PUBSUB_ORDERS_TOPIC" default:"oms-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"OMS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"OMS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"OMS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// RequirePublisher validates the settings only the outbox publisher needs.
func (c *Config) RequirePublisher() error {
	missing := []string{}
	if strings.TrimSpace(c.GCP.ProjectID) == "" {
		missing = append(missing, EnvGCPProjectID)
	}
	if strings.TrimSpace(c.PubSub.OrdersTopic) == "" {
		missing = append(missing, EnvPubSubOrdersTopic)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required publisher settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverSQLite)
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
