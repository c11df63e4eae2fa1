package config

const EnvPrefix = "OMS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "OMS_APP_ENV"
	EnvPort     = "OMS_APP_PORT"
	EnvLogLevel = "OMS_LOG_LEVEL"

	EnvDBDSN              = "OMS_DB_DSN"
	EnvDBDriver           = "OMS_DB_DRIVER"
	EnvDBHost             = "OMS_DB_HOST"
	EnvDBPort             = "OMS_DB_PORT"
	EnvDBUser             = "OMS_DB_USER"
	EnvDBPassword         = "OMS_DB_PASSWORD"
	EnvDBName             = "OMS_DB_NAME"
	EnvDBLockTimeout      = "OMS_DB_LOCK_TIMEOUT"
	EnvDBStatementTimeout = "OMS_DB_STATEMENT_TIMEOUT"

	EnvRedisURL = "OMS_REDIS_URL"

	EnvIdempotencyTTL = "OMS_IDEMPOTENCY_TTL"

	EnvCORSAllowedOrigins = "OMS_CORS_ALLOWED_ORIGINS"

	EnvGCPProjectID      = "OMS_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "OMS_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
