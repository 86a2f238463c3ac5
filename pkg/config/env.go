package config

const (
	EnvPrefix = "COTIZADOR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	defaultSQLiteDSN = "cotizador.db"
)

const (
	EnvAppEnv        = "COTIZADOR_APP_ENV"
	EnvPort          = "COTIZADOR_APP_PORT"
	EnvLogLevel      = "COTIZADOR_LOG_LEVEL"
	EnvCORSOrigins   = "COTIZADOR_CORS_ORIGINS"
	EnvDBDriver      = "COTIZADOR_DB_DRIVER"
	EnvDBDSN         = "COTIZADOR_DB_DSN"
	EnvDBHost        = "COTIZADOR_DB_HOST"
	EnvDBUser        = "COTIZADOR_DB_USER"
	EnvDBName        = "COTIZADOR_DB_NAME"
	EnvRedisURL      = "COTIZADOR_REDIS_URL"
	EnvNotionAPIKey  = "COTIZADOR_NOTION_API_KEY"
	EnvNotionItemsDB = "COTIZADOR_NOTION_ITEMS_DB"
	EnvLocalCap      = "COTIZADOR_QUOTATIONS_LOCAL_CAP"
	EnvSessionTTL    = "COTIZADOR_SESSION_TTL"
)

var postgresDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
