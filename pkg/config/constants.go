package config

const EnvPrefix = "NALDOGAS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "NALDOGAS_APP_ENV"
	EnvPort     = "NALDOGAS_APP_PORT"
	EnvDBDSN    = "NALDOGAS_DB_DSN"
	EnvDBHost   = "NALDOGAS_DB_HOST"
	EnvDBUser   = "NALDOGAS_DB_USER"
	EnvDBName   = "NALDOGAS_DB_NAME"
	EnvRedisURL = "NALDOGAS_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
