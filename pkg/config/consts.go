package config

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "SHOPPY"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "SHOPPY_APP_ENV"
	EnvPort   = "SHOPPY_APP_PORT"

	EnvDBDSN  = "SHOPPY_DB_DSN"
	EnvDBHost = "SHOPPY_DB_HOST"
	EnvDBUser = "SHOPPY_DB_USER"
	EnvDBName = "SHOPPY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
