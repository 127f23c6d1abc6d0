package config

const EnvPrefix = "MINERALMARKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	BrokerPubSub = "pubsub"
	BrokerKafka  = "kafka"
)

const (
	EnvAppEnv         = "MINERALMARKET_APP_ENV"
	EnvPort           = "MINERALMARKET_APP_PORT"
	EnvLogLevel       = "MINERALMARKET_LOG_LEVEL"
	EnvDBDSN          = "MINERALMARKET_DB_DSN"
	EnvDBHost         = "MINERALMARKET_DB_HOST"
	EnvDBPort         = "MINERALMARKET_DB_PORT"
	EnvDBUser         = "MINERALMARKET_DB_USER"
	EnvDBPassword     = "MINERALMARKET_DB_PASSWORD"
	EnvDBName         = "MINERALMARKET_DB_NAME"
	EnvRedisURL       = "MINERALMARKET_REDIS_URL"
	EnvJWTSecret      = "MINERALMARKET_JWT_SECRET"
	EnvJWTIssuer      = "MINERALMARKET_JWT_ISSUER"
	EnvCommissionRate = "MINERALMARKET_COMMISSION_RATE"
	EnvOutboxBroker   = "MINERALMARKET_OUTBOX_BROKER"
	EnvGCPProjectID   = "MINERALMARKET_GCP_PROJECT_ID"
	EnvKafkaBrokers   = "MINERALMARKET_KAFKA_BROKERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
