package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Settlement   SettlementConfig
	RateLimit    RateLimitConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Kafka        KafkaConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Settlement.Rate(); err != nil {
		return nil, err
	}
	if err := cfg.Outbox.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"MINERALMARKET_APP_ENV" required:"true"`
	Port         string   `envconfig:"MINERALMARKET_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"MINERALMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MINERALMARKET_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"MINERALMARKET_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MINERALMARKET_DB_DSN"`
	Driver string `envconfig:"MINERALMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MINERALMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"MINERALMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MINERALMARKET_DB_USER"`
	LegacyPassword string `envconfig:"MINERALMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"MINERALMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"MINERALMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MINERALMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MINERALMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MINERALMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MINERALMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MINERALMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MINERALMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"MINERALMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"MINERALMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MINERALMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MINERALMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MINERALMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MINERALMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MINERALMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds the verification settings for tokens minted by the identity provider.
type JWTConfig struct {
	Secret string `envconfig:"MINERALMARKET_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MINERALMARKET_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MINERALMARKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MINERALMARKET_AUTO_MIGRATE" default:"false"`
}

type SettlementConfig struct {
	CommissionRate  string `envconfig:"MINERALMARKET_COMMISSION_RATE" default:"0.075"`
	TxRetryAttempts int    `envconfig:"MINERALMARKET_TX_RETRY_ATTEMPTS" default:"1"`
}

// Rate parses the configured commission rate as a fraction in [0, 1).
func (s SettlementConfig) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s.CommissionRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal fraction: %w", EnvCommissionRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be within [0, 1), got %s", EnvCommissionRate, rate)
	}
	return rate, nil
}

type RateLimitConfig struct {
	OrdersPerWindow int           `envconfig:"MINERALMARKET_RATE_LIMIT_ORDERS" default:"10"`
	OrdersWindow    time.Duration `envconfig:"MINERALMARKET_RATE_LIMIT_ORDERS_WINDOW" default:"1m"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"MINERALMARKET_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"MINERALMARKET_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"MINERALMARKET_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Broker         string `envconfig:"MINERALMARKET_OUTBOX_BROKER" default:"pubsub"`
}

func (o OutboxConfig) validate() error {
	switch strings.ToLower(o.Broker) {
	case BrokerPubSub, BrokerKafka:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvOutboxBroker, BrokerPubSub, BrokerKafka, o.Broker)
	}
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MINERALMARKET_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MINERALMARKET_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MINERALMARKET_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"MINERALMARKET_PUBSUB_ORDERS_TOPIC" default:"mm-order-events"`
}

type KafkaConfig struct {
	Brokers      []string      `envconfig:"MINERALMARKET_KAFKA_BROKERS" default:"localhost:9092"`
	OrdersTopic  string        `envconfig:"MINERALMARKET_KAFKA_ORDERS_TOPIC" default:"mm.order-events"`
	BatchTimeout time.Duration `envconfig:"MINERALMARKET_KAFKA_BATCH_TIMEOUT" default:"10ms"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"MINERALMARKET_CRON_INTERVAL" default:"1h"`
	LockTTL                   time.Duration `envconfig:"MINERALMARKET_CRON_LOCK_TTL" default:"10m"`
	OutboxRetentionDays       int           `envconfig:"MINERALMARKET_OUTBOX_RETENTION_DAYS" default:"30"`
	NotificationRetentionDays int           `envconfig:"MINERALMARKET_NOTIFICATION_RETENTION_DAYS" default:"90"`
	ReconcileBatchSize        int           `envconfig:"MINERALMARKET_RECONCILE_BATCH_SIZE" default:"200"`
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
