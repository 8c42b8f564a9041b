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
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Receivables  ReceivablesConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Idempotency  IdempotencyConfig
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
	Env          string `envconfig:"NALDOGAS_APP_ENV" required:"true"`
	Port         string `envconfig:"NALDOGAS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NALDOGAS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NALDOGAS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NALDOGAS_DB_DSN"`
	Driver string `envconfig:"NALDOGAS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NALDOGAS_DB_HOST"`
	LegacyPort     int    `envconfig:"NALDOGAS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NALDOGAS_DB_USER"`
	LegacyPassword string `envconfig:"NALDOGAS_DB_PASSWORD"`
	LegacyName     string `envconfig:"NALDOGAS_DB_NAME"`
	LegacySSLMode  string `envconfig:"NALDOGAS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NALDOGAS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NALDOGAS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NALDOGAS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NALDOGAS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NALDOGAS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NALDOGAS_REDIS_ADDR"`
	Password     string        `envconfig:"NALDOGAS_REDIS_PASSWORD"`
	DB           int           `envconfig:"NALDOGAS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NALDOGAS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NALDOGAS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NALDOGAS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NALDOGAS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NALDOGAS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NALDOGAS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NALDOGAS_AUTO_MIGRATE" default:"false"`
}

type ReceivablesConfig struct {
	DefaultDueDays int `envconfig:"NALDOGAS_RECEIVABLES_DUE_DAYS" default:"30"`
}

// DefaultDueIn returns the default credit window applied to new receivables.
func (r ReceivablesConfig) DefaultDueIn() time.Duration {
	if r.DefaultDueDays <= 0 {
		return 0
	}
	return time.Duration(r.DefaultDueDays) * 24 * time.Hour
}

type GCPConfig struct {
	ProjectID              string `envconfig:"NALDOGAS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"NALDOGAS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"NALDOGAS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	LedgerTopic        string `envconfig:"NALDOGAS_PUBSUB_LEDGER_TOPIC" default:"ng-ledger-events"`
	LedgerSubscription string `envconfig:"NALDOGAS_PUBSUB_LEDGER_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"NALDOGAS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"NALDOGAS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"NALDOGAS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"NALDOGAS_IDEMPOTENCY_TTL" default:"24h"`
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
