package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = ""
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Catalog      CatalogConfig
	StockFeed    StockFeedConfig
	Session      SessionConfig
	Orders       OrdersConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Catalog.validate(); err != nil {
		return nil, err
	}
	if err := cfg.StockFeed.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MPC_APP_ENV" required:"true"`
	Port         string `envconfig:"MPC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MPC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MPC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN             string        `envconfig:"MPC_DB_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"MPC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MPC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MPC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MPC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MPC_REDIS_URL"`
	Address      string        `envconfig:"MPC_REDIS_ADDR"`
	Password     string        `envconfig:"MPC_REDIS_PASSWORD"`
	DB           int           `envconfig:"MPC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MPC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MPC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MPC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MPC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MPC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CatalogConfig points at the upstream product API.
type CatalogConfig struct {
	BaseURL      string        `envconfig:"MPC_CATALOG_URL" default:"https://api.monplancbd.fr/products"`
	FetchTimeout time.Duration `envconfig:"MPC_CATALOG_FETCH_TIMEOUT" default:"30s"`
}

func (c CatalogConfig) validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid catalog url: %w", err)
	}
	return nil
}

// StockFeedConfig points at the upstream SSE stock feed.
type StockFeedConfig struct {
	URL            string        `envconfig:"MPC_STOCK_FEED_URL" default:"https://api.monplancbd.fr/sse"`
	InitialBackoff time.Duration `envconfig:"MPC_STOCK_FEED_INITIAL_BACKOFF" default:"1s"`
	MaxBackoff     time.Duration `envconfig:"MPC_STOCK_FEED_MAX_BACKOFF" default:"30s"`
}

func (s StockFeedConfig) validate() error {
	if _, err := url.ParseRequestURI(s.URL); err != nil {
		return fmt.Errorf("invalid stock feed url: %w", err)
	}
	return nil
}

// SessionConfig drives the anonymous session cookie and the optional
// verification of access tokens issued by the auth API.
type SessionConfig struct {
	CookieName   string        `envconfig:"MPC_SESSION_COOKIE" default:"mpc_session"`
	TTL          time.Duration `envconfig:"MPC_SESSION_TTL" default:"168h"`
	CookieSecure bool          `envconfig:"MPC_SESSION_COOKIE_SECURE" default:"true"`
	JWTSecret    string        `envconfig:"MPC_AUTH_JWT_SECRET"`
	JWTIssuer    string        `envconfig:"MPC_AUTH_JWT_ISSUER" default:"monplancbd"`
}

// OrdersConfig points at the external order/payment API.
type OrdersConfig struct {
	SubmitURL     string        `envconfig:"MPC_ORDERS_SUBMIT_URL" default:"https://api.monplancbd.fr/orders"`
	SubmitTimeout time.Duration `envconfig:"MPC_ORDERS_SUBMIT_TIMEOUT" default:"15s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MPC_CORS_ALLOWED_ORIGINS" default:"https://www.monplancbd.fr"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MPC_FEATURE_AUTO_MIGRATE" default:"false"`
}
