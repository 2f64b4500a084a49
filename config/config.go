package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL       string        `envconfig:"DATABASE_URL"        required:"true"`
	DBDriver          string        `envconfig:"DB_DRIVER"           default:"postgres"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS"   default:"25"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS"   default:"5"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`

	HTTPPort string `envconfig:"HTTP_PORT" default:":8080"`
	GrpcPort string `envconfig:"GRPC_PORT" default:":50051"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	GinMode  string `envconfig:"GIN_MODE"  default:"debug"`

	APIKey         string        `envconfig:"API_KEY"          required:"true"`
	ServiceRoleKey string        `envconfig:"SERVICE_ROLE_KEY"`
	JWTSecret      string        `envconfig:"JWT_SECRET"       required:"true"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL"      default:"24h"`

	DefaultPageSize      int  `envconfig:"DEFAULT_PAGE_SIZE"      default:"12"`
	CheckoutEnforceStock bool `envconfig:"CHECKOUT_ENFORCE_STOCK" default:"false"`

	KafkaBrokers    []string `envconfig:"KAFKA_BROKERS"`
	KafkaOrderTopic string   `envconfig:"KAFKA_ORDER_TOPIC" default:"storefront.order-placed"`

	ConsulAddr     string `envconfig:"CONSUL_ADDR"`
	ServiceName    string `envconfig:"SERVICE_NAME"    default:"storefront"`
	ServiceAddress string `envconfig:"SERVICE_ADDRESS" default:"127.0.0.1"`
}

var (
	config  Config
	loadErr error
	once    sync.Once
)

// LoadConfig reads .env (if present) and the process environment once.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		var cfg *Config
		cfg, loadErr = Process()
		if loadErr != nil {
			return
		}
		config = *cfg

		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s, DB driver=%s",
			config.HTTPPort, config.GrpcPort, config.LogLevel, config.DBDriver)
		if config.ServiceRoleKey == "" {
			logger.Warn("SERVICE_ROLE_KEY is not set: admin user creation and deletion are disabled")
		}
		if len(config.KafkaBrokers) == 0 {
			logger.Info("KAFKA_BROKERS is not set: order events will not be published")
		}
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return &config, nil
}

// Process reads the environment into a fresh Config without caching it.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "pgx":
		c.DBDriver = strings.ToLower(c.DBDriver)
	default:
		return fmt.Errorf("configuration error: DB_DRIVER must be 'postgres' or 'pgx', got %q", c.DBDriver)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("configuration error: GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("configuration error: JWT_SECRET must be at least 16 characters")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("configuration error: SESSION_TTL must be positive")
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("configuration error: DEFAULT_PAGE_SIZE must be positive")
	}
	return nil
}

// AdminUsersEnabled reports whether the elevated key needed to create or
// delete auth users is configured.
func (c *Config) AdminUsersEnabled() bool {
	return c.ServiceRoleKey != ""
}
