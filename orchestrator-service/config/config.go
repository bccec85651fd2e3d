package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName    string         `mapstructure:"service_name"`
	Env            string         `mapstructure:"env"`
	Port           string         `mapstructure:"port"`
	Database       Database       `mapstructure:"database"`
	AWS            AWS            `mapstructure:"aws"`
	Redis          Redis          `mapstructure:"redis"`
	Engine         Engine         `mapstructure:"engine"`
	Reconciliation Reconciliation `mapstructure:"reconciliation"`
	Telemetry      Telemetry      `mapstructure:"telemetry"`
}

type Database struct {
	URL          string `mapstructure:"url"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type AWS struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	EndpointSNS     string `mapstructure:"endpoint_sns"`
	EndpointSQS     string `mapstructure:"endpoint_sqs"`
	// TopicArnPrefix is prepended to topic names, e.g. arn:aws:sns:us-east-1:000000000000:
	TopicArnPrefix string `mapstructure:"topic_arn_prefix"`
	SQSQueueURL    string `mapstructure:"sqs_queue_url"`
	Workers        int32  `mapstructure:"workers"`
	Readers        int32  `mapstructure:"readers"`
	// VisibilityTimeout and WaitTimeSeconds are in seconds, as SQS takes them
	VisibilityTimeout int32 `mapstructure:"visibility_timeout"`
	WaitTimeSeconds   int32 `mapstructure:"wait_time_seconds"`
}

type Redis struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	DedupeTTL time.Duration `mapstructure:"dedupe_ttl"`
}

type Engine struct {
	DefaultMaxRetries int           `mapstructure:"default_max_retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
}

type Reconciliation struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type Telemetry struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// ReadConfig loads the environment's JSON file next to this package.
// ORCHESTRATOR_ prefixed variables override it, e.g. ORCHESTRATOR_ENGINE_RETRY_BACKOFF.
func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("unable to get current file")
	}

	return readConfig(filepath.Dir(filename), getConfigName())
}

func readConfig(configDir, name string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("ORCHESTRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}

	if err := config.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &config, nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

// setDefaults registers every key so environment overrides work for keys
// missing from the file
func setDefaults(v *viper.Viper) {
	// Service defaults
	v.SetDefault("service_name", "orchestrator-service")
	v.SetDefault("env", getEnv("ENV", "local"))
	v.SetDefault("port", getEnv("PORT", "8080"))

	// Database defaults
	v.SetDefault("database.url", os.Getenv("DATABASE_URL"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "orchestrator")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)

	// AWS defaults
	v.SetDefault("aws.access_key_id", getEnv("AWS_ACCESS_KEY_ID", ""))
	v.SetDefault("aws.secret_access_key", getEnv("AWS_SECRET_ACCESS_KEY", ""))
	v.SetDefault("aws.region", getEnv("AWS_DEFAULT_REGION", "us-east-1"))
	v.SetDefault("aws.endpoint_sns", getEnv("AWS_ENDPOINT_URL_SNS", ""))
	v.SetDefault("aws.endpoint_sqs", getEnv("AWS_ENDPOINT_URL_SQS", ""))
	v.SetDefault("aws.topic_arn_prefix", "")
	v.SetDefault("aws.sqs_queue_url", getEnv("SQS_QUEUE_URL", ""))
	v.SetDefault("aws.workers", 30)
	v.SetDefault("aws.readers", 1)
	v.SetDefault("aws.visibility_timeout", 30)
	v.SetDefault("aws.wait_time_seconds", 15)

	// Redis defaults
	v.SetDefault("redis.addr", getEnv("REDIS_ADDR", ""))
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dedupe_ttl", "24h")

	// Engine defaults
	v.SetDefault("engine.default_max_retries", 3)
	v.SetDefault("engine.retry_backoff", "2s")

	// Reconciliation defaults
	v.SetDefault("reconciliation.enabled", true)
	v.SetDefault("reconciliation.interval", "1m")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) validate() error {
	if c.Engine.DefaultMaxRetries < 0 {
		return errors.New("engine.default_max_retries must not be negative")
	}
	if c.Engine.RetryBackoff < 0 {
		return errors.New("engine.retry_backoff must not be negative")
	}
	// retries wait on the SQS worker, so the message must stay invisible meanwhile
	if visibility := time.Duration(c.AWS.VisibilityTimeout) * time.Second; visibility > 0 && c.Engine.RetryBackoff >= visibility {
		return errors.Errorf("engine.retry_backoff %s must be below aws.visibility_timeout %s", c.Engine.RetryBackoff, visibility)
	}
	if c.Reconciliation.Enabled && c.Reconciliation.Interval <= 0 {
		return errors.New("reconciliation.interval must be positive")
	}
	return nil
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
