package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const EnvPrefix = "HOSPITAL"

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Scheduling    SchedulingConfig    `mapstructure:"scheduling"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Data          DataConfig          `mapstructure:"data"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	Secret   string       `mapstructure:"secret"`
	Issuer   string       `mapstructure:"issuer"`
	Audience string       `mapstructure:"audience"`
	// DemoMode skips token verification and installs a fixed demo session.
	DemoMode bool         `mapstructure:"demo_mode"`
	Claims   ClaimsConfig `mapstructure:"claims"`
}

// ClaimsConfig names the IdP claims mapped onto the session.
type ClaimsConfig struct {
	UserID  string `mapstructure:"user_id"`
	OrgID   string `mapstructure:"org_id"`
	OrgRole string `mapstructure:"org_role"`
	Email   string `mapstructure:"email"`
}

type RedisConfig struct {
	// URL empty means notifications stay in process.
	URL              string        `mapstructure:"url"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	PoolSize         int           `mapstructure:"pool_size"`
	MinIdleConns     int           `mapstructure:"min_idle_conns"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

type NotificationsConfig struct {
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
	SendTimeout    time.Duration `mapstructure:"send_timeout"`
	BufferSize     int           `mapstructure:"buffer_size"`
	SMTP           SMTPConfig    `mapstructure:"smtp"`
	Gateway        GatewayConfig `mapstructure:"gateway"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type GatewayConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SchedulingConfig struct {
	RejectDoubleBooking bool          `mapstructure:"reject_double_booking"`
	SlotCacheTTL        time.Duration `mapstructure:"slot_cache_ttl"`
	QueueGaugeInterval  time.Duration `mapstructure:"queue_gauge_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type DataConfig struct {
	// MockDataPath replaces the embedded fixture when set.
	MockDataPath string `mapstructure:"mock_data_path"`
}

// envOverrides are the HOSPITAL_* variables. Unset variables leave the file
// value alone.
type envOverrides struct {
	Port                *int     `envconfig:"PORT"`
	LogLevel            *string  `envconfig:"LOG_LEVEL"`
	LogFormat           *string  `envconfig:"LOG_FORMAT"`
	AuthSecret          *string  `envconfig:"AUTH_SECRET"`
	AuthIssuer          *string  `envconfig:"AUTH_ISSUER"`
	AuthAudience        *string  `envconfig:"AUTH_AUDIENCE"`
	DemoMode            *bool    `envconfig:"DEMO_MODE"`
	RedisURL            *string  `envconfig:"REDIS_URL"`
	SMTPHost            *string  `envconfig:"SMTP_HOST"`
	SMTPPort            *int     `envconfig:"SMTP_PORT"`
	SMTPUsername        *string  `envconfig:"SMTP_USERNAME"`
	SMTPPassword        *string  `envconfig:"SMTP_PASSWORD"`
	SMTPFrom            *string  `envconfig:"SMTP_FROM"`
	GatewayURL          *string  `envconfig:"GATEWAY_URL"`
	GatewayAPIKey       *string  `envconfig:"GATEWAY_API_KEY"`
	RejectDoubleBooking *bool    `envconfig:"REJECT_DOUBLE_BOOKING"`
	AllowedOrigins      []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	MockDataPath        *string  `envconfig:"MOCK_DATA_PATH"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.demo_mode", false)
	v.SetDefault("auth.claims.user_id", "sub")
	v.SetDefault("auth.claims.org_id", "org_id")
	v.SetDefault("auth.claims.org_role", "org_role")
	v.SetDefault("auth.claims.email", "email")

	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 500*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.failure_threshold", 5)
	v.SetDefault("redis.open_timeout", 30*time.Second)

	v.SetDefault("notifications.publish_timeout", 3*time.Second)
	v.SetDefault("notifications.send_timeout", 10*time.Second)
	v.SetDefault("notifications.buffer_size", 100)
	v.SetDefault("notifications.smtp.port", 587)
	v.SetDefault("notifications.gateway.timeout", 10*time.Second)

	v.SetDefault("scheduling.reject_double_booking", false)
	v.SetDefault("scheduling.slot_cache_ttl", 5*time.Minute)
	v.SetDefault("scheduling.queue_gauge_interval", time.Minute)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PATCH", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", true)
}

// Load reads path (or config.yml from . and ./config when path is empty),
// then .env, then HOSPITAL_* overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	setInt(&c.Server.Port, o.Port)
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.Format, o.LogFormat)
	setString(&c.Auth.Secret, o.AuthSecret)
	setString(&c.Auth.Issuer, o.AuthIssuer)
	setString(&c.Auth.Audience, o.AuthAudience)
	setBool(&c.Auth.DemoMode, o.DemoMode)
	setString(&c.Redis.URL, o.RedisURL)
	setString(&c.Notifications.SMTP.Host, o.SMTPHost)
	setInt(&c.Notifications.SMTP.Port, o.SMTPPort)
	setString(&c.Notifications.SMTP.Username, o.SMTPUsername)
	setString(&c.Notifications.SMTP.Password, o.SMTPPassword)
	setString(&c.Notifications.SMTP.From, o.SMTPFrom)
	setString(&c.Notifications.Gateway.URL, o.GatewayURL)
	setString(&c.Notifications.Gateway.APIKey, o.GatewayAPIKey)
	setBool(&c.Scheduling.RejectDoubleBooking, o.RejectDoubleBooking)
	setString(&c.Data.MockDataPath, o.MockDataPath)
	if len(o.AllowedOrigins) > 0 {
		c.CORS.AllowedOrigins = o.AllowedOrigins
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		problems = append(problems, fmt.Sprintf("log.format %q is not json or console", c.Log.Format))
	}
	if !c.Auth.DemoMode && c.Auth.Secret == "" {
		problems = append(problems, "auth.secret is required unless auth.demo_mode is set")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit.requests_per_second and rate_limit.burst must be positive")
	}
	if c.Notifications.SMTP.Host != "" && c.Notifications.SMTP.From == "" {
		problems = append(problems, "notifications.smtp.from is required when smtp.host is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
