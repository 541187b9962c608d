package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Factory   FactoryConfig   `mapstructure:"factory"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Chaos     ChaosConfig     `mapstructure:"chaos"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type AppConfig struct {
	Version string `mapstructure:"version"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	URL          string        `mapstructure:"url"` // takes precedence over the discrete fields
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Name         string        `mapstructure:"name"`
	SSLMode      string        `mapstructure:"sslmode"`
	ListPerPage  int           `mapstructure:"list_per_page"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// DSN returns the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int64  `mapstructure:"expiration_hours"`
}

type FactoryConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 leaves the transport default in place
}

type MetricsConfig struct {
	URL      string        `mapstructure:"url"`
	UserID   string        `mapstructure:"user_id"`
	APIKey   string        `mapstructure:"api_key"`
	Source   string        `mapstructure:"source"`
	Interval time.Duration `mapstructure:"interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"` // empty keeps the chaos switch in process
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ChaosConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// AdminConfig is the account seeded when the database holds no admin yet.
type AdminConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.version", "dev")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "pizza")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.list_per_page", 10)
	v.SetDefault("database.query_timeout", 5*time.Second)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("factory.url", "https://pizza-factory.cs329.click")
	v.SetDefault("factory.api_key", "")
	v.SetDefault("factory.timeout", 0)
	v.SetDefault("metrics.url", "")
	v.SetDefault("metrics.user_id", "")
	v.SetDefault("metrics.api_key", "")
	v.SetDefault("metrics.source", "jwt-pizza-service")
	v.SetDefault("metrics.interval", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("chaos.delay", 30*time.Second)
	v.SetDefault("rate_limit.rps", 0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("admin.name", "常用名字")
	v.SetDefault("admin.email", "a@jwt.com")
	v.SetDefault("admin.password", "admin")
}

// Load reads .env (if present), an optional config.yaml and the environment.
// Environment keys are the upper-cased dotted keys with "." replaced by "_",
// e.g. JWT_SECRET or DATABASE_LIST_PER_PAGE.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required (JWT_SECRET)")
	}
	if c.JWT.ExpirationHours <= 0 {
		c.JWT.ExpirationHours = 24
	}
	if c.Database.ListPerPage <= 0 {
		c.Database.ListPerPage = 10
	}
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = 5 * time.Second
	}
	return nil
}
