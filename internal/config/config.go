package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Store     StoreConfig     `mapstructure:"store"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Results   ResultsConfig   `mapstructure:"results"`
	Persist   PersistConfig   `mapstructure:"persist"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug | release
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// StoreConfig selects the storage backends: "mongo" uses MongoDB and Redis, "memory" keeps everything in process
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	Expire time.Duration `mapstructure:"expire"`
}

type ResultsConfig struct {
	LoadAttempts int           `mapstructure:"load_attempts"`
	LoadDelay    time.Duration `mapstructure:"load_delay"`
}

type PersistConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

type CacheConfig struct {
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	DashboardTTL time.Duration `mapstructure:"dashboard_ttl"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // empty disables the rotating file sink
}

func (c *Config) IsDebug() bool {
	return c.Server.Mode == "debug"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "autoestima")
	v.SetDefault("mongo.timeout", 10*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("store.driver", DriverMongo)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "autoestima")
	v.SetDefault("jwt.expire", 24*time.Hour)

	v.SetDefault("results.load_attempts", 3)
	v.SetDefault("results.load_delay", time.Second)

	v.SetDefault("persist.timeout", 5*time.Second)
	v.SetDefault("persist.retries", 1)

	v.SetDefault("cache.session_ttl", 24*time.Hour)
	v.SetDefault("cache.dashboard_ttl", 5*time.Minute)

	v.SetDefault("rate_limit.max_requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads config.yaml from path when present, then environment overrides
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("AUTOESTIMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Plain names used by the deployment scripts
	v.BindEnv("server.port", "HTTP_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DB")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("store.driver", "STORE_DRIVER")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required")
	}
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	if c.Results.LoadAttempts < 1 {
		return fmt.Errorf("results.load_attempts must be at least 1, got %d", c.Results.LoadAttempts)
	}
	if c.RateLimit.MaxRequests < 1 || c.RateLimit.Window <= 0 {
		return errors.New("rate_limit needs a positive max_requests and window")
	}
	return nil
}
