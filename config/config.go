package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host         string `mapstructure:"host"`
		Port         string `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		Name         string `mapstructure:"name"`
		SSLMode      string `mapstructure:"sslmode"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	} `mapstructure:"database"`
	Server struct {
		Port            string        `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		AllowedOrigins  []string      `mapstructure:"allowed_origins"`
		Swagger         bool          `mapstructure:"swagger"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey string        `mapstructure:"secret_key"`
		TTL       time.Duration `mapstructure:"ttl"`
		// Format selects the token encoding: "jwt" (HS256) or "paseto" (v4.local).
		Format string `mapstructure:"format"`
	} `mapstructure:"jwt"`
	Auth struct {
		BcryptCost int `mapstructure:"bcrypt_cost"`
		// LegacyNotFoundStatus answers 404 for an unknown email on login
		// instead of the generic 401.
		LegacyNotFoundStatus bool `mapstructure:"legacy_not_found_status"`
	} `mapstructure:"auth"`
	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Ledger struct {
		PruneInterval time.Duration `mapstructure:"prune_interval"`
	} `mapstructure:"ledger"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.swagger", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "todos")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)

	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("jwt.format", "jwt")

	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.legacy_not_found_status", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ledger.prune_interval", time.Hour)

	v.SetDefault("log.level", "info")
}

// Load reads config.yml from path (a missing file is not an error), then
// overlays environment variables such as JWT_SECRET_KEY or DATABASE_HOST.
func Load(path string) (Config, error) {
	// A .env file is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadConfig(path string) {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Error reading config, %s", err)
	}
	if cfg.JWT.SecretKey == "" {
		log.Fatalf("jwt.secret_key (JWT_SECRET_KEY) must be set")
	}
	AppConfig = cfg
}
