package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Firebase FirebaseConfig `yaml:"firebase"`
	Push     PushConfig     `yaml:"push"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration. URL wins over the discrete
// fields when set.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// StorageConfig selects the repository implementation
type StorageConfig struct {
	Driver string `yaml:"driver"` // postgres | memory
}

// RedisConfig holds redis configuration. An empty Addr disables redis and
// the in-process locker is used instead.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// AuthConfig selects how bearer tokens are verified
type AuthConfig struct {
	Provider  string `yaml:"provider"` // jwt | firebase
	JWTSecret string `yaml:"jwt_secret"`
}

// FirebaseConfig holds Firebase Admin SDK settings
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// PushConfig selects the notification transport
type PushConfig struct {
	Provider string     `yaml:"provider"` // fcm | apns | log
	APNs     APNsConfig `yaml:"apns"`
}

// APNsConfig holds APNs token auth settings
type APNsConfig struct {
	KeyFile    string `yaml:"key_file"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// ScoringConfig holds the match scoring constants
type ScoringConfig struct {
	DistanceWeight       float64 `yaml:"distance_weight"`
	DefaultMaxDistanceKm float64 `yaml:"default_max_distance_km"`
	EarthRadiusKm        float64 `yaml:"earth_radius_km"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "playdate",
			SSLMode: "disable",
		},
		Storage: StorageConfig{Driver: "postgres"},
		Redis:   RedisConfig{LockTTL: 10 * time.Second},
		Auth:    AuthConfig{Provider: "jwt"},
		Push:    PushConfig{Provider: "log"},
		Scoring: ScoringConfig{
			DistanceWeight:       5,
			DefaultMaxDistanceKm: 60,
			EarthRadiusKm:        6371,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads an optional .env file, then the YAML file at path (missing is
// fine), then applies environment overrides
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("APP_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("APP_PORT", c.Server.Port)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Redis.LockTTL = getEnvAsDuration("REDIS_LOCK_TTL", c.Redis.LockTTL)

	c.Auth.Provider = getEnv("AUTH_PROVIDER", c.Auth.Provider)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.Firebase.ProjectID = getEnv("FIREBASE_PROJECT_ID", c.Firebase.ProjectID)
	c.Firebase.CredentialsFile = getEnv("FIREBASE_CREDENTIALS_FILE", c.Firebase.CredentialsFile)

	c.Push.Provider = getEnv("PUSH_PROVIDER", c.Push.Provider)
	c.Push.APNs.KeyFile = getEnv("APNS_KEY_FILE", c.Push.APNs.KeyFile)
	c.Push.APNs.KeyID = getEnv("APNS_KEY_ID", c.Push.APNs.KeyID)
	c.Push.APNs.TeamID = getEnv("APNS_TEAM_ID", c.Push.APNs.TeamID)
	c.Push.APNs.Topic = getEnv("APNS_TOPIC", c.Push.APNs.Topic)
	c.Push.APNs.Production = getEnvAsBool("APNS_PRODUCTION", c.Push.APNs.Production)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate rejects combinations the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Auth.Provider {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required for the jwt provider")
		}
	case "firebase":
	default:
		return fmt.Errorf("unknown auth provider %q", c.Auth.Provider)
	}
	switch c.Push.Provider {
	case "fcm", "log":
	case "apns":
		if c.Push.APNs.KeyFile == "" || c.Push.APNs.Topic == "" {
			return fmt.Errorf("push.apns.key_file and push.apns.topic are required for the apns provider")
		}
	default:
		return fmt.Errorf("unknown push provider %q", c.Push.Provider)
	}
	if c.Scoring.DistanceWeight < 0 || c.Scoring.DefaultMaxDistanceKm <= 0 || c.Scoring.EarthRadiusKm <= 0 {
		return fmt.Errorf("scoring constants must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
