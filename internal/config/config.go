// Package config resolves the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	DLP      DLPConfig
	Auth     AuthConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr string
}

type DLPConfig struct {
	// Project is the default parent project for inspections when a request
	// does not name one.
	Project         string
	CredentialsFile string
	Endpoint        string
	CallTimeout     time.Duration
}

type AuthConfig struct {
	JWTSecret   string
	JWTAudience string
}

type LoggerConfig struct {
	Level string
}

// Load reads configuration from the environment, with an optional .env file
// for local development. Absent keys fall back to defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("DATABASE_DSN", "host=postgres user=postgres password=postgres dbname=dlpinspect port=5432 sslmode=disable")
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("DLP_PROJECT", "")
	v.SetDefault("DLP_CREDENTIALS_FILE", "")
	v.SetDefault("DLP_ENDPOINT", "")
	v.SetDefault("DLP_CALL_TIMEOUT", "30s")
	v.SetDefault("JWT_SECRET", "dev-secret")
	v.SetDefault("JWT_AUDIENCE", "")
	v.SetDefault("LOGGER_LEVEL", "info")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: durationOrDefault(v.GetString("SERVER_SHUTDOWN_TIMEOUT"), 15*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("DATABASE_DSN"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			ConnMaxLifetime: durationOrDefault(v.GetString("DATABASE_CONN_MAX_LIFETIME"), time.Hour),
		},
		Redis: RedisConfig{
			Addr: v.GetString("REDIS_ADDR"),
		},
		DLP: DLPConfig{
			Project:         v.GetString("DLP_PROJECT"),
			CredentialsFile: v.GetString("DLP_CREDENTIALS_FILE"),
			Endpoint:        v.GetString("DLP_ENDPOINT"),
			CallTimeout:     durationOrDefault(v.GetString("DLP_CALL_TIMEOUT"), 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:   v.GetString("JWT_SECRET"),
			JWTAudience: v.GetString("JWT_AUDIENCE"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("LOGGER_LEVEL"),
		},
	}

	return cfg, nil
}

func durationOrDefault(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
