package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL    string        `envconfig:"DATABASE_URL" default:"postgres://postgres@localhost:5432/cafe?sslmode=disable"`
	AutoMigrate    bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCHealthAddr string        `envconfig:"GRPC_HEALTH_ADDR" default:":50051"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string        `envconfig:"LOG_FORMAT" default:"text"`
}

func Load() (Config, error) {
	_ = godotenv.Load() // load .env if it exists
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Log prints the effective values with credentials redacted. Call it once
// logging is set up.
func (c Config) Log() {
	logrus.Infof("[config] DATABASE_URL=%s AUTO_MIGRATE=%t", redact(c.DatabaseURL), c.AutoMigrate)
	logrus.Infof("[config] HTTP_ADDR=%s GRPC_HEALTH_ADDR=%s", c.HTTPAddr, c.GRPCHealthAddr)
	logrus.Infof("[config] REDIS_URL=%s SESSION_TTL=%s", redact(c.RedisURL), c.SessionTTL)
	logrus.Infof("[config] LOG_LEVEL=%s LOG_FORMAT=%s", c.LogLevel, c.LogFormat)
}

// DSNFromArgs builds the connection string for the console's positional
// form: cafe <dbname> <port> <user>.
func DSNFromArgs(dbname, port, user string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(user),
		Host:     "localhost:" + port,
		Path:     "/" + dbname,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func redact(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparsable>"
	}
	return u.Redacted()
}
