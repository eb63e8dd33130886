package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env           string
	Port          int
	AssetsDir     string
	PublicBaseURL string
	JWTSecret     string `json:"-"`
	LogJSON       bool
	DatabaseURL   string `json:"-"`
	RedisAddr     string
	KafkaBrokers  []string
	KafkaTopic    string
	CORSOrigin    string
}

func Default() Config {
	return Config{
		Env:        "dev",
		Port:       5001,
		AssetsDir:  "./assets",
		JWTSecret:  "",
		LogJSON:    true,
		KafkaTopic: "catalog.events",
		CORSOrigin: "http://localhost:3000",
	}
}

func EnvDefaults() Config {
	return fromEnv(Default())
}

func fromEnv(c Config) Config {
	if v := os.Getenv("SWEETS_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("SWEETS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("SWEETS_ASSETS_DIR"); v != "" {
		c.AssetsDir = v
	}
	if v := os.Getenv("SWEETS_PUBLIC_BASE_URL"); v != "" {
		c.PublicBaseURL = v
	}
	if v := os.Getenv("SWEETS_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("SWEETS_LOG_JSON"); v != "" {
		switch v {
		case "1", "true", "TRUE":
			c.LogJSON = true
		case "0", "false", "FALSE":
			c.LogJSON = false
		}
	}
	if v := os.Getenv("SWEETS_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("SWEETS_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("SWEETS_KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = SplitList(v)
	}
	if v := os.Getenv("SWEETS_KAFKA_TOPIC"); v != "" {
		c.KafkaTopic = v
	}
	if v := os.Getenv("SWEETS_CORS_ORIGIN"); v != "" {
		c.CORSOrigin = v
	}
	return c
}

// SplitList parses a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
