package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string
	Port      string
	DBUrl     string
	DBTimeout time.Duration
	JWTSecret string
	// Media
	UploadFolder      string
	PublicMediaPrefix string
	MaxUploadBytes    int64
	OrphanGrace       time.Duration
	// Redis cache (optional; in-process cache when empty)
	RedisURL      string
	RedisPassword string
	CacheTTL      time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is a local convenience; absent in deployed environments
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("UPLOAD_FOLDER", "uploads/profile_images")
	v.SetDefault("PUBLIC_MEDIA_PREFIX", "/api/profile_images/")
	v.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("ORPHAN_GRACE", "24h")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CACHE_TTL", "5m")

	cfg := &Config{
		Env:               v.GetString("APP_ENV"),
		Port:              v.GetString("PORT"),
		DBUrl:             v.GetString("DATABASE_URL"),
		DBTimeout:         v.GetDuration("DB_CONNECT_TIMEOUT"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		UploadFolder:      v.GetString("UPLOAD_FOLDER"),
		PublicMediaPrefix: v.GetString("PUBLIC_MEDIA_PREFIX"),
		MaxUploadBytes:    v.GetInt64("MAX_UPLOAD_BYTES"),
		OrphanGrace:       v.GetDuration("ORPHAN_GRACE"),
		RedisURL:          v.GetString("REDIS_URL"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		CacheTTL:          v.GetDuration("CACHE_TTL"),
	}

	if !strings.HasSuffix(cfg.PublicMediaPrefix, "/") {
		cfg.PublicMediaPrefix += "/"
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Every authenticated request will be rejected.")
	}
	if cfg.RedisURL == "" {
		log.Println("INFO: REDIS_URL not configured. Using in-process cache.")
	}

	return cfg, nil
}
