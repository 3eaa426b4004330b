package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Development-only JWT secrets. Validate rejects them in release mode.
const (
	devAccessSecret  = "default-access-secret"
	devRefreshSecret = "default-refresh-secret"
)

var ErrInsecureSecrets = errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set in release mode")

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string

	MongoURI         string
	DBName           string
	MongoMaxPoolSize uint64
	MongoClient      *mongo.Client

	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// ZeptoMail
	EmailAPIURL string
	EmailAPIKey string
	EmailFrom   string

	Logger *zap.Logger
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("MONGO_DB", "chapter_directory"),
		MongoMaxPoolSize: uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 50)),

		JWTSecret:        getEnv("JWT_ACCESS_SECRET", devAccessSecret),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", devRefreshSecret),
		JWTAccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		EmailAPIURL: getEnv("ZEPTO_API_URL", ""),
		EmailAPIKey: getEnv("ZEPTO_API_KEY", ""),
		EmailFrom:   getEnv("EMAIL_FROM", ""),

		Logger: zap.NewNop(),
	}
}

// ConnectMongo dials the cluster and pings the primary before returning.
func (cfg *Config) ConnectMongo(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(cfg.MongoMaxPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("mongo ping: %w", err)
	}

	cfg.MongoClient = client
	return nil
}

func (cfg *Config) DB() *mongo.Database {
	return cfg.MongoClient.Database(cfg.DBName)
}

func (cfg *Config) IsRelease() bool {
	return cfg.Env == "release"
}

// Validate refuses release configs that would sign tokens with the
// development secrets.
func (cfg *Config) Validate() error {
	if !cfg.IsRelease() {
		return nil
	}
	if cfg.JWTSecret == devAccessSecret || cfg.JWTRefreshSecret == devRefreshSecret {
		return ErrInsecureSecrets
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strVal := getEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strVal := getEnv(key, "")
	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue
	}
	parts := strings.Split(val, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
