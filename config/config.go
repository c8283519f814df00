package config

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Mongo
	MongoURI    string
	DBName      string
	MongoClient *mongo.Client

	// Auth
	JWTSecret string

	// Cloudinary
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Notifications (ZeptoMail HTTP API)
	NotifyAPIURL string
	NotifyAPIKey string
	NotifyFrom   string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "impact_connect"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		NotifyAPIURL: getEnv("NOTIFY_API_URL", ""),
		NotifyAPIKey: getEnv("NOTIFY_API_KEY", ""),
		NotifyFrom:   getEnv("NOTIFY_FROM", ""),
	}
}

// ConnectMongo dials Mongo and verifies the connection with a ping.
func (cfg *Config) ConnectMongo() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	cfg.MongoClient = client
	return nil
}

// Events returns the events collection handle.
func (cfg *Config) Events() *mongo.Collection {
	return cfg.MongoClient.Database(cfg.DBName).Collection("events")
}

// Users returns the users collection handle.
func (cfg *Config) Users() *mongo.Collection {
	return cfg.MongoClient.Database(cfg.DBName).Collection("users")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
