package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"food-ordering-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	GinMode  string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// SecretKey signs session tokens. Left empty, protected routes answer 500.
	SecretKey string `envconfig:"SECRET_KEY"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"food_ordering.db"`
	MongoURI   string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB    string `envconfig:"MONGO_DB" default:"food_ordering"`

	RedisAddr    string   `envconfig:"REDIS_ADDR"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"orders"`

	StripeSecretKey       string `envconfig:"STRIPE_SECRET_KEY"`
	WebhookEndpointSecret string `envconfig:"WEBHOOK_ENDPOINT_SECRET"`
	Currency              string `envconfig:"CURRENCY" default:"inr"`

	FrontendURL   string   `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
	CORSOrigins   []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	UploadDir     string   `envconfig:"UPLOAD_DIR" default:"uploads"`
	PublicBaseURL string   `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`

	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	ResetTokenTTL time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`
}

// Load reads an optional .env file and then the process environment.
func Load(log logrus.FieldLogger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Info("No .env file found; using system environment")
		} else {
			log.Warnf("Error loading .env file (continuing): %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverMongo {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.SecretKey == "" {
		log.Warn("SECRET_KEY is not set; authenticated routes will fail")
	}
	if cfg.WebhookEndpointSecret == "" {
		log.Warn("WEBHOOK_ENDPOINT_SECRET is not set; webhooks will answer 500 until it is set")
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func NewLogger(level string, json bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		log.Warnf("Invalid LOG_LEVEL %q, using %s", level, lvl)
	}
	log.SetLevel(lvl)
	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// OpenSQLite opens the relational store and migrates every model.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Menu{},
		&models.Order{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
