package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Auth       `yaml:"auth"`
	Analytics  `yaml:"analytics"`
	UserAgent  `yaml:"user_agent"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"linkbio"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:""`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"linkbio"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedData        bool   `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"false"`
}

// Auth holds session and magic-link configuration.
type Auth struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-default:""`
	SessionDuration time.Duration `yaml:"session_duration" env:"AUTH_SESSION_DURATION" env-default:"168h"`
	LoginTokenTTL   time.Duration `yaml:"login_token_ttl" env:"AUTH_LOGIN_TOKEN_TTL" env-default:"15m"`
	Issuer          string        `yaml:"issuer" env:"AUTH_ISSUER" env-default:"LinkBio-Backend"`
}

// Analytics holds configuration for the fire-and-forget event recorder.
type Analytics struct {
	WorkerCount     int           `yaml:"worker_count" env:"ANALYTICS_WORKERS" env-default:"3"`
	BufferSize      int           `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"1000"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"ANALYTICS_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ANALYTICS_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// UserAgent holds configuration for User-Agent classification.
type UserAgent struct {
	RegexesPath string `yaml:"regexes_path" env:"UA_REGEXES_PATH" env-default:""`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	// Check if config file path is specified
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	// Try to load config file
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		// If config file doesn't exist, use environment variables only
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
