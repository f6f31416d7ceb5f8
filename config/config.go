package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`

	// Booking backend.
	BackendURL       string        `mapstructure:"BACKEND_URL"`
	BackendTimeout   time.Duration `mapstructure:"BACKEND_TIMEOUT"`
	ReadRetryCount   int           `mapstructure:"READ_RETRY_COUNT"`
	DefaultTimezone  string        `mapstructure:"DEFAULT_TIMEZONE"`
	CalendarPageSize int           `mapstructure:"CALENDAR_PAGE_SIZE"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// Cache lifetimes.
	QueryStaleTime   time.Duration `mapstructure:"QUERY_STALE_TIME"`
	AuthStaleTime    time.Duration `mapstructure:"AUTH_STALE_TIME"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	MutationLockTTL  time.Duration `mapstructure:"MUTATION_LOCK_TTL"`
	HealthCheckEvery string        `mapstructure:"HEALTH_CHECK_EVERY"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, continuing with process environment")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SetDefaults registers every default so AutomaticEnv can resolve the keys.
func SetDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("BACKEND_URL", "http://localhost:3000/api")
	viper.SetDefault("BACKEND_TIMEOUT", 30*time.Second)
	viper.SetDefault("READ_RETRY_COUNT", 3)
	viper.SetDefault("DEFAULT_TIMEZONE", "UTC")
	viper.SetDefault("CALENDAR_PAGE_SIZE", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_SESSION_DB", 1)
	viper.SetDefault("QUERY_STALE_TIME", time.Minute)
	viper.SetDefault("AUTH_STALE_TIME", 5*time.Minute)
	viper.SetDefault("SESSION_TTL", 7*24*time.Hour)
	viper.SetDefault("MUTATION_LOCK_TTL", 45*time.Second)
	viper.SetDefault("HEALTH_CHECK_EVERY", "@every 1m")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
