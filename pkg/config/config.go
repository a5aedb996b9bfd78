package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevelopmentJWTSecret is the signing secret used when JWT_SECRET is unset.
	DevelopmentJWTSecret = "my_secret_key"
)

type Config struct {
	App       string
	Env       string
	Port      int
	APIPrefix string
	SeedFile  string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Auth        AuthConfig
	CORS        CORSConfig
	Log         LogConfig
	CourseCache CacheConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

// AuthConfig tunes password hashing and the refresh-token ledger.
type AuthConfig struct {
	BcryptCost           int
	EnforceLedgerExpiry  bool
	RefreshSweepInterval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs the optional read-through cache for course payloads.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// Load reads configuration for the named application. The application name
// doubles as the default database name.
func Load(app string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, app)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{App: app}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.SeedFile = v.GetString("SEED_FILE")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Expiration:        parseDuration(v.GetString("ACCESS_TOKEN_EXPIRATION"), 30*time.Minute),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 10*24*time.Hour),
	}

	cost := v.GetInt("BCRYPT_COST")
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	cfg.Auth = AuthConfig{
		BcryptCost:           cost,
		EnforceLedgerExpiry:  v.GetBool("REFRESH_ENFORCE_LEDGER_EXPIRY"),
		RefreshSweepInterval: parseDuration(v.GetString("REFRESH_SWEEP_INTERVAL"), 0),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CourseCache = CacheConfig{
		Enabled: v.GetBool("ENABLE_COURSE_CACHE"),
		TTL:     parseDuration(v.GetString("COURSE_CACHE_TTL"), 5*time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Env == EnvProduction && c.JWT.Secret == DevelopmentJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func setDefaults(v *viper.Viper, app string) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")
	v.SetDefault("SEED_FILE", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", app)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", DevelopmentJWTSecret)
	v.SetDefault("JWT_ISSUER", app)
	v.SetDefault("ACCESS_TOKEN_EXPIRATION", "30m")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "240h")

	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("REFRESH_ENFORCE_LEDGER_EXPIRY", true)
	v.SetDefault("REFRESH_SWEEP_INTERVAL", "0")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_COURSE_CACHE", false)
	v.SetDefault("COURSE_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
