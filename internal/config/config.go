package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultJWTSecret is the development secret. Validate rejects it in production.
const DefaultJWTSecret = "supersecretkey"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Port string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and
	// not the default, and panic stacks are hidden from responses.
	Env string

	JWTSecret string
	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int
	JWTIssuer      string

	// StoreDriver selects the persistence backend: "memory" (default) or "postgres".
	StoreDriver string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// RedisAddr enables the Redis token denylist when set; otherwise revocations live in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string
	LogLevel  string

	// CORSAllowedOrigins is a list of origins allowed for CORS (e.g. https://app.example.com, http://localhost:3000).
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string

	// Requests per 15 minute window per client IP.
	RateLimitRequests      int
	RateLimitBurst         int
	LoginRateLimitRequests int
	LoginRateLimitBurst    int

	// TrustedProxy makes the server take the client IP from X-Forwarded-For or
	// X-Real-IP. Enable only behind a reverse proxy that overwrites those headers.
	TrustedProxy bool

	MaxBodyBytes int64

	// SMTP settings. The SMTP mailer is used when SMTPHost and SMTPFrom are set.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SMTPSecurity string

	SeedAdminPassword  string
	SeedAuthorPassword string

	// AuditRetentionDays prunes older audit entries daily. 0 keeps them forever.
	AuditRetentionDays int
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "dev"),

		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		JWTIssuer:      getEnv("JWT_ISSUER", "blog-api"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "blogdb"),
		DBUser: getEnv("DB_USER", "bloguser"),
		DBPass: getEnv("DB_PASS", "blogpass"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// Optional TLS configuration for HTTPS.
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),

		RateLimitRequests:      getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		LoginRateLimitRequests: getEnvInt("LOGIN_RATE_LIMIT_REQUESTS", 5),
		LoginRateLimitBurst:    getEnvInt("LOGIN_RATE_LIMIT_BURST", 5),
		TrustedProxy:           getEnvBool("TRUSTED_PROXY", false),

		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 10<<20)),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPSecurity: getEnv("SMTP_SECURITY", "starttls"),

		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		SeedAuthorPassword: getEnv("SEED_AUTHOR_PASSWORD", "autor123"),

		AuditRetentionDays: getEnvInt("AUDIT_RETENTION_DAYS", 90),
	}
}

// IsProd reports whether the server runs in production mode.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// Validate rejects configurations the server must not start with.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if c.IsProd() && c.JWTSecret == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed from the default in production"))
	}
	switch c.StoreDriver {
	case DriverMemory, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// SMTPEnabled reports whether enough SMTP settings are present to send mail.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// DSN returns the lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
