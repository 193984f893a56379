package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Session  SessionConfig
	Policy   PolicyConfig
	Email    EmailConfig
	Checkout CheckoutConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
}

type SessionConfig struct {
	JWTSecret      string
	IdentitySecret string
	TokenExpiry    time.Duration
	CleanupPeriod  time.Duration
}

// PolicyConfig holds the gating rules that are tunable per deployment.
// Hours are local to Timezone; windows are half-open [start, end).
type PolicyConfig struct {
	Timezone             string
	MobileLoginStartHour int
	MobileLoginEndHour   int
	PaymentWindowStart   int
	PaymentWindowEnd     int
	ChallengesPerDay     int
	ResetRequestsPerDay  int
	AttemptRetentionDays int
}

type EmailConfig struct {
	AWSRegion   string
	FromAddress string
}

type CheckoutConfig struct {
	BaseURL     string
	KeyID       string
	KeySecret   string
	CallTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "gatekeeper"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
		},
		Session: SessionConfig{
			JWTSecret:      jwtSecret,
			IdentitySecret: getEnv("IDP_SECRET", jwtSecret),
			TokenExpiry:    getEnvAsDuration("SESSION_TOKEN_EXPIRY", 24*time.Hour),
			CleanupPeriod:  getEnvAsDuration("CLEANUP_PERIOD", 1*time.Hour),
		},
		Policy: PolicyConfig{
			Timezone:             getEnv("POLICY_TIMEZONE", "Asia/Kolkata"),
			MobileLoginStartHour: getEnvAsInt("MOBILE_LOGIN_START_HOUR", 10),
			MobileLoginEndHour:   getEnvAsInt("MOBILE_LOGIN_END_HOUR", 13),
			PaymentWindowStart:   getEnvAsInt("PAYMENT_WINDOW_START_HOUR", 10),
			PaymentWindowEnd:     getEnvAsInt("PAYMENT_WINDOW_END_HOUR", 11),
			ChallengesPerDay:     getEnvAsInt("CHALLENGES_PER_DAY", 5),
			ResetRequestsPerDay:  getEnvAsInt("RESET_REQUESTS_PER_DAY", 1),
			AttemptRetentionDays: getEnvAsInt("ATTEMPT_RETENTION_DAYS", 90),
		},
		Email: EmailConfig{
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "no-reply@careerdeck.example"),
		},
		Checkout: CheckoutConfig{
			BaseURL:     getEnv("CHECKOUT_BASE_URL", "https://api.razorpay.com/v1"),
			KeyID:       getEnv("CHECKOUT_KEY_ID", ""),
			KeySecret:   getEnv("CHECKOUT_KEY_SECRET", ""),
			CallTimeout: getEnvAsDuration("CHECKOUT_CALL_TIMEOUT", 10*time.Second),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if err := validatePolicy(&cfg.Policy); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for the session secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func validatePolicy(p *PolicyConfig) error {
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("invalid POLICY_TIMEZONE %q: %w", p.Timezone, err)
	}
	for _, w := range [][2]int{
		{p.MobileLoginStartHour, p.MobileLoginEndHour},
		{p.PaymentWindowStart, p.PaymentWindowEnd},
	} {
		if w[0] < 0 || w[0] > 23 || w[1] < 1 || w[1] > 24 || w[0] >= w[1] {
			return fmt.Errorf("policy window [%d, %d) is not a valid hour range", w[0], w[1])
		}
	}
	if p.ChallengesPerDay < 1 {
		return fmt.Errorf("CHALLENGES_PER_DAY must be at least 1")
	}
	return nil
}

func parseAllowedOrigins(env string) []string {
	raw := getEnv("ALLOWED_ORIGINS", "")
	if raw != "" {
		return splitAndTrim(raw)
	}
	if env == "production" {
		return nil
	}
	return []string{"http://localhost:3000"}
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
