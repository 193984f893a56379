package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	os.Setenv("DB_PASSWORD", "test")
	t.Cleanup(os.Clearenv)
}

func TestLoad_PolicyDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Policy.Timezone != "Asia/Kolkata" {
		t.Errorf("Timezone: got %q, want Asia/Kolkata", cfg.Policy.Timezone)
	}
	if cfg.Policy.MobileLoginStartHour != 10 || cfg.Policy.MobileLoginEndHour != 13 {
		t.Errorf("mobile window: got [%d, %d), want [10, 13)",
			cfg.Policy.MobileLoginStartHour, cfg.Policy.MobileLoginEndHour)
	}
	if cfg.Policy.PaymentWindowStart != 10 || cfg.Policy.PaymentWindowEnd != 11 {
		t.Errorf("payment window: got [%d, %d), want [10, 11)",
			cfg.Policy.PaymentWindowStart, cfg.Policy.PaymentWindowEnd)
	}
	if cfg.Policy.ChallengesPerDay != 5 {
		t.Errorf("ChallengesPerDay: got %d, want 5", cfg.Policy.ChallengesPerDay)
	}
	if cfg.Policy.ResetRequestsPerDay != 1 {
		t.Errorf("ResetRequestsPerDay: got %d, want 1", cfg.Policy.ResetRequestsPerDay)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing JWT_SECRET")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing DB_PASSWORD")
	}
}

func TestLoad_WeakJWTSecretRejected(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("JWT_SECRET", "changeme")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for weak JWT_SECRET")
	}
}

func TestLoad_InvalidTimezoneRejected(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("POLICY_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for invalid POLICY_TIMEZONE")
	}
}

func TestLoad_InvalidWindowRejected(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("MOBILE_LOGIN_START_HOUR", "13")
	os.Setenv("MOBILE_LOGIN_END_HOUR", "10")

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for inverted window")
	}
}

func TestLoad_CustomWindows(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("MOBILE_LOGIN_START_HOUR", "9")
	os.Setenv("MOBILE_LOGIN_END_HOUR", "17")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.Policy.MobileLoginStartHour != 9 || cfg.Policy.MobileLoginEndHour != 17 {
		t.Errorf("mobile window: got [%d, %d), want [9, 17)",
			cfg.Policy.MobileLoginStartHour, cfg.Policy.MobileLoginEndHour)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		Name:     "gatekeeper",
		SSLMode:  "require",
	}

	want := "postgres://app:pw@db.internal:5433/gatekeeper?sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
