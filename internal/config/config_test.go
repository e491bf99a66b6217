package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("CURRENCY", "")
	t.Setenv("GUEST_VERIFICATION_CODE", "")

	cfg := FromEnv()
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("expected 1 day token ttl, got %v", cfg.AccessTokenTTL)
	}
	if cfg.Currency != "INR" {
		t.Fatalf("expected INR, got %s", cfg.Currency)
	}
	if cfg.GuestVerificationCode != "123456" {
		t.Fatalf("expected demo verification code, got %s", cfg.GuestVerificationCode)
	}
	if cfg.OTPCooldown != 30*time.Second {
		t.Fatalf("expected 30s cooldown, got %v", cfg.OTPCooldown)
	}
}

func TestFromEnvParsesListsAndBools(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("OTP_DEMO_MODE", "true")
	t.Setenv("CART_TTL", "not-a-number")

	cfg := FromEnv()
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if !cfg.OTPDemoMode {
		t.Fatal("expected demo mode on")
	}
	if cfg.CartTTL != 24*time.Hour {
		t.Fatalf("expected default cart ttl on bad input, got %v", cfg.CartTTL)
	}
}

func TestWriteSecretKeepsExistingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MONGO_URI=mongodb://localhost:27017\n"), 0o600); err != nil {
		t.Fatalf("seed env file: %v", err)
	}

	secret, err := WriteSecret(path, "JWT_SECRET")
	if err != nil {
		t.Fatalf("WriteSecret returned error: %v", err)
	}
	if len(secret) != 128 {
		t.Fatalf("expected 128 hex chars, got %d", len(secret))
	}

	values, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if values["JWT_SECRET"] != secret {
		t.Fatal("secret not written")
	}
	if values["MONGO_URI"] != "mongodb://localhost:27017" {
		t.Fatalf("existing key lost: %v", values)
	}
}
