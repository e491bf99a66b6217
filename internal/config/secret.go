package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const secretBytes = 64

// GenerateSecret returns a random 64-byte value encoded as hex.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// WriteSecret stores a fresh secret under key in the env file at path,
// keeping every other entry already present in the file.
func WriteSecret(path, key string) (string, error) {
	values := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		existing, err := godotenv.Read(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		values = existing
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	secret, err := GenerateSecret()
	if err != nil {
		return "", err
	}
	values[key] = secret

	if err := godotenv.Write(values, path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return secret, nil
}
