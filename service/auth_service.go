package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"go-todo-api/logger"

	"golang.org/x/crypto/bcrypt"
)

const saltSize = 32

// GenerateSalt returns 32 random bytes, base64 encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// saltedDigest folds password and salt into a fixed 64-char input so the
// bcrypt 72-byte limit never truncates the salt.
func saltedDigest(password, salt string) []byte {
	sum := sha256.Sum256([]byte(password + salt))
	return []byte(hex.EncodeToString(sum[:]))
}

func HashPassword(password, salt string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(saltedDigest(password, salt), cost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func CheckPassword(password, salt, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), saltedDigest(password, salt))
	return err == nil
}
