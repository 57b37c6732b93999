package faculty

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordLength is the length of generated passwords.
	PasswordLength = 6

	// PasswordAlphabet is the character set for generated passwords.
	PasswordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// BcryptCost matches the cost used for stored hashes.
	BcryptCost = 10

	// tokenBytes is the entropy of a public profile token (hex-encoded to 32 chars).
	tokenBytes = 16
)

// ErrInvalidPassword is returned when a password does not match its hash.
var ErrInvalidPassword = errors.New("invalid password")

// GenerateFacultyID returns an id of the form YYxxxxxx: the two-digit year of
// now followed by six random digits.
func GenerateFacultyID(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generating faculty id: %w", err)
	}
	return fmt.Sprintf("%02d%06d", now.Year()%100, n.Int64()), nil
}

// GeneratePassword returns a random PasswordLength-character password drawn
// from PasswordAlphabet.
func GeneratePassword() (string, error) {
	buf := make([]byte, PasswordLength)
	max := big.NewInt(int64(len(PasswordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		buf[i] = PasswordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// HashPassword hashes a raw password for storage.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a raw password against a stored hash.
func CheckPassword(hash, raw string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// GenerateProfileToken returns a random hex token for public profile links.
func GenerateProfileToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating profile token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
