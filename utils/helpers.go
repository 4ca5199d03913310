package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateRandomString generates a random string of specified length
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GeneratePaymentReference builds a globally unique payment reference.
// Uniqueness is the contract; the PAY-<unix>-<suffix> shape is not.
func GeneratePaymentReference() string {
	return fmt.Sprintf("PAY-%d-%s", time.Now().Unix(), randomSuffix(8))
}

// GenerateReceiptNumber builds a globally unique receipt number.
func GenerateReceiptNumber() string {
	return fmt.Sprintf("REC-%d-%s", time.Now().Year(), randomSuffix(10))
}

// GenerateApplicationNumber builds a globally unique admission application number.
func GenerateApplicationNumber() string {
	return fmt.Sprintf("APP-%d-%s", time.Now().Year(), randomSuffix(8))
}

// GenerateRegistrationNumber builds a globally unique student registration number.
func GenerateRegistrationNumber() string {
	return fmt.Sprintf("REG-%d-%s", time.Now().Year(), randomSuffix(6))
}

// GenerateIDCardRequestNumber builds a globally unique ID card request number.
func GenerateIDCardRequestNumber() string {
	return fmt.Sprintf("IDC-%d-%s", time.Now().Unix(), randomSuffix(6))
}

// GenerateMatricNumber builds a matric number like CSC/2026/0042.
func GenerateMatricNumber(programCode string, sequence int) string {
	return fmt.Sprintf("%s/%d/%04d", strings.ToUpper(programCode), time.Now().Year(), sequence)
}

func randomSuffix(n int) string {
	s := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	validRoles := []string{"admin", "staff", "student"}
	for _, validRole := range validRoles {
		if role == validRole {
			return true
		}
	}
	return false
}

// IsValidStatus checks if a status is valid
func IsValidStatus(status string) bool {
	validStatuses := []string{"active", "inactive", "suspended"}
	for _, validStatus := range validStatuses {
		if status == validStatus {
			return true
		}
	}
	return false
}

// IsValidFileExtension checks if file extension is allowed
func IsValidFileExtension(filename string, allowedExtensions []string) bool {
	if filename == "" {
		return false
	}

	parts := strings.Split(filename, ".")
	if len(parts) < 2 {
		return false
	}

	ext := strings.ToLower(parts[len(parts)-1])

	for _, allowedExt := range allowedExtensions {
		if ext == strings.ToLower(allowedExt) {
			return true
		}
	}
	return false
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
