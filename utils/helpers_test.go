package utils

import (
	"strings"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatalf("password stored in plain text")
	}
	if err := CheckPassword("s3cret-pass", hash); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword("wrong-pass", hash); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestGeneratePaymentReference(t *testing.T) {
	ref := GeneratePaymentReference()
	if !strings.HasPrefix(ref, "PAY-") {
		t.Fatalf("unexpected prefix: %s", ref)
	}

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		r := GeneratePaymentReference()
		if seen[r] {
			t.Fatalf("duplicate payment reference generated: %s", r)
		}
		seen[r] = true
	}
}

func TestGenerateReceiptNumber(t *testing.T) {
	num := GenerateReceiptNumber()
	parts := strings.Split(num, "-")
	if len(parts) != 3 || parts[0] != "REC" {
		t.Fatalf("unexpected receipt number shape: %s", num)
	}
	if parts[1] != time.Now().Format("2006") {
		t.Fatalf("expected current year in receipt number, got %s", num)
	}
}

func TestGenerateMatricNumber(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		sequence int
		want     string
	}{
		{"uppercased code", "csc", 42, "CSC/" + time.Now().Format("2006") + "/0042"},
		{"four digit padding", "BUS", 7, "BUS/" + time.Now().Format("2006") + "/0007"},
		{"large sequence", "MAC", 12345, "MAC/" + time.Now().Format("2006") + "/12345"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := GenerateMatricNumber(tc.code, tc.sequence); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"admin", "staff", "student"} {
		if !IsValidRole(role) {
			t.Fatalf("expected %s to be valid", role)
		}
	}
	for _, role := range []string{"owner", "teacher", ""} {
		if IsValidRole(role) {
			t.Fatalf("expected %s to be invalid", role)
		}
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "png", "pdf"}

	tests := []struct {
		filename string
		want     bool
	}{
		{"waec-result.pdf", true},
		{"passport.JPG", true},
		{"script.exe", false},
		{"noextension", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsValidFileExtension(tc.filename, allowed); got != tc.want {
			t.Fatalf("IsValidFileExtension(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("unexpected sanitized value: %q", got)
	}
}
