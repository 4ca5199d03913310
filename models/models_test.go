package models

import (
	"testing"
	"time"
)

func TestIsRegistrationOpen(t *testing.T) {
	session := AcademicSession{
		RegistrationOpens:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		RegistrationCloses: time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before window", time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC), false},
		{"opening instant", session.RegistrationOpens, true},
		{"mid window", time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC), true},
		{"closing instant", session.RegistrationCloses, true},
		{"after window", time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := session.IsRegistrationOpen(tc.now); got != tc.want {
				t.Fatalf("IsRegistrationOpen(%s) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var j JSON
	if err := j.Scan([]byte(`{"key":"value"}`)); err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	v, err := j.Value()
	if err != nil {
		t.Fatalf("unexpected value error: %v", err)
	}
	if v.(string) != `{"key":"value"}` {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestJSONNullHandling(t *testing.T) {
	var j JSON
	if !j.IsNull() {
		t.Fatalf("empty JSON should be null")
	}
	v, err := j.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("expected nil driver value for null JSON")
	}
	if b, _ := j.MarshalJSON(); string(b) != "null" {
		t.Fatalf("expected null marshal, got %s", b)
	}
}
