package admissions

import (
	"testing"

	"munaucollege_go/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.AdmissionStatus
		to   models.AdmissionStatus
		want bool
	}{
		{"draft to submitted", models.AdmissionDraft, models.AdmissionSubmitted, true},
		{"submitted to shortlisted", models.AdmissionSubmitted, models.AdmissionShortlisted, true},
		{"submitted to rejected", models.AdmissionSubmitted, models.AdmissionRejected, true},
		{"shortlisted to admitted", models.AdmissionShortlisted, models.AdmissionAdmitted, true},
		{"shortlisted to rejected", models.AdmissionShortlisted, models.AdmissionRejected, true},
		{"admitted to accepted", models.AdmissionAdmitted, models.AdmissionAccepted, true},
		{"draft cannot be admitted directly", models.AdmissionDraft, models.AdmissionAdmitted, false},
		{"draft cannot be rejected", models.AdmissionDraft, models.AdmissionRejected, false},
		{"accepted is terminal", models.AdmissionAccepted, models.AdmissionSubmitted, false},
		{"rejected is terminal", models.AdmissionRejected, models.AdmissionShortlisted, false},
		{"no backwards transition", models.AdmissionAdmitted, models.AdmissionShortlisted, false},
		{"unknown status", models.AdmissionStatus("pending"), models.AdmissionSubmitted, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Fatalf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestIsValidAdmissionStatus(t *testing.T) {
	valid := []models.AdmissionStatus{
		models.AdmissionDraft, models.AdmissionSubmitted, models.AdmissionShortlisted,
		models.AdmissionAdmitted, models.AdmissionAccepted, models.AdmissionRejected,
	}
	for _, s := range valid {
		if !models.IsValidAdmissionStatus(s) {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	for _, s := range []models.AdmissionStatus{"pending", "approved", ""} {
		if models.IsValidAdmissionStatus(s) {
			t.Fatalf("expected %s to be invalid", s)
		}
	}
}
