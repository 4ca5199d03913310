package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestGradeForScore(t *testing.T) {
	tests := []struct {
		name      string
		score     int64
		wantGrade string
		wantPoint int64
	}{
		{"distinction", 85, "A", 5},
		{"A boundary", 70, "A", 5},
		{"B boundary", 60, "B", 4},
		{"C boundary", 50, "C", 3},
		{"D boundary", 45, "D", 2},
		{"E boundary", 40, "E", 1},
		{"just below pass", 39, "F", 0},
		{"zero score", 0, "F", 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			grade, point := GradeForScore(decimal.NewFromInt(tc.score))
			if grade != tc.wantGrade {
				t.Fatalf("GradeForScore(%d) grade = %s, want %s", tc.score, grade, tc.wantGrade)
			}
			if !point.Equal(decimal.NewFromInt(tc.wantPoint)) {
				t.Fatalf("GradeForScore(%d) point = %s, want %d", tc.score, point, tc.wantPoint)
			}
		})
	}
}

func TestComputeGPA(t *testing.T) {
	gp := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	enrollments := []CourseEnrollment{
		{GradePoint: gp(5), Course: Course{CreditUnits: 3}}, // A in a 3-unit course
		{GradePoint: gp(3), Course: Course{CreditUnits: 2}}, // C in a 2-unit course
		{GradePoint: nil, Course: Course{CreditUnits: 3}},   // ungraded, skipped
	}

	// (5*3 + 3*2) / (3 + 2) = 21/5 = 4.2
	if got := ComputeGPA(enrollments); !got.Equal(decimal.NewFromFloat(4.2)) {
		t.Fatalf("expected GPA 4.2, got %s", got)
	}
}

func TestComputeGPANoGrades(t *testing.T) {
	enrollments := []CourseEnrollment{
		{GradePoint: nil, Course: Course{CreditUnits: 3}},
	}
	if got := ComputeGPA(enrollments); !got.IsZero() {
		t.Fatalf("expected zero GPA with no graded courses, got %s", got)
	}
	if got := ComputeGPA(nil); !got.IsZero() {
		t.Fatalf("expected zero GPA for empty slice, got %s", got)
	}
}
