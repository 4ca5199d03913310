package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourseType classifies how a course counts toward a program.
type CourseType string

const (
	CourseCore           CourseType = "core"
	CourseElective       CourseType = "elective"
	CourseGeneralStudies CourseType = "general_studies"
)

// EnrollmentStatus is the state of a student's registration on a course.
type EnrollmentStatus string

const (
	EnrollmentActive     EnrollmentStatus = "active"
	EnrollmentCompleted  EnrollmentStatus = "completed"
	EnrollmentDropped    EnrollmentStatus = "dropped"
	EnrollmentIncomplete EnrollmentStatus = "incomplete"
)

// Course model
type Course struct {
	BaseModel
	Code         string     `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	CreditUnits  int        `json:"credit_units" gorm:"default:3"`
	Level        int        `json:"level" gorm:"default:100;index"`
	DepartmentID uint       `json:"department_id" gorm:"not null;index"`
	CourseType   CourseType `json:"course_type" gorm:"size:50;default:'core';type:enum('core','elective','general_studies')"`
	LecturerID   *uint      `json:"lecturer_id"`
	Semester     int        `json:"semester" gorm:"default:1"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`

	// Relationships
	Department Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	Lecturer   *User      `json:"lecturer,omitempty" gorm:"foreignKey:LecturerID"`
}

// CourseEnrollment is a student's registration on a course for one session.
// The (student, course, session) triple is unique; dropping keeps the row with
// a dropped status instead of deleting it.
type CourseEnrollment struct {
	BaseModel
	StudentID         uint             `json:"student_id" gorm:"not null;uniqueIndex:idx_student_course_session;index"`
	CourseID          uint             `json:"course_id" gorm:"not null;uniqueIndex:idx_student_course_session"`
	AcademicSessionID uint             `json:"academic_session_id" gorm:"not null;uniqueIndex:idx_student_course_session"`
	Semester          int              `json:"semester" gorm:"default:1"`
	Status            EnrollmentStatus `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','completed','dropped','incomplete');index"`
	Score             *decimal.Decimal `json:"score" gorm:"type:decimal(5,2)"`
	Grade             string           `json:"grade" gorm:"size:5"`
	GradePoint        *decimal.Decimal `json:"grade_point" gorm:"type:decimal(3,1)"`
	EnrollmentDate    time.Time        `json:"enrollment_date" gorm:"not null"`
	CompletionDate    *time.Time       `json:"completion_date"`

	// Relationships
	Student         Student         `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course          Course          `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	AcademicSession AcademicSession `json:"academic_session,omitempty" gorm:"foreignKey:AcademicSessionID"`
}

// GradeForScore maps a percentage score to the letter grade and grade point on
// the 5-point scale. Scores are clamped to [0, 100] by callers.
func GradeForScore(score decimal.Decimal) (string, decimal.Decimal) {
	switch {
	case score.GreaterThanOrEqual(decimal.NewFromInt(70)):
		return "A", decimal.NewFromInt(5)
	case score.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return "B", decimal.NewFromInt(4)
	case score.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return "C", decimal.NewFromInt(3)
	case score.GreaterThanOrEqual(decimal.NewFromInt(45)):
		return "D", decimal.NewFromInt(2)
	case score.GreaterThanOrEqual(decimal.NewFromInt(40)):
		return "E", decimal.NewFromInt(1)
	default:
		return "F", decimal.Zero
	}
}

// ComputeGPA weights grade points by credit units over the graded enrollments.
// Enrollments without a grade point (still active or dropped) are skipped.
// Returns zero when nothing is graded.
func ComputeGPA(enrollments []CourseEnrollment) decimal.Decimal {
	totalPoints := decimal.Zero
	totalUnits := decimal.Zero
	for _, e := range enrollments {
		if e.GradePoint == nil {
			continue
		}
		units := decimal.NewFromInt(int64(e.Course.CreditUnits))
		totalPoints = totalPoints.Add(e.GradePoint.Mul(units))
		totalUnits = totalUnits.Add(units)
	}
	if totalUnits.IsZero() {
		return decimal.Zero
	}
	return totalPoints.Div(totalUnits).Round(2)
}
