package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// User model
type User struct {
	BaseModel
	Email                string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password             string     `json:"-" gorm:"size:255;not null"`
	Phone                string     `json:"phone" gorm:"size:20"`
	FirstName            string     `json:"first_name" gorm:"size:100"`
	LastName             string     `json:"last_name" gorm:"size:100"`
	MiddleName           string     `json:"middle_name" gorm:"size:100"`
	Gender               string     `json:"gender" gorm:"size:20"`
	DateOfBirth          *time.Time `json:"date_of_birth"`
	Address              string     `json:"address" gorm:"size:500"`
	City                 string     `json:"city" gorm:"size:100"`
	State                string     `json:"state" gorm:"size:100"`
	Country              string     `json:"country" gorm:"size:100;default:'Nigeria'"`
	Role                 string     `json:"role" gorm:"size:50;not null;default:'student';type:enum('admin','staff','student')"` // admin, staff, student
	Status               string     `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"`
	Avatar               string     `json:"avatar" gorm:"size:500"`
	PasswordResetToken   string     `json:"-" gorm:"size:255"`
	PasswordResetExpires *time.Time `json:"-"`

	// Relationships
	Student *Student `json:"student,omitempty" gorm:"foreignKey:UserID"`
}

// Department model
type Department struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null"`
	Code        string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`

	// Relationships
	Programs []Program `json:"programs,omitempty" gorm:"foreignKey:DepartmentID"`
}

// Program model
type Program struct {
	BaseModel
	DepartmentID  uint   `json:"department_id" gorm:"not null"`
	Name          string `json:"name" gorm:"size:255;not null"`
	Code          string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	DegreeAwarded string `json:"degree_awarded" gorm:"size:100"`
	DurationYears int    `json:"duration_years" gorm:"default:4"`
	Description   string `json:"description" gorm:"type:text"`
	Active        bool   `json:"active" gorm:"default:true"`

	// Relationships
	Department Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

// AcademicSession model. The "current" session is resolved once at the request
// boundary and passed down; services never query for it themselves.
type AcademicSession struct {
	BaseModel
	SessionName        string     `json:"session_name" gorm:"size:50;not null;uniqueIndex"` // e.g. 2025/2026
	StartYear          int        `json:"start_year" gorm:"not null"`
	EndYear            int        `json:"end_year" gorm:"not null"`
	Status             string     `json:"status" gorm:"size:50;default:'upcoming';type:enum('upcoming','active','closed')"`
	RegistrationOpens  time.Time  `json:"registration_opens"`
	RegistrationCloses time.Time  `json:"registration_closes"`
	Semester1Starts    *time.Time `json:"semester1_starts"`
	Semester1Ends      *time.Time `json:"semester1_ends"`
	Semester2Starts    *time.Time `json:"semester2_starts"`
	Semester2Ends      *time.Time `json:"semester2_ends"`
	IsCurrent          bool       `json:"is_current" gorm:"default:false"`
}

func (s *AcademicSession) IsRegistrationOpen(now time.Time) bool {
	return !now.Before(s.RegistrationOpens) && !now.After(s.RegistrationCloses)
}

// Student model
type Student struct {
	BaseModel
	UserID                 uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	MatricNumber           string     `json:"matric_number" gorm:"size:50;uniqueIndex"`
	RegistrationNumber     string     `json:"registration_number" gorm:"size:50;uniqueIndex"`
	Status                 string     `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','deferred','suspended','graduated','withdrawn')"`
	AdmissionDate          *time.Time `json:"admission_date"`
	DepartmentID           uint       `json:"department_id" gorm:"not null"`
	ProgramID              uint       `json:"program_id" gorm:"not null"`
	CurrentLevel           int        `json:"current_level" gorm:"default:100"`
	AdmissionType          string     `json:"admission_type" gorm:"size:50"`
	JambRegistrationNumber string     `json:"jamb_registration_number" gorm:"size:50"`
	NextOfKinName          string     `json:"next_of_kin_name" gorm:"size:200"`
	NextOfKinPhone         string     `json:"next_of_kin_phone" gorm:"size:20"`
	NextOfKinRelationship  string     `json:"next_of_kin_relationship" gorm:"size:50"`
	IsSponsored            bool       `json:"is_sponsored" gorm:"default:false"`
	SponsorName            string     `json:"sponsor_name" gorm:"size:200"`
	SponsorContact         string     `json:"sponsor_contact" gorm:"size:200"`

	// Relationships
	User       User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Department Department  `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	Program    Program     `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
	SchoolFees []SchoolFee `json:"school_fees,omitempty" gorm:"foreignKey:StudentID"`
}

// AdmissionStatus is the closed set of admission workflow states. Transitions
// between them are validated by the admissions service; consumers must handle
// every constant below.
type AdmissionStatus string

const (
	AdmissionDraft       AdmissionStatus = "draft"
	AdmissionSubmitted   AdmissionStatus = "submitted"
	AdmissionShortlisted AdmissionStatus = "shortlisted"
	AdmissionAdmitted    AdmissionStatus = "admitted"
	AdmissionAccepted    AdmissionStatus = "accepted"
	AdmissionRejected    AdmissionStatus = "rejected"
)

// IsValidAdmissionStatus reports whether s is a known workflow state.
func IsValidAdmissionStatus(s AdmissionStatus) bool {
	switch s {
	case AdmissionDraft, AdmissionSubmitted, AdmissionShortlisted,
		AdmissionAdmitted, AdmissionAccepted, AdmissionRejected:
		return true
	}
	return false
}

// Admission model tracks an application through the admission workflow.
type Admission struct {
	BaseModel
	UserID            *uint           `json:"user_id"`
	ApplicationNumber string          `json:"application_number" gorm:"size:50;not null;uniqueIndex"`
	Status            AdmissionStatus `json:"status" gorm:"size:50;not null;default:'draft';type:enum('draft','submitted','shortlisted','admitted','accepted','rejected')"`
	FirstName         string          `json:"first_name" gorm:"size:100;not null"`
	LastName          string          `json:"last_name" gorm:"size:100;not null"`
	MiddleName        string          `json:"middle_name" gorm:"size:100"`
	Gender            string          `json:"gender" gorm:"size:20"`
	DateOfBirth       *time.Time      `json:"date_of_birth"`
	Email             string          `json:"email" gorm:"size:255;not null"`
	Phone             string          `json:"phone" gorm:"size:20;not null"`
	Address           string          `json:"address" gorm:"size:500"`
	City              string          `json:"city" gorm:"size:100"`
	State             string          `json:"state" gorm:"size:100"`
	Country           string          `json:"country" gorm:"size:100;default:'Nigeria'"`
	ProgramID         uint            `json:"program_id" gorm:"not null"`
	AdmissionType     string          `json:"admission_type" gorm:"size:50"`
	JambRegistration  string          `json:"jamb_registration_number" gorm:"size:50"`
	JambScore         *int            `json:"jamb_score"`
	PostUtmeScore     *int            `json:"post_utme_score"`
	OLevelResultNo    string          `json:"o_level_result_number" gorm:"size:50"`
	OLevelYear        *int            `json:"o_level_year"`
	AdmissionRemarks  string          `json:"admission_remarks" gorm:"type:text"`
	SubmittedAt       *time.Time      `json:"submitted_at"`
	ShortlistedAt     *time.Time      `json:"shortlisted_at"`

	// Relationships
	Program   Program             `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
	Documents []AdmissionDocument `json:"documents,omitempty" gorm:"foreignKey:AdmissionID"`
}

// AdmissionDocument model
type AdmissionDocument struct {
	BaseModel
	AdmissionID      uint       `json:"admission_id" gorm:"not null;index"`
	DocumentType     string     `json:"document_type" gorm:"size:100;not null"`
	FilePath         string     `json:"file_path" gorm:"size:500;not null"`
	OriginalFilename string     `json:"original_filename" gorm:"size:255"`
	FileSize         int64      `json:"file_size"`
	MimeType         string     `json:"mime_type" gorm:"size:100"`
	UploadedAt       *time.Time `json:"uploaded_at"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Type      string     `json:"type" gorm:"size:50;not null"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	Category  string     `json:"category" gorm:"size:50;not null;type:enum('admission','finance','academic','hostel','general')"`
	ActionURL string     `json:"action_url" gorm:"size:500"`
	Read      bool       `json:"read" gorm:"default:false"`
	ReadAt    *time.Time `json:"read_at"`
	SentAt    *time.Time `json:"sent_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"`
	Error       string    `json:"error" gorm:"type:text"`
}
