package admissions

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"munaucollege_go/database"
	"munaucollege_go/models"
	"munaucollege_go/services/notifications"
	"munaucollege_go/utils"
)

var (
	// ErrInvalidTransition means the requested status change is not allowed
	// from the application's current status.
	ErrInvalidTransition = errors.New("invalid admission status transition")
)

// Service drives an application through the admission workflow:
// draft -> submitted -> shortlisted -> admitted -> accepted, with rejection
// possible at screening.
type Service struct {
	db    *gorm.DB
	notif *notifications.Service
}

func NewService() *Service {
	return &Service{db: database.GetDB(), notif: notifications.NewService()}
}

func NewServiceWithDB(db *gorm.DB) *Service {
	return &Service{db: db, notif: notifications.NewServiceWithDB(db)}
}

// ApplicationInput carries the applicant-supplied fields for a new application.
type ApplicationInput struct {
	UserID           *uint
	FirstName        string
	LastName         string
	MiddleName       string
	Gender           string
	DateOfBirth      *time.Time
	Email            string
	Phone            string
	Address          string
	City             string
	State            string
	Country          string
	ProgramID        uint
	AdmissionType    string
	JambRegistration string
	JambScore        *int
	PostUtmeScore    *int
	OLevelResultNo   string
	OLevelYear       *int
}

// CanTransition reports whether an application may move between two statuses.
// Pure; exported for reuse by controllers rejecting bad requests early.
func CanTransition(from, to models.AdmissionStatus) bool {
	allowed := map[models.AdmissionStatus][]models.AdmissionStatus{
		models.AdmissionDraft:       {models.AdmissionSubmitted},
		models.AdmissionSubmitted:   {models.AdmissionShortlisted, models.AdmissionRejected},
		models.AdmissionShortlisted: {models.AdmissionAdmitted, models.AdmissionRejected},
		models.AdmissionAdmitted:    {models.AdmissionAccepted},
	}
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateApplication opens a draft application with a unique application number.
func (s *Service) CreateApplication(in ApplicationInput) (*models.Admission, error) {
	country := in.Country
	if country == "" {
		country = "Nigeria"
	}
	admission := models.Admission{
		UserID:            in.UserID,
		ApplicationNumber: utils.GenerateApplicationNumber(),
		Status:            models.AdmissionDraft,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		MiddleName:        in.MiddleName,
		Gender:            in.Gender,
		DateOfBirth:       in.DateOfBirth,
		Email:             in.Email,
		Phone:             in.Phone,
		Address:           in.Address,
		City:              in.City,
		State:             in.State,
		Country:           country,
		ProgramID:         in.ProgramID,
		AdmissionType:     in.AdmissionType,
		JambRegistration:  in.JambRegistration,
		JambScore:         in.JambScore,
		PostUtmeScore:     in.PostUtmeScore,
		OLevelResultNo:    in.OLevelResultNo,
		OLevelYear:        in.OLevelYear,
	}
	if err := s.db.Create(&admission).Error; err != nil {
		return nil, fmt.Errorf("failed to create admission application: %w", err)
	}
	return &admission, nil
}

// SubmitApplication moves a draft to submitted and notifies the applicant and
// the back office.
func (s *Service) SubmitApplication(admission *models.Admission) error {
	if !CanTransition(admission.Status, models.AdmissionSubmitted) {
		return ErrInvalidTransition
	}
	now := time.Now()
	err := s.db.Model(admission).Updates(map[string]interface{}{
		"status":       models.AdmissionSubmitted,
		"submitted_at": now,
	}).Error
	if err != nil {
		return err
	}
	admission.Status = models.AdmissionSubmitted
	admission.SubmittedAt = &now

	s.notifyApplicant(admission, notifications.AdmissionSubmitted(admission.ApplicationNumber))
	s.notifyAdmins(admission)
	return nil
}

// ScreenApplication shortlists or rejects a submitted application.
func (s *Service) ScreenApplication(admission *models.Admission, shortlisted bool, remarks string) error {
	target := models.AdmissionRejected
	if shortlisted {
		target = models.AdmissionShortlisted
	}
	if !CanTransition(admission.Status, target) {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"status":            target,
		"admission_remarks": remarks,
	}
	now := time.Now()
	if shortlisted {
		updates["shortlisted_at"] = now
	}
	if err := s.db.Model(admission).Updates(updates).Error; err != nil {
		return err
	}
	admission.Status = target

	if shortlisted {
		s.db.Preload("Program").First(admission, admission.ID)
		s.notifyApplicant(admission, notifications.AdmissionShortlisted(admission.Program.Name))
	} else {
		s.notifyApplicant(admission, notifications.AdmissionRejected())
	}
	return nil
}

// AdmitStudent approves a shortlisted application.
func (s *Service) AdmitStudent(admission *models.Admission, remarks string) error {
	if !CanTransition(admission.Status, models.AdmissionAdmitted) {
		return ErrInvalidTransition
	}
	err := s.db.Model(admission).Updates(map[string]interface{}{
		"status":            models.AdmissionAdmitted,
		"admission_remarks": remarks,
	}).Error
	if err != nil {
		return err
	}
	admission.Status = models.AdmissionAdmitted
	s.notifyApplicant(admission, notifications.AdmissionApproved())
	return nil
}

// AcceptAdmission onboards an admitted applicant: creates the user account and
// the student record (matric number, level 100) in one transaction.
func (s *Service) AcceptAdmission(admission *models.Admission) (*models.Student, error) {
	if !CanTransition(admission.Status, models.AdmissionAccepted) {
		return nil, ErrInvalidTransition
	}

	var program models.Program
	if err := s.db.First(&program, admission.ProgramID).Error; err != nil {
		return nil, fmt.Errorf("program not found: %w", err)
	}

	tempPassword, err := utils.GenerateRandomString(16)
	if err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var student models.Student
	err = s.db.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Email:       admission.Email,
			Password:    hashed,
			Phone:       admission.Phone,
			FirstName:   admission.FirstName,
			LastName:    admission.LastName,
			MiddleName:  admission.MiddleName,
			Gender:      admission.Gender,
			DateOfBirth: admission.DateOfBirth,
			Address:     admission.Address,
			City:        admission.City,
			State:       admission.State,
			Country:     admission.Country,
			Role:        "student",
			Status:      "active",
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create student user: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Student{}).Where("program_id = ?", admission.ProgramID).Count(&count).Error; err != nil {
			return err
		}

		student = models.Student{
			UserID:                 user.ID,
			MatricNumber:           utils.GenerateMatricNumber(program.Code, int(count)+1),
			RegistrationNumber:     utils.GenerateRegistrationNumber(),
			Status:                 "active",
			AdmissionDate:          &now,
			DepartmentID:           program.DepartmentID,
			ProgramID:              admission.ProgramID,
			CurrentLevel:           100,
			AdmissionType:          admission.AdmissionType,
			JambRegistrationNumber: admission.JambRegistration,
		}
		if err := tx.Create(&student).Error; err != nil {
			return fmt.Errorf("failed to create student record: %w", err)
		}

		return tx.Model(admission).Updates(map[string]interface{}{
			"status":  models.AdmissionAccepted,
			"user_id": user.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	admission.Status = models.AdmissionAccepted
	admission.UserID = &student.UserID

	go func(userID uint) {
		if err := s.notif.EnqueueOrCreate([]uint{userID}, notifications.StudentOnboarded()); err != nil {
			logrus.WithError(err).Warn("failed to dispatch onboarding notification")
		}
	}(student.UserID)
	return &student, nil
}

// notifyApplicant delivers a notification to the applicant's linked user
// account, if any. Applications created before registration have none.
func (s *Service) notifyApplicant(admission *models.Admission, n notifications.Payload) {
	if admission.UserID == nil {
		return
	}
	userID := *admission.UserID
	go func() {
		if err := s.notif.EnqueueOrCreate([]uint{userID}, n); err != nil {
			logrus.WithError(err).WithField("admission_id", admission.ID).
				Warn("failed to dispatch admission notification")
		}
	}()
}

func (s *Service) notifyAdmins(admission *models.Admission) {
	var adminIDs []uint
	if err := s.db.Model(&models.User{}).Where("role = ?", "admin").Pluck("id", &adminIDs).Error; err != nil || len(adminIDs) == 0 {
		return
	}
	name := admission.FirstName + " " + admission.LastName
	var program models.Program
	s.db.First(&program, admission.ProgramID)
	go func() {
		if err := s.notif.EnqueueOrCreate(adminIDs, notifications.NewApplicationForAdmins(name, program.Name)); err != nil {
			logrus.WithError(err).Warn("failed to notify admins of new application")
		}
	}()
}
