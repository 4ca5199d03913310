package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"munaucollege_go/config"
	"munaucollege_go/database"
	"munaucollege_go/middleware"
	"munaucollege_go/models"
	"munaucollege_go/services/admissions"
	"munaucollege_go/storage"
	"munaucollege_go/utils"

	"github.com/gofiber/fiber/v2"
)

type AdmissionController struct{}

// ApplicationRequest represents the admission application body
type ApplicationRequest struct {
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	MiddleName       string `json:"middle_name"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"date_of_birth"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	Country          string `json:"country"`
	ProgramID        uint   `json:"program_id" validate:"required"`
	AdmissionType    string `json:"admission_type"`
	JambRegistration string `json:"jamb_registration_number"`
	JambScore        *int   `json:"jamb_score"`
	PostUtmeScore    *int   `json:"post_utme_score"`
	OLevelResultNo   string `json:"o_level_result_number"`
	OLevelYear       *int   `json:"o_level_year"`
}

// CreateApplication opens a draft admission application (public endpoint)
func (ac *AdmissionController) CreateApplication(c *fiber.Ctx) error {
	var req ApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var program models.Program
	if err := database.DB.Where("id = ? AND active = ?", req.ProgramID, true).First(&program).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Program not found",
		})
	}

	input := admissions.ApplicationInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		MiddleName:       req.MiddleName,
		Gender:           req.Gender,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		Country:          req.Country,
		ProgramID:        req.ProgramID,
		AdmissionType:    req.AdmissionType,
		JambRegistration: req.JambRegistration,
		JambScore:        req.JambScore,
		PostUtmeScore:    req.PostUtmeScore,
		OLevelResultNo:   req.OLevelResultNo,
		OLevelYear:       req.OLevelYear,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date_of_birth, expected YYYY-MM-DD",
			})
		}
		input.DateOfBirth = &dob
	}

	// Link to the logged-in account when the applicant already registered
	if user, err := middleware.GetCurrentUser(c); err == nil {
		input.UserID = &user.ID
	}

	svc := admissions.NewService()
	admission, err := svc.CreateApplication(input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create application",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Application created successfully",
		"admission": admission,
		"tracking":  admission.ApplicationNumber,
	})
}

// TrackApplication returns the status of an application by its number (public)
func (ac *AdmissionController) TrackApplication(c *fiber.Ctx) error {
	number := c.Params("number")

	var admission models.Admission
	if err := database.DB.Preload("Program").
		Where("application_number = ?", number).First(&admission).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Application not found",
		})
	}

	return c.JSON(fiber.Map{
		"application_number": admission.ApplicationNumber,
		"status":             admission.Status,
		"program":            admission.Program.Name,
		"submitted_at":       admission.SubmittedAt,
	})
}

// GetApplications lists applications for the back office, filterable by status
func (ac *AdmissionController) GetApplications(c *fiber.Ctx) error {
	query := database.DB.Preload("Program").Preload("Documents")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if programID := c.QueryInt("program_id", 0); programID > 0 {
		query = query.Where("program_id = ?", programID)
	}

	var applications []models.Admission
	if err := query.Order("created_at DESC").Limit(200).Find(&applications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch applications",
		})
	}

	return c.JSON(fiber.Map{
		"applications": applications,
		"count":        len(applications),
	})
}

// GetApplication returns a single application with its documents
func (ac *AdmissionController) GetApplication(c *fiber.Ctx) error {
	admission, fiberErr := findAdmission(c)
	if fiberErr != nil {
		return fiberErr
	}

	return c.JSON(fiber.Map{
		"admission": admission,
	})
}

// SubmitApplication moves a draft application into the review queue
func (ac *AdmissionController) SubmitApplication(c *fiber.Ctx) error {
	admission, fiberErr := findAdmission(c)
	if fiberErr != nil {
		return fiberErr
	}

	// Require at least one uploaded document before submission
	var docCount int64
	database.DB.Model(&models.AdmissionDocument{}).Where("admission_id = ?", admission.ID).Count(&docCount)
	if docCount == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Upload at least one supporting document before submitting",
		})
	}

	svc := admissions.NewService()
	if err := svc.SubmitApplication(admission); err != nil {
		if errors.Is(err, admissions.ErrInvalidTransition) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Application cannot be submitted from status " + string(admission.Status),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit application",
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Application submitted successfully",
		"admission": admission,
	})
}

// UploadDocument attaches a supporting document to an application
func (ac *AdmissionController) UploadDocument(c *fiber.Ctx) error {
	admission, fiberErr := findAdmission(c)
	if fiberErr != nil {
		return fiberErr
	}

	documentType := c.FormValue("document_type")
	if documentType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document_type is required",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}
	if fileHeader.Size > config.AppConfig.MaxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File too large",
		})
	}
	allowed := splitExtensions(config.AppConfig.AllowedExtensions)
	if !utils.IsValidFileExtension(fileHeader.Filename, allowed) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File type not allowed",
		})
	}

	store, err := storage.NewStorageService()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Storage unavailable",
		})
	}
	url, err := store.UploadDocument(fileHeader, "admissions", admission.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload document",
		})
	}

	now := time.Now()
	doc := models.AdmissionDocument{
		AdmissionID:      admission.ID,
		DocumentType:     documentType,
		FilePath:         url,
		OriginalFilename: fileHeader.Filename,
		FileSize:         fileHeader.Size,
		MimeType:         fileHeader.Header.Get("Content-Type"),
		UploadedAt:       &now,
	}
	if err := database.DB.Create(&doc).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save document record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// ScreenApplication shortlists or rejects a submitted application (staff)
func (ac *AdmissionController) ScreenApplication(c *fiber.Ctx) error {
	admission, fiberErr := findAdmission(c)
	if fiberErr != nil {
		return fiberErr
	}

	var req struct {
		Shortlisted bool   `json:"shortlisted"`
		Remarks     string `json:"remarks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	svc := admissions.NewService()
	if err := svc.ScreenApplication(admission, req.Shortlisted, req.Remarks); err != nil {
		if errors.Is(err, admissions.ErrInvalidTransition) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Application cannot be screened from status " + string(admission.Status),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to screen application",
		})
	}

	middleware.LogActivity(c, "UPDATE", "admissions", admission.ID, fiber.Map{
		"action":      "screen",
		"shortlisted": req.Shortlisted,
	})

	return c.JSON(fiber.Map{
		"message":   "Application screened",
		"admission": admission,
	})
}

// AdmitStudent approves a shortlisted application (staff)
func (ac *AdmissionController) AdmitStudent(c *fiber.Ctx) error {
	admission, fiberErr := findAdmission(c)
	if fiberErr != nil {
		return fiberErr
	}

	var req struct {
		Remarks string `json:"remarks"`
	}
	_ = c.BodyParser(&req)

	svc := admissions.NewService()
	if err := svc.AdmitStudent(admission, req.Remarks); err != nil {
		if errors.Is(err, admissions.ErrInvalidTransition) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Application cannot be admitted from status " + string(admission.Status),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to admit applicant",
		})
	}

	middleware.LogActivity(c, "UPDATE", "admissions", admission.ID, fiber.Map{
		"action": "admit",
	})

	return c.JSON(fiber.Map{
		"message":   "Applicant admitted",
		"admission": admission,
	})
}

// AcceptAdmission onboards an admitted applicant as a student (staff)
func (ac *AdmissionController) AcceptAdmission(c *fiber.Ctx) error {
	admission, fiberErr := findAdmission(c)
	if fiberErr != nil {
		return fiberErr
	}

	svc := admissions.NewService()
	student, err := svc.AcceptAdmission(admission)
	if err != nil {
		if errors.Is(err, admissions.ErrInvalidTransition) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Application cannot be accepted from status " + string(admission.Status),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to accept admission",
		})
	}

	middleware.LogActivity(c, "CREATE", "students", student.ID, fiber.Map{
		"action":        "onboard",
		"matric_number": student.MatricNumber,
		"admission_id":  admission.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Admission accepted, student record created",
		"admission": admission,
		"student":   student,
	})
}

func findAdmission(c *fiber.Ctx) (*models.Admission, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid application ID")
	}

	var admission models.Admission
	if err := database.DB.Preload("Program").Preload("Documents").First(&admission, uint(id)).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Application not found")
	}
	return &admission, nil
}

func splitExtensions(list string) []string {
	parts := []string{}
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
