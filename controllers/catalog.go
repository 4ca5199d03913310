package controllers

import (
	"strconv"
	"time"

	"munaucollege_go/database"
	"munaucollege_go/middleware"
	"munaucollege_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CatalogController serves the public academic catalog: departments, programs
// and academic sessions. Mutations are admin-only.
type CatalogController struct{}

// GetDepartments lists active departments with their programs
func (cc *CatalogController) GetDepartments(c *fiber.Ctx) error {
	var departments []models.Department
	if err := database.DB.Preload("Programs", "active = ?", true).
		Where("active = ?", true).Order("name").Find(&departments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch departments",
		})
	}

	return c.JSON(fiber.Map{
		"departments": departments,
	})
}

// GetPrograms lists active programs
func (cc *CatalogController) GetPrograms(c *fiber.Ctx) error {
	query := database.DB.Preload("Department").Where("active = ?", true)
	if deptID := c.QueryInt("department_id", 0); deptID > 0 {
		query = query.Where("department_id = ?", deptID)
	}

	var programs []models.Program
	if err := query.Order("name").Find(&programs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch programs",
		})
	}

	return c.JSON(fiber.Map{
		"programs": programs,
	})
}

// GetSessions lists academic sessions
func (cc *CatalogController) GetSessions(c *fiber.Ctx) error {
	var sessions []models.AcademicSession
	if err := database.DB.Order("start_year DESC").Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	return c.JSON(fiber.Map{
		"sessions": sessions,
	})
}

// GetCurrentSession returns the session flagged current
func (cc *CatalogController) GetCurrentSession(c *fiber.Ctx) error {
	var session models.AcademicSession
	if err := database.DB.Where("is_current = ?", true).First(&session).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No current academic session configured",
		})
	}

	return c.JSON(fiber.Map{
		"session":           session,
		"registration_open": session.IsRegistrationOpen(time.Now()),
	})
}

// CreateDepartment creates a department (admin)
func (cc *CatalogController) CreateDepartment(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Code        string `json:"code" validate:"required"`
		Description string `json:"description"`
	}
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

	dept := models.Department{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Active:      true,
	}
	if err := database.DB.Create(&dept).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Department code already exists",
		})
	}

	middleware.LogActivity(c, "CREATE", "departments", dept.ID, fiber.Map{"code": dept.Code})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Department created successfully",
		"department": dept,
	})
}

// CreateProgram creates a program under a department (admin)
func (cc *CatalogController) CreateProgram(c *fiber.Ctx) error {
	var req struct {
		DepartmentID  uint   `json:"department_id" validate:"required"`
		Name          string `json:"name" validate:"required"`
		Code          string `json:"code" validate:"required"`
		DegreeAwarded string `json:"degree_awarded"`
		DurationYears int    `json:"duration_years"`
		Description   string `json:"description"`
	}
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

	var dept models.Department
	if err := database.DB.First(&dept, req.DepartmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Department not found",
		})
	}

	duration := req.DurationYears
	if duration == 0 {
		duration = 4
	}
	program := models.Program{
		DepartmentID:  req.DepartmentID,
		Name:          req.Name,
		Code:          req.Code,
		DegreeAwarded: req.DegreeAwarded,
		DurationYears: duration,
		Description:   req.Description,
		Active:        true,
	}
	if err := database.DB.Create(&program).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Program code already exists",
		})
	}

	middleware.LogActivity(c, "CREATE", "programs", program.ID, fiber.Map{"code": program.Code})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Program created successfully",
		"program": program,
	})
}

// CreateSession creates an academic session (admin)
func (cc *CatalogController) CreateSession(c *fiber.Ctx) error {
	var req struct {
		SessionName        string `json:"session_name" validate:"required"`
		StartYear          int    `json:"start_year" validate:"required"`
		EndYear            int    `json:"end_year" validate:"required"`
		RegistrationOpens  string `json:"registration_opens" validate:"required"`
		RegistrationCloses string `json:"registration_closes" validate:"required"`
	}
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

	opens, err := time.Parse("2006-01-02", req.RegistrationOpens)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid registration_opens, expected YYYY-MM-DD",
		})
	}
	closes, err := time.Parse("2006-01-02", req.RegistrationCloses)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid registration_closes, expected YYYY-MM-DD",
		})
	}
	if closes.Before(opens) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "registration_closes must be after registration_opens",
		})
	}

	session := models.AcademicSession{
		SessionName:        req.SessionName,
		StartYear:          req.StartYear,
		EndYear:            req.EndYear,
		Status:             "upcoming",
		RegistrationOpens:  opens,
		RegistrationCloses: closes,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session name already exists",
		})
	}

	middleware.LogActivity(c, "CREATE", "academic_sessions", session.ID, fiber.Map{"session_name": session.SessionName})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Academic session created successfully",
		"session": session,
	})
}

// SetCurrentSession flags one session as current and clears the previous flag
func (cc *CatalogController) SetCurrentSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.AcademicSession
	if err := database.DB.First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AcademicSession{}).Where("is_current = ?", true).
			Update("is_current", false).Error; err != nil {
			return err
		}
		return tx.Model(&session).Updates(map[string]interface{}{
			"is_current": true,
			"status":     "active",
		}).Error
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set current session",
		})
	}

	middleware.LogActivity(c, "UPDATE", "academic_sessions", session.ID, fiber.Map{"action": "set_current"})

	return c.JSON(fiber.Map{
		"message": "Current session updated",
		"session": session,
	})
}
