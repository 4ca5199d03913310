package controllers

import (
	"strconv"

	"munaucollege_go/database"
	"munaucollege_go/middleware"
	"munaucollege_go/models"

	"github.com/gofiber/fiber/v2"
)

type StudentController struct{}

// GetStudents lists students with optional filters (staff)
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	query := database.DB.Preload("User").Preload("Program").Preload("Department")

	if programID := c.QueryInt("program_id", 0); programID > 0 {
		query = query.Where("program_id = ?", programID)
	}
	if level := c.QueryInt("level", 0); level > 0 {
		query = query.Where("current_level = ?", level)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if matric := c.Query("matric_number"); matric != "" {
		query = query.Where("matric_number = ?", matric)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int64
	query.Model(&models.Student{}).Count(&total)

	var students []models.Student
	if err := query.Order("matric_number").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch students",
		})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetStudent returns a single student with fee summary
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.Preload("User").Preload("Program").Preload("Department").
		Preload("SchoolFees").Preload("SchoolFees.AcademicSession").
		First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	return c.JSON(fiber.Map{
		"student": student,
	})
}

// UpdateStudent updates mutable student fields (staff)
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var req struct {
		Status                string `json:"status"`
		CurrentLevel          int    `json:"current_level"`
		NextOfKinName         string `json:"next_of_kin_name"`
		NextOfKinPhone        string `json:"next_of_kin_phone"`
		NextOfKinRelationship string `json:"next_of_kin_relationship"`
		IsSponsored           *bool  `json:"is_sponsored"`
		SponsorName           string `json:"sponsor_name"`
		SponsorContact        string `json:"sponsor_contact"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Status != "" {
		valid := map[string]bool{"active": true, "deferred": true, "suspended": true, "graduated": true, "withdrawn": true}
		if !valid[req.Status] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid student status",
			})
		}
		updates["status"] = req.Status
	}
	if req.CurrentLevel > 0 {
		updates["current_level"] = req.CurrentLevel
	}
	if req.NextOfKinName != "" {
		updates["next_of_kin_name"] = req.NextOfKinName
	}
	if req.NextOfKinPhone != "" {
		updates["next_of_kin_phone"] = req.NextOfKinPhone
	}
	if req.NextOfKinRelationship != "" {
		updates["next_of_kin_relationship"] = req.NextOfKinRelationship
	}
	if req.IsSponsored != nil {
		updates["is_sponsored"] = *req.IsSponsored
	}
	if req.SponsorName != "" {
		updates["sponsor_name"] = req.SponsorName
	}
	if req.SponsorContact != "" {
		updates["sponsor_contact"] = req.SponsorContact
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No updatable fields provided",
		})
	}

	if err := database.DB.Model(&student).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update student",
		})
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Student updated successfully",
		"student": student,
	})
}
