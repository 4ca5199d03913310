package controllers

import (
	"io"
	"strconv"

	"munaucollege_go/database"
	"munaucollege_go/models"
	"munaucollege_go/services"

	"github.com/gofiber/fiber/v2"
)

// LogController exposes the audit trail and its S3 archives (admin only)
type LogController struct{}

// GetActivityLogs lists recent activity logs with optional filters
func (lc *LogController) GetActivityLogs(c *fiber.Ctx) error {
	query := database.DB.Preload("User")

	if userID := c.QueryInt("user_id", 0); userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}

	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	var logs []models.ActivityLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch activity logs",
		})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetArchives lists archived log bundles
func (lc *LogController) GetArchives(c *fiber.Ctx) error {
	svc := services.NewLogArchiveService()
	archives, err := svc.GetArchivedLogs()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch archives",
		})
	}

	return c.JSON(fiber.Map{
		"archives": archives,
	})
}

// DownloadArchive streams an archive ZIP from S3
func (lc *LogController) DownloadArchive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid archive ID",
		})
	}

	svc := services.NewLogArchiveService()
	reader, fileName, err := svc.DownloadArchivedLogs(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read archive",
		})
	}

	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", "attachment; filename="+fileName)
	return c.Send(data)
}
