package controllers

import (
	"context"
	"time"

	"munaucollege_go/database"

	"github.com/gofiber/fiber/v2"
)

type HealthController struct{}

// Health reports liveness plus the state of the database and Redis
func (hc *HealthController) Health(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	dbStatus := "ok"
	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				dbStatus = "unreachable"
				healthy = false
			}
		} else {
			dbStatus = "error"
			healthy = false
		}
	} else {
		dbStatus = "not connected"
		healthy = false
	}
	checks["database"] = dbStatus

	redisStatus := "ok"
	if rc := database.GetRedisClient(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			redisStatus = "unreachable"
		}
	} else {
		// Redis is optional; the app degrades to direct DB writes
		redisStatus = "disabled"
	}
	checks["redis"] = redisStatus

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": map[bool]string{true: "healthy", false: "degraded"}[healthy],
		"time":   time.Now().UTC(),
		"checks": checks,
	})
}
