package controllers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"munaucollege_go/database"
	"munaucollege_go/middleware"
	"munaucollege_go/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type FeeScheduleController struct{}

var validate = validator.New()

// FeeScheduleRequest represents the create/update request body. Money fields
// are strings to keep floats out of the pipeline.
type FeeScheduleRequest struct {
	ProgramID         uint   `json:"program_id" validate:"required"`
	Level             int    `json:"level" validate:"required,min=100,max=700"`
	AcademicSessionID uint   `json:"academic_session_id" validate:"required"`
	TuitionFee        string `json:"tuition_fee" validate:"required"`
	AcceptanceFee     string `json:"acceptance_fee"`
	RegistrationFee   string `json:"registration_fee"`
	FacilitiesFee     string `json:"facilities_fee"`
	TechnologyFee     string `json:"technology_fee"`
	OtherCharges      string `json:"other_charges"`
	EffectiveFrom     string `json:"effective_from"`
}

// GetFeeSchedules lists fee schedules, optionally filtered by session or program
func (fsc *FeeScheduleController) GetFeeSchedules(c *fiber.Ctx) error {
	query := database.DB.Preload("Program").Preload("AcademicSession")

	if sessionID := c.QueryInt("academic_session_id", 0); sessionID > 0 {
		query = query.Where("academic_session_id = ?", sessionID)
	}
	if programID := c.QueryInt("program_id", 0); programID > 0 {
		query = query.Where("program_id = ?", programID)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var schedules []models.FeeSchedule
	if err := query.Order("program_id, level").Find(&schedules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch fee schedules",
		})
	}

	return c.JSON(fiber.Map{
		"fee_schedules": schedules,
		"count":         len(schedules),
	})
}

// GetFeeSchedule returns a single fee schedule
func (fsc *FeeScheduleController) GetFeeSchedule(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid fee schedule ID",
		})
	}

	var schedule models.FeeSchedule
	if err := database.DB.Preload("Program").Preload("AcademicSession").First(&schedule, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Fee schedule not found",
		})
	}

	return c.JSON(fiber.Map{
		"fee_schedule": schedule,
		"total":        schedule.TotalCharges().StringFixed(2),
	})
}

// CreateFeeSchedule creates a fee schedule for a (program, level, session) triple
func (fsc *FeeScheduleController) CreateFeeSchedule(c *fiber.Ctx) error {
	var req FeeScheduleRequest
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

	schedule, err := buildFeeSchedule(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := database.DB.Create(schedule).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Fee schedule already exists for this program, level and session",
		})
	}

	middleware.LogActivity(c, "CREATE", "fee_schedules", schedule.ID, fiber.Map{
		"program_id":          schedule.ProgramID,
		"level":               schedule.Level,
		"academic_session_id": schedule.AcademicSessionID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Fee schedule created successfully",
		"fee_schedule": schedule,
	})
}

// UpdateFeeSchedule updates charge components of a schedule. Fees already
// generated from it keep their copied amounts.
func (fsc *FeeScheduleController) UpdateFeeSchedule(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid fee schedule ID",
		})
	}

	var schedule models.FeeSchedule
	if err := database.DB.First(&schedule, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Fee schedule not found",
		})
	}

	var req FeeScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	moneyFields := map[string]string{
		"tuition_fee":      req.TuitionFee,
		"acceptance_fee":   req.AcceptanceFee,
		"registration_fee": req.RegistrationFee,
		"facilities_fee":   req.FacilitiesFee,
		"technology_fee":   req.TechnologyFee,
		"other_charges":    req.OtherCharges,
	}
	for column, raw := range moneyFields {
		if raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil || amount.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid amount for %s", column),
			})
		}
		updates[column] = amount
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No updatable fields provided",
		})
	}

	if err := database.DB.Model(&schedule).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update fee schedule",
		})
	}

	middleware.LogActivity(c, "UPDATE", "fee_schedules", schedule.ID, updates)

	return c.JSON(fiber.Map{
		"message":      "Fee schedule updated successfully",
		"fee_schedule": schedule,
	})
}

// DeactivateFeeSchedule retires a schedule without deleting it
func (fsc *FeeScheduleController) DeactivateFeeSchedule(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid fee schedule ID",
		})
	}

	now := time.Now()
	result := database.DB.Model(&models.FeeSchedule{}).
		Where("id = ?", uint(id)).
		Updates(map[string]interface{}{"is_active": false, "effective_to": now})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to deactivate fee schedule",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Fee schedule not found",
		})
	}

	middleware.LogActivity(c, "UPDATE", "fee_schedules", uint(id), fiber.Map{
		"action": "deactivate",
	})

	return c.JSON(fiber.Map{
		"message": "Fee schedule deactivated",
	})
}

// ImportFeeSchedules parses a CSV/XLSX upload of fee schedules. Rows reference
// program code and session name; existing schedules for a triple are updated.
func (fsc *FeeScheduleController) ImportFeeSchedules(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	filename := strings.ToLower(fileHeader.Filename)
	var rows [][]string
	if strings.HasSuffix(filename, ".csv") {
		f, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open file"})
		}
		defer f.Close()
		rows, err = readCSVSimple(f)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	} else if strings.HasSuffix(filename, ".xlsx") || strings.HasSuffix(filename, ".xls") {
		tmpDir, _ := os.MkdirTemp("", "mcfees-")
		tmp := filepath.Join(tmpDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(fileHeader.Filename)))
		if err := c.SaveFile(fileHeader, tmp); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to buffer upload"})
		}
		rows, err = readXLSXSimple(tmp)
		_ = os.Remove(tmp)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	} else {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type (csv, xlsx)"})
	}

	if len(rows) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file has no data rows"})
	}

	colIndex := mapHeaderIndexes(rows[0])
	required := []string{"program_code", "level", "session_name", "tuition_fee"}
	for _, key := range required {
		if _, ok := colIndex[key]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("missing column: %s", key)})
		}
	}

	var created, updated int
	var rowErrors []string

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i := 1; i < len(rows); i++ {
			raw := rows[i]
			get := func(key string) string {
				idx, ok := colIndex[key]
				if !ok || idx >= len(raw) {
					return ""
				}
				return strings.TrimSpace(raw[idx])
			}

			if get("program_code") == "" {
				continue
			}

			var program models.Program
			if err := tx.Where("code = ?", strings.ToUpper(get("program_code"))).First(&program).Error; err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: unknown program code %q", i+1, get("program_code")))
				continue
			}

			var session models.AcademicSession
			if err := tx.Where("session_name = ?", get("session_name")).First(&session).Error; err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: unknown session %q", i+1, get("session_name")))
				continue
			}

			level, err := strconv.Atoi(get("level"))
			if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid level %q", i+1, get("level")))
				continue
			}

			amounts := map[string]decimal.Decimal{}
			bad := false
			for _, col := range []string{"tuition_fee", "acceptance_fee", "registration_fee", "facilities_fee", "technology_fee", "other_charges"} {
				raw := get(col)
				if raw == "" {
					amounts[col] = decimal.Zero
					continue
				}
				amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
				if err != nil || amount.IsNegative() {
					rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid %s %q", i+1, col, raw))
					bad = true
					break
				}
				amounts[col] = amount
			}
			if bad {
				continue
			}

			var existing models.FeeSchedule
			err = tx.Where("program_id = ? AND level = ? AND academic_session_id = ?",
				program.ID, level, session.ID).First(&existing).Error
			if err == nil {
				if err := tx.Model(&existing).Updates(map[string]interface{}{
					"tuition_fee":      amounts["tuition_fee"],
					"acceptance_fee":   amounts["acceptance_fee"],
					"registration_fee": amounts["registration_fee"],
					"facilities_fee":   amounts["facilities_fee"],
					"technology_fee":   amounts["technology_fee"],
					"other_charges":    amounts["other_charges"],
				}).Error; err != nil {
					return err
				}
				updated++
				continue
			}

			schedule := models.FeeSchedule{
				ProgramID:         program.ID,
				Level:             level,
				AcademicSessionID: session.ID,
				TuitionFee:        amounts["tuition_fee"],
				AcceptanceFee:     amounts["acceptance_fee"],
				RegistrationFee:   amounts["registration_fee"],
				FacilitiesFee:     amounts["facilities_fee"],
				TechnologyFee:     amounts["technology_fee"],
				OtherCharges:      amounts["other_charges"],
				EffectiveFrom:     time.Now(),
				IsActive:          true,
			}
			if err := tx.Create(&schedule).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "CREATE", "fee_schedules", 0, fiber.Map{
		"action":  "import",
		"file":    fileHeader.Filename,
		"created": created,
		"updated": updated,
	})

	return c.JSON(fiber.Map{
		"success":    true,
		"file_name":  fileHeader.Filename,
		"created":    created,
		"updated":    updated,
		"row_errors": rowErrors,
	})
}

func buildFeeSchedule(req FeeScheduleRequest) (*models.FeeSchedule, error) {
	parse := func(raw, name string) (decimal.Decimal, error) {
		if raw == "" {
			return decimal.Zero, nil
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil || amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("invalid amount for %s", name)
		}
		return amount, nil
	}

	tuition, err := parse(req.TuitionFee, "tuition_fee")
	if err != nil {
		return nil, err
	}
	acceptance, err := parse(req.AcceptanceFee, "acceptance_fee")
	if err != nil {
		return nil, err
	}
	registration, err := parse(req.RegistrationFee, "registration_fee")
	if err != nil {
		return nil, err
	}
	facilities, err := parse(req.FacilitiesFee, "facilities_fee")
	if err != nil {
		return nil, err
	}
	technology, err := parse(req.TechnologyFee, "technology_fee")
	if err != nil {
		return nil, err
	}
	other, err := parse(req.OtherCharges, "other_charges")
	if err != nil {
		return nil, err
	}

	effectiveFrom := time.Now()
	if req.EffectiveFrom != "" {
		t, err := time.Parse("2006-01-02", req.EffectiveFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid effective_from date, expected YYYY-MM-DD")
		}
		effectiveFrom = t
	}

	return &models.FeeSchedule{
		ProgramID:         req.ProgramID,
		Level:             req.Level,
		AcademicSessionID: req.AcademicSessionID,
		TuitionFee:        tuition,
		AcceptanceFee:     acceptance,
		RegistrationFee:   registration,
		FacilitiesFee:     facilities,
		TechnologyFee:     technology,
		OtherCharges:      other,
		EffectiveFrom:     effectiveFrom,
		IsActive:          true,
	}, nil
}

func readCSVSimple(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSXSimple(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sht := f.GetSheetName(0)
	if sht == "" {
		sht = "Sheet1"
	}
	data, err := f.GetRows(sht)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func mapHeaderIndexes(header []string) map[string]int {
	m := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		m[key] = i
	}
	return m
}
