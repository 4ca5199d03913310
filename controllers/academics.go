package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"munaucollege_go/database"
	"munaucollege_go/middleware"
	"munaucollege_go/models"
	"munaucollege_go/services/notifications"
)

type AcademicsController struct{}

// CourseRequest represents the course creation request body
type CourseRequest struct {
	Code         string `json:"code" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	CreditUnits  int    `json:"credit_units" validate:"min=1,max=12"`
	Level        int    `json:"level" validate:"required,min=100,max=700"`
	DepartmentID uint   `json:"department_id" validate:"required"`
	CourseType   string `json:"course_type"`
	LecturerID   *uint  `json:"lecturer_id"`
	Semester     int    `json:"semester"`
}

// currentSession returns the session flagged as current. Resolved here at the
// request boundary and passed down; nothing below controllers queries for it.
func currentSession() (*models.AcademicSession, error) {
	var session models.AcademicSession
	if err := database.DB.Where("is_current = ?", true).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetCourses lists courses, filterable by level, department and semester
func (ac *AcademicsController) GetCourses(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Course{}).Where("is_active = ?", true)

	if level := c.QueryInt("level", 0); level > 0 {
		query = query.Where("level = ?", level)
	}
	if deptID := c.QueryInt("department_id", 0); deptID > 0 {
		query = query.Where("department_id = ?", deptID)
	}
	if semester := c.QueryInt("semester", 0); semester > 0 {
		query = query.Where("semester = ?", semester)
	}

	var courses []models.Course
	if err := query.Preload("Department").Order("code").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch courses",
		})
	}

	return c.JSON(fiber.Map{
		"courses": courses,
		"count":   len(courses),
	})
}

// CreateCourse adds a course to the catalogue (admin)
func (ac *AcademicsController) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	courseType := models.CourseType(req.CourseType)
	if req.CourseType == "" {
		courseType = models.CourseCore
	}
	creditUnits := req.CreditUnits
	if creditUnits == 0 {
		creditUnits = 3
	}
	semester := req.Semester
	if semester == 0 {
		semester = 1
	}

	course := models.Course{
		Code:         req.Code,
		Title:        req.Title,
		Description:  req.Description,
		CreditUnits:  creditUnits,
		Level:        req.Level,
		DepartmentID: req.DepartmentID,
		CourseType:   courseType,
		LecturerID:   req.LecturerID,
		Semester:     semester,
		IsActive:     true,
	}
	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Course code already exists",
		})
	}

	middleware.LogActivity(c, "CREATE", "courses", course.ID, fiber.Map{
		"code":  course.Code,
		"title": course.Title,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Course created successfully",
		"course":  course,
	})
}

// GetMyCourses returns the student's enrollments for the current session plus
// the courses at their level still open for registration
func (ac *AcademicsController) GetMyCourses(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}
	session, err := currentSession()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No current academic session",
		})
	}

	var enrolled []models.CourseEnrollment
	if err := database.DB.Preload("Course").
		Where("student_id = ? AND academic_session_id = ?", student.ID, session.ID).
		Find(&enrolled).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch enrollments",
		})
	}

	enrolledIDs := make([]uint, 0, len(enrolled))
	for _, e := range enrolled {
		enrolledIDs = append(enrolledIDs, e.CourseID)
	}

	available := database.DB.Where("is_active = ? AND level = ?", true, student.CurrentLevel)
	if len(enrolledIDs) > 0 {
		available = available.Where("id NOT IN ?", enrolledIDs)
	}
	var openCourses []models.Course
	if err := available.Order("code").Find(&openCourses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch available courses",
		})
	}

	return c.JSON(fiber.Map{
		"session":           session.SessionName,
		"enrollments":       enrolled,
		"available_courses": openCourses,
	})
}

// RegisterCourse enrolls the student on a course for the current session
func (ac *AcademicsController) RegisterCourse(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}
	session, err := currentSession()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No current academic session",
		})
	}
	if !session.IsRegistrationOpen(time.Now()) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Course registration is closed for this session",
		})
	}

	var req struct {
		CourseID uint `json:"course_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.CourseID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var course models.Course
	if err := database.DB.Where("id = ? AND is_active = ?", req.CourseID, true).
		First(&course).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}
	if course.Level != student.CurrentLevel {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Course is not offered at your current level",
		})
	}

	enrollment := models.CourseEnrollment{
		StudentID:         student.ID,
		CourseID:          course.ID,
		AcademicSessionID: session.ID,
		Semester:          course.Semester,
		Status:            models.EnrollmentActive,
		EnrollmentDate:    time.Now(),
	}
	if err := database.DB.Create(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "You are already enrolled in this course",
		})
	}

	middleware.LogActivity(c, "CREATE", "course_enrollments", enrollment.ID, fiber.Map{
		"course_code": course.Code,
		"session":     session.SessionName,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Course registered successfully",
		"enrollment": enrollment,
	})
}

// DropCourse marks the student's own active enrollment as dropped
func (ac *AcademicsController) DropCourse(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid enrollment ID",
		})
	}

	result := database.DB.Model(&models.CourseEnrollment{}).
		Where("id = ? AND student_id = ? AND status = ?",
			uint(enrollmentID), student.ID, models.EnrollmentActive).
		Update("status", models.EnrollmentDropped)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to drop course",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Active enrollment not found",
		})
	}

	middleware.LogActivity(c, "UPDATE", "course_enrollments", uint(enrollmentID), fiber.Map{
		"action": "drop",
	})

	return c.JSON(fiber.Map{
		"message": "Course dropped successfully",
	})
}

// GetMyResults returns the student's graded enrollments
func (ac *AcademicsController) GetMyResults(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var results []models.CourseEnrollment
	if err := database.DB.Preload("Course").Preload("AcademicSession").
		Where("student_id = ? AND score IS NOT NULL", student.ID).
		Order("academic_session_id, course_id").
		Find(&results).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch results",
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
		"gpa":     models.ComputeGPA(results).StringFixed(2),
	})
}

// GetMyTranscript groups the student's graded enrollments by session with a
// per-session GPA and the cumulative GPA
func (ac *AcademicsController) GetMyTranscript(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var graded []models.CourseEnrollment
	if err := database.DB.Preload("Course").Preload("AcademicSession").
		Where("student_id = ? AND score IS NOT NULL", student.ID).
		Order("academic_session_id, course_id").
		Find(&graded).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch transcript",
		})
	}

	type sessionBlock struct {
		SessionName string                    `json:"session_name"`
		Courses     []models.CourseEnrollment `json:"courses"`
		GPA         string                    `json:"gpa"`
	}
	order := make([]uint, 0)
	grouped := make(map[uint][]models.CourseEnrollment)
	for _, e := range graded {
		if _, seen := grouped[e.AcademicSessionID]; !seen {
			order = append(order, e.AcademicSessionID)
		}
		grouped[e.AcademicSessionID] = append(grouped[e.AcademicSessionID], e)
	}

	sessions := make([]sessionBlock, 0, len(order))
	for _, sid := range order {
		rows := grouped[sid]
		sessions = append(sessions, sessionBlock{
			SessionName: rows[0].AcademicSession.SessionName,
			Courses:     rows,
			GPA:         models.ComputeGPA(rows).StringFixed(2),
		})
	}

	return c.JSON(fiber.Map{
		"matric_number": student.MatricNumber,
		"sessions":      sessions,
		"cgpa":          models.ComputeGPA(graded).StringFixed(2),
	})
}

// RecordResult publishes a score against an enrollment (staff). The grade and
// grade point are derived from the score; the enrollment completes.
func (ac *AcademicsController) RecordResult(c *fiber.Ctx) error {
	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid enrollment ID",
		})
	}

	var req struct {
		Score string `json:"score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	score, err := decimal.NewFromString(req.Score)
	if err != nil || score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Score must be between 0 and 100",
		})
	}

	var enrollment models.CourseEnrollment
	if err := database.DB.First(&enrollment, uint(enrollmentID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Enrollment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch enrollment",
		})
	}
	if enrollment.Status == models.EnrollmentDropped {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Cannot record a result on a dropped enrollment",
		})
	}

	grade, gradePoint := models.GradeForScore(score)
	now := time.Now()
	updates := map[string]interface{}{
		"score":           score,
		"grade":           grade,
		"grade_point":     gradePoint,
		"status":          models.EnrollmentCompleted,
		"completion_date": now,
	}
	if err := database.DB.Model(&enrollment).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record result",
		})
	}

	middleware.LogActivity(c, "UPDATE", "course_enrollments", enrollment.ID, fiber.Map{
		"action": "record_result",
		"score":  score.StringFixed(2),
		"grade":  grade,
	})

	var course models.Course
	var student models.Student
	if database.DB.First(&course, enrollment.CourseID).Error == nil &&
		database.DB.First(&student, enrollment.StudentID).Error == nil {
		go func(userID uint, code string) {
			svc := notifications.NewService()
			if err := svc.EnqueueOrCreate([]uint{userID}, notifications.CourseResultPublished(code)); err != nil {
				logrus.WithError(err).Warn("failed to dispatch result notification")
			}
		}(student.UserID, course.Code)
	}

	return c.JSON(fiber.Map{
		"message": "Result recorded",
		"grade":   grade,
	})
}
