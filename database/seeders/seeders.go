package seeders

import (
	"log"
	"munaucollege_go/database"
	"munaucollege_go/models"
	"munaucollege_go/utils"
	"time"

	"github.com/shopspring/decimal"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedDepartments()
	SeedPrograms()
	SeedAcademicSessions()
	SeedFeeSchedules()
	SeedCourses()
	SeedHostelBlocks()
	SeedAdminUser()

	log.Println("Database seeding completed successfully!")
}

// SeedDepartments seeds the departments table
func SeedDepartments() {
	var count int64
	database.DB.Model(&models.Department{}).Count(&count)
	if count > 0 {
		log.Println("Departments already seeded, skipping...")
		return
	}

	departments := []models.Department{
		{
			BaseModel:   models.BaseModel{ID: 1},
			Name:        "Computer Science",
			Code:        "CSC",
			Description: "Department of Computer Science",
			Active:      true,
		},
		{
			BaseModel:   models.BaseModel{ID: 2},
			Name:        "Business Administration",
			Code:        "BUS",
			Description: "Department of Business Administration",
			Active:      true,
		},
		{
			BaseModel:   models.BaseModel{ID: 3},
			Name:        "Mass Communication",
			Code:        "MAC",
			Description: "Department of Mass Communication",
			Active:      true,
		},
	}

	for _, dept := range departments {
		if err := database.DB.Create(&dept).Error; err != nil {
			log.Printf("Error seeding department %s: %v", dept.Code, err)
		}
	}

	log.Println("Departments seeded successfully")
}

// SeedPrograms seeds the programs table
func SeedPrograms() {
	var count int64
	database.DB.Model(&models.Program{}).Count(&count)
	if count > 0 {
		log.Println("Programs already seeded, skipping...")
		return
	}

	programs := []models.Program{
		{
			BaseModel:     models.BaseModel{ID: 1},
			DepartmentID:  1,
			Name:          "B.Sc. Computer Science",
			Code:          "CSC",
			DegreeAwarded: "B.Sc.",
			DurationYears: 4,
			Active:        true,
		},
		{
			BaseModel:     models.BaseModel{ID: 2},
			DepartmentID:  2,
			Name:          "B.Sc. Business Administration",
			Code:          "BUS",
			DegreeAwarded: "B.Sc.",
			DurationYears: 4,
			Active:        true,
		},
		{
			BaseModel:     models.BaseModel{ID: 3},
			DepartmentID:  3,
			Name:          "B.Sc. Mass Communication",
			Code:          "MAC",
			DegreeAwarded: "B.Sc.",
			DurationYears: 4,
			Active:        true,
		},
	}

	for _, program := range programs {
		if err := database.DB.Create(&program).Error; err != nil {
			log.Printf("Error seeding program %s: %v", program.Code, err)
		}
	}

	log.Println("Programs seeded successfully")
}

// SeedAcademicSessions seeds the current academic session
func SeedAcademicSessions() {
	var count int64
	database.DB.Model(&models.AcademicSession{}).Count(&count)
	if count > 0 {
		log.Println("Academic sessions already seeded, skipping...")
		return
	}

	sem1Start := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	sem1End := time.Date(2027, 2, 12, 0, 0, 0, 0, time.UTC)
	sem2Start := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	sem2End := time.Date(2027, 7, 16, 0, 0, 0, 0, time.UTC)

	session := models.AcademicSession{
		BaseModel:          models.BaseModel{ID: 1},
		SessionName:        "2026/2027",
		StartYear:          2026,
		EndYear:            2027,
		Status:             "active",
		RegistrationOpens:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		RegistrationCloses: time.Date(2026, 11, 30, 23, 59, 59, 0, time.UTC),
		Semester1Starts:    &sem1Start,
		Semester1Ends:      &sem1End,
		Semester2Starts:    &sem2Start,
		Semester2Ends:      &sem2End,
		IsCurrent:          true,
	}

	if err := database.DB.Create(&session).Error; err != nil {
		log.Printf("Error seeding academic session %s: %v", session.SessionName, err)
		return
	}

	log.Println("Academic sessions seeded successfully")
}

// SeedFeeSchedules seeds level-100 fee schedules for each program
func SeedFeeSchedules() {
	var count int64
	database.DB.Model(&models.FeeSchedule{}).Count(&count)
	if count > 0 {
		log.Println("Fee schedules already seeded, skipping...")
		return
	}

	effectiveFrom := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tuitionByProgram := map[uint]int64{
		1: 220000, // CSC
		2: 180000, // BUS
		3: 190000, // MAC
	}

	for programID, tuition := range tuitionByProgram {
		schedule := models.FeeSchedule{
			ProgramID:         programID,
			Level:             100,
			AcademicSessionID: 1,
			TuitionFee:        decimal.NewFromInt(tuition),
			AcceptanceFee:     decimal.NewFromInt(30000),
			RegistrationFee:   decimal.NewFromInt(5000),
			FacilitiesFee:     decimal.NewFromInt(15000),
			TechnologyFee:     decimal.NewFromInt(10000),
			OtherCharges:      decimal.NewFromInt(2500),
			EffectiveFrom:     effectiveFrom,
			IsActive:          true,
		}
		if err := database.DB.Create(&schedule).Error; err != nil {
			log.Printf("Error seeding fee schedule for program %d: %v", programID, err)
		}
	}

	log.Println("Fee schedules seeded successfully")
}

// SeedCourses seeds level-100 courses for each department
func SeedCourses() {
	var count int64
	database.DB.Model(&models.Course{}).Count(&count)
	if count > 0 {
		log.Println("Courses already seeded, skipping...")
		return
	}

	courses := []models.Course{
		{Code: "CSC101", Title: "Introduction to Computer Science", CreditUnits: 3, Level: 100, DepartmentID: 1, CourseType: models.CourseCore, Semester: 1, IsActive: true},
		{Code: "CSC102", Title: "Introduction to Programming", CreditUnits: 3, Level: 100, DepartmentID: 1, CourseType: models.CourseCore, Semester: 2, IsActive: true},
		{Code: "BUS101", Title: "Principles of Management", CreditUnits: 3, Level: 100, DepartmentID: 2, CourseType: models.CourseCore, Semester: 1, IsActive: true},
		{Code: "MAC101", Title: "Introduction to Mass Communication", CreditUnits: 3, Level: 100, DepartmentID: 3, CourseType: models.CourseCore, Semester: 1, IsActive: true},
		{Code: "GST101", Title: "Use of English", CreditUnits: 2, Level: 100, DepartmentID: 3, CourseType: models.CourseGeneralStudies, Semester: 1, IsActive: true},
	}

	for _, course := range courses {
		if err := database.DB.Create(&course).Error; err != nil {
			log.Printf("Error seeding course %s: %v", course.Code, err)
		}
	}

	log.Println("Courses seeded successfully")
}

// SeedHostelBlocks seeds a starter hostel block with rooms
func SeedHostelBlocks() {
	var count int64
	database.DB.Model(&models.HostelBlock{}).Count(&count)
	if count > 0 {
		log.Println("Hostel blocks already seeded, skipping...")
		return
	}

	block := models.HostelBlock{
		BaseModel:  models.BaseModel{ID: 1},
		Name:       "Unity Hall",
		Code:       "UNH",
		TotalRooms: 3,
		BlockType:  "mixed",
		IsActive:   true,
	}
	if err := database.DB.Create(&block).Error; err != nil {
		log.Printf("Error seeding hostel block %s: %v", block.Code, err)
		return
	}

	for _, roomNumber := range []string{"UNH-001", "UNH-002", "UNH-003"} {
		room := models.HostelRoom{
			HostelBlockID:  block.ID,
			RoomNumber:     roomNumber,
			Capacity:       4,
			Status:         models.RoomAvailable,
			FeePerSemester: decimal.NewFromInt(45000),
		}
		if err := database.DB.Create(&room).Error; err != nil {
			log.Printf("Error seeding hostel room %s: %v", roomNumber, err)
		}
	}

	log.Println("Hostel blocks seeded successfully")
}

// SeedAdminUser seeds the initial admin account
func SeedAdminUser() {
	var count int64
	database.DB.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		log.Println("Admin user already seeded, skipping...")
		return
	}

	hashed, err := utils.HashPassword("ChangeMe123!")
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := models.User{
		Email:     "admin@munaucollege.edu.ng",
		Password:  hashed,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      "admin",
		Status:    "active",
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return
	}

	log.Println("Admin user seeded successfully")
}
