package routes

import (
	"munaucollege_go/controllers"
	"munaucollege_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	catalogController := &controllers.CatalogController{}
	admissionController := &controllers.AdmissionController{}
	studentController := &controllers.StudentController{}
	financeController := &controllers.FinanceController{}
	feeScheduleController := &controllers.FeeScheduleController{}
	academicsController := &controllers.AcademicsController{}
	hostelController := &controllers.HostelController{}
	notificationController := &controllers.NotificationController{}
	logController := &controllers.LogController{}
	healthController := &controllers.HealthController{}

	app.Get("/health", healthController.Health)

	// API group
	api := app.Group("/api")

	// Public routes (no authentication required)
	public := api.Group("/public")
	public.Get("/departments", catalogController.GetDepartments)
	public.Get("/programs", catalogController.GetPrograms)
	public.Get("/sessions", catalogController.GetSessions)
	public.Get("/sessions/current", catalogController.GetCurrentSession)

	// Admission applications - public entry point and tracking
	public.Post("/admissions", admissionController.CreateApplication)
	public.Get("/admissions/track/:number", admissionController.TrackApplication)
	public.Post("/admissions/:id/documents", admissionController.UploadDocument)
	public.Post("/admissions/:id/submit", admissionController.SubmitApplication)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Post("/reset-password-token", authController.ResetPasswordWithToken)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	// Profile routes (authenticated users)
	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	protected.Post("/auth/logout", authController.Logout)

	// Password reset routes (admin only)
	passwordReset := protected.Group("/password-reset", middleware.RequireAdmin())
	passwordReset.Post("/generate-token", authController.GeneratePasswordResetToken)

	// User management (admin only)
	users := protected.Group("/users", middleware.RequireAdmin())
	users.Post("/", authController.Register)

	// Catalog management (admin only)
	catalog := protected.Group("/catalog", middleware.RequireAdmin())
	catalog.Post("/departments", catalogController.CreateDepartment)
	catalog.Post("/programs", catalogController.CreateProgram)
	catalog.Post("/sessions", catalogController.CreateSession)
	catalog.Put("/sessions/:id/current", catalogController.SetCurrentSession)

	// Admission workflow (staff/admin)
	admissionsGroup := protected.Group("/admissions", middleware.RequireStaffOrAdmin())
	admissionsGroup.Get("/", admissionController.GetApplications)
	admissionsGroup.Get("/:id", admissionController.GetApplication)
	admissionsGroup.Post("/:id/screen", admissionController.ScreenApplication)
	admissionsGroup.Post("/:id/admit", admissionController.AdmitStudent)
	admissionsGroup.Post("/:id/accept", admissionController.AcceptAdmission)

	// Student records (staff/admin)
	students := protected.Group("/students", middleware.RequireStaffOrAdmin())
	students.Get("/", studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Put("/:id", studentController.UpdateStudent)
	students.Get("/:id/fees/outstanding", financeController.GetOutstandingFees)
	students.Get("/:id/payments", financeController.GetPaymentHistory)

	// Course catalogue and results (staff read/write, admin create)
	courses := protected.Group("/courses")
	courses.Get("/", middleware.RequireStaffOrAdmin(), academicsController.GetCourses)
	courses.Post("/", middleware.RequireAdmin(), academicsController.CreateCourse)
	protected.Put("/enrollments/:id/result", middleware.RequireStaffOrAdmin(), academicsController.RecordResult)

	// Hostel management (staff/admin)
	hostel := protected.Group("/hostel")
	hostel.Get("/blocks", middleware.RequireStaffOrAdmin(), hostelController.GetBlocks)
	hostel.Post("/blocks", middleware.RequireAdmin(), hostelController.CreateBlock)
	hostel.Post("/rooms", middleware.RequireAdmin(), hostelController.CreateRoom)
	hostel.Put("/allocations/:id/status", middleware.RequireStaffOrAdmin(), hostelController.UpdateAllocationStatus)

	// ID card production (staff/admin)
	protected.Put("/id-cards/:id/status", middleware.RequireStaffOrAdmin(), hostelController.UpdateIDCardStatus)

	// Fee schedules (staff read, admin write)
	feeSchedules := protected.Group("/fee-schedules")
	feeSchedules.Get("/", middleware.RequireStaffOrAdmin(), feeScheduleController.GetFeeSchedules)
	feeSchedules.Get("/:id", middleware.RequireStaffOrAdmin(), feeScheduleController.GetFeeSchedule)
	feeSchedules.Post("/", middleware.RequireAdmin(), feeScheduleController.CreateFeeSchedule)
	feeSchedules.Put("/:id", middleware.RequireAdmin(), feeScheduleController.UpdateFeeSchedule)
	feeSchedules.Delete("/:id", middleware.RequireAdmin(), feeScheduleController.DeactivateFeeSchedule)
	feeSchedules.Post("/import", middleware.RequireAdmin(), feeScheduleController.ImportFeeSchedules)

	// Fee ledger (staff/admin)
	finance := protected.Group("/finance", middleware.RequireStaffOrAdmin())
	finance.Post("/school-fees", financeController.GenerateSchoolFee)
	finance.Post("/school-fees/:id/recalculate", financeController.RecalculateBalance)
	finance.Post("/payments", financeController.RecordPayment)
	finance.Post("/payments/:id/verify", financeController.VerifyPayment)

	// Receipts are visible to staff and the owning student
	protected.Get("/payments/:id/receipt", financeController.GetReceipt)

	// Student self-service
	me := protected.Group("/me", middleware.RequireStudent())
	me.Get("/fees", financeController.GetMyFees)
	me.Post("/fees/:id/pay", financeController.PayMyFee)
	me.Get("/payments", financeController.GetMyPayments)
	me.Get("/courses", academicsController.GetMyCourses)
	me.Post("/courses", academicsController.RegisterCourse)
	me.Put("/courses/:id/drop", academicsController.DropCourse)
	me.Get("/results", academicsController.GetMyResults)
	me.Get("/transcript", academicsController.GetMyTranscript)
	me.Get("/hostel", hostelController.GetMyAllocation)
	me.Post("/hostel/apply", hostelController.ApplyForRoom)
	me.Get("/id-card", hostelController.GetMyIDCardRequests)
	me.Post("/id-card", hostelController.RequestIDCard)

	// Notifications (any authenticated user)
	notificationsGroup := protected.Group("/notifications")
	notificationsGroup.Get("/", notificationController.GetMyNotifications)
	notificationsGroup.Get("/unread-count", notificationController.GetUnreadCount)
	notificationsGroup.Put("/:id/read", notificationController.MarkAsRead)
	notificationsGroup.Put("/read-all", notificationController.MarkAllAsRead)

	// Audit trail (admin only)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetActivityLogs)
	logs.Get("/archives", logController.GetArchives)
	logs.Get("/archives/:id/download", logController.DownloadArchive)
}
