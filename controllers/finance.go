package controllers

import (
	"errors"
	"munaucollege_go/database"
	"munaucollege_go/middleware"
	"munaucollege_go/models"
	"munaucollege_go/services/finance"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type FinanceController struct{}

// GenerateFeeRequest represents the fee generation request body
type GenerateFeeRequest struct {
	StudentID         uint `json:"student_id" validate:"required"`
	AcademicSessionID uint `json:"academic_session_id" validate:"required"`
}

// RecordPaymentRequest represents the payment recording request body.
// Amount is a string so the JSON layer never touches floats.
type RecordPaymentRequest struct {
	SchoolFeeID   uint    `json:"school_fee_id" validate:"required"`
	Amount        string  `json:"amount" validate:"required"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	TransactionID *string `json:"transaction_id"`
	Status        string  `json:"status"`
	Remarks       string  `json:"remarks"`
}

// GenerateSchoolFee creates the session charge record for a student from the
// active fee schedule
func (fc *FinanceController) GenerateSchoolFee(c *fiber.Ctx) error {
	var req GenerateFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var session models.AcademicSession
	if err := database.DB.First(&session, req.AcademicSessionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Academic session not found",
		})
	}

	svc := finance.NewService()
	fee, err := svc.GenerateSchoolFee(student, session)
	if err != nil {
		switch {
		case errors.Is(err, finance.ErrScheduleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active fee schedule for this program, level and session",
			})
		case errors.Is(err, finance.ErrDuplicateFeeRecord):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "School fee already generated for this student and session",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate school fee",
			})
		}
	}

	middleware.LogActivity(c, "CREATE", "school_fees", fee.ID, fiber.Map{
		"student_id":          student.ID,
		"academic_session_id": session.ID,
		"total_amount":        fee.TotalAmount.StringFixed(2),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "School fee generated successfully",
		"school_fee": fee,
	})
}

// RecordPayment records a payment against a school fee. Overpayments are
// rejected before any row is written; use a credit note process instead.
func (fc *FinanceController) RecordPayment(c *fiber.Ctx) error {
	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid amount format",
		})
	}

	var fee models.SchoolFee
	if err := database.DB.First(&fee, req.SchoolFeeID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "School fee not found",
		})
	}

	if err := finance.ValidatePaymentAmount(amount, fee.Balance); err != nil {
		if errors.Is(err, finance.ErrOverpayment) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "Payment exceeds outstanding balance",
				"balance": fee.Balance.StringFixed(2),
			})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Payment amount must be greater than zero",
		})
	}

	svc := finance.NewService()
	payment, err := svc.RecordPayment(fee.ID, finance.PaymentInput{
		Amount:        amount,
		Method:        models.PaymentMethod(req.PaymentMethod),
		TransactionID: req.TransactionID,
		Status:        models.PaymentState(req.Status),
		Remarks:       req.Remarks,
	})
	if err != nil {
		switch {
		case errors.Is(err, finance.ErrInvalidAmount):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Payment amount must be greater than zero",
			})
		case errors.Is(err, finance.ErrInvalidPaymentMethod):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid payment method",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to record payment",
			})
		}
	}

	middleware.LogActivity(c, "CREATE", "fee_payments", payment.ID, fiber.Map{
		"school_fee_id":     fee.ID,
		"amount":            payment.AmountPaid.StringFixed(2),
		"payment_method":    payment.PaymentMethod,
		"payment_reference": payment.PaymentReference,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"payment": payment,
	})
}

// VerifyPayment resolves a pending payment as completed or failed
func (fc *FinanceController) VerifyPayment(c *fiber.Ctx) error {
	paymentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	var req struct {
		Succeeded bool `json:"succeeded"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	svc := finance.NewService()
	payment, err := svc.VerifyPayment(uint(paymentID), req.Succeeded, user.ID)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	middleware.LogActivity(c, "UPDATE", "fee_payments", payment.ID, fiber.Map{
		"action":    "verify",
		"succeeded": req.Succeeded,
	})

	return c.JSON(fiber.Map{
		"message": "Payment verified",
		"payment": payment,
	})
}

// RecalculateBalance forces a fresh aggregate over completed payments
func (fc *FinanceController) RecalculateBalance(c *fiber.Ctx) error {
	feeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid school fee ID",
		})
	}

	svc := finance.NewService()
	fee, err := svc.RecalculateBalance(uint(feeID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "School fee not found",
		})
	}

	middleware.LogActivity(c, "UPDATE", "school_fees", fee.ID, fiber.Map{
		"action": "recalculate_balance",
	})

	return c.JSON(fiber.Map{
		"message":    "Balance recalculated",
		"school_fee": fee,
	})
}

// GetOutstandingFees lists a student's fees with money still owing
func (fc *FinanceController) GetOutstandingFees(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	svc := finance.NewService()
	fees, err := svc.GetOutstandingFees(uint(studentID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch outstanding fees",
		})
	}

	return c.JSON(fiber.Map{
		"outstanding_fees": fees,
		"count":            len(fees),
	})
}

// GetPaymentHistory lists a student's payments, newest first
func (fc *FinanceController) GetPaymentHistory(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	limit := c.QueryInt("limit", 50)

	svc := finance.NewService()
	payments, err := svc.GetPaymentHistory(uint(studentID), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payment history",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"count":    len(payments),
	})
}

// GetReceipt returns the receipt issued for a completed payment, generating it
// if the post-payment hook failed
func (fc *FinanceController) GetReceipt(c *fiber.Ctx) error {
	paymentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	var payment models.FeePayment
	if err := database.DB.First(&payment, uint(paymentID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	}

	// Students may only see their own receipts
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if user.Role == "student" {
		var student models.Student
		if err := database.DB.Where("user_id = ?", user.ID).First(&student).Error; err != nil || student.ID != payment.StudentID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
	}

	svc := finance.NewService()
	receipt, err := svc.GeneratePaymentReceipt(&payment)
	if err != nil {
		if errors.Is(err, finance.ErrReceiptNotAllowed) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Receipts are only issued for completed payments",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve receipt",
		})
	}

	return c.JSON(fiber.Map{
		"receipt": receipt,
	})
}

// currentStudent resolves the student record linked to the authenticated user.
func currentStudent(c *fiber.Ctx) (*models.Student, error) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "User not found")
	}
	var student models.Student
	if err := database.DB.Where("user_id = ?", user.ID).First(&student).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Student record not found")
	}
	return &student, nil
}

// GetMyFees returns the authenticated student's own fees and payments
func (fc *FinanceController) GetMyFees(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var fees []models.SchoolFee
	if err := database.DB.Preload("AcademicSession").Preload("Payments").
		Where("student_id = ?", student.ID).
		Order("due_date DESC").
		Find(&fees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch fees",
		})
	}

	return c.JSON(fiber.Map{
		"student_id":  student.ID,
		"school_fees": fees,
	})
}

// PayMyFeeRequest is the student self-service payment body. Student payments
// enter as pending and are settled by staff verification.
type PayMyFeeRequest struct {
	Amount        string  `json:"amount" validate:"required"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	TransactionID *string `json:"transaction_id"`
	Remarks       string  `json:"remarks"`
}

// PayMyFee records a payment by the authenticated student against their own
// school fee. Overpayments are rejected before any row is written.
func (fc *FinanceController) PayMyFee(c *fiber.Ctx) error {
	feeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid school fee ID",
		})
	}

	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var req PayMyFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid amount format",
		})
	}

	var fee models.SchoolFee
	if err := database.DB.Where("id = ? AND student_id = ?", uint(feeID), student.ID).
		First(&fee).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "School fee not found",
		})
	}

	if err := finance.ValidatePaymentAmount(amount, fee.Balance); err != nil {
		if errors.Is(err, finance.ErrOverpayment) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "Payment exceeds outstanding balance",
				"balance": fee.Balance.StringFixed(2),
			})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Payment amount must be greater than zero",
		})
	}

	svc := finance.NewService()
	payment, err := svc.RecordPayment(fee.ID, finance.PaymentInput{
		Amount:        amount,
		Method:        models.PaymentMethod(req.PaymentMethod),
		TransactionID: req.TransactionID,
		Status:        models.PaymentStatePending,
		Remarks:       req.Remarks,
	})
	if err != nil {
		if errors.Is(err, finance.ErrInvalidPaymentMethod) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid payment method",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record payment",
		})
	}

	middleware.LogActivity(c, "CREATE", "fee_payments", payment.ID, fiber.Map{
		"school_fee_id":     fee.ID,
		"amount":            payment.AmountPaid.StringFixed(2),
		"payment_method":    payment.PaymentMethod,
		"payment_reference": payment.PaymentReference,
		"self_service":      true,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment submitted and awaiting verification",
		"payment": payment,
	})
}

// GetMyPayments lists the authenticated student's payments, newest first,
// including pending attempts awaiting verification
func (fc *FinanceController) GetMyPayments(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := database.DB.Where("student_id = ?", student.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}

	var payments []models.FeePayment
	if err := query.Order("payment_date DESC").Limit(limit).Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payment history",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"count":    len(payments),
	})
}
