package finance

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"munaucollege_go/database"
	"munaucollege_go/models"
	"munaucollege_go/services/notifications"
	"munaucollege_go/utils"
)

var (
	// ErrScheduleNotFound means no active fee schedule exists for the
	// student's (program, level, session). Callers must not default to zero
	// charges.
	ErrScheduleNotFound = errors.New("fee schedule not found for this program and level")
	// ErrDuplicateFeeRecord means a SchoolFee already exists for the
	// (student, session) pair.
	ErrDuplicateFeeRecord = errors.New("school fee already generated for this student and session")
	// ErrInvalidAmount means the payment amount is zero or negative.
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")
	// ErrOverpayment means the payment amount exceeds the outstanding balance.
	// Rejected before any row is written.
	ErrOverpayment = errors.New("payment exceeds outstanding balance")
	// ErrInvalidPaymentMethod means the method is not an accepted channel.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrReceiptNotAllowed means a receipt was requested for a payment that
	// never reached the completed state.
	ErrReceiptNotAllowed = errors.New("receipts are only issued for completed payments")
)

// Service implements the fee ledger: school fee generation, payment recording
// with full balance recomputation, status derivation and receipt issuance.
type Service struct {
	db    *gorm.DB
	notif *notifications.Service
}

// NewService creates a finance service bound to the global DB connection.
func NewService() *Service {
	return &Service{
		db:    database.GetDB(),
		notif: notifications.NewService(),
	}
}

// NewServiceWithDB creates a finance service on an explicit connection.
func NewServiceWithDB(db *gorm.DB) *Service {
	return &Service{db: db, notif: notifications.NewServiceWithDB(db)}
}

// PaymentInput carries the caller-supplied fields for RecordPayment.
type PaymentInput struct {
	Amount        decimal.Decimal
	Method        models.PaymentMethod
	TransactionID *string
	Status        models.PaymentState // defaults to completed
	Remarks       string
}

// DeterminePaymentStatus derives the fee status from its four inputs. Pure and
// deterministic; paid >= total always wins regardless of the due date.
func DeterminePaymentStatus(total, paid decimal.Decimal, dueDate, now time.Time) models.FeeStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return models.FeeStatusPaid
	case paid.IsPositive():
		return models.FeeStatusPartial
	case now.After(dueDate):
		return models.FeeStatusOverdue
	default:
		return models.FeeStatusPending
	}
}

// ValidatePaymentAmount rejects non-positive amounts and amounts above the
// outstanding balance. Callers run this before touching any row.
func ValidatePaymentAmount(amount, balance decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(balance) {
		return ErrOverpayment
	}
	return nil
}

// SumCompletedPayments totals amount_paid over the completed payments in the
// slice. The SQL aggregate in refreshBalance computes the same sum; keeping
// this form pure makes the ledger arithmetic testable without a database.
func SumCompletedPayments(payments []models.FeePayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.PaymentStatus == models.PaymentStateCompleted {
			total = total.Add(p.AmountPaid)
		}
	}
	return total
}

// ApplyPaymentTotal writes a freshly aggregated paid total onto the fee:
// amount_paid, balance, derived status and the lifecycle date stamps. The
// total always replaces the cached value wholesale, never increments it.
func ApplyPaymentTotal(fee *models.SchoolFee, totalPaid decimal.Decimal, now time.Time, stampPaymentDates bool) {
	fee.AmountPaid = totalPaid
	fee.Balance = fee.TotalAmount.Sub(totalPaid)
	fee.PaymentStatus = DeterminePaymentStatus(fee.TotalAmount, totalPaid, fee.DueDate, now)
	if stampPaymentDates {
		last := now
		fee.LastPaymentDate = &last
		if fee.FirstPaymentDate == nil {
			first := now
			fee.FirstPaymentDate = &first
		}
	}
	if !fee.Balance.IsPositive() && fee.PaidInFullDate == nil {
		settled := now
		fee.PaidInFullDate = &settled
	}
}

// RecomputeLedger re-derives a fee's cached fields from its payment rows.
func RecomputeLedger(fee *models.SchoolFee, payments []models.FeePayment, now time.Time, stampPaymentDates bool) {
	ApplyPaymentTotal(fee, SumCompletedPayments(payments), now, stampPaymentDates)
}

// NewSchoolFeeFromSchedule snapshots a schedule's charge components into a
// fresh SchoolFee. Component values are copied, never referenced live.
func NewSchoolFeeFromSchedule(studentID uint, session models.AcademicSession, schedule models.FeeSchedule) models.SchoolFee {
	total := schedule.TotalCharges()
	return models.SchoolFee{
		StudentID:         studentID,
		AcademicSessionID: session.ID,
		TuitionFee:        schedule.TuitionFee,
		AcceptanceFee:     schedule.AcceptanceFee,
		RegistrationFee:   schedule.RegistrationFee,
		FacilitiesFee:     schedule.FacilitiesFee,
		TechnologyFee:     schedule.TechnologyFee,
		OtherCharges:      schedule.OtherCharges,
		TotalAmount:       total,
		AmountPaid:        decimal.Zero,
		Balance:           total,
		DueDate:           session.RegistrationCloses,
		PaymentStatus:     models.FeeStatusPending,
	}
}

// ResolveFeeSchedule looks up the active schedule for exactly
// (program, level, session). No fallback to another level or session.
func (s *Service) ResolveFeeSchedule(programID uint, level int, sessionID uint) (*models.FeeSchedule, error) {
	var schedule models.FeeSchedule
	err := s.db.Where("program_id = ? AND level = ? AND academic_session_id = ? AND is_active = ?",
		programID, level, sessionID, true).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// GenerateSchoolFee creates the single SchoolFee for (student, session) from
// the matching fee schedule. A second call for the same pair is a caller
// error, reported as ErrDuplicateFeeRecord.
func (s *Service) GenerateSchoolFee(student models.Student, session models.AcademicSession) (*models.SchoolFee, error) {
	schedule, err := s.ResolveFeeSchedule(student.ProgramID, student.CurrentLevel, session.ID)
	if err != nil {
		return nil, err
	}

	fee := NewSchoolFeeFromSchedule(student.ID, session, *schedule)
	if err := s.db.Create(&fee).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateFeeRecord
		}
		return nil, fmt.Errorf("failed to create school fee: %w", err)
	}
	return &fee, nil
}

// RecordPayment records a payment attempt against a SchoolFee and refreshes
// the fee's balance from the authoritative payment rows. The row lock on the
// SchoolFee serializes concurrent recordings against the same fee; steps up to
// the balance update are one transaction. Receipt issuance and the student
// notification run after commit and never roll the payment back.
func (s *Service) RecordPayment(schoolFeeID uint, in PaymentInput) (*models.FeePayment, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !models.IsValidPaymentMethod(in.Method) {
		return nil, ErrInvalidPaymentMethod
	}
	status := in.Status
	if status == "" {
		status = models.PaymentStateCompleted
	}
	if !models.IsValidPaymentState(status) {
		return nil, fmt.Errorf("invalid payment status %q", status)
	}

	now := time.Now()
	var payment models.FeePayment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var fee models.SchoolFee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&fee, schoolFeeID).Error; err != nil {
			return err
		}

		payment = models.FeePayment{
			SchoolFeeID:      fee.ID,
			StudentID:        fee.StudentID,
			AmountPaid:       in.Amount,
			PaymentMethod:    in.Method,
			PaymentReference: utils.GeneratePaymentReference(),
			TransactionID:    in.TransactionID,
			PaymentStatus:    status,
			PaymentRemarks:   in.Remarks,
			PaymentDate:      now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create fee payment: %w", err)
		}

		return s.refreshBalance(tx, &fee, now, true)
	})
	if err != nil {
		return nil, err
	}

	if payment.PaymentStatus == models.PaymentStateCompleted {
		s.issueReceiptAndNotify(&payment)
	}
	return &payment, nil
}

// RecalculateBalance re-derives amount_paid, balance and status for a fee from
// its payment rows. Used after out-of-band payment status edits and by the
// overdue sweep; does not touch the payment date stamps.
func (s *Service) RecalculateBalance(schoolFeeID uint) (*models.SchoolFee, error) {
	var fee models.SchoolFee
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&fee, schoolFeeID).Error; err != nil {
			return err
		}
		return s.refreshBalance(tx, &fee, time.Now(), false)
	})
	if err != nil {
		return nil, err
	}
	return &fee, nil
}

// VerifyPayment settles a pending payment as completed or failed, then
// refreshes the owning fee. Completing issues the receipt and notifies the
// student; failing leaves any previously issued receipts untouched.
func (s *Service) VerifyPayment(paymentID uint, succeeded bool, verifierID uint) (*models.FeePayment, error) {
	now := time.Now()
	newState := models.PaymentStateFailed
	if succeeded {
		newState = models.PaymentStateCompleted
	}

	var payment models.FeePayment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return err
		}
		if payment.PaymentStatus != models.PaymentStatePending {
			return fmt.Errorf("payment %s is not pending verification", payment.PaymentReference)
		}

		var fee models.SchoolFee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&fee, payment.SchoolFeeID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"payment_status": newState,
			"verified_at":    now,
			"verified_by":    verifierID,
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}
		payment.PaymentStatus = newState

		return s.refreshBalance(tx, &fee, now, succeeded)
	})
	if err != nil {
		return nil, err
	}

	if succeeded {
		s.issueReceiptAndNotify(&payment)
	}
	return &payment, nil
}

// GeneratePaymentReceipt issues the receipt for a completed payment. Issued at
// most once per payment; a second call returns the existing receipt. The
// receipt stores an immutable snapshot of the payment at issuance time.
func (s *Service) GeneratePaymentReceipt(payment *models.FeePayment) (*models.PaymentReceipt, error) {
	if payment.PaymentStatus != models.PaymentStateCompleted {
		return nil, ErrReceiptNotAllowed
	}

	var existing models.PaymentReceipt
	if err := s.db.Where("fee_payment_id = ?", payment.ID).First(&existing).Error; err == nil {
		return &existing, nil
	}

	details, err := json.Marshal(map[string]interface{}{
		"reference":      payment.PaymentReference,
		"transaction_id": payment.TransactionID,
		"date":           payment.PaymentDate,
		"status":         payment.PaymentStatus,
	})
	if err != nil {
		return nil, err
	}

	receipt := models.PaymentReceipt{
		FeePaymentID:   payment.ID,
		StudentID:      payment.StudentID,
		ReceiptNumber:  utils.GenerateReceiptNumber(),
		Amount:         payment.AmountPaid,
		PaymentMethod:  payment.PaymentMethod,
		ReceiptDetails: details,
		GeneratedAt:    time.Now(),
	}
	if err := s.db.Create(&receipt).Error; err != nil {
		if isDuplicateKeyError(err) {
			// lost a race with a concurrent issuance; the existing one wins
			if ferr := s.db.Where("fee_payment_id = ?", payment.ID).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create payment receipt: %w", err)
	}
	return &receipt, nil
}

// GetOutstandingFees returns the student's fees that still carry a balance.
func (s *Service) GetOutstandingFees(studentID uint) ([]models.SchoolFee, error) {
	var fees []models.SchoolFee
	err := s.db.Where("student_id = ? AND payment_status IN ?",
		studentID, []models.FeeStatus{models.FeeStatusPending, models.FeeStatusPartial, models.FeeStatusOverdue}).
		Preload("AcademicSession").
		Order("due_date").
		Find(&fees).Error
	return fees, err
}

// GetPaymentHistory returns the student's completed payments, newest first.
func (s *Service) GetPaymentHistory(studentID uint, limit int) ([]models.FeePayment, error) {
	if limit <= 0 {
		limit = 10
	}
	var payments []models.FeePayment
	err := s.db.Where("student_id = ? AND payment_status = ?", studentID, models.PaymentStateCompleted).
		Order("payment_date DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// SweepOverdue recomputes every pending fee whose due date has passed so it
// lands in overdue. Invoked by the nightly cron job.
func (s *Service) SweepOverdue(now time.Time) (int, error) {
	var ids []uint
	err := s.db.Model(&models.SchoolFee{}).
		Where("payment_status = ? AND due_date < ?", models.FeeStatusPending, now).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, id := range ids {
		if _, err := s.RecalculateBalance(id); err != nil {
			logrus.WithError(err).WithField("school_fee_id", id).Error("overdue sweep: recalculation failed")
			continue
		}
		swept++
	}
	return swept, nil
}

// refreshBalance recomputes amount_paid as a fresh aggregate over completed
// payments, updates balance and status, and stamps the lifecycle dates. Must
// run inside the transaction that holds the row lock on the fee.
func (s *Service) refreshBalance(tx *gorm.DB, fee *models.SchoolFee, now time.Time, stampPaymentDates bool) error {
	var totalPaid decimal.Decimal
	row := tx.Model(&models.FeePayment{}).
		Where("school_fee_id = ? AND payment_status = ?", fee.ID, models.PaymentStateCompleted).
		Select("COALESCE(SUM(amount_paid), 0)").Row()
	if err := row.Scan(&totalPaid); err != nil {
		return fmt.Errorf("failed to aggregate completed payments: %w", err)
	}

	ApplyPaymentTotal(fee, totalPaid, now, stampPaymentDates)

	updates := map[string]interface{}{
		"amount_paid":        fee.AmountPaid,
		"balance":            fee.Balance,
		"payment_status":     fee.PaymentStatus,
		"first_payment_date": fee.FirstPaymentDate,
		"last_payment_date":  fee.LastPaymentDate,
		"paid_in_full_date":  fee.PaidInFullDate,
	}
	if err := tx.Model(fee).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update school fee balance: %w", err)
	}
	return nil
}

// issueReceiptAndNotify runs the post-commit side effects of a completed
// payment. Failures are logged and swallowed; the committed payment stands.
func (s *Service) issueReceiptAndNotify(payment *models.FeePayment) {
	if _, err := s.GeneratePaymentReceipt(payment); err != nil {
		logrus.WithError(err).WithField("payment_reference", payment.PaymentReference).
			Error("failed to issue payment receipt")
	}

	var student models.Student
	if err := s.db.First(&student, payment.StudentID).Error; err != nil {
		logrus.WithError(err).WithField("student_id", payment.StudentID).
			Warn("payment notification skipped: student not found")
		return
	}
	go func() {
		n := notifications.PaymentReceived(payment.AmountPaid.StringFixed(2), payment.PaymentReference)
		if err := s.notif.EnqueueOrCreate([]uint{student.UserID}, n); err != nil {
			logrus.WithError(err).Warn("failed to dispatch payment notification")
		}
	}()
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// mysql driver surfaces error 1062 without translation enabled
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
