package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeStatus is the derived state of a SchoolFee. It is always recomputed from
// (total_amount, amount_paid, due_date, now) and never edited directly.
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "pending"
	FeeStatusPartial FeeStatus = "partial"
	FeeStatusPaid    FeeStatus = "paid"
	FeeStatusOverdue FeeStatus = "overdue"
)

// PaymentState is the state of a single FeePayment.
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateCompleted PaymentState = "completed"
	PaymentStateFailed    PaymentState = "failed"
	PaymentStateRefunded  PaymentState = "refunded"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodPaystack     PaymentMethod = "paystack"
	MethodStripe       PaymentMethod = "stripe"
	MethodCash         PaymentMethod = "cash"
	MethodCheque       PaymentMethod = "cheque"
)

// IsValidPaymentMethod reports whether m is one of the accepted channels.
func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodBankTransfer, MethodCard, MethodPaystack, MethodStripe, MethodCash, MethodCheque:
		return true
	}
	return false
}

// IsValidPaymentState reports whether s is a known payment state.
func IsValidPaymentState(s PaymentState) bool {
	switch s {
	case PaymentStatePending, PaymentStateCompleted, PaymentStateFailed, PaymentStateRefunded:
		return true
	}
	return false
}

// FeeSchedule is the charge template for a (program, level, session) triple.
// Immutable once a SchoolFee has been generated from it; school fees copy the
// component values instead of referencing the schedule live.
type FeeSchedule struct {
	BaseModel
	ProgramID         uint            `json:"program_id" gorm:"not null;uniqueIndex:idx_program_level_session"`
	Level             int             `json:"level" gorm:"not null;uniqueIndex:idx_program_level_session"`
	AcademicSessionID uint            `json:"academic_session_id" gorm:"not null;uniqueIndex:idx_program_level_session"`
	TuitionFee        decimal.Decimal `json:"tuition_fee" gorm:"type:decimal(12,2);not null"`
	AcceptanceFee     decimal.Decimal `json:"acceptance_fee" gorm:"type:decimal(12,2);default:0"`
	RegistrationFee   decimal.Decimal `json:"registration_fee" gorm:"type:decimal(12,2);default:0"`
	FacilitiesFee     decimal.Decimal `json:"facilities_fee" gorm:"type:decimal(12,2);default:0"`
	TechnologyFee     decimal.Decimal `json:"technology_fee" gorm:"type:decimal(12,2);default:0"`
	OtherCharges      decimal.Decimal `json:"other_charges" gorm:"type:decimal(12,2);default:0"`
	EffectiveFrom     time.Time       `json:"effective_from"`
	EffectiveTo       *time.Time      `json:"effective_to"`
	IsActive          bool            `json:"is_active" gorm:"default:true"`

	// Relationships
	Program         Program         `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
	AcademicSession AcademicSession `json:"academic_session,omitempty" gorm:"foreignKey:AcademicSessionID"`
}

// TotalCharges sums the six charge components.
func (fs *FeeSchedule) TotalCharges() decimal.Decimal {
	return fs.TuitionFee.
		Add(fs.AcceptanceFee).
		Add(fs.RegistrationFee).
		Add(fs.FacilitiesFee).
		Add(fs.TechnologyFee).
		Add(fs.OtherCharges)
}

// SchoolFee is the per-student-per-session charge record and running balance.
// AmountPaid and Balance are caches of an aggregate over completed FeePayments;
// they are refreshed wholesale after every completed-payment event.
type SchoolFee struct {
	BaseModel
	StudentID         uint            `json:"student_id" gorm:"not null;uniqueIndex:idx_student_session"`
	AcademicSessionID uint            `json:"academic_session_id" gorm:"not null;uniqueIndex:idx_student_session"`
	TuitionFee        decimal.Decimal `json:"tuition_fee" gorm:"type:decimal(12,2);not null"`
	AcceptanceFee     decimal.Decimal `json:"acceptance_fee" gorm:"type:decimal(12,2);default:0"`
	RegistrationFee   decimal.Decimal `json:"registration_fee" gorm:"type:decimal(12,2);default:0"`
	FacilitiesFee     decimal.Decimal `json:"facilities_fee" gorm:"type:decimal(12,2);default:0"`
	TechnologyFee     decimal.Decimal `json:"technology_fee" gorm:"type:decimal(12,2);default:0"`
	OtherCharges      decimal.Decimal `json:"other_charges" gorm:"type:decimal(12,2);default:0"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	AmountPaid        decimal.Decimal `json:"amount_paid" gorm:"type:decimal(12,2);default:0"`
	Balance           decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null"`
	DueDate           time.Time       `json:"due_date" gorm:"not null"`
	PaymentStatus     FeeStatus       `json:"payment_status" gorm:"size:50;not null;default:'pending';type:enum('pending','partial','paid','overdue')"`
	FirstPaymentDate  *time.Time      `json:"first_payment_date"`
	LastPaymentDate   *time.Time      `json:"last_payment_date"`
	PaidInFullDate    *time.Time      `json:"paid_in_full_date"`

	// Relationships
	Student         Student         `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	AcademicSession AcademicSession `json:"academic_session,omitempty" gorm:"foreignKey:AcademicSessionID"`
	Payments        []FeePayment    `json:"payments,omitempty" gorm:"foreignKey:SchoolFeeID"`
}

// FeePayment is a single recorded payment attempt against a SchoolFee.
// Immutable after creation except for status transitions and verification.
type FeePayment struct {
	BaseModel
	SchoolFeeID      uint            `json:"school_fee_id" gorm:"not null;index"`
	StudentID        uint            `json:"student_id" gorm:"not null;index"`
	AmountPaid       decimal.Decimal `json:"amount_paid" gorm:"type:decimal(12,2);not null"`
	PaymentMethod    PaymentMethod   `json:"payment_method" gorm:"size:50;type:enum('bank_transfer','card','paystack','stripe','cash','cheque')"`
	PaymentReference string          `json:"payment_reference" gorm:"size:100;not null;uniqueIndex"`
	TransactionID    *string         `json:"transaction_id" gorm:"size:100;uniqueIndex"`
	PaymentStatus    PaymentState    `json:"payment_status" gorm:"size:50;not null;default:'completed';type:enum('pending','completed','failed','refunded');index"`
	PaymentRemarks   string          `json:"payment_remarks" gorm:"type:text"`
	PaymentDate      time.Time       `json:"payment_date" gorm:"not null;index"`
	VerifiedAt       *time.Time      `json:"verified_at"`
	VerifiedBy       *uint           `json:"verified_by"`

	// Relationships
	SchoolFee SchoolFee `json:"school_fee,omitempty" gorm:"foreignKey:SchoolFeeID"`
	Student   Student   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// PaymentReceipt is the immutable proof-of-payment issued once for a completed
// FeePayment. Later changes to the payment never alter an issued receipt.
type PaymentReceipt struct {
	BaseModel
	FeePaymentID   uint            `json:"fee_payment_id" gorm:"not null;uniqueIndex"`
	StudentID      uint            `json:"student_id" gorm:"not null;index"`
	ReceiptNumber  string          `json:"receipt_number" gorm:"size:100;not null;uniqueIndex"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod  PaymentMethod   `json:"payment_method" gorm:"size:50"`
	ReceiptDetails JSON            `json:"receipt_details" gorm:"type:json"`
	ReceiptPDFPath string          `json:"receipt_pdf_path" gorm:"size:500"`
	GeneratedAt    time.Time       `json:"generated_at" gorm:"not null"`
	IsPrinted      bool            `json:"is_printed" gorm:"default:false"`

	// Relationships
	FeePayment FeePayment `json:"fee_payment,omitempty" gorm:"foreignKey:FeePaymentID"`
	Student    Student    `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}
