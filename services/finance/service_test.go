package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"munaucollege_go/models"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestDeterminePaymentStatus(t *testing.T) {
	due := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)
	beforeDue := due.AddDate(0, 0, -10)
	afterDue := due.AddDate(0, 0, 1)

	tests := []struct {
		name  string
		total decimal.Decimal
		paid  decimal.Decimal
		now   time.Time
		want  models.FeeStatus
	}{
		{
			name:  "nothing paid before due date",
			total: d(235000),
			paid:  d(0),
			now:   beforeDue,
			want:  models.FeeStatusPending,
		},
		{
			name:  "partial payment before due date",
			total: d(235000),
			paid:  d(100000),
			now:   beforeDue,
			want:  models.FeeStatusPartial,
		},
		{
			name:  "paid exactly equals total",
			total: d(235000),
			paid:  d(235000),
			now:   beforeDue,
			want:  models.FeeStatusPaid,
		},
		{
			name:  "paid above total",
			total: d(235000),
			paid:  d(240000),
			now:   beforeDue,
			want:  models.FeeStatusPaid,
		},
		{
			name:  "nothing paid after due date",
			total: d(235000),
			paid:  d(0),
			now:   afterDue,
			want:  models.FeeStatusOverdue,
		},
		{
			name:  "partial payment after due date stays partial",
			total: d(235000),
			paid:  d(50000),
			now:   afterDue,
			want:  models.FeeStatusPartial,
		},
		{
			name:  "fully paid after due date stays paid",
			total: d(235000),
			paid:  d(235000),
			now:   afterDue,
			want:  models.FeeStatusPaid,
		},
		{
			name:  "exactly on due date is not overdue",
			total: d(235000),
			paid:  d(0),
			now:   due,
			want:  models.FeeStatusPending,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := DeterminePaymentStatus(tc.total, tc.paid, due, tc.now)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDeterminePaymentStatusDeterministic(t *testing.T) {
	due := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, -1)

	first := DeterminePaymentStatus(d(100000), d(40000), due, now)
	for i := 0; i < 10; i++ {
		if got := DeterminePaymentStatus(d(100000), d(40000), due, now); got != first {
			t.Fatalf("status changed between identical calls: %s vs %s", first, got)
		}
	}
}

func TestNewSchoolFeeFromSchedule(t *testing.T) {
	session := models.AcademicSession{
		BaseModel:          models.BaseModel{ID: 7},
		SessionName:        "2026/2027",
		RegistrationCloses: time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
	}
	schedule := models.FeeSchedule{
		ProgramID:         3,
		Level:             100,
		AcademicSessionID: 7,
		TuitionFee:        d(200000),
		AcceptanceFee:     d(30000),
		RegistrationFee:   d(5000),
	}

	fee := NewSchoolFeeFromSchedule(42, session, schedule)

	if fee.StudentID != 42 {
		t.Fatalf("expected student 42, got %d", fee.StudentID)
	}
	if fee.AcademicSessionID != 7 {
		t.Fatalf("expected session 7, got %d", fee.AcademicSessionID)
	}
	if !fee.TotalAmount.Equal(d(235000)) {
		t.Fatalf("expected total 235000, got %s", fee.TotalAmount)
	}
	if !fee.Balance.Equal(d(235000)) {
		t.Fatalf("expected balance 235000, got %s", fee.Balance)
	}
	if !fee.AmountPaid.IsZero() {
		t.Fatalf("expected zero paid, got %s", fee.AmountPaid)
	}
	if fee.PaymentStatus != models.FeeStatusPending {
		t.Fatalf("expected pending status, got %s", fee.PaymentStatus)
	}
	// Charge components are copied so later schedule edits don't move the fee
	if !fee.TuitionFee.Equal(schedule.TuitionFee) {
		t.Fatalf("expected tuition copied from schedule")
	}
}

func TestFeeScheduleTotalCharges(t *testing.T) {
	schedule := models.FeeSchedule{
		TuitionFee:      d(200000),
		AcceptanceFee:   d(30000),
		RegistrationFee: d(5000),
		FacilitiesFee:   d(15000),
		TechnologyFee:   d(10000),
		OtherCharges:    d(2500),
	}

	if got := schedule.TotalCharges(); !got.Equal(d(262500)) {
		t.Fatalf("expected 262500, got %s", got)
	}
}

func TestValidatePaymentAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		balance decimal.Decimal
		wantErr error
	}{
		{"partial payment accepted", d(100000), d(235000), nil},
		{"exact balance accepted", d(235000), d(235000), nil},
		{"zero amount rejected", d(0), d(235000), ErrInvalidAmount},
		{"negative amount rejected", d(-500), d(235000), ErrInvalidAmount},
		{"overpayment rejected", d(235001), d(235000), ErrOverpayment},
		{"any amount against settled fee rejected", d(1), d(0), ErrOverpayment},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidatePaymentAmount(tc.amount, tc.balance); !errors.Is(got, tc.wantErr) {
				t.Fatalf("ValidatePaymentAmount(%s, %s) = %v, want %v", tc.amount, tc.balance, got, tc.wantErr)
			}
		})
	}
}

func TestSumCompletedPayments(t *testing.T) {
	payments := []models.FeePayment{
		{AmountPaid: d(50000), PaymentStatus: models.PaymentStateCompleted},
		{AmountPaid: d(30000), PaymentStatus: models.PaymentStatePending},
		{AmountPaid: d(20000), PaymentStatus: models.PaymentStateFailed},
		{AmountPaid: d(10000), PaymentStatus: models.PaymentStateRefunded},
		{AmountPaid: d(45000), PaymentStatus: models.PaymentStateCompleted},
	}

	if got := SumCompletedPayments(payments); !got.Equal(d(95000)) {
		t.Fatalf("expected 95000 from completed rows only, got %s", got)
	}
	if got := SumCompletedPayments(nil); !got.IsZero() {
		t.Fatalf("expected zero for no payments, got %s", got)
	}
}

func TestRecomputeLedgerPartialThenFull(t *testing.T) {
	due := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, -30)
	fee := models.SchoolFee{
		TotalAmount:   d(235000),
		Balance:       d(235000),
		DueDate:       due,
		PaymentStatus: models.FeeStatusPending,
	}

	payments := []models.FeePayment{
		{AmountPaid: d(100000), PaymentStatus: models.PaymentStateCompleted},
	}
	RecomputeLedger(&fee, payments, now, true)

	if !fee.AmountPaid.Equal(d(100000)) || !fee.Balance.Equal(d(135000)) {
		t.Fatalf("after partial payment: paid %s balance %s", fee.AmountPaid, fee.Balance)
	}
	if fee.PaymentStatus != models.FeeStatusPartial {
		t.Fatalf("expected partial, got %s", fee.PaymentStatus)
	}
	if fee.FirstPaymentDate == nil || fee.LastPaymentDate == nil {
		t.Fatalf("expected payment dates stamped")
	}
	if fee.PaidInFullDate != nil {
		t.Fatalf("paid_in_full_date must not be set on a partial payment")
	}
	firstStamp := *fee.FirstPaymentDate

	later := now.AddDate(0, 0, 5)
	payments = append(payments, models.FeePayment{
		AmountPaid: d(135000), PaymentStatus: models.PaymentStateCompleted,
	})
	RecomputeLedger(&fee, payments, later, true)

	if !fee.AmountPaid.Equal(d(235000)) || !fee.Balance.IsZero() {
		t.Fatalf("after full payment: paid %s balance %s", fee.AmountPaid, fee.Balance)
	}
	if fee.PaymentStatus != models.FeeStatusPaid {
		t.Fatalf("expected paid, got %s", fee.PaymentStatus)
	}
	if fee.PaidInFullDate == nil {
		t.Fatalf("expected paid_in_full_date stamped when balance reaches zero")
	}
	if !fee.FirstPaymentDate.Equal(firstStamp) {
		t.Fatalf("first_payment_date must not move on later payments")
	}
	if !fee.LastPaymentDate.Equal(later) {
		t.Fatalf("last_payment_date must follow the latest payment")
	}
}

func TestRecomputeLedgerCommutative(t *testing.T) {
	due := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, -10)
	base := models.SchoolFee{TotalAmount: d(235000), Balance: d(235000), DueDate: due}

	sequenced := base
	RecomputeLedger(&sequenced, []models.FeePayment{
		{AmountPaid: d(50000), PaymentStatus: models.PaymentStateCompleted},
	}, now, true)
	RecomputeLedger(&sequenced, []models.FeePayment{
		{AmountPaid: d(50000), PaymentStatus: models.PaymentStateCompleted},
		{AmountPaid: d(185000), PaymentStatus: models.PaymentStateCompleted},
	}, now, true)

	single := base
	RecomputeLedger(&single, []models.FeePayment{
		{AmountPaid: d(235000), PaymentStatus: models.PaymentStateCompleted},
	}, now, true)

	if !sequenced.AmountPaid.Equal(single.AmountPaid) {
		t.Fatalf("amount_paid diverged: %s vs %s", sequenced.AmountPaid, single.AmountPaid)
	}
	if !sequenced.Balance.Equal(single.Balance) {
		t.Fatalf("balance diverged: %s vs %s", sequenced.Balance, single.Balance)
	}
	if sequenced.PaymentStatus != single.PaymentStatus {
		t.Fatalf("status diverged: %s vs %s", sequenced.PaymentStatus, single.PaymentStatus)
	}
	if sequenced.PaidInFullDate == nil || single.PaidInFullDate == nil {
		t.Fatalf("both routes must stamp paid_in_full_date")
	}
}

func TestRecomputeLedgerDropsFailedPayment(t *testing.T) {
	due := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, -10)
	fee := models.SchoolFee{TotalAmount: d(235000), Balance: d(235000), DueDate: due}

	payments := []models.FeePayment{
		{AmountPaid: d(100000), PaymentStatus: models.PaymentStateCompleted},
		{AmountPaid: d(135000), PaymentStatus: models.PaymentStateCompleted},
	}
	RecomputeLedger(&fee, payments, now, true)
	if fee.PaymentStatus != models.FeeStatusPaid {
		t.Fatalf("expected paid before the edit, got %s", fee.PaymentStatus)
	}

	// A payment edited to failed out of band must fall out of the aggregate
	payments[0].PaymentStatus = models.PaymentStateFailed
	RecomputeLedger(&fee, payments, now, false)

	if !fee.AmountPaid.Equal(d(135000)) {
		t.Fatalf("expected failed payment dropped from amount_paid, got %s", fee.AmountPaid)
	}
	if !fee.Balance.Equal(d(100000)) {
		t.Fatalf("expected balance 100000 after recomputation, got %s", fee.Balance)
	}
	if fee.PaymentStatus != models.FeeStatusPartial {
		t.Fatalf("expected partial after recomputation, got %s", fee.PaymentStatus)
	}
	if !fee.Balance.Equal(fee.TotalAmount.Sub(fee.AmountPaid)) {
		t.Fatalf("balance identity broken: %s != %s - %s", fee.Balance, fee.TotalAmount, fee.AmountPaid)
	}
}

func TestPaymentMethodValidation(t *testing.T) {
	valid := []models.PaymentMethod{
		models.MethodBankTransfer, models.MethodCard, models.MethodPaystack,
		models.MethodStripe, models.MethodCash, models.MethodCheque,
	}
	for _, m := range valid {
		if !models.IsValidPaymentMethod(m) {
			t.Fatalf("expected %s to be valid", m)
		}
	}
	if models.IsValidPaymentMethod("bitcoin") {
		t.Fatalf("expected bitcoin to be rejected")
	}
	if models.IsValidPaymentMethod("") {
		t.Fatalf("expected empty method to be rejected")
	}
}
