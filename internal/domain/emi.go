package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EMIDetails is the full installment plan attached to an invoice. It is
// persisted as one JSON document: the engine always reads the whole plan,
// recomputes it, and writes it back whole.
type EMIDetails struct {
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	StartDate     time.Time       `json:"start_date"`
	Duration      int             `json:"duration"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	Schedule      []*Installment  `json:"schedule"`
}

// Installment is one scheduled payment unit, identified by its 1-based
// number. Number order is the canonical chronological order.
type Installment struct {
	Number        int             `json:"installment_number"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Paid          bool            `json:"paid"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PartiallyPaid bool            `json:"partially_paid"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
}

// Outstanding returns the amount still due on this installment.
func (i *Installment) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// PaymentImpact summarizes what a single recorded payment did to the plan.
type PaymentImpact struct {
	InstallmentNumber int             `json:"installment_number"`
	IsFullPayment     bool            `json:"is_full_payment"`
	IsPartialPayment  bool            `json:"is_partial_payment"`
	IsOverpayment     bool            `json:"is_overpayment"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	Overpayment       decimal.Decimal `json:"overpayment"`
	// UnappliedCredit is surplus left after every installment is settled.
	// It must be surfaced to the caller, never silently dropped.
	UnappliedCredit decimal.Decimal `json:"unapplied_credit"`
}

// ScheduledInstallment is an installment annotated with its urgency relative
// to a single "today" value, for schedule reads.
type ScheduledInstallment struct {
	*Installment
	Urgency   Urgency  `json:"urgency"`
	Severity  Severity `json:"severity,omitempty"`
	DaysUntil int      `json:"days_until"`
}

// Value implements driver.Valuer so the plan round-trips through a JSONB column.
func (e EMIDetails) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *EMIDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("unsupported type %T for EMIDetails", src)
	}
}
