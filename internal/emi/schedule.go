// Package emi holds the installment schedule engine: schedule generation,
// due-date urgency classification, and payment reconciliation. Everything in
// this package is a pure function over domain records; persistence and
// transport live elsewhere.
package emi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storehub/emi-engine/internal/domain"
	"github.com/storehub/emi-engine/pkg/dateutil"
	apperrors "github.com/storehub/emi-engine/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Generate produces the initial schedule for a plan: duration installments,
// numbered from 1, due on the same day-of-month as startDate (clamped to the
// last day of shorter months), each owing exactly monthlyAmount.
//
// Interest, if any, is reporting-only and never changes the scheduled amount.
func Generate(monthlyAmount decimal.Decimal, startDate time.Time, duration int) ([]*domain.Installment, error) {
	if monthlyAmount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("monthly_amount", "must be greater than zero")
	}
	if duration < 1 {
		return nil, apperrors.NewValidationError("duration", "must be at least 1")
	}
	if startDate.IsZero() {
		return nil, apperrors.NewValidationError("start_date", "is required")
	}

	first := dateutil.StartOfDay(startDate)
	amount := monthlyAmount.Round(2)

	schedule := make([]*domain.Installment, 0, duration)
	for number := 1; number <= duration; number++ {
		schedule = append(schedule, &domain.Installment{
			Number:     number,
			DueDate:    dateutil.AddMonths(first, number-1),
			Amount:     amount,
			Paid:       false,
			PaidAmount: decimal.Zero,
		})
	}

	return schedule, nil
}

// Totals are the derived plan figures; recomputed on demand, never persisted
// separately from their inputs.
type Totals struct {
	TotalEMIAmount        decimal.Decimal
	TotalInterest         decimal.Decimal
	EffectiveInterestRate decimal.Decimal
	// Undercharged is set when the plan collects less than the invoice total.
	// Surfaced as a warning, not an error.
	Undercharged bool
}

// PlanTotals computes the reporting totals for a plan against its invoice.
func PlanTotals(monthlyAmount decimal.Decimal, duration int, invoiceTotal decimal.Decimal) Totals {
	totalEMI := monthlyAmount.Mul(decimal.NewFromInt(int64(duration)))
	interest := totalEMI.Sub(invoiceTotal)

	rate := decimal.Zero
	if invoiceTotal.GreaterThan(decimal.Zero) {
		rate = interest.Div(invoiceTotal).Mul(oneHundred).Round(2)
	}

	return Totals{
		TotalEMIAmount:        totalEMI,
		TotalInterest:         interest,
		EffectiveInterestRate: rate,
		Undercharged:          interest.IsNegative(),
	}
}
