package emi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storehub/emi-engine/internal/domain"
	apperrors "github.com/storehub/emi-engine/pkg/errors"
)

func threeMonthSchedule(t *testing.T) []*domain.Installment {
	t.Helper()
	schedule, err := Generate(decimal.NewFromInt(1000), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 3)
	require.NoError(t, err)
	return schedule
}

func scheduledTotal(schedule []*domain.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range schedule {
		total = total.Add(inst.Amount)
	}
	return total
}

func TestApplyPaymentFull(t *testing.T) {
	schedule := threeMonthSchedule(t)
	paidAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	impact, err := ApplyPayment(schedule, 1, decimal.NewFromInt(1000), paidAt)
	require.NoError(t, err)

	assert.True(t, impact.IsFullPayment)
	assert.False(t, impact.IsPartialPayment)
	assert.False(t, impact.IsOverpayment)

	assert.True(t, schedule[0].Paid)
	assert.False(t, schedule[0].PartiallyPaid)
	assert.True(t, schedule[0].PaidAmount.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, schedule[0].PaidDate)
	assert.Equal(t, paidAt, *schedule[0].PaidDate)

	// Later installments untouched.
	assert.True(t, schedule[1].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, schedule[2].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, scheduledTotal(schedule).Equal(decimal.NewFromInt(3000)))
}

func TestApplyPaymentPartialRedistributes(t *testing.T) {
	schedule := threeMonthSchedule(t)
	paidAt := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	impact, err := ApplyPayment(schedule, 1, decimal.NewFromInt(600), paidAt)
	require.NoError(t, err)

	assert.True(t, impact.IsPartialPayment)
	assert.True(t, impact.Shortfall.Equal(decimal.NewFromInt(400)))

	first := schedule[0]
	assert.False(t, first.Paid)
	assert.True(t, first.PartiallyPaid)
	assert.True(t, first.PaidAmount.Equal(decimal.NewFromInt(600)))

	// 400 shortfall split evenly: 1000 + 200 each.
	assert.True(t, schedule[1].Amount.Equal(decimal.NewFromInt(1200)),
		"installment 2 amount = %v", schedule[1].Amount)
	assert.True(t, schedule[2].Amount.Equal(decimal.NewFromInt(1200)),
		"installment 3 amount = %v", schedule[2].Amount)

	// Conservation: scheduled sum minus the redistributed delta equals the
	// pre-payment total.
	assert.True(t, scheduledTotal(schedule).Sub(impact.Shortfall).Equal(decimal.NewFromInt(3000)))
}

func TestApplyPaymentPartialUnevenSplit(t *testing.T) {
	schedule := threeMonthSchedule(t)

	// Pay 999.99 so the 0.01 shortfall cannot split evenly over the two
	// receivers; their amounts must still sum to exactly 2000.01.
	impact, err := ApplyPayment(schedule, 1, decimal.RequireFromString("999.99"), time.Now())
	require.NoError(t, err)
	require.True(t, impact.IsPartialPayment)
	assert.True(t, impact.Shortfall.Equal(decimal.RequireFromString("0.01")))

	sum := schedule[1].Amount.Add(schedule[2].Amount)
	assert.True(t, sum.Equal(decimal.RequireFromString("2000.01")),
		"redistributed sum = %v", sum)
}

func TestApplyPaymentPartialNoRemainingInstallments(t *testing.T) {
	schedule := threeMonthSchedule(t)
	now := time.Now()

	_, err := ApplyPayment(schedule, 1, decimal.NewFromInt(1000), now)
	require.NoError(t, err)
	_, err = ApplyPayment(schedule, 2, decimal.NewFromInt(1000), now)
	require.NoError(t, err)

	impact, err := ApplyPayment(schedule, 3, decimal.NewFromInt(400), now)
	require.NoError(t, err)

	// Shortfall has nowhere to go: it stays outstanding on #3 and is reported.
	assert.True(t, impact.IsPartialPayment)
	assert.True(t, impact.Shortfall.Equal(decimal.NewFromInt(600)))
	assert.True(t, schedule[2].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, schedule[2].Outstanding().Equal(decimal.NewFromInt(600)))
}

func TestApplyPaymentOverpayment(t *testing.T) {
	schedule := threeMonthSchedule(t)

	impact, err := ApplyPayment(schedule, 1, decimal.NewFromInt(1500), time.Now())
	require.NoError(t, err)

	assert.True(t, impact.IsOverpayment)
	assert.True(t, impact.Overpayment.Equal(decimal.NewFromInt(500)))
	assert.True(t, impact.UnappliedCredit.IsZero())

	assert.True(t, schedule[0].Paid)
	assert.True(t, schedule[0].PaidAmount.Equal(decimal.NewFromInt(1000)))

	second := schedule[1]
	assert.False(t, second.Paid)
	assert.True(t, second.PartiallyPaid)
	assert.True(t, second.PaidAmount.Equal(decimal.NewFromInt(500)))

	third := schedule[2]
	assert.False(t, third.Paid)
	assert.True(t, third.PaidAmount.IsZero())
}

func TestApplyPaymentOverpaymentCascadesAcrossInstallments(t *testing.T) {
	schedule := threeMonthSchedule(t)

	impact, err := ApplyPayment(schedule, 1, decimal.NewFromInt(2500), time.Now())
	require.NoError(t, err)

	assert.True(t, impact.Overpayment.Equal(decimal.NewFromInt(1500)))
	assert.True(t, impact.UnappliedCredit.IsZero())

	assert.True(t, schedule[0].Paid)
	assert.True(t, schedule[1].Paid)
	assert.True(t, schedule[2].PartiallyPaid)
	assert.True(t, schedule[2].PaidAmount.Equal(decimal.NewFromInt(500)))
}

func TestApplyPaymentUnappliedCredit(t *testing.T) {
	schedule := threeMonthSchedule(t)

	impact, err := ApplyPayment(schedule, 1, decimal.NewFromInt(3250), time.Now())
	require.NoError(t, err)

	assert.True(t, impact.IsOverpayment)
	for _, inst := range schedule {
		assert.True(t, inst.Paid, "installment %d should be settled", inst.Number)
		assert.True(t, inst.PaidAmount.Equal(inst.Amount))
	}
	// No new installments are invented; the remainder comes back.
	assert.True(t, impact.UnappliedCredit.Equal(decimal.NewFromInt(250)),
		"unapplied credit = %v", impact.UnappliedCredit)
}

func TestApplyPaymentErrors(t *testing.T) {
	now := time.Now()

	t.Run("installment not found", func(t *testing.T) {
		schedule := threeMonthSchedule(t)
		_, err := ApplyPayment(schedule, 9, decimal.NewFromInt(100), now)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInstallmentNotFound)
		assert.True(t, schedule[0].PaidAmount.IsZero())
	})

	t.Run("already settled", func(t *testing.T) {
		schedule := threeMonthSchedule(t)
		_, err := ApplyPayment(schedule, 1, decimal.NewFromInt(1000), now)
		require.NoError(t, err)

		_, err = ApplyPayment(schedule, 1, decimal.NewFromInt(1000), now)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInstallmentSettled)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		schedule := threeMonthSchedule(t)
		for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
			_, err := ApplyPayment(schedule, 1, amount, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)
		}
		assert.True(t, scheduledTotal(schedule).Equal(decimal.NewFromInt(3000)))
	})
}

// Once settled, an installment stays settled through any later operation.
func TestSettlementIsMonotonic(t *testing.T) {
	schedule := threeMonthSchedule(t)
	now := time.Now()

	_, err := ApplyPayment(schedule, 1, decimal.NewFromInt(1000), now)
	require.NoError(t, err)

	_, err = ApplyPayment(schedule, 2, decimal.NewFromInt(400), now)
	require.NoError(t, err)
	assert.True(t, schedule[0].Paid, "partial payment on #2 must not un-pay #1")

	_, err = ApplyPayment(schedule, 3, decimal.NewFromInt(2000), now)
	require.NoError(t, err)
	assert.True(t, schedule[0].Paid)
}

// Conservation across an arbitrary payment sequence: total recorded in the
// schedule plus unapplied credit never exceeds the cash submitted, and no
// installment ever holds more than its own amount.
func TestPaymentConservation(t *testing.T) {
	schedule := threeMonthSchedule(t)
	now := time.Now()

	payments := []struct {
		number int
		amount decimal.Decimal
	}{
		{1, decimal.NewFromInt(600)},
		{2, decimal.NewFromInt(1500)},
		{1, decimal.NewFromInt(400)},
		{3, decimal.NewFromInt(2000)},
	}

	submitted := decimal.Zero
	credit := decimal.Zero
	for _, p := range payments {
		impact, err := ApplyPayment(schedule, p.number, p.amount, now)
		if err != nil {
			continue // settled targets are rejected without mutation
		}
		submitted = submitted.Add(p.amount)
		credit = credit.Add(impact.UnappliedCredit)

		applied := decimal.Zero
		for _, inst := range schedule {
			assert.True(t, inst.PaidAmount.LessThanOrEqual(inst.Amount),
				"installment %d paid %v over amount %v", inst.Number, inst.PaidAmount, inst.Amount)
			assert.True(t, inst.PaidAmount.GreaterThanOrEqual(decimal.Zero))
			applied = applied.Add(inst.PaidAmount)
		}
		assert.True(t, applied.Add(credit).LessThanOrEqual(submitted.Add(decimal.RequireFromString("0.01"))),
			"applied %v + credit %v exceeds submitted %v", applied, credit, submitted)
	}
}
