package emi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/storehub/emi-engine/pkg/errors"
)

func TestGenerate(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("three month plan", func(t *testing.T) {
		schedule, err := Generate(decimal.NewFromInt(1000), start, 3)
		require.NoError(t, err)
		require.Len(t, schedule, 3)

		expectedDue := []time.Time{
			time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		}

		total := decimal.Zero
		for i, inst := range schedule {
			assert.Equal(t, i+1, inst.Number)
			assert.Equal(t, expectedDue[i], inst.DueDate)
			assert.True(t, inst.Amount.Equal(decimal.NewFromInt(1000)))
			assert.False(t, inst.Paid)
			assert.False(t, inst.PartiallyPaid)
			assert.True(t, inst.PaidAmount.IsZero())
			total = total.Add(inst.Amount)
		}

		// sum(amount) == monthlyAmount * duration
		assert.True(t, total.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("due dates clamp at month end", func(t *testing.T) {
		schedule, err := Generate(decimal.NewFromInt(500), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 4)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
		assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
		assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), schedule[3].DueDate)
	})

	t.Run("due dates are non-decreasing", func(t *testing.T) {
		schedule, err := Generate(decimal.NewFromInt(250), time.Date(2023, 10, 31, 0, 0, 0, 0, time.UTC), 12)
		require.NoError(t, err)
		for i := 1; i < len(schedule); i++ {
			assert.False(t, schedule[i].DueDate.Before(schedule[i-1].DueDate))
		}
	})

	validationCases := []struct {
		name     string
		monthly  decimal.Decimal
		start    time.Time
		duration int
		field    string
	}{
		{"zero monthly amount", decimal.Zero, start, 3, "monthly_amount"},
		{"negative monthly amount", decimal.NewFromInt(-100), start, 3, "monthly_amount"},
		{"zero duration", decimal.NewFromInt(1000), start, 0, "duration"},
		{"negative duration", decimal.NewFromInt(1000), start, -1, "duration"},
		{"missing start date", decimal.NewFromInt(1000), time.Time{}, 3, "start_date"},
	}

	for _, tt := range validationCases {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := Generate(tt.monthly, tt.start, tt.duration)
			assert.Nil(t, schedule)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestPlanTotals(t *testing.T) {
	tests := []struct {
		name             string
		monthly          decimal.Decimal
		duration         int
		invoiceTotal     decimal.Decimal
		expectedTotal    decimal.Decimal
		expectedInterest decimal.Decimal
		expectedRate     decimal.Decimal
		undercharged     bool
	}{
		{
			name:             "plan overcharges invoice",
			monthly:          decimal.NewFromInt(1100),
			duration:         10,
			invoiceTotal:     decimal.NewFromInt(10000),
			expectedTotal:    decimal.NewFromInt(11000),
			expectedInterest: decimal.NewFromInt(1000),
			expectedRate:     decimal.NewFromInt(10),
		},
		{
			name:             "plan exactly covers invoice",
			monthly:          decimal.NewFromInt(1000),
			duration:         3,
			invoiceTotal:     decimal.NewFromInt(3000),
			expectedTotal:    decimal.NewFromInt(3000),
			expectedInterest: decimal.Zero,
			expectedRate:     decimal.Zero,
		},
		{
			name:             "plan undercharges invoice",
			monthly:          decimal.NewFromInt(900),
			duration:         3,
			invoiceTotal:     decimal.NewFromInt(3000),
			expectedTotal:    decimal.NewFromInt(2700),
			expectedInterest: decimal.NewFromInt(-300),
			expectedRate:     decimal.NewFromInt(-10),
			undercharged:     true,
		},
		{
			name:             "zero invoice total yields zero rate",
			monthly:          decimal.NewFromInt(100),
			duration:         2,
			invoiceTotal:     decimal.Zero,
			expectedTotal:    decimal.NewFromInt(200),
			expectedInterest: decimal.NewFromInt(200),
			expectedRate:     decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := PlanTotals(tt.monthly, tt.duration, tt.invoiceTotal)
			assert.True(t, totals.TotalEMIAmount.Equal(tt.expectedTotal),
				"total: expected %v, got %v", tt.expectedTotal, totals.TotalEMIAmount)
			assert.True(t, totals.TotalInterest.Equal(tt.expectedInterest),
				"interest: expected %v, got %v", tt.expectedInterest, totals.TotalInterest)
			assert.True(t, totals.EffectiveInterestRate.Equal(tt.expectedRate),
				"rate: expected %v, got %v", tt.expectedRate, totals.EffectiveInterestRate)
			assert.Equal(t, tt.undercharged, totals.Undercharged)
		})
	}
}
