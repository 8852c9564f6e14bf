package emi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/storehub/emi-engine/internal/domain"
)

func TestClassifyBoundaries(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		daysDiff         int
		expectedUrgency  domain.Urgency
		expectedSeverity domain.Severity
	}{
		{-1, domain.UrgencyOverdue, domain.SeverityHigh},
		{0, domain.UrgencyToday, domain.SeverityHigh},
		{1, domain.UrgencySoon, domain.SeverityMedium},
		{3, domain.UrgencySoon, domain.SeverityMedium},
		{4, domain.UrgencyUpcoming, domain.SeverityMedium},
		{7, domain.UrgencyUpcoming, domain.SeverityMedium},
		{8, domain.UrgencyUpcoming, domain.SeverityLow},
		{30, domain.UrgencyUpcoming, domain.SeverityLow},
		{31, domain.UrgencyNone, domain.Severity("")},
	}

	for _, tt := range tests {
		due := today.AddDate(0, 0, tt.daysDiff)
		c := Classify(due, today)
		assert.Equal(t, tt.expectedUrgency, c.Urgency, "daysDiff=%d", tt.daysDiff)
		assert.Equal(t, tt.expectedSeverity, c.Severity, "daysDiff=%d", tt.daysDiff)
		assert.Equal(t, tt.daysDiff, c.DaysUntil, "daysDiff=%d", tt.daysDiff)
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2024, 6, 15, 23, 50, 0, 0, time.UTC)
	due := time.Date(2024, 6, 16, 0, 5, 0, 0, time.UTC)

	c := Classify(due, today)
	assert.Equal(t, domain.UrgencySoon, c.Urgency)
	assert.Equal(t, 1, c.DaysUntil)
}

func TestClassifyInstallment(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("paid installment is never actionable", func(t *testing.T) {
		inst := &domain.Installment{
			Number:     1,
			DueDate:    today.AddDate(0, 0, -10),
			Amount:     decimal.NewFromInt(1000),
			Paid:       true,
			PaidAmount: decimal.NewFromInt(1000),
		}
		c := ClassifyInstallment(inst, today)
		assert.Equal(t, domain.UrgencyNone, c.Urgency)
	})

	t.Run("unpaid installment classifies by due date", func(t *testing.T) {
		inst := &domain.Installment{
			Number:  2,
			DueDate: today.AddDate(0, 0, 2),
			Amount:  decimal.NewFromInt(1000),
		}
		c := ClassifyInstallment(inst, today)
		assert.Equal(t, domain.UrgencySoon, c.Urgency)
		assert.Equal(t, domain.SeverityMedium, c.Severity)
	})
}
