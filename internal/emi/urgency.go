package emi

import (
	"time"

	"github.com/storehub/emi-engine/internal/domain"
	"github.com/storehub/emi-engine/pkg/dateutil"
)

// Notification windows, in days before the due date. Downstream notification
// text and grouping depend on these exact boundaries.
const (
	SoonWindowDays     = 3
	UpcomingWindowDays = 7
	HorizonWindowDays  = 30
)

// Classification is the urgency of a single due date relative to one fixed
// "today" value.
type Classification struct {
	Urgency   domain.Urgency
	Severity  domain.Severity
	DaysUntil int
}

// Classify buckets a due date against today. Time of day is ignored; callers
// must read "today" once per logical operation and reuse it, so a run never
// straddles a midnight boundary.
func Classify(dueDate, today time.Time) Classification {
	days := dateutil.DaysBetween(today, dueDate)

	c := Classification{DaysUntil: days}
	switch {
	case days < 0:
		c.Urgency, c.Severity = domain.UrgencyOverdue, domain.SeverityHigh
	case days == 0:
		c.Urgency, c.Severity = domain.UrgencyToday, domain.SeverityHigh
	case days <= SoonWindowDays:
		c.Urgency, c.Severity = domain.UrgencySoon, domain.SeverityMedium
	case days <= UpcomingWindowDays:
		c.Urgency, c.Severity = domain.UrgencyUpcoming, domain.SeverityMedium
	case days <= HorizonWindowDays:
		c.Urgency, c.Severity = domain.UrgencyUpcoming, domain.SeverityLow
	default:
		c.Urgency = domain.UrgencyNone
	}

	return c
}

// ClassifyInstallment classifies an installment's due date. Paid installments
// are never actionable.
func ClassifyInstallment(inst *domain.Installment, today time.Time) Classification {
	if inst.Paid {
		return Classification{Urgency: domain.UrgencyNone, DaysUntil: dateutil.DaysBetween(today, inst.DueDate)}
	}
	return Classify(inst.DueDate, today)
}
