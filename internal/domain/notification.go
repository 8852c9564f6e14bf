package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Urgency is the due-date-relative classification driving notification
// priority. Paid or far-future installments classify as none.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyToday    Urgency = "today"
	UrgencySoon     Urgency = "soon"
	UrgencyUpcoming Urgency = "upcoming"
	UrgencyNone     Urgency = "none"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type NotificationKind string

const (
	NotificationKindEMIDue   NotificationKind = "emi_due"
	NotificationKindDelivery NotificationKind = "delivery"
)

// NotificationSource tags engine-generated records so the regeneration run
// only ever wipes its own output.
const NotificationSource = "emi-engine"

// Notification is one reminder record emitted by the deriver.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Recipient string           `json:"recipient" db:"recipient"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Severity  Severity         `json:"severity" db:"severity"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Source    string           `json:"source" db:"source"`

	// EMI composite-key fields.
	CustomerID        string     `json:"customer_id,omitempty" db:"customer_id"`
	InvoiceNumber     string     `json:"invoice_number,omitempty" db:"invoice_number"`
	InstallmentNumber int        `json:"installment_number,omitempty" db:"installment_number"`
	DueDate           *time.Time `json:"due_date,omitempty" db:"due_date"`

	// Delivery composite-key fields.
	OrderID       string     `json:"order_id,omitempty" db:"order_id"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty" db:"scheduled_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CompositeKey is the dedup identity of a notification: two records with the
// same key describe the same underlying event and only the newest survives.
func (n *Notification) CompositeKey() string {
	if n.Kind == NotificationKindDelivery {
		return fmt.Sprintf("delivery|%s|%s", n.OrderID, dateKey(n.ScheduledDate))
	}
	return fmt.Sprintf("emi|%s|%s|%d|%s", n.CustomerID, n.InvoiceNumber, n.InstallmentNumber, dateKey(n.DueDate))
}

func dateKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
