package repository

import (
	"context"
	"time"

	"github.com/storehub/emi-engine/internal/domain"
)

// InvoiceRepository defines the interface for invoice data operations.
// EMI plans are read and written as whole documents on the invoice row;
// there are no partial-field schedule updates.
type InvoiceRepository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *domain.Invoice) error

	// GetByInvoiceID retrieves an invoice by its id within a store namespace
	GetByInvoiceID(ctx context.Context, storeID, invoiceNumber string) (*domain.Invoice, error)

	// ListByPaymentStatus retrieves a store's invoices in a payment status
	ListByPaymentStatus(ctx context.Context, storeID string, status domain.PaymentStatus) ([]*domain.Invoice, error)

	// ListScheduledDeliveries retrieves undelivered invoices with a
	// scheduled delivery date on or before the horizon
	ListScheduledDeliveries(ctx context.Context, storeID string, until time.Time) ([]*domain.Invoice, error)

	// UpdateEMIDetails writes the invoice's full EMI document back, guarded
	// by the invoice version (compare-and-swap)
	UpdateEMIDetails(ctx context.Context, invoice *domain.Invoice) error
}

// NotificationRepository is the notification sink.
type NotificationRepository interface {
	// ListByRecipient retrieves all notifications for a recipient
	ListByRecipient(ctx context.Context, recipient string) ([]*domain.Notification, error)

	// Create creates a single notification record
	Create(ctx context.Context, n *domain.Notification) error

	// CreateBatch creates notification records in one transaction
	CreateBatch(ctx context.Context, ns []*domain.Notification) error

	// DeleteGenerated deletes all engine-generated notifications for a recipient
	DeleteGenerated(ctx context.Context, recipient string) error

	// DeleteOlderThan deletes a recipient's notifications older than the cutoff
	DeleteOlderThan(ctx context.Context, recipient string, olderThan time.Time) (int64, error)
}

// PaymentLogRepository records the immutable payment audit trail.
type PaymentLogRepository interface {
	// Append appends one payment log entry
	Append(ctx context.Context, entry *domain.PaymentLogEntry) error

	// ListByInvoice retrieves the payment history of an invoice
	ListByInvoice(ctx context.Context, storeID, invoiceNumber string) ([]*domain.PaymentLogEntry, error)
}
