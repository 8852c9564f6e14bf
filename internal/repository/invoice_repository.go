package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/storehub/emi-engine/internal/domain"
	apperrors "github.com/storehub/emi-engine/pkg/errors"
)

type invoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoices (id, store_id, invoice_number, customer_id, customer_name, total_amount,
			payment_status, delivery_status, scheduled_delivery, emi_details, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.StoreID,
		invoice.InvoiceNumber,
		invoice.CustomerID,
		invoice.CustomerName,
		invoice.TotalAmount,
		invoice.PaymentStatus,
		invoice.DeliveryStatus,
		invoice.ScheduledDelivery,
		invoice.EMIDetails,
		invoice.Version,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)

	return err
}

func (r *invoiceRepository) GetByInvoiceID(ctx context.Context, storeID, invoiceNumber string) (*domain.Invoice, error) {
	query := `
		SELECT id, store_id, invoice_number, customer_id, customer_name, total_amount,
			payment_status, delivery_status, scheduled_delivery, emi_details, version, created_at, updated_at
		FROM invoices
		WHERE store_id = $1 AND invoice_number = $2
	`

	var invoice domain.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, storeID, invoiceNumber); err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (r *invoiceRepository) ListByPaymentStatus(ctx context.Context, storeID string, status domain.PaymentStatus) ([]*domain.Invoice, error) {
	query := `
		SELECT id, store_id, invoice_number, customer_id, customer_name, total_amount,
			payment_status, delivery_status, scheduled_delivery, emi_details, version, created_at, updated_at
		FROM invoices
		WHERE store_id = $1 AND payment_status = $2
		ORDER BY invoice_number
	`

	var invoices []*domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, storeID, status); err != nil {
		return nil, err
	}

	return invoices, nil
}

func (r *invoiceRepository) ListScheduledDeliveries(ctx context.Context, storeID string, until time.Time) ([]*domain.Invoice, error) {
	query := `
		SELECT id, store_id, invoice_number, customer_id, customer_name, total_amount,
			payment_status, delivery_status, scheduled_delivery, emi_details, version, created_at, updated_at
		FROM invoices
		WHERE store_id = $1
		  AND delivery_status IN ('pending', 'scheduled')
		  AND scheduled_delivery IS NOT NULL
		  AND scheduled_delivery <= $2
		ORDER BY scheduled_delivery
	`

	var invoices []*domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, storeID, until); err != nil {
		return nil, err
	}

	return invoices, nil
}

// UpdateEMIDetails replaces the invoice's EMI document and payment status in
// one guarded write. The WHERE clause on version is the optimistic check: a
// concurrent writer bumps the version first and this update then matches no
// rows, which is reported as a version conflict instead of a silent
// last-write-wins.
func (r *invoiceRepository) UpdateEMIDetails(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		UPDATE invoices
		SET emi_details = $4, payment_status = $5, version = version + 1, updated_at = $6
		WHERE store_id = $1 AND invoice_number = $2 AND version = $3
	`

	result, err := r.db.ExecContext(ctx, query,
		invoice.StoreID,
		invoice.InvoiceNumber,
		invoice.Version,
		invoice.EMIDetails,
		invoice.PaymentStatus,
		time.Now(),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapVersionConflict(invoice.InvoiceNumber)
	}

	invoice.Version++
	return nil
}
