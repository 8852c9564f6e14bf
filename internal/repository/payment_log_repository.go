package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/storehub/emi-engine/internal/domain"
)

type paymentLogRepository struct {
	db *sqlx.DB
}

func NewPaymentLogRepository(db *sqlx.DB) PaymentLogRepository {
	return &paymentLogRepository{db: db}
}

func (r *paymentLogRepository) Append(ctx context.Context, entry *domain.PaymentLogEntry) error {
	query := `
		INSERT INTO payment_log (id, store_id, invoice_id, installment_number, amount, method, reference, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.StoreID,
		entry.InvoiceID,
		entry.InstallmentNumber,
		entry.Amount,
		entry.Method,
		entry.Reference,
		entry.ReceivedAt,
		entry.CreatedAt,
	)

	return err
}

func (r *paymentLogRepository) ListByInvoice(ctx context.Context, storeID, invoiceNumber string) ([]*domain.PaymentLogEntry, error) {
	query := `
		SELECT p.id, p.store_id, p.invoice_id, p.installment_number, p.amount, p.method, p.reference, p.received_at, p.created_at
		FROM payment_log p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE p.store_id = $1 AND i.invoice_number = $2
		ORDER BY p.created_at
	`

	var entries []*domain.PaymentLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, storeID, invoiceNumber); err != nil {
		return nil, err
	}

	return entries, nil
}
