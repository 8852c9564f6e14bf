package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/storehub/emi-engine/internal/domain"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, recipient, kind, severity, title, message, source,
	customer_id, invoice_number, installment_number, due_date, order_id, scheduled_date, created_at`

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipient string) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC
	`

	var notifications []*domain.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, recipient); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.insert(ctx, r.db, n)
}

func (r *notificationRepository) CreateBatch(ctx context.Context, ns []*domain.Notification) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, n := range ns {
		if err := r.insert(ctx, tx, n); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *notificationRepository) DeleteGenerated(ctx context.Context, recipient string) error {
	query := `DELETE FROM notifications WHERE recipient = $1 AND source = $2`
	_, err := r.db.ExecContext(ctx, query, recipient, domain.NotificationSource)
	return err
}

func (r *notificationRepository) DeleteOlderThan(ctx context.Context, recipient string, olderThan time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE recipient = $1 AND created_at < $2`

	result, err := r.db.ExecContext(ctx, query, recipient, olderThan)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *notificationRepository) insert(ctx context.Context, e sqlx.ExtContext, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := e.ExecContext(ctx, query,
		n.ID,
		n.Recipient,
		n.Kind,
		n.Severity,
		n.Title,
		n.Message,
		n.Source,
		n.CustomerID,
		n.InvoiceNumber,
		n.InstallmentNumber,
		n.DueDate,
		n.OrderID,
		n.ScheduledDate,
		n.CreatedAt,
	)
	return err
}
