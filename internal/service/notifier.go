package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/storehub/emi-engine/internal/config"
	"github.com/storehub/emi-engine/internal/domain"
	"github.com/storehub/emi-engine/internal/emi"
	"github.com/storehub/emi-engine/internal/repository"
	"github.com/storehub/emi-engine/pkg/dateutil"
	apperrors "github.com/storehub/emi-engine/pkg/errors"
)

// NotificationService derives payment and delivery reminders from the
// current state of all EMI plans in a store. Each run replaces the previous
// generated set wholesale: simpler than diffing, at the cost of losing any
// read-state on the replaced records.
type NotificationService struct {
	InvoiceRepo      repository.InvoiceRepository
	NotificationRepo repository.NotificationRepository
	config           *config.Config

	now func() time.Time
}

func NewNotificationService(
	invoiceRepo repository.InvoiceRepository,
	notificationRepo repository.NotificationRepository,
	cfg *config.Config,
) *NotificationService {
	return &NotificationService{
		InvoiceRepo:      invoiceRepo,
		NotificationRepo: notificationRepo,
		config:           cfg,
		now:              time.Now,
	}
}

// RunResult reports what a regeneration run did. Skipped counts records that
// failed individually during the fallback pass; the run still succeeds.
type RunResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Run regenerates the recipient's notifications from scratch. A failure in
// the wipe step or in loading invoices fails the run; individual record
// failures during the create fallback are skipped and logged.
func (s *NotificationService) Run(ctx context.Context, storeID, recipient string) (*RunResult, error) {
	today := dateutil.StartOfDay(s.now())

	if err := s.NotificationRepo.DeleteGenerated(ctx, recipient); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	var pending []*domain.Notification

	emiInvoices, err := s.InvoiceRepo.ListByPaymentStatus(ctx, storeID, domain.PaymentStatusEMI)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	for _, invoice := range emiInvoices {
		pending = append(pending, s.deriveEMINotifications(invoice, recipient, today)...)
	}

	deliveries, err := s.InvoiceRepo.ListScheduledDeliveries(ctx, storeID, today.AddDate(0, 0, emi.UpcomingWindowDays))
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	for _, invoice := range deliveries {
		if n := s.deriveDeliveryNotification(invoice, recipient, today); n != nil {
			pending = append(pending, n)
		}
	}

	pending = dedupeByCompositeKey(pending)

	created, skipped, err := s.createAll(ctx, pending)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("store_id", storeID).
		Str("recipient", recipient).
		Int("created", created).
		Int("skipped", skipped).
		Msg("notification run complete")

	return &RunResult{Created: created, Skipped: skipped}, nil
}

// Cleanup removes a recipient's notifications older than the retention
// window. Used by the weekly scheduler job.
func (s *NotificationService) Cleanup(ctx context.Context, recipient string, retentionDays int) (int64, error) {
	cutoff := dateutil.StartOfDay(s.now()).AddDate(0, 0, -retentionDays)

	deleted, err := s.NotificationRepo.DeleteOlderThan(ctx, recipient, cutoff)
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err)
	}

	return deleted, nil
}

// deriveEMINotifications emits one record per unpaid installment inside the
// 7-day window, plus at most one low-priority record for the nearest
// installment in the 8-30 day horizon.
func (s *NotificationService) deriveEMINotifications(invoice *domain.Invoice, recipient string, today time.Time) []*domain.Notification {
	if invoice.EMIDetails == nil {
		return nil
	}

	var out []*domain.Notification
	var horizon *domain.Installment
	horizonDays := 0

	for _, inst := range invoice.EMIDetails.Schedule {
		c := emi.ClassifyInstallment(inst, today)
		if c.Urgency == domain.UrgencyNone {
			continue
		}

		if c.DaysUntil > emi.UpcomingWindowDays {
			// 8-30 day horizon: only the single nearest installment per
			// invoice is surfaced.
			if horizon == nil || c.DaysUntil < horizonDays {
				horizon, horizonDays = inst, c.DaysUntil
			}
			continue
		}

		out = append(out, s.buildEMINotification(invoice, inst, c))
	}

	if horizon != nil {
		out = append(out, s.buildEMINotification(invoice, horizon, emi.Classify(horizon.DueDate, today)))
	}

	return withRecipient(out, recipient)
}

func (s *NotificationService) buildEMINotification(invoice *domain.Invoice, inst *domain.Installment, c emi.Classification) *domain.Notification {
	due := inst.DueDate

	var title, message string
	switch c.Urgency {
	case domain.UrgencyOverdue:
		title = "Installment overdue"
		message = fmt.Sprintf("Installment %d of invoice %s for %s was due on %s (%d days overdue), %s outstanding",
			inst.Number, invoice.InvoiceNumber, invoice.CustomerName, due.Format("02 Jan 2006"), -c.DaysUntil, inst.Outstanding().StringFixed(2))
	case domain.UrgencyToday:
		title = "Installment due today"
		message = fmt.Sprintf("Installment %d of invoice %s for %s is due today, %s outstanding",
			inst.Number, invoice.InvoiceNumber, invoice.CustomerName, inst.Outstanding().StringFixed(2))
	default:
		title = "Installment due soon"
		message = fmt.Sprintf("Installment %d of invoice %s for %s is due on %s (in %d days), %s outstanding",
			inst.Number, invoice.InvoiceNumber, invoice.CustomerName, due.Format("02 Jan 2006"), c.DaysUntil, inst.Outstanding().StringFixed(2))
	}

	return &domain.Notification{
		ID:                uuid.New(),
		Kind:              domain.NotificationKindEMIDue,
		Severity:          c.Severity,
		Title:             title,
		Message:           message,
		Source:            domain.NotificationSource,
		CustomerID:        invoice.CustomerID,
		InvoiceNumber:     invoice.InvoiceNumber,
		InstallmentNumber: inst.Number,
		DueDate:           &due,
		CreatedAt:         s.now(),
	}
}

// deriveDeliveryNotification applies the same day-window boundaries to a
// scheduled delivery date.
func (s *NotificationService) deriveDeliveryNotification(invoice *domain.Invoice, recipient string, today time.Time) *domain.Notification {
	if invoice.ScheduledDelivery == nil {
		return nil
	}

	c := emi.Classify(*invoice.ScheduledDelivery, today)
	if c.Urgency == domain.UrgencyNone || c.DaysUntil > emi.UpcomingWindowDays {
		return nil
	}

	scheduled := *invoice.ScheduledDelivery

	var title string
	switch c.Urgency {
	case domain.UrgencyOverdue:
		title = "Delivery overdue"
	case domain.UrgencyToday:
		title = "Delivery due today"
	default:
		title = "Delivery upcoming"
	}

	message := fmt.Sprintf("Order %s for %s is scheduled for delivery on %s",
		invoice.InvoiceNumber, invoice.CustomerName, scheduled.Format("02 Jan 2006"))

	return &domain.Notification{
		ID:            uuid.New(),
		Recipient:     recipient,
		Kind:          domain.NotificationKindDelivery,
		Severity:      c.Severity,
		Title:         title,
		Message:       message,
		Source:        domain.NotificationSource,
		OrderID:       invoice.InvoiceNumber,
		ScheduledDate: &scheduled,
		CreatedAt:     s.now(),
	}
}

// dedupeByCompositeKey keeps only the newest record per composite key.
func dedupeByCompositeKey(ns []*domain.Notification) []*domain.Notification {
	byKey := make(map[string]*domain.Notification, len(ns))
	order := make([]string, 0, len(ns))

	for _, n := range ns {
		key := n.CompositeKey()
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = n
			order = append(order, key)
			continue
		}
		if n.CreatedAt.After(existing.CreatedAt) {
			byKey[key] = n
		}
	}

	out := make([]*domain.Notification, 0, len(byKey))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// createAll batch-creates the surviving records, falling back to one-at-a-time
// creation when the batch fails. Individual fallback failures are logged and
// skipped; the run only fails when nothing could be created at all.
func (s *NotificationService) createAll(ctx context.Context, ns []*domain.Notification) (created, skipped int, err error) {
	if len(ns) == 0 {
		return 0, 0, nil
	}

	batchErr := s.NotificationRepo.CreateBatch(ctx, ns)
	if batchErr == nil {
		return len(ns), 0, nil
	}
	log.Warn().Err(batchErr).Int("count", len(ns)).Msg("batch notification create failed, falling back to individual creates")

	for _, n := range ns {
		if err := s.NotificationRepo.Create(ctx, n); err != nil {
			skipped++
			log.Warn().Err(err).
				Str("composite_key", n.CompositeKey()).
				Msg("skipping notification that failed to create")
			continue
		}
		created++
	}

	if created == 0 {
		return 0, skipped, apperrors.NewBusinessError(apperrors.ErrCodePartialBatch,
			fmt.Sprintf("all %d notification creates failed", skipped), apperrors.ErrNotificationRunFailed)
	}

	return created, skipped, nil
}

func withRecipient(ns []*domain.Notification, recipient string) []*domain.Notification {
	for _, n := range ns {
		n.Recipient = recipient
	}
	return ns
}
