package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/storehub/emi-engine/internal/config"
	"github.com/storehub/emi-engine/internal/domain"
	"github.com/storehub/emi-engine/internal/emi"
	"github.com/storehub/emi-engine/internal/repository"
	"github.com/storehub/emi-engine/pkg/dateutil"
	apperrors "github.com/storehub/emi-engine/pkg/errors"
)

// EMIService orchestrates installment plans: creation, payment recording,
// and schedule/summary reads. All schedule math lives in the emi package;
// this layer owns loading, persistence, and caching.
type EMIService struct {
	InvoiceRepo repository.InvoiceRepository
	PaymentLog  repository.PaymentLogRepository
	redis       *redis.Client
	config      *config.Config

	// now is read once per logical operation so a whole run shares one
	// consistent "today".
	now func() time.Time
}

func NewEMIService(
	invoiceRepo repository.InvoiceRepository,
	paymentLog repository.PaymentLogRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *EMIService {
	return &EMIService{
		InvoiceRepo: invoiceRepo,
		PaymentLog:  paymentLog,
		redis:       redisClient,
		config:      cfg,
		now:         time.Now,
	}
}

// CreatePlan attaches a new installment plan to an invoice and switches the
// invoice to EMI settlement. The invoice must not already carry a plan.
func (s *EMIService) CreatePlan(ctx context.Context, storeID, invoiceNumber string, request *domain.CreatePlanRequest) (*domain.CreatePlanResponse, error) {
	if request.InterestRate.IsNegative() {
		return nil, apperrors.NewValidationError("interest_rate", "must not be negative")
	}
	if request.ProcessingFee.IsNegative() {
		return nil, apperrors.NewValidationError("processing_fee", "must not be negative")
	}

	invoice, err := s.getInvoice(ctx, storeID, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if invoice.EMIDetails != nil {
		return nil, apperrors.WrapPlanAlreadyExists(invoiceNumber)
	}

	schedule, err := emi.Generate(request.MonthlyAmount, request.StartDate, request.Duration)
	if err != nil {
		return nil, err
	}

	totals := emi.PlanTotals(request.MonthlyAmount, request.Duration, invoice.TotalAmount)
	if totals.Undercharged {
		log.Warn().
			Str("store_id", storeID).
			Str("invoice_number", invoiceNumber).
			Str("total_emi_amount", totals.TotalEMIAmount.String()).
			Str("invoice_total", invoice.TotalAmount.String()).
			Msg("plan collects less than the invoice total")
	}

	invoice.EMIDetails = &domain.EMIDetails{
		MonthlyAmount: request.MonthlyAmount,
		StartDate:     dateutil.StartOfDay(request.StartDate),
		Duration:      request.Duration,
		InterestRate:  request.InterestRate,
		ProcessingFee: request.ProcessingFee,
		Schedule:      schedule,
	}
	invoice.PaymentStatus = domain.PaymentStatusEMI

	if err := s.InvoiceRepo.UpdateEMIDetails(ctx, invoice); err != nil {
		return nil, s.wrapWriteError(err)
	}

	s.invalidateScheduleCache(ctx, storeID, invoiceNumber)

	return &domain.CreatePlanResponse{
		Invoice: invoice,
		Summary: s.buildSummary(invoice, totals),
	}, nil
}

// RecordPayment applies one payment against a specific installment and
// persists the reconciled schedule in a single compare-and-swap write.
func (s *EMIService) RecordPayment(ctx context.Context, storeID, invoiceNumber string, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	invoice, err := s.getInvoice(ctx, storeID, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if invoice.EMIDetails == nil {
		return nil, apperrors.WrapPlanNotFound(invoiceNumber)
	}

	receivedAt := s.now()

	impact, err := emi.ApplyPayment(invoice.EMIDetails.Schedule, request.InstallmentNumber, request.Amount, receivedAt)
	if err != nil {
		return nil, err
	}

	if allSettled(invoice.EMIDetails.Schedule) {
		invoice.PaymentStatus = domain.PaymentStatusPaid
	}

	if err := s.InvoiceRepo.UpdateEMIDetails(ctx, invoice); err != nil {
		return nil, s.wrapWriteError(err)
	}

	entry := &domain.PaymentLogEntry{
		ID:                uuid.New(),
		StoreID:           storeID,
		InvoiceID:         invoice.ID,
		InstallmentNumber: request.InstallmentNumber,
		Amount:            request.Amount,
		Method:            request.Method,
		Reference:         request.Reference,
		ReceivedAt:        receivedAt,
		CreatedAt:         receivedAt,
	}
	if err := s.PaymentLog.Append(ctx, entry); err != nil {
		// The schedule write is the source of truth; a lost audit row is
		// reported, not fatal.
		log.Error().Err(err).
			Str("invoice_number", invoiceNumber).
			Int("installment_number", request.InstallmentNumber).
			Msg("failed to append payment log entry")
	}

	if impact.UnappliedCredit.GreaterThan(decimal.Zero) {
		log.Warn().
			Str("invoice_number", invoiceNumber).
			Str("unapplied_credit", impact.UnappliedCredit.String()).
			Msg("payment surplus remains after settling the whole schedule")
	}

	s.invalidateScheduleCache(ctx, storeID, invoiceNumber)

	return &domain.RecordPaymentResponse{
		Impact:   impact,
		Schedule: invoice.EMIDetails.Schedule,
	}, nil
}

// GetSchedule returns the plan's installments annotated with urgency against
// a single "today". Results are cached per calendar day.
func (s *EMIService) GetSchedule(ctx context.Context, storeID, invoiceNumber string) ([]*domain.ScheduledInstallment, error) {
	today := dateutil.StartOfDay(s.now())
	cacheKey := s.scheduleCacheKey(storeID, invoiceNumber, today)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var annotated []*domain.ScheduledInstallment
			if err := json.Unmarshal(cached, &annotated); err == nil {
				return annotated, nil
			}
		}
	}

	invoice, err := s.getInvoice(ctx, storeID, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if invoice.EMIDetails == nil {
		return nil, apperrors.WrapPlanNotFound(invoiceNumber)
	}

	annotated := make([]*domain.ScheduledInstallment, 0, len(invoice.EMIDetails.Schedule))
	for _, inst := range invoice.EMIDetails.Schedule {
		c := emi.ClassifyInstallment(inst, today)
		annotated = append(annotated, &domain.ScheduledInstallment{
			Installment: inst,
			Urgency:     c.Urgency,
			Severity:    c.Severity,
			DaysUntil:   c.DaysUntil,
		})
	}

	if s.redis != nil {
		if payload, err := json.Marshal(annotated); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.config.Cache.ScheduleTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache schedule")
			}
		}
	}

	return annotated, nil
}

// GetSummary recomputes the plan's derived totals and payment progress.
func (s *EMIService) GetSummary(ctx context.Context, storeID, invoiceNumber string) (*domain.PlanSummary, error) {
	invoice, err := s.getInvoice(ctx, storeID, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if invoice.EMIDetails == nil {
		return nil, apperrors.WrapPlanNotFound(invoiceNumber)
	}

	totals := emi.PlanTotals(invoice.EMIDetails.MonthlyAmount, invoice.EMIDetails.Duration, invoice.TotalAmount)
	return s.buildSummary(invoice, totals), nil
}

// ListPayments returns the invoice's payment audit trail, oldest first.
func (s *EMIService) ListPayments(ctx context.Context, storeID, invoiceNumber string) ([]*domain.PaymentLogEntry, error) {
	entries, err := s.PaymentLog.ListByInvoice(ctx, storeID, invoiceNumber)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return entries, nil
}

func (s *EMIService) buildSummary(invoice *domain.Invoice, totals emi.Totals) *domain.PlanSummary {
	totalPaid := decimal.Zero
	paidCount := 0
	outstanding := decimal.Zero
	for _, inst := range invoice.EMIDetails.Schedule {
		totalPaid = totalPaid.Add(inst.PaidAmount)
		outstanding = outstanding.Add(inst.Outstanding())
		if inst.Paid {
			paidCount++
		}
	}

	return &domain.PlanSummary{
		InvoiceNumber:         invoice.InvoiceNumber,
		TotalEMIAmount:        totals.TotalEMIAmount,
		ProcessingFee:         invoice.EMIDetails.ProcessingFee,
		TotalInterest:         totals.TotalInterest,
		EffectiveInterestRate: totals.EffectiveInterestRate,
		TotalPaid:             totalPaid,
		Outstanding:           outstanding,
		PaidInstallments:      paidCount,
		Undercharged:          totals.Undercharged,
	}
}

func (s *EMIService) getInvoice(ctx context.Context, storeID, invoiceNumber string) (*domain.Invoice, error) {
	invoice, err := s.InvoiceRepo.GetByInvoiceID(ctx, storeID, invoiceNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapInvoiceNotFound(storeID, invoiceNumber)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	return invoice, nil
}

func (s *EMIService) wrapWriteError(err error) error {
	var be *apperrors.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return apperrors.WrapDatabaseError(err)
}

func (s *EMIService) scheduleCacheKey(storeID, invoiceNumber string, today time.Time) string {
	return fmt.Sprintf("emi:schedule:%s:%s:%s", storeID, invoiceNumber, today.Format("2006-01-02"))
}

func (s *EMIService) invalidateScheduleCache(ctx context.Context, storeID, invoiceNumber string) {
	if s.redis == nil {
		return
	}
	key := s.scheduleCacheKey(storeID, invoiceNumber, dateutil.StartOfDay(s.now()))
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to invalidate schedule cache")
	}
}

func allSettled(schedule []*domain.Installment) bool {
	for _, inst := range schedule {
		if !inst.Paid {
			return false
		}
	}
	return true
}
