package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement mode of an invoice.
type PaymentStatus string

const (
	PaymentStatusPaid         PaymentStatus = "paid"
	PaymentStatusPending      PaymentStatus = "pending"
	PaymentStatusEMI          PaymentStatus = "emi"
	PaymentStatusFinance      PaymentStatus = "finance"
	PaymentStatusBankTransfer PaymentStatus = "bank_transfer"
)

// DeliveryStatus tracks order fulfilment for delivery reminders.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusScheduled DeliveryStatus = "scheduled"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

// Invoice is the aggregate an EMI plan hangs off. The engine only reads and
// writes the payment-relevant fields; everything else is carried through.
type Invoice struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	StoreID           string          `json:"store_id" db:"store_id"`
	InvoiceNumber     string          `json:"invoice_number" db:"invoice_number"`
	CustomerID        string          `json:"customer_id" db:"customer_id"`
	CustomerName      string          `json:"customer_name" db:"customer_name"`
	TotalAmount       decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentStatus     PaymentStatus   `json:"payment_status" db:"payment_status"`
	DeliveryStatus    DeliveryStatus  `json:"delivery_status" db:"delivery_status"`
	ScheduledDelivery *time.Time      `json:"scheduled_delivery,omitempty" db:"scheduled_delivery"`
	EMIDetails        *EMIDetails     `json:"emi_details,omitempty" db:"emi_details"`
	Version           int64           `json:"version" db:"version"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// PaymentLogEntry is one immutable row in the payment audit trail.
type PaymentLogEntry struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	StoreID           string          `json:"store_id" db:"store_id"`
	InvoiceID         uuid.UUID       `json:"invoice_id" db:"invoice_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Method            string          `json:"method" db:"method"`
	Reference         string          `json:"reference" db:"reference"`
	ReceivedAt        time.Time       `json:"received_at" db:"received_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type CreatePlanRequest struct {
	MonthlyAmount decimal.Decimal `json:"monthly_amount" validate:"required"`
	StartDate     time.Time       `json:"start_date" validate:"required"`
	Duration      int             `json:"duration" validate:"required,gt=0"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
}

type RecordPaymentRequest struct {
	InstallmentNumber int             `json:"installment_number" validate:"required,gt=0"`
	Amount            decimal.Decimal `json:"amount" validate:"required"`
	Method            string          `json:"method" validate:"required"`
	Reference         string          `json:"reference"`
}

type CreatePlanResponse struct {
	Invoice *Invoice     `json:"invoice"`
	Summary *PlanSummary `json:"summary"`
}

type RecordPaymentResponse struct {
	Impact   *PaymentImpact `json:"impact"`
	Schedule []*Installment `json:"schedule"`
}

// PlanSummary carries the derived plan totals; recomputed on demand, never
// persisted.
type PlanSummary struct {
	InvoiceNumber         string          `json:"invoice_number"`
	TotalEMIAmount        decimal.Decimal `json:"total_emi_amount"`
	ProcessingFee         decimal.Decimal `json:"processing_fee"`
	TotalInterest         decimal.Decimal `json:"total_interest"`
	EffectiveInterestRate decimal.Decimal `json:"effective_interest_rate"`
	TotalPaid             decimal.Decimal `json:"total_paid"`
	Outstanding           decimal.Decimal `json:"outstanding"`
	PaidInstallments      int             `json:"paid_installments"`
	Undercharged          bool            `json:"undercharged,omitempty"`
}
