package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/storehub/emi-engine/internal/domain"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByInvoiceID(ctx context.Context, storeID, invoiceNumber string) (*domain.Invoice, error) {
	args := m.Called(ctx, storeID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListByPaymentStatus(ctx context.Context, storeID string, status domain.PaymentStatus) ([]*domain.Invoice, error) {
	args := m.Called(ctx, storeID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListScheduledDeliveries(ctx context.Context, storeID string, until time.Time) ([]*domain.Invoice, error) {
	args := m.Called(ctx, storeID, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateEMIDetails(ctx context.Context, invoice *domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipient string) ([]*domain.Notification, error) {
	args := m.Called(ctx, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, ns []*domain.Notification) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteGenerated(ctx context.Context, recipient string) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteOlderThan(ctx context.Context, recipient string, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, recipient, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentLogRepository struct {
	mock.Mock
}

func (m *MockPaymentLogRepository) Append(ctx context.Context, entry *domain.PaymentLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockPaymentLogRepository) ListByInvoice(ctx context.Context, storeID, invoiceNumber string) ([]*domain.PaymentLogEntry, error) {
	args := m.Called(ctx, storeID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentLogEntry), args.Error(1)
}
