package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/storehub/emi-engine/internal/domain"
	"github.com/storehub/emi-engine/internal/service"
	apperrors "github.com/storehub/emi-engine/pkg/errors"
	"github.com/storehub/emi-engine/pkg/response"
)

type EMIHandler struct {
	service   *service.EMIService
	notifier  *service.NotificationService
	validator *validator.Validate
}

func NewEMIHandler(svc *service.EMIService, notifier *service.NotificationService) *EMIHandler {
	return &EMIHandler{
		service:   svc,
		notifier:  notifier,
		validator: validator.New(),
	}
}

// CreatePlan handles POST /stores/{storeId}/invoices/{invoiceId}/emi
func (h *EMIHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var request domain.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	resp, err := h.service.CreatePlan(r.Context(), vars["storeId"], vars["invoiceId"], &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, resp)
}

// RecordPayment handles POST /stores/{storeId}/invoices/{invoiceId}/emi/payments
func (h *EMIHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	resp, err := h.service.RecordPayment(r.Context(), vars["storeId"], vars["invoiceId"], &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetSchedule handles GET /stores/{storeId}/invoices/{invoiceId}/emi/schedule
func (h *EMIHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	schedule, err := h.service.GetSchedule(r.Context(), vars["storeId"], vars["invoiceId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, schedule)
}

// GetSummary handles GET /stores/{storeId}/invoices/{invoiceId}/emi/summary
func (h *EMIHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	summary, err := h.service.GetSummary(r.Context(), vars["storeId"], vars["invoiceId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, summary)
}

// ListPayments handles GET /stores/{storeId}/invoices/{invoiceId}/emi/payments
func (h *EMIHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	entries, err := h.service.ListPayments(r.Context(), vars["storeId"], vars["invoiceId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, entries)
}

// RunNotifications handles POST /stores/{storeId}/notifications/{recipient}/run
func (h *EMIHandler) RunNotifications(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := h.notifier.Run(r.Context(), vars["storeId"], vars["recipient"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, result)
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if apperrors.IsValidation(err) {
		response.BadRequest(w, "invalid request", err)
		return
	}

	var be *apperrors.BusinessError
	if errors.As(err, &be) {
		switch be.Code {
		case apperrors.ErrCodeInvoiceNotFound, apperrors.ErrCodePlanNotFound, apperrors.ErrCodeInstallmentMissing:
			response.NotFound(w, be.Message)
		case apperrors.ErrCodeAlreadySettled, apperrors.ErrCodePlanAlreadyExists, apperrors.ErrCodeVersionConflict:
			response.Conflict(w, be.Message, be.Err)
		case apperrors.ErrCodeInvalidPayment:
			response.BadRequest(w, be.Message, be.Err)
		default:
			response.InternalServerError(w, be.Message, be.Err)
		}
		return
	}

	response.InternalServerError(w, "internal error", err)
}
