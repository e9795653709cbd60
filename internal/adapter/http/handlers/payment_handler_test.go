package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"mis_invoicing/internal/adapter/http/handlers/mocks"
	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func TestPaymentHandler_RecordPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing amount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments", h.RecordPayment)

		w := doRequest(r, http.MethodPost, "/v1/payments?invoice_id=inv-1", `{"payment_mode":"CASH"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("mapped errors", func(t *testing.T) {
		cases := []struct {
			name string
			err  error
			want int
		}{
			{"invoice not found", usecase.ErrInvoiceNotFound, http.StatusNotFound},
			{"non-positive amount", usecase.ErrInvalidAmount, http.StatusBadRequest},
			{"gateway unauthorized", usecase.ErrPaymentGatewayUnauthorized, http.StatusUnauthorized},
			{"not approved", usecase.ErrPaymentNotApproved, http.StatusPaymentRequired},
			{"gateway not configured", usecase.ErrPaymentGatewayNotConfigured, http.StatusBadRequest},
			{"lock busy", usecase.ErrLockNotAcquired, http.StatusConflict},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()
				uc := mocks.NewMockIPaymentUseCase(ctrl)
				h := NewPaymentHandler(uc)

				r := gin.New()
				r.POST("/v1/payments", h.RecordPayment)

				uc.EXPECT().RecordPayment(gomock.Any(), "inv-1", gomock.Any()).Return(entities.Payment{}, tc.err)

				w := doRequest(r, http.MethodPost, "/v1/payments?invoice_id=inv-1", `{"amount":"10"}`)
				if w.Code != tc.want {
					t.Fatalf("expected %d, got %d", tc.want, w.Code)
				}
			})
		}
	})

	t.Run("zero amount message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments", h.RecordPayment)

		uc.EXPECT().RecordPayment(gomock.Any(), "inv-1", gomock.Any()).Return(entities.Payment{}, usecase.ErrInvalidAmount)

		w := doRequest(r, http.MethodPost, "/v1/payments?invoice_id=inv-1", `{"amount":"0"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Payment amount must be positive") {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("success with gateway payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments", h.RecordPayment)

		uc.EXPECT().RecordPayment(gomock.Any(), "inv-1", gomock.Any()).DoAndReturn(
			func(_ any, invoiceID string, in usecase.PaymentInput) (entities.Payment, error) {
				if string(in.GatewayPayload) != `{"token":"tok","payment_method_id":"visa"}` {
					t.Fatalf("unexpected payload %s", in.GatewayPayload)
				}
				return entities.Payment{
					ID:             "p-1",
					InvoiceID:      invoiceID,
					Amount:         in.Amount,
					Mode:           usecase.GatewayPaymentMode,
					TransactionRef: "mp-123",
					PaymentDate:    time.Now().UTC(),
				}, nil
			})

		w := doRequest(r, http.MethodPost, "/v1/payments?invoice_id=inv-1", `{"amount":"1180","mp_payload":{"token":"tok","payment_method_id":"visa"}}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["amount"] != "1180.00" || body["transaction_ref"] != "mp-123" || body["payment_mode"] != "MERCADOPAGO" {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
	})
}

func TestPaymentHandler_ListAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("list by invoice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.GET("/v1/payments/invoice/:invoice_id", h.ListPaymentsByInvoice)

		uc.EXPECT().ListByInvoiceID(gomock.Any(), "inv-1").Return([]entities.Payment{
			{ID: "p-1", InvoiceID: "inv-1", Amount: decimal.RequireFromString("500")},
		}, nil)

		w := doRequest(r, http.MethodGet, "/v1/payments/invoice/inv-1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body []map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if len(body) != 1 || body[0]["amount"] != "500.00" {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
	})

	t.Run("delete not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.DELETE("/v1/payments/:id", h.DeletePayment)

		uc.EXPECT().DeletePayment(gomock.Any(), "p-404").Return(usecase.ErrPaymentNotFound)

		w := doRequest(r, http.MethodDelete, "/v1/payments/p-404", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}
