package response

import (
	"encoding/json"
	"time"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase"

	"github.com/shopspring/decimal"
)

// Amounts are rendered as fixed two-decimal strings; a missing amount is null.

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullableMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	GSTNumber string    `json:"gst_number"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func FromClient(c entities.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		GSTNumber: c.GSTNumber,
		Category:  c.Category,
		CreatedAt: c.CreatedAt,
	}
}

func FromClients(cs []entities.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromClient(c))
	}
	return out
}

type EstimateResponse struct {
	ID             string          `json:"id"`
	ClientID       string          `json:"client_id"`
	EstimateNumber string          `json:"estimate_number"`
	Items          json.RawMessage `json:"items,omitempty"`
	Subtotal       *string         `json:"subtotal"`
	GSTAmount      *string         `json:"gst_amount"`
	Total          *string         `json:"total"`
	Status         string          `json:"status"`
	InvoiceID      string          `json:"invoice_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func FromEstimate(e entities.Estimate) EstimateResponse {
	return EstimateResponse{
		ID:             e.ID,
		ClientID:       e.ClientID,
		EstimateNumber: e.Number,
		Items:          e.Items,
		Subtotal:       nullableMoney(e.Subtotal),
		GSTAmount:      nullableMoney(e.GSTAmount),
		Total:          nullableMoney(e.Total),
		Status:         string(e.Status),
		InvoiceID:      e.InvoiceID,
		CreatedAt:      e.CreatedAt,
	}
}

func FromEstimates(es []entities.Estimate) []EstimateResponse {
	out := make([]EstimateResponse, 0, len(es))
	for _, e := range es {
		out = append(out, FromEstimate(e))
	}
	return out
}

type InvoiceResponse struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"client_id"`
	EstimateID    string          `json:"estimate_id,omitempty"`
	InvoiceNumber string          `json:"invoice_number"`
	Items         json.RawMessage `json:"items,omitempty"`
	Subtotal      *string         `json:"subtotal"`
	CGST          *string         `json:"cgst"`
	SGST          *string         `json:"sgst"`
	IGST          *string         `json:"igst"`
	Total         *string         `json:"total"`
	InterState    bool            `json:"inter_state"`
	Status        string          `json:"status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func FromInvoice(i entities.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            i.ID,
		ClientID:      i.ClientID,
		EstimateID:    i.EstimateID,
		InvoiceNumber: i.Number,
		Items:         i.Items,
		Subtotal:      nullableMoney(i.Subtotal),
		CGST:          nullableMoney(i.CGST),
		SGST:          nullableMoney(i.SGST),
		IGST:          nullableMoney(i.IGST),
		Total:         nullableMoney(i.Total),
		InterState:    i.IsInterState(),
		Status:        string(i.Status),
		DueDate:       i.DueDate,
		CreatedAt:     i.CreatedAt,
	}
}

func FromInvoices(is []entities.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(is))
	for _, i := range is {
		out = append(out, FromInvoice(i))
	}
	return out
}

type InvoiceBalanceResponse struct {
	Invoice           InvoiceResponse `json:"invoice"`
	PaidAmount        string          `json:"paid_amount"`
	OutstandingAmount string          `json:"outstanding_amount"`
	Payments          int             `json:"payments"`
}

func FromInvoiceBalance(b usecase.InvoiceBalance) InvoiceBalanceResponse {
	return InvoiceBalanceResponse{
		Invoice:           FromInvoice(b.Invoice),
		PaidAmount:        money(b.Paid),
		OutstandingAmount: money(b.Outstanding),
		Payments:          b.Payments,
	}
}

type PaymentResponse struct {
	ID             string    `json:"id"`
	InvoiceID      string    `json:"invoice_id"`
	Amount         string    `json:"amount"`
	PaymentMode    string    `json:"payment_mode"`
	TransactionRef string    `json:"transaction_ref,omitempty"`
	PaymentDate    time.Time `json:"payment_date"`
}

func FromPayment(p entities.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		InvoiceID:      p.InvoiceID,
		Amount:         money(p.Amount),
		PaymentMode:    p.Mode,
		TransactionRef: p.TransactionRef,
		PaymentDate:    p.PaymentDate,
	}
}

func FromPayments(ps []entities.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromPayment(p))
	}
	return out
}

type DashboardStatsResponse struct {
	TotalClients       int               `json:"total_clients"`
	TotalEstimates     int               `json:"total_estimates"`
	TotalInvoices      int               `json:"total_invoices"`
	TotalPayments      int               `json:"total_payments"`
	PendingInvoices    int               `json:"pending_invoices"`
	PaidInvoices       int               `json:"paid_invoices"`
	OverdueInvoices    int               `json:"overdue_invoices"`
	TotalPaidAmount    string            `json:"total_paid_amount"`
	TotalPendingAmount string            `json:"total_pending_amount"`
	RecentClients      []ClientResponse  `json:"recent_clients"`
	RecentInvoices     []InvoiceResponse `json:"recent_invoices"`
}

func FromDashboardStats(s usecase.DashboardStats) DashboardStatsResponse {
	return DashboardStatsResponse{
		TotalClients:       s.TotalClients,
		TotalEstimates:     s.TotalEstimates,
		TotalInvoices:      s.TotalInvoices,
		TotalPayments:      s.TotalPayments,
		PendingInvoices:    s.PendingInvoices,
		PaidInvoices:       s.PaidInvoices,
		OverdueInvoices:    s.OverdueInvoices,
		TotalPaidAmount:    money(s.TotalPaidAmount),
		TotalPendingAmount: money(s.TotalPendingAmount),
		RecentClients:      FromClients(s.RecentClients),
		RecentInvoices:     FromInvoices(s.RecentInvoices),
	}
}
