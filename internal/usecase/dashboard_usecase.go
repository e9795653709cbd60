package usecase

import (
	"context"
	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"
	"sort"

	"github.com/shopspring/decimal"
)

// recentLimit is how many clients and invoices the dashboard echoes back.
const recentLimit = 5

// DashboardStats summarizes the book of business.
type DashboardStats struct {
	TotalClients       int
	TotalEstimates     int
	TotalInvoices      int
	TotalPayments      int
	PendingInvoices    int
	PaidInvoices       int
	OverdueInvoices    int
	TotalPaidAmount    decimal.Decimal
	TotalPendingAmount decimal.Decimal
	RecentClients      []entities.Client
	RecentInvoices     []entities.Invoice
}

type IDashboardUseCase interface {
	Stats(ctx context.Context) (DashboardStats, error)
}

type DashboardUseCase struct {
	clients   interfaces.IClientRepository
	estimates interfaces.IEstimateRepository
	invoices  interfaces.IInvoiceRepository
	payments  interfaces.IPaymentRepository
}

var _ IDashboardUseCase = (*DashboardUseCase)(nil)

func NewDashboardUseCase(clients interfaces.IClientRepository, estimates interfaces.IEstimateRepository, invoices interfaces.IInvoiceRepository, payments interfaces.IPaymentRepository) *DashboardUseCase {
	return &DashboardUseCase{clients: clients, estimates: estimates, invoices: invoices, payments: payments}
}

// Stats counts every entity and sums invoice totals by status. Invoices
// without a total contribute nothing to the sums.
func (u *DashboardUseCase) Stats(ctx context.Context) (DashboardStats, error) {
	clients, err := u.clients.List(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	estimates, err := u.estimates.List(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	invoices, err := u.invoices.List(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	payments, err := u.payments.List(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		TotalClients:       len(clients),
		TotalEstimates:     len(estimates),
		TotalInvoices:      len(invoices),
		TotalPayments:      len(payments),
		TotalPaidAmount:    decimal.Zero,
		TotalPendingAmount: decimal.Zero,
	}
	for _, inv := range invoices {
		switch inv.Status {
		case entities.InvoiceStatusPending:
			stats.PendingInvoices++
			if inv.Total.Valid {
				stats.TotalPendingAmount = stats.TotalPendingAmount.Add(inv.Total.Decimal)
			}
		case entities.InvoiceStatusPaid:
			stats.PaidInvoices++
			if inv.Total.Valid {
				stats.TotalPaidAmount = stats.TotalPaidAmount.Add(inv.Total.Decimal)
			}
		case entities.InvoiceStatusOverdue:
			stats.OverdueInvoices++
		}
	}

	sort.SliceStable(clients, func(i, j int) bool { return clients[i].CreatedAt.After(clients[j].CreatedAt) })
	sort.SliceStable(invoices, func(i, j int) bool { return invoices[i].CreatedAt.After(invoices[j].CreatedAt) })
	stats.RecentClients = clients[:min(recentLimit, len(clients))]
	stats.RecentInvoices = invoices[:min(recentLimit, len(invoices))]
	return stats, nil
}
