// Package sqlstore persists the invoicing entities through gorm, on
// PostgreSQL in production and SQLite for local runs and tests.
package sqlstore

import (
	"encoding/json"
	"time"

	"mis_invoicing/internal/domain/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type clientModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	Email     string
	Phone     string
	Address   string `gorm:"type:text"`
	GSTNumber string `gorm:"column:gst_number"`
	Category  string
	CreatedAt time.Time
}

func (clientModel) TableName() string { return "clients" }

type estimateModel struct {
	ID        string              `gorm:"primaryKey;size:36"`
	ClientID  string              `gorm:"index;size:36;not null"`
	Number    string              `gorm:"column:estimate_number;uniqueIndex;not null"`
	Items     string              `gorm:"type:text"`
	Subtotal  decimal.NullDecimal `gorm:"type:numeric(18,2)"`
	GSTAmount decimal.NullDecimal `gorm:"column:gst_amount;type:numeric(18,2)"`
	Total     decimal.NullDecimal `gorm:"type:numeric(18,2)"`
	Status    string              `gorm:"index;not null"`
	InvoiceID string              `gorm:"size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (estimateModel) TableName() string { return "estimates" }

type invoiceModel struct {
	ID         string              `gorm:"primaryKey;size:36"`
	ClientID   string              `gorm:"index;size:36;not null"`
	EstimateID string              `gorm:"index;size:36"`
	Number     string              `gorm:"column:invoice_number;uniqueIndex;not null"`
	Items      string              `gorm:"type:text"`
	Subtotal   decimal.NullDecimal `gorm:"type:numeric(18,2)"`
	CGST       decimal.NullDecimal `gorm:"column:cgst;type:numeric(18,2)"`
	SGST       decimal.NullDecimal `gorm:"column:sgst;type:numeric(18,2)"`
	IGST       decimal.NullDecimal `gorm:"column:igst;type:numeric(18,2)"`
	Total      decimal.NullDecimal `gorm:"type:numeric(18,2)"`
	Status     string              `gorm:"index;not null"`
	DueDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (invoiceModel) TableName() string { return "invoices" }

type paymentModel struct {
	ID             string          `gorm:"primaryKey;size:36"`
	InvoiceID      string          `gorm:"index;size:36;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Mode           string          `gorm:"column:payment_mode"`
	TransactionRef string
	PaymentDate    time.Time `gorm:"not null"`
	CreatedAt      time.Time
}

func (paymentModel) TableName() string { return "payments" }

// Migrate creates or updates the invoicing tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&clientModel{}, &estimateModel{}, &invoiceModel{}, &paymentModel{})
}

func toClientModel(c entities.Client) clientModel {
	return clientModel{
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

func (m clientModel) toEntity() entities.Client {
	return entities.Client{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		GSTNumber: m.GSTNumber,
		Category:  m.Category,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toEstimateModel(e entities.Estimate) estimateModel {
	return estimateModel{
		ID:        e.ID,
		ClientID:  e.ClientID,
		Number:    e.Number,
		Items:     string(e.Items),
		Subtotal:  e.Subtotal,
		GSTAmount: e.GSTAmount,
		Total:     e.Total,
		Status:    string(e.Status),
		InvoiceID: e.InvoiceID,
		CreatedAt: e.CreatedAt,
	}
}

func (m estimateModel) toEntity() entities.Estimate {
	return entities.Estimate{
		ID:        m.ID,
		ClientID:  m.ClientID,
		Number:    m.Number,
		Items:     rawItems(m.Items),
		Subtotal:  m.Subtotal,
		GSTAmount: m.GSTAmount,
		Total:     m.Total,
		Status:    entities.EstimateStatus(m.Status),
		InvoiceID: m.InvoiceID,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toInvoiceModel(inv entities.Invoice) invoiceModel {
	return invoiceModel{
		ID:         inv.ID,
		ClientID:   inv.ClientID,
		EstimateID: inv.EstimateID,
		Number:     inv.Number,
		Items:      string(inv.Items),
		Subtotal:   inv.Subtotal,
		CGST:       inv.CGST,
		SGST:       inv.SGST,
		IGST:       inv.IGST,
		Total:      inv.Total,
		Status:     string(inv.Status),
		DueDate:    inv.DueDate,
		CreatedAt:  inv.CreatedAt,
	}
}

func (m invoiceModel) toEntity() entities.Invoice {
	inv := entities.Invoice{
		ID:         m.ID,
		ClientID:   m.ClientID,
		EstimateID: m.EstimateID,
		Number:     m.Number,
		Items:      rawItems(m.Items),
		Subtotal:   m.Subtotal,
		CGST:       m.CGST,
		SGST:       m.SGST,
		IGST:       m.IGST,
		Total:      m.Total,
		Status:     entities.InvoiceStatus(m.Status),
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		inv.DueDate = &due
	}
	return inv
}

func toPaymentModel(p entities.Payment) paymentModel {
	return paymentModel{
		ID:             p.ID,
		InvoiceID:      p.InvoiceID,
		Amount:         p.Amount,
		Mode:           p.Mode,
		TransactionRef: p.TransactionRef,
		PaymentDate:    p.PaymentDate,
	}
}

func (m paymentModel) toEntity() entities.Payment {
	return entities.Payment{
		ID:             m.ID,
		InvoiceID:      m.InvoiceID,
		Amount:         m.Amount,
		Mode:           m.Mode,
		TransactionRef: m.TransactionRef,
		PaymentDate:    m.PaymentDate.UTC(),
	}
}

func rawItems(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
