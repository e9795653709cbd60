package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound                = fmt.Errorf("payment %w", entities.ErrNotFound)
	ErrInvalidPaymentID               = errors.New("invalid payment id")
	ErrInvalidGatewayPayload          = errors.New("invalid payment gateway payload")
	ErrPaymentGatewayNotConfigured    = errors.New("payment gateway not configured")
	ErrPaymentNotApproved             = errors.New("payment not approved by gateway")
	ErrPaymentGatewayBadRequest       = errors.New("payment gateway bad request")
	ErrPaymentGatewayUnauthorized     = errors.New("payment gateway unauthorized")
	ErrPaymentGatewayInvalidUsers     = errors.New("payment gateway invalid users involved")
	ErrPaymentGatewayCustomerNotFound = errors.New("payment gateway customer not found")
)

// GatewayPaymentMode tags payments charged through the payment gateway.
const GatewayPaymentMode = "MERCADOPAGO"

// PaymentInput carries a payment to record against an invoice. When
// GatewayPayload is set the amount is first charged through the payment
// gateway and the provider id becomes the transaction reference.
type PaymentInput struct {
	Amount         decimal.Decimal
	Mode           string
	TransactionRef string
	PaymentDate    time.Time
	GatewayPayload json.RawMessage
}

// IPaymentUseCase records and removes payments. Every write and the
// reconciliation of the owning invoice run under the invoice lock; a write
// whose reconciliation fails is undone.

type IPaymentUseCase interface {
	RecordPayment(ctx context.Context, invoiceID string, in PaymentInput) (entities.Payment, error)
	DeletePayment(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	List(ctx context.Context) ([]entities.Payment, error)
	ListByInvoiceID(ctx context.Context, invoiceID string) ([]entities.Payment, error)
}

type PaymentUseCase struct {
	repo        interfaces.IPaymentRepository
	invoiceRepo interfaces.IInvoiceRepository
	reconciler  *Reconciler
	gateway     interfaces.IPaymentGateway
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.IPaymentRepository, invoiceRepo interfaces.IInvoiceRepository, reconciler *Reconciler, gateway interfaces.IPaymentGateway) *PaymentUseCase {
	return &PaymentUseCase{repo: repo, invoiceRepo: invoiceRepo, reconciler: reconciler, gateway: gateway}
}

func (u *PaymentUseCase) RecordPayment(ctx context.Context, invoiceID string, in PaymentInput) (entities.Payment, error) {
	log.Printf("[payment][usecase] record start raw_invoice_id=%q amount=%s payload_len=%d", invoiceID, in.Amount.String(), len(in.GatewayPayload))
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return entities.Payment{}, ErrInvalidInvoiceID
	}
	if !in.Amount.IsPositive() {
		log.Printf("[payment][usecase] invalid amount invoice_id=%s amount=%s", invoiceID, in.Amount.String())
		return entities.Payment{}, ErrInvalidAmount
	}

	inv, err := u.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		log.Printf("[payment][usecase] failed loading invoice invoice_id=%s err=%v", invoiceID, err)
		return entities.Payment{}, err
	}
	if inv.ID == "" {
		log.Printf("[payment][usecase] invoice not found invoice_id=%s", invoiceID)
		return entities.Payment{}, ErrInvoiceNotFound
	}

	p := entities.Payment{
		ID:             uuid.NewString(),
		InvoiceID:      inv.ID,
		Amount:         in.Amount,
		Mode:           strings.TrimSpace(in.Mode),
		TransactionRef: strings.TrimSpace(in.TransactionRef),
		PaymentDate:    in.PaymentDate,
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}

	if len(in.GatewayPayload) > 0 {
		if err := u.checkGatewayPayload(inv, in.GatewayPayload); err != nil {
			return entities.Payment{}, err
		}
	}

	// Charge, insert and status write all run under the invoice lock.
	var created entities.Payment
	err = u.reconciler.WithLock(ctx, inv.ID, func(ctx context.Context) error {
		if len(in.GatewayPayload) > 0 {
			providerID, err := u.charge(ctx, inv, in.Amount, in.GatewayPayload)
			if err != nil {
				return err
			}
			p.TransactionRef = providerID
			if p.Mode == "" {
				p.Mode = GatewayPaymentMode
			}
		}

		saved, err := u.repo.Create(ctx, p)
		if err != nil {
			log.Printf("[payment][usecase] payment repository create failed invoice_id=%s payment_id=%s err=%v", invoiceID, p.ID, err)
			if len(in.GatewayPayload) > 0 {
				log.Printf("[payment][usecase] ERROR charge approved but payment not stored invoice_id=%s provider_payment_id=%s amount=%s", invoiceID, p.TransactionRef, p.Amount.StringFixed(2))
			}
			return err
		}

		if _, err := u.reconciler.reconcileLocked(ctx, inv.ID); err != nil {
			log.Printf("[payment][usecase] reconcile failed, rolling back invoice_id=%s payment_id=%s err=%v", invoiceID, saved.ID, err)
			if derr := u.repo.Delete(ctx, saved.InvoiceID, saved.ID); derr != nil {
				log.Printf("[payment][usecase] ERROR rollback failed invoice_id=%s payment_id=%s err=%v", invoiceID, saved.ID, derr)
			}
			if len(in.GatewayPayload) > 0 {
				log.Printf("[payment][usecase] ERROR charge approved but payment rolled back invoice_id=%s provider_payment_id=%s amount=%s", invoiceID, saved.TransactionRef, saved.Amount.StringFixed(2))
			}
			return err
		}
		created = saved
		return nil
	})
	if err != nil {
		return entities.Payment{}, err
	}
	log.Printf("[payment][usecase] recorded invoice_id=%s payment_id=%s amount=%s mode=%s", invoiceID, created.ID, created.Amount.StringFixed(2), created.Mode)
	return created, nil
}

func (u *PaymentUseCase) checkGatewayPayload(inv entities.Invoice, payload json.RawMessage) error {
	if u.gateway == nil {
		log.Printf("[payment][usecase] gateway not configured invoice_id=%s", inv.ID)
		return ErrPaymentGatewayNotConfigured
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		log.Printf("[payment][usecase] invalid payload (not a json object) invoice_id=%s err=%v", inv.ID, err)
		return ErrInvalidGatewayPayload
	}
	return nil
}

// charge runs the payload through the gateway. The amount charged is always
// the recorded amount, whatever the caller put in the payload.
func (u *PaymentUseCase) charge(ctx context.Context, inv entities.Invoice, amount decimal.Decimal, payload json.RawMessage) (string, error) {
	log.Printf("[payment][usecase] calling payment gateway invoice_id=%s payload_len=%d", inv.ID, len(payload))
	res, err := u.gateway.Charge(ctx, interfaces.ChargeRequest{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		Amount:        amount,
		Payload:       payload,
	})
	if err != nil {
		log.Printf("[payment][usecase] payment gateway failed invoice_id=%s err=%v", inv.ID, err)
		return "", mapGatewayError(err)
	}
	if !res.Approved() {
		log.Printf("[payment][usecase] payment not approved invoice_id=%s provider_payment_id=%s provider_status=%s", inv.ID, res.ProviderPaymentID, res.Status)
		return "", ErrPaymentNotApproved
	}
	log.Printf("[payment][usecase] payment gateway success invoice_id=%s provider_payment_id=%s", inv.ID, res.ProviderPaymentID)
	return res.ProviderPaymentID, nil
}

func mapGatewayError(err error) error {
	switch {
	case isGatewayCustomerNotFound(err):
		return ErrPaymentGatewayCustomerNotFound
	case isGatewayInvalidUsers(err):
		return ErrPaymentGatewayInvalidUsers
	case isGatewayUnauthorized(err):
		return ErrPaymentGatewayUnauthorized
	case isGatewayBadRequest(err):
		return ErrPaymentGatewayBadRequest
	}
	return err
}

func isGatewayBadRequest(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "\"error\":\"bad_request\"") || strings.Contains(msg, "\"status\":400")
}

func isGatewayUnauthorized(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "\"error\":\"unauthorized\"") || strings.Contains(msg, "\"status\":401")
}

func isGatewayInvalidUsers(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid users involved") || strings.Contains(msg, "\"code\":2034")
}

func isGatewayCustomerNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "customer not found") || strings.Contains(msg, "\"code\":2002")
}

// DeletePayment removes a payment and re-derives the invoice status, so an
// invoice can fall back from PAID to PENDING. A failed status write restores
// the payment.
func (u *PaymentUseCase) DeletePayment(ctx context.Context, id string) error {
	p, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return u.reconciler.WithLock(ctx, p.InvoiceID, func(ctx context.Context) error {
		if err := u.repo.Delete(ctx, p.InvoiceID, p.ID); err != nil {
			return err
		}
		log.Printf("[payment][usecase] deleted payment_id=%s invoice_id=%s", p.ID, p.InvoiceID)

		_, err := u.reconciler.reconcileLocked(ctx, p.InvoiceID)
		if err == nil || errors.Is(err, ErrInvoiceNotFound) {
			return nil
		}
		log.Printf("[payment][usecase] reconcile failed, restoring payment invoice_id=%s payment_id=%s err=%v", p.InvoiceID, p.ID, err)
		if _, cerr := u.repo.Create(ctx, p); cerr != nil {
			log.Printf("[payment][usecase] ERROR restore failed invoice_id=%s payment_id=%s err=%v", p.InvoiceID, p.ID, cerr)
		}
		return err
	})
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, ErrInvalidPaymentID
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) List(ctx context.Context) ([]entities.Payment, error) {
	return u.repo.List(ctx)
}

func (u *PaymentUseCase) ListByInvoiceID(ctx context.Context, invoiceID string) ([]entities.Payment, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, ErrInvalidInvoiceID
	}
	return u.repo.ListByInvoiceID(ctx, invoiceID)
}
