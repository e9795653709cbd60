package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mis_invoicing/internal/domain/billing"
	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceHasPayments = fmt.Errorf("invoice %w: payments recorded against it", entities.ErrHasDependents)
)

// InvoiceInput carries the caller-supplied fields of an invoice. Tax fields
// are derived from Subtotal and the jurisdiction flag passed alongside; the
// flag itself is not stored.
type InvoiceInput struct {
	Number   string
	Items    json.RawMessage
	Subtotal decimal.NullDecimal
	DueDate  *time.Time
}

// InvoiceBalance is an invoice together with what has been paid against it.
type InvoiceBalance struct {
	Invoice     entities.Invoice
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
	Payments    int
}

// IInvoiceUseCase exposes the invoice lifecycle. Status is never written
// here except through Reconcile.

type IInvoiceUseCase interface {
	CreateInvoice(ctx context.Context, clientID string, in InvoiceInput, interState bool) (entities.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, in InvoiceInput, interState bool) (entities.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	Reconcile(ctx context.Context, id string) (entities.Invoice, error)
	Balance(ctx context.Context, id string) (InvoiceBalance, error)
	GetByID(ctx context.Context, id string) (entities.Invoice, error)
	List(ctx context.Context) ([]entities.Invoice, error)
	ListByClientID(ctx context.Context, clientID string) ([]entities.Invoice, error)
	ListByStatus(ctx context.Context, status entities.InvoiceStatus) ([]entities.Invoice, error)
}

type InvoiceUseCase struct {
	repo        interfaces.IInvoiceRepository
	clientRepo  interfaces.IClientRepository
	paymentRepo interfaces.IPaymentRepository
	reconciler  *Reconciler
	numbers     interfaces.INumberGenerator
	policy      DeletePolicy
}

var _ IInvoiceUseCase = (*InvoiceUseCase)(nil)

func NewInvoiceUseCase(
	repo interfaces.IInvoiceRepository,
	clientRepo interfaces.IClientRepository,
	paymentRepo interfaces.IPaymentRepository,
	reconciler *Reconciler,
	numbers interfaces.INumberGenerator,
	policy DeletePolicy,
) *InvoiceUseCase {
	if numbers == nil {
		numbers = NewTimestampNumberGenerator()
	}
	if policy == "" {
		policy = DeletePolicyRestrict
	}
	return &InvoiceUseCase{
		repo:        repo,
		clientRepo:  clientRepo,
		paymentRepo: paymentRepo,
		reconciler:  reconciler,
		numbers:     numbers,
		policy:      policy,
	}
}

func (u *InvoiceUseCase) CreateInvoice(ctx context.Context, clientID string, in InvoiceInput, interState bool) (entities.Invoice, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return entities.Invoice{}, ErrInvalidClientID
	}
	if in.Subtotal.Valid && in.Subtotal.Decimal.IsNegative() {
		return entities.Invoice{}, ErrInvalidAmount
	}

	client, err := u.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if client.ID == "" {
		return entities.Invoice{}, ErrClientNotFound
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		number = u.numbers.Next(InvoiceNumberPrefix)
	}

	inv := entities.Invoice{
		ID:        uuid.NewString(),
		ClientID:  client.ID,
		Number:    number,
		Items:     in.Items,
		Subtotal:  in.Subtotal,
		Status:    entities.InvoiceStatusPending,
		DueDate:   in.DueDate,
		CreatedAt: time.Now().UTC(),
	}
	billing.ApplyInvoiceTax(&inv, interState)

	created, err := u.repo.Create(ctx, inv)
	if err != nil {
		log.Printf("[invoice][usecase] create failed client_id=%s number=%s err=%v", clientID, number, err)
		return entities.Invoice{}, err
	}
	log.Printf("[invoice][usecase] created invoice_id=%s number=%s inter_state=%t", created.ID, created.Number, interState)
	return created, nil
}

// UpdateInvoice rewrites items, subtotal, tax split and due date. The
// jurisdiction must be supplied again on every update.
func (u *InvoiceUseCase) UpdateInvoice(ctx context.Context, id string, in InvoiceInput, interState bool) (entities.Invoice, error) {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Invoice{}, err
	}
	if in.Subtotal.Valid && in.Subtotal.Decimal.IsNegative() {
		return entities.Invoice{}, ErrInvalidAmount
	}

	current.Items = in.Items
	current.Subtotal = in.Subtotal
	billing.ApplyInvoiceTax(&current, interState)
	current.DueDate = in.DueDate

	updated, err := u.repo.Update(ctx, current)
	if err != nil {
		return entities.Invoice{}, err
	}
	if updated.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	log.Printf("[invoice][usecase] updated invoice_id=%s inter_state=%t", updated.ID, interState)
	return updated, nil
}

func (u *InvoiceUseCase) DeleteInvoice(ctx context.Context, id string) error {
	inv, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch u.policy {
	case DeletePolicyRestrict:
		payments, err := u.paymentRepo.ListByInvoiceID(ctx, inv.ID)
		if err != nil {
			return err
		}
		if len(payments) > 0 {
			log.Printf("[invoice][usecase] delete refused invoice_id=%s payments=%d", inv.ID, len(payments))
			return ErrInvoiceHasPayments
		}
	case DeletePolicyCascade:
		return deleteInvoiceCascade(ctx, u.repo, u.paymentRepo, inv.ID)
	}

	if err := u.repo.Delete(ctx, inv.ID); err != nil {
		return err
	}
	log.Printf("[invoice][usecase] deleted invoice_id=%s policy=%s", inv.ID, u.policy)
	return nil
}

func (u *InvoiceUseCase) Reconcile(ctx context.Context, id string) (entities.Invoice, error) {
	return u.reconciler.Reconcile(ctx, id)
}

func (u *InvoiceUseCase) Balance(ctx context.Context, id string) (InvoiceBalance, error) {
	inv, err := u.GetByID(ctx, id)
	if err != nil {
		return InvoiceBalance{}, err
	}
	if u.paymentRepo == nil {
		return InvoiceBalance{}, ErrMissingRepository
	}
	payments, err := u.paymentRepo.ListByInvoiceID(ctx, inv.ID)
	if err != nil {
		return InvoiceBalance{}, err
	}
	return InvoiceBalance{
		Invoice:     inv,
		Paid:        billing.PaidAmount(inv, payments),
		Outstanding: billing.OutstandingAmount(inv, payments),
		Payments:    len(payments),
	}, nil
}

func (u *InvoiceUseCase) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Invoice{}, ErrInvalidInvoiceID
	}

	inv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (u *InvoiceUseCase) List(ctx context.Context) ([]entities.Invoice, error) {
	return u.repo.List(ctx)
}

func (u *InvoiceUseCase) ListByClientID(ctx context.Context, clientID string) ([]entities.Invoice, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	return u.repo.ListByClientID(ctx, clientID)
}

func (u *InvoiceUseCase) ListByStatus(ctx context.Context, status entities.InvoiceStatus) ([]entities.Invoice, error) {
	st, err := entities.ParseInvoiceStatus(string(status))
	if err != nil {
		return nil, ErrInvalidStatus
	}
	return u.repo.ListByStatus(ctx, st)
}
