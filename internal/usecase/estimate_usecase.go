package usecase

import (
	"context"
	"encoding/json"
	"errors"
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
	ErrEstimateNotFound          = fmt.Errorf("estimate %w", entities.ErrNotFound)
	ErrInvalidEstimateID         = errors.New("invalid estimate id")
	ErrEstimateNotApproved       = billing.ErrNotApproved
	ErrEstimateConverted         = fmt.Errorf("%w: converted estimates are immutable", entities.ErrInvalidState)
	ErrInvalidEstimateTransition = fmt.Errorf("%w: estimate status transition not allowed", entities.ErrInvalidState)
	ErrEstimateHasInvoice        = fmt.Errorf("estimate %w: an invoice was converted from it", entities.ErrHasDependents)
)

// EstimateInput carries the caller-supplied fields of an estimate. Tax fields
// are always derived from Subtotal. An empty Status keeps the current one
// (DRAFT on creation); an empty Number is generated.
type EstimateInput struct {
	Number   string
	Items    json.RawMessage
	Subtotal decimal.NullDecimal
	Status   entities.EstimateStatus
}

// IEstimateUseCase exposes the estimate lifecycle:
//   - create/update recompute GST from the subtotal
//   - status changes only move forward (DRAFT -> SENT -> APPROVED)
//   - ConvertToInvoice is the only way to reach CONVERTED

type IEstimateUseCase interface {
	CreateEstimate(ctx context.Context, clientID string, in EstimateInput) (entities.Estimate, error)
	UpdateEstimate(ctx context.Context, id string, in EstimateInput) (entities.Estimate, error)
	DeleteEstimate(ctx context.Context, id string) error
	ConvertToInvoice(ctx context.Context, id string) (entities.Invoice, error)
	GetByID(ctx context.Context, id string) (entities.Estimate, error)
	List(ctx context.Context) ([]entities.Estimate, error)
	ListByClientID(ctx context.Context, clientID string) ([]entities.Estimate, error)
}

type EstimateUseCase struct {
	repo        interfaces.IEstimateRepository
	clientRepo  interfaces.IClientRepository
	invoiceRepo interfaces.IInvoiceRepository
	paymentRepo interfaces.IPaymentRepository
	conversions interfaces.IConversionStore
	numbers     interfaces.INumberGenerator
	policy      DeletePolicy
}

var _ IEstimateUseCase = (*EstimateUseCase)(nil)

func NewEstimateUseCase(
	repo interfaces.IEstimateRepository,
	clientRepo interfaces.IClientRepository,
	invoiceRepo interfaces.IInvoiceRepository,
	paymentRepo interfaces.IPaymentRepository,
	conversions interfaces.IConversionStore,
	numbers interfaces.INumberGenerator,
	policy DeletePolicy,
) *EstimateUseCase {
	if numbers == nil {
		numbers = NewTimestampNumberGenerator()
	}
	if policy == "" {
		policy = DeletePolicyRestrict
	}
	return &EstimateUseCase{
		repo:        repo,
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		conversions: conversions,
		numbers:     numbers,
		policy:      policy,
	}
}

func (u *EstimateUseCase) CreateEstimate(ctx context.Context, clientID string, in EstimateInput) (entities.Estimate, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return entities.Estimate{}, ErrInvalidClientID
	}
	if in.Subtotal.Valid && in.Subtotal.Decimal.IsNegative() {
		return entities.Estimate{}, ErrInvalidAmount
	}

	status := entities.EstimateStatusDraft
	if in.Status != "" {
		if !entities.EstimateStatusDraft.CanTransitionTo(in.Status) {
			log.Printf("[estimate][usecase] create rejected status=%s", in.Status)
			return entities.Estimate{}, ErrInvalidEstimateTransition
		}
		status = in.Status
	}

	client, err := u.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return entities.Estimate{}, err
	}
	if client.ID == "" {
		return entities.Estimate{}, ErrClientNotFound
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		number = u.numbers.Next(EstimateNumberPrefix)
	}

	e := entities.Estimate{
		ID:        uuid.NewString(),
		ClientID:  client.ID,
		Number:    number,
		Items:     in.Items,
		Subtotal:  in.Subtotal,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	billing.ApplyEstimateTax(&e)

	created, err := u.repo.Create(ctx, e)
	if err != nil {
		log.Printf("[estimate][usecase] create failed client_id=%s number=%s err=%v", clientID, number, err)
		return entities.Estimate{}, err
	}
	log.Printf("[estimate][usecase] created estimate_id=%s number=%s status=%s", created.ID, created.Number, created.Status)
	return created, nil
}

func (u *EstimateUseCase) UpdateEstimate(ctx context.Context, id string, in EstimateInput) (entities.Estimate, error) {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Estimate{}, err
	}
	if current.IsConverted() {
		return entities.Estimate{}, ErrEstimateConverted
	}
	if in.Subtotal.Valid && in.Subtotal.Decimal.IsNegative() {
		return entities.Estimate{}, ErrInvalidAmount
	}
	if in.Status != "" && !current.Status.CanTransitionTo(in.Status) {
		log.Printf("[estimate][usecase] transition rejected estimate_id=%s from=%s to=%s", current.ID, current.Status, in.Status)
		return entities.Estimate{}, ErrInvalidEstimateTransition
	}

	current.Items = in.Items
	current.Subtotal = in.Subtotal
	billing.ApplyEstimateTax(&current)
	if in.Status != "" {
		current.Status = in.Status
	}

	updated, err := u.repo.Update(ctx, current)
	if err != nil {
		return entities.Estimate{}, err
	}
	if updated.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	return updated, nil
}

// ConvertToInvoice converts an APPROVED estimate into a new PENDING invoice.
// The CONVERTED estimate and the invoice are persisted in one transaction.
func (u *EstimateUseCase) ConvertToInvoice(ctx context.Context, id string) (entities.Invoice, error) {
	est, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Invoice{}, err
	}

	if err := billing.CheckConvertible(est); err != nil {
		log.Printf("[estimate][usecase] convert rejected estimate_id=%s status=%s", est.ID, est.Status)
		return entities.Invoice{}, err
	}

	converted, inv, err := billing.ConvertEstimateToInvoice(est, uuid.NewString(), u.numbers.Next(InvoiceNumberPrefix), time.Now().UTC())
	if err != nil {
		return entities.Invoice{}, err
	}

	if u.conversions == nil {
		return entities.Invoice{}, ErrMissingRepository
	}
	if err := u.conversions.SaveConversion(ctx, converted, inv); err != nil {
		log.Printf("[estimate][usecase] convert persist failed estimate_id=%s invoice_id=%s err=%v", est.ID, inv.ID, err)
		return entities.Invoice{}, err
	}
	log.Printf("[estimate][usecase] converted estimate_id=%s invoice_id=%s number=%s total=%s", est.ID, inv.ID, inv.Number, inv.Total.Decimal.StringFixed(2))
	return inv, nil
}

func (u *EstimateUseCase) DeleteEstimate(ctx context.Context, id string) error {
	est, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Only a conversion links an invoice to an estimate, and it records the
	// invoice id on the estimate itself.
	if u.policy != DeletePolicyOrphan && u.invoiceRepo != nil && est.InvoiceID != "" {
		inv, err := u.invoiceRepo.GetByID(ctx, est.InvoiceID)
		if err != nil {
			return err
		}
		if inv.ID != "" {
			switch u.policy {
			case DeletePolicyRestrict:
				log.Printf("[estimate][usecase] delete refused estimate_id=%s invoice_id=%s", est.ID, inv.ID)
				return ErrEstimateHasInvoice
			case DeletePolicyCascade:
				if err := deleteInvoiceCascade(ctx, u.invoiceRepo, u.paymentRepo, inv.ID); err != nil {
					return err
				}
			}
		}
	}

	if err := u.repo.Delete(ctx, est.ID); err != nil {
		return err
	}
	log.Printf("[estimate][usecase] deleted estimate_id=%s policy=%s", est.ID, u.policy)
	return nil
}

func (u *EstimateUseCase) GetByID(ctx context.Context, id string) (entities.Estimate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Estimate{}, ErrInvalidEstimateID
	}

	e, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	return e, nil
}

func (u *EstimateUseCase) List(ctx context.Context) ([]entities.Estimate, error) {
	return u.repo.List(ctx)
}

func (u *EstimateUseCase) ListByClientID(ctx context.Context, clientID string) ([]entities.Estimate, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	return u.repo.ListByClientID(ctx, clientID)
}
