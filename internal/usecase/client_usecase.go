package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidClientName   = errors.New("invalid client name")
	ErrClientHasDependents = fmt.Errorf("client %w: estimates or invoices reference it", entities.ErrHasDependents)
)

type IClientUseCase interface {
	CreateClient(ctx context.Context, c entities.Client) (entities.Client, error)
	UpdateClient(ctx context.Context, id string, c entities.Client) (entities.Client, error)
	DeleteClient(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (entities.Client, error)
	List(ctx context.Context) ([]entities.Client, error)
}

type ClientUseCase struct {
	repo         interfaces.IClientRepository
	estimateRepo interfaces.IEstimateRepository
	invoiceRepo  interfaces.IInvoiceRepository
	paymentRepo  interfaces.IPaymentRepository
	policy       DeletePolicy
}

var _ IClientUseCase = (*ClientUseCase)(nil)

func NewClientUseCase(repo interfaces.IClientRepository, estimateRepo interfaces.IEstimateRepository, invoiceRepo interfaces.IInvoiceRepository, paymentRepo interfaces.IPaymentRepository, policy DeletePolicy) *ClientUseCase {
	if policy == "" {
		policy = DeletePolicyRestrict
	}
	return &ClientUseCase{repo: repo, estimateRepo: estimateRepo, invoiceRepo: invoiceRepo, paymentRepo: paymentRepo, policy: policy}
}

func (u *ClientUseCase) CreateClient(ctx context.Context, c entities.Client) (entities.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return entities.Client{}, ErrInvalidClientName
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	created, err := u.repo.Create(ctx, c)
	if err != nil {
		log.Printf("[client][usecase] create failed name=%q err=%v", c.Name, err)
		return entities.Client{}, err
	}
	log.Printf("[client][usecase] created client_id=%s", created.ID)
	return created, nil
}

func (u *ClientUseCase) UpdateClient(ctx context.Context, id string, c entities.Client) (entities.Client, error) {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Client{}, err
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return entities.Client{}, ErrInvalidClientName
	}
	c.ID = current.ID
	c.CreatedAt = current.CreatedAt

	updated, err := u.repo.Update(ctx, c)
	if err != nil {
		return entities.Client{}, err
	}
	if updated.ID == "" {
		return entities.Client{}, ErrClientNotFound
	}
	return updated, nil
}

func (u *ClientUseCase) DeleteClient(ctx context.Context, id string) error {
	c, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if u.policy != DeletePolicyOrphan {
		estimates, err := u.estimateRepo.ListByClientID(ctx, c.ID)
		if err != nil {
			return err
		}
		invoices, err := u.invoiceRepo.ListByClientID(ctx, c.ID)
		if err != nil {
			return err
		}

		if u.policy == DeletePolicyRestrict && (len(estimates) > 0 || len(invoices) > 0) {
			log.Printf("[client][usecase] delete refused client_id=%s estimates=%d invoices=%d", c.ID, len(estimates), len(invoices))
			return ErrClientHasDependents
		}
		if u.policy == DeletePolicyCascade {
			for _, inv := range invoices {
				if err := deleteInvoiceCascade(ctx, u.invoiceRepo, u.paymentRepo, inv.ID); err != nil {
					return err
				}
			}
			for _, e := range estimates {
				if err := u.estimateRepo.Delete(ctx, e.ID); err != nil {
					return err
				}
			}
		}
	}

	if err := u.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	log.Printf("[client][usecase] deleted client_id=%s policy=%s", c.ID, u.policy)
	return nil
}

func (u *ClientUseCase) GetByID(ctx context.Context, id string) (entities.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Client{}, ErrInvalidClientID
	}

	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Client{}, err
	}
	if c.ID == "" {
		return entities.Client{}, ErrClientNotFound
	}
	return c, nil
}

func (u *ClientUseCase) List(ctx context.Context) ([]entities.Client, error) {
	return u.repo.List(ctx)
}
