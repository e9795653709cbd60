package usecase

import (
	"context"
	"errors"
	"testing"

	"mis_invoicing/internal/domain/entities"
	mock_interfaces "mis_invoicing/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

type clientDeps struct {
	repo      *mock_interfaces.MockIClientRepository
	estimates *mock_interfaces.MockIEstimateRepository
	invoices  *mock_interfaces.MockIInvoiceRepository
	payments  *mock_interfaces.MockIPaymentRepository
}

func newClientUseCaseForTest(ctrl *gomock.Controller, policy DeletePolicy) (*ClientUseCase, clientDeps) {
	deps := clientDeps{
		repo:      mock_interfaces.NewMockIClientRepository(ctrl),
		estimates: mock_interfaces.NewMockIEstimateRepository(ctrl),
		invoices:  mock_interfaces.NewMockIInvoiceRepository(ctrl),
		payments:  mock_interfaces.NewMockIPaymentRepository(ctrl),
	}
	return NewClientUseCase(deps.repo, deps.estimates, deps.invoices, deps.payments, policy), deps
}

func TestClientUseCase_CreateClient(t *testing.T) {
	t.Run("name required", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newClientUseCaseForTest(ctrl, "")

		if _, err := uc.CreateClient(context.Background(), entities.Client{Name: "  "}); !errors.Is(err, ErrInvalidClientName) {
			t.Fatalf("expected ErrInvalidClientName, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newClientUseCaseForTest(ctrl, "")

		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c entities.Client) (entities.Client, error) {
			return c, nil
		})

		got, err := uc.CreateClient(context.Background(), entities.Client{Name: " Acme ", GSTNumber: "27AAAAA0000A1Z5"})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got.ID == "" || got.Name != "Acme" || got.CreatedAt.IsZero() {
			t.Fatalf("unexpected client: %+v", got)
		}
	})
}

func TestClientUseCase_UpdateClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc, deps := newClientUseCaseForTest(ctrl, "")

	current := entities.Client{ID: "c-1", Name: "Old"}
	deps.repo.EXPECT().GetByID(gomock.Any(), "c-1").Return(current, nil)
	deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c entities.Client) (entities.Client, error) {
		return c, nil
	})

	got, err := uc.UpdateClient(context.Background(), "c-1", entities.Client{ID: "other", Name: "New"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ID != "c-1" || got.Name != "New" {
		t.Fatalf("unexpected client: %+v", got)
	}
}

func TestClientUseCase_DeleteClient(t *testing.T) {
	t.Run("restrict refuses with estimates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newClientUseCaseForTest(ctrl, DeletePolicyRestrict)

		deps.repo.EXPECT().GetByID(gomock.Any(), "c-1").Return(entities.Client{ID: "c-1"}, nil)
		deps.estimates.EXPECT().ListByClientID(gomock.Any(), "c-1").Return([]entities.Estimate{{ID: "e-1"}}, nil)
		deps.invoices.EXPECT().ListByClientID(gomock.Any(), "c-1").Return(nil, nil)

		if err := uc.DeleteClient(context.Background(), "c-1"); !errors.Is(err, entities.ErrHasDependents) {
			t.Fatalf("expected ErrHasDependents, got %v", err)
		}
	})

	t.Run("cascade removes everything", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newClientUseCaseForTest(ctrl, DeletePolicyCascade)

		deps.repo.EXPECT().GetByID(gomock.Any(), "c-1").Return(entities.Client{ID: "c-1"}, nil)
		deps.estimates.EXPECT().ListByClientID(gomock.Any(), "c-1").Return([]entities.Estimate{{ID: "e-1"}}, nil)
		deps.invoices.EXPECT().ListByClientID(gomock.Any(), "c-1").Return([]entities.Invoice{{ID: "i-1"}}, nil)
		deps.payments.EXPECT().ListByInvoiceID(gomock.Any(), "i-1").Return(nil, nil)
		deps.invoices.EXPECT().Delete(gomock.Any(), "i-1").Return(nil)
		deps.estimates.EXPECT().Delete(gomock.Any(), "e-1").Return(nil)
		deps.repo.EXPECT().Delete(gomock.Any(), "c-1").Return(nil)

		if err := uc.DeleteClient(context.Background(), "c-1"); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newClientUseCaseForTest(ctrl, "")

		deps.repo.EXPECT().GetByID(gomock.Any(), "c-1").Return(entities.Client{}, nil)

		if err := uc.DeleteClient(context.Background(), "c-1"); !errors.Is(err, ErrClientNotFound) {
			t.Fatalf("expected ErrClientNotFound, got %v", err)
		}
	})
}
