package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"
	mock_interfaces "mis_invoicing/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

type paymentDeps struct {
	repo     *mock_interfaces.MockIPaymentRepository
	invoices *mock_interfaces.MockIInvoiceRepository
	gateway  *mock_interfaces.MockIPaymentGateway
}

func newPaymentUseCaseForTest(ctrl *gomock.Controller) (*PaymentUseCase, paymentDeps) {
	return newLockedPaymentUseCaseForTest(ctrl, nil)
}

func newLockedPaymentUseCaseForTest(ctrl *gomock.Controller, locker interfaces.IInvoiceLocker) (*PaymentUseCase, paymentDeps) {
	deps := paymentDeps{
		repo:     mock_interfaces.NewMockIPaymentRepository(ctrl),
		invoices: mock_interfaces.NewMockIInvoiceRepository(ctrl),
		gateway:  mock_interfaces.NewMockIPaymentGateway(ctrl),
	}
	rec := NewReconciler(deps.invoices, deps.repo, locker, nil)
	return NewPaymentUseCase(deps.repo, deps.invoices, rec, deps.gateway), deps
}

func TestPaymentUseCase_RecordPayment(t *testing.T) {
	t.Run("invalid invoice id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newPaymentUseCaseForTest(ctrl)

		if _, err := uc.RecordPayment(context.Background(), " ", PaymentInput{Amount: d("1")}); !errors.Is(err, ErrInvalidInvoiceID) {
			t.Fatalf("expected ErrInvalidInvoiceID, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newPaymentUseCaseForTest(ctrl)

		for _, amount := range []string{"0", "-5"} {
			if _, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d(amount)}); !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
			}
		}
	})

	t.Run("invoice not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(entities.Invoice{}, nil)

		if _, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("10")}); !errors.Is(err, ErrInvoiceNotFound) {
			t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
		}
	})

	t.Run("partial then full payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		inv := entities.Invoice{ID: "i-1", Total: nd("1180"), Status: entities.InvoiceStatusPending}
		var stored []entities.Payment
		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(inv, nil).AnyTimes()
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.Payment) (entities.Payment, error) {
			stored = append(stored, p)
			return p, nil
		}).Times(2)
		deps.repo.EXPECT().ListByInvoiceID(gomock.Any(), "i-1").DoAndReturn(func(_ context.Context, _ string) ([]entities.Payment, error) {
			return stored, nil
		}).Times(2)
		paid := inv
		paid.Status = entities.InvoiceStatusPaid
		deps.invoices.EXPECT().UpdateStatus(gomock.Any(), "i-1", entities.InvoiceStatusPaid).Return(paid, nil)

		p1, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("500"), Mode: "UPI"})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if p1.ID == "" || p1.InvoiceID != "i-1" || p1.PaymentDate.IsZero() {
			t.Fatalf("unexpected payment: %+v", p1)
		}
		if _, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("680"), Mode: "CASH"}); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	})

	t.Run("gateway charge sets reference and mode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		inv := entities.Invoice{ID: "i-1", Number: "INV-1", Total: nd("100"), Status: entities.InvoiceStatusPending}
		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(inv, nil).Times(2)
		deps.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req interfaces.ChargeRequest) (interfaces.ChargeResult, error) {
				if req.InvoiceID != "i-1" || req.InvoiceNumber != "INV-1" || req.Amount.StringFixed(2) != "40.50" {
					t.Fatalf("unexpected charge request: %+v", req)
				}
				return interfaces.ChargeResult{ProviderPaymentID: "mp-77", Status: "approved"}, nil
			})
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.Payment) (entities.Payment, error) {
			return p, nil
		})
		deps.repo.EXPECT().ListByInvoiceID(gomock.Any(), "i-1").Return(nil, nil)

		got, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{
			Amount:         d("40.50"),
			GatewayPayload: json.RawMessage(`{"payment_method_id":"pix","transaction_amount":1}`),
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got.TransactionRef != "mp-77" || got.Mode != GatewayPaymentMode {
			t.Fatalf("unexpected payment: %+v", got)
		}
	})

	t.Run("gateway rejected payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(entities.Invoice{ID: "i-1"}, nil)
		deps.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(interfaces.ChargeResult{ProviderPaymentID: "mp-1", Status: "rejected"}, nil)

		_, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("1"), GatewayPayload: json.RawMessage(`{}`)})
		if !errors.Is(err, ErrPaymentNotApproved) {
			t.Fatalf("expected ErrPaymentNotApproved, got %v", err)
		}
	})

	t.Run("gateway error mapping", func(t *testing.T) {
		cases := []struct {
			msg  string
			want error
		}{
			{msg: `{"status":400,"error":"bad_request"}`, want: ErrPaymentGatewayBadRequest},
			{msg: `{"status":401,"error":"unauthorized"}`, want: ErrPaymentGatewayUnauthorized},
			{msg: `{"code":2034}`, want: ErrPaymentGatewayInvalidUsers},
			{msg: `Customer not found`, want: ErrPaymentGatewayCustomerNotFound},
		}
		for _, tc := range cases {
			ctrl := gomock.NewController(t)
			uc, deps := newPaymentUseCaseForTest(ctrl)

			deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(entities.Invoice{ID: "i-1"}, nil)
			deps.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(interfaces.ChargeResult{}, errors.New(tc.msg))

			_, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("1"), GatewayPayload: json.RawMessage(`{}`)})
			if !errors.Is(err, tc.want) {
				t.Fatalf("msg %s: expected %v, got %v", tc.msg, tc.want, err)
			}
			ctrl.Finish()
		}
	})

	t.Run("invalid gateway payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(entities.Invoice{ID: "i-1"}, nil).Times(2)

		for _, payload := range []string{`{`, `[1,2]`} {
			_, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("1"), GatewayPayload: json.RawMessage(payload)})
			if !errors.Is(err, ErrInvalidGatewayPayload) {
				t.Fatalf("payload %s: expected ErrInvalidGatewayPayload, got %v", payload, err)
			}
		}
	})
}

func TestPaymentUseCase_RecordPaymentUnderLock(t *testing.T) {
	t.Run("busy invoice stores and charges nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		locker := mock_interfaces.NewMockIInvoiceLocker(ctrl)
		uc, deps := newLockedPaymentUseCaseForTest(ctrl, locker)

		inv := entities.Invoice{ID: "i-1", Total: nd("1180"), Status: entities.InvoiceStatusPending}
		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(inv, nil).Times(3)
		locker.EXPECT().Lock(gomock.Any(), "i-1").Return(nil, errors.New("held elsewhere")).Times(3)
		deps.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).Times(0)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		// Retrying a busy invoice must not pile up payments.
		for i := 0; i < 2; i++ {
			if _, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("1180.00")}); !errors.Is(err, ErrLockNotAcquired) {
				t.Fatalf("attempt %d: expected ErrLockNotAcquired, got %v", i+1, err)
			}
		}
		_, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("1180.00"), GatewayPayload: json.RawMessage(`{"payment_method_id":"pix"}`)})
		if !errors.Is(err, ErrLockNotAcquired) {
			t.Fatalf("expected ErrLockNotAcquired, got %v", err)
		}
	})

	t.Run("lock spans insert and status write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		locker := mock_interfaces.NewMockIInvoiceLocker(ctrl)
		uc, deps := newLockedPaymentUseCaseForTest(ctrl, locker)

		var steps []string
		inv := entities.Invoice{ID: "i-1", Total: nd("1180"), Status: entities.InvoiceStatusPending}
		var stored []entities.Payment
		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(inv, nil).Times(2)
		locker.EXPECT().Lock(gomock.Any(), "i-1").DoAndReturn(func(context.Context, string) (func(), error) {
			steps = append(steps, "lock")
			return func() { steps = append(steps, "unlock") }, nil
		})
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.Payment) (entities.Payment, error) {
			steps = append(steps, "insert")
			stored = append(stored, p)
			return p, nil
		})
		deps.repo.EXPECT().ListByInvoiceID(gomock.Any(), "i-1").DoAndReturn(func(context.Context, string) ([]entities.Payment, error) {
			return stored, nil
		})
		deps.invoices.EXPECT().UpdateStatus(gomock.Any(), "i-1", entities.InvoiceStatusPaid).DoAndReturn(
			func(_ context.Context, _ string, st entities.InvoiceStatus) (entities.Invoice, error) {
				steps = append(steps, "status")
				out := inv
				out.Status = st
				return out, nil
			})

		if _, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("1180")}); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		want := []string{"lock", "insert", "status", "unlock"}
		if len(steps) != len(want) {
			t.Fatalf("expected steps %v, got %v", want, steps)
		}
		for i := range want {
			if steps[i] != want[i] {
				t.Fatalf("expected steps %v, got %v", want, steps)
			}
		}
	})

	t.Run("failed status write rolls the payment back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		inv := entities.Invoice{ID: "i-1", Total: nd("1180"), Status: entities.InvoiceStatusPending}
		var stored entities.Payment
		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(inv, nil).Times(2)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.Payment) (entities.Payment, error) {
			stored = p
			return p, nil
		})
		deps.repo.EXPECT().ListByInvoiceID(gomock.Any(), "i-1").DoAndReturn(func(context.Context, string) ([]entities.Payment, error) {
			return []entities.Payment{stored}, nil
		})
		deps.invoices.EXPECT().UpdateStatus(gomock.Any(), "i-1", entities.InvoiceStatusPaid).Return(entities.Invoice{}, errors.New("write failed"))
		deps.repo.EXPECT().Delete(gomock.Any(), "i-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, id string) error {
			if id != stored.ID {
				t.Fatalf("expected rollback of %s, got %s", stored.ID, id)
			}
			return nil
		})

		got, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("1180")})
		if err == nil {
			t.Fatalf("expected error")
		}
		if got.ID != "" {
			t.Fatalf("expected no payment, got %+v", got)
		}
	})

	t.Run("charged payment is rolled back when payments cannot be listed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		inv := entities.Invoice{ID: "i-1", Number: "INV-1", Total: nd("100"), Status: entities.InvoiceStatusPending}
		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(inv, nil).Times(2)
		deps.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(interfaces.ChargeResult{ProviderPaymentID: "mp-9", Status: "approved"}, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.Payment) (entities.Payment, error) {
			return p, nil
		})
		deps.repo.EXPECT().ListByInvoiceID(gomock.Any(), "i-1").Return(nil, errors.New("read failed"))
		deps.repo.EXPECT().Delete(gomock.Any(), "i-1", gomock.Any()).Return(nil)

		_, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("100"), GatewayPayload: json.RawMessage(`{"payment_method_id":"pix"}`)})
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("store failure after approved charge", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(entities.Invoice{ID: "i-1"}, nil)
		deps.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(interfaces.ChargeResult{ProviderPaymentID: "mp-9", Status: "approved"}, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{}, errors.New("insert failed"))

		var logs bytes.Buffer
		log.SetOutput(&logs)
		defer log.SetOutput(os.Stderr)

		_, err := uc.RecordPayment(context.Background(), "i-1", PaymentInput{Amount: d("100"), GatewayPayload: json.RawMessage(`{}`)})
		if err == nil || err.Error() != "insert failed" {
			t.Fatalf("expected insert error, got %v", err)
		}
		if !strings.Contains(logs.String(), "ERROR charge approved but payment not stored") || !strings.Contains(logs.String(), "provider_payment_id=mp-9") {
			t.Fatalf("expected provider payment id in logs, got %s", logs.String())
		}
	})
}

func TestPaymentUseCase_DeletePayment(t *testing.T) {
	t.Run("failed status write restores the payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		p := entities.Payment{ID: "p-1", InvoiceID: "i-1", Amount: d("1180")}
		deps.repo.EXPECT().GetByID(gomock.Any(), "p-1").Return(p, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), "i-1", "p-1").Return(nil)
		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(entities.Invoice{ID: "i-1", Total: nd("1180"), Status: entities.InvoiceStatusPaid}, nil)
		deps.repo.EXPECT().ListByInvoiceID(gomock.Any(), "i-1").Return(nil, nil)
		deps.invoices.EXPECT().UpdateStatus(gomock.Any(), "i-1", entities.InvoiceStatusPending).Return(entities.Invoice{}, errors.New("write failed"))
		deps.repo.EXPECT().Create(gomock.Any(), p).Return(p, nil)

		if err := uc.DeletePayment(context.Background(), "p-1"); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("busy invoice keeps the payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		locker := mock_interfaces.NewMockIInvoiceLocker(ctrl)
		uc, deps := newLockedPaymentUseCaseForTest(ctrl, locker)

		deps.repo.EXPECT().GetByID(gomock.Any(), "p-1").Return(entities.Payment{ID: "p-1", InvoiceID: "i-1"}, nil)
		locker.EXPECT().Lock(gomock.Any(), "i-1").Return(nil, errors.New("held elsewhere"))
		deps.repo.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		if err := uc.DeletePayment(context.Background(), "p-1"); !errors.Is(err, ErrLockNotAcquired) {
			t.Fatalf("expected ErrLockNotAcquired, got %v", err)
		}
	})

	t.Run("paid invoice falls back to pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "p-1").Return(entities.Payment{ID: "p-1", InvoiceID: "i-1", Amount: d("1180")}, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), "i-1", "p-1").Return(nil)
		deps.invoices.EXPECT().GetByID(gomock.Any(), "i-1").Return(entities.Invoice{ID: "i-1", Total: nd("1180"), Status: entities.InvoiceStatusPaid}, nil)
		deps.repo.EXPECT().ListByInvoiceID(gomock.Any(), "i-1").Return(nil, nil)
		deps.invoices.EXPECT().UpdateStatus(gomock.Any(), "i-1", entities.InvoiceStatusPending).Return(entities.Invoice{ID: "i-1", Status: entities.InvoiceStatusPending}, nil)

		if err := uc.DeletePayment(context.Background(), "p-1"); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	})

	t.Run("orphaned payment deletes without reconcile error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "p-1").Return(entities.Payment{ID: "p-1", InvoiceID: "gone"}, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), "gone", "p-1").Return(nil)
		deps.invoices.EXPECT().GetByID(gomock.Any(), "gone").Return(entities.Invoice{}, nil)

		if err := uc.DeletePayment(context.Background(), "p-1"); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newPaymentUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "p-1").Return(entities.Payment{}, nil)

		if err := uc.DeletePayment(context.Background(), "p-1"); !errors.Is(err, ErrPaymentNotFound) {
			t.Fatalf("expected ErrPaymentNotFound, got %v", err)
		}
	})
}
