package sqlstore_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"mis_invoicing/internal/adapter/persistence/sqlstore"
	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlstore.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type seqNumbers struct{ n int }

func (s *seqNumbers) Next(prefix string) string {
	s.n++
	return prefix + "-" + strconv.Itoa(s.n)
}

type app struct {
	clients   *usecase.ClientUseCase
	estimates *usecase.EstimateUseCase
	invoices  *usecase.InvoiceUseCase
	payments  *usecase.PaymentUseCase
}

func newApp(db *gorm.DB, policy usecase.DeletePolicy) app {
	clientRepo := sqlstore.NewClientRepository(db)
	estimateRepo := sqlstore.NewEstimateRepository(db)
	invoiceRepo := sqlstore.NewInvoiceRepository(db)
	paymentRepo := sqlstore.NewPaymentRepository(db)
	numbers := &seqNumbers{}
	rec := usecase.NewReconciler(invoiceRepo, paymentRepo, nil, nil)
	return app{
		clients:   usecase.NewClientUseCase(clientRepo, estimateRepo, invoiceRepo, paymentRepo, policy),
		estimates: usecase.NewEstimateUseCase(estimateRepo, clientRepo, invoiceRepo, paymentRepo, sqlstore.NewConversionStore(db), numbers, policy),
		invoices:  usecase.NewInvoiceUseCase(invoiceRepo, clientRepo, paymentRepo, rec, numbers, policy),
		payments:  usecase.NewPaymentUseCase(paymentRepo, invoiceRepo, rec, nil),
	}
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func mustEqual(t *testing.T, field string, got decimal.NullDecimal, want string) {
	t.Helper()
	if !got.Valid || !got.Decimal.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: expected %s, got %v (valid=%t)", field, want, got.Decimal, got.Valid)
	}
}

func TestRepositories_NotFoundIsZeroValue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c, err := sqlstore.NewClientRepository(db).GetByID(ctx, "missing")
	if err != nil || c.ID != "" {
		t.Fatalf("expected zero client, got %+v %v", c, err)
	}
	inv, err := sqlstore.NewInvoiceRepository(db).UpdateStatus(ctx, "missing", entities.InvoiceStatusPaid)
	if err != nil || inv.ID != "" {
		t.Fatalf("expected zero invoice, got %+v %v", inv, err)
	}
	e, err := sqlstore.NewEstimateRepository(db).Update(ctx, entities.Estimate{ID: "missing"})
	if err != nil || e.ID != "" {
		t.Fatalf("expected zero estimate, got %+v %v", e, err)
	}
}

func TestRepositories_NullAmountsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := sqlstore.NewInvoiceRepository(db)

	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	in := entities.Invoice{ID: "i-1", ClientID: "c-1", Number: "INV-1", Subtotal: nd("100.05"), CGST: nd("9.01"), SGST: nd("9.01"), IGST: nd("0"), Total: nd("118.06"), Status: entities.InvoiceStatusPending, DueDate: &due, CreatedAt: time.Now().UTC()}
	if _, err := repo.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.GetByID(ctx, "i-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	mustEqual(t, "total", got.Total, "118.06")
	mustEqual(t, "cgst", got.CGST, "9.01")
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date lost: %v", got.DueDate)
	}

	in.Subtotal, in.CGST, in.SGST, in.IGST, in.Total = decimal.NullDecimal{}, decimal.NullDecimal{}, decimal.NullDecimal{}, decimal.NullDecimal{}, decimal.NullDecimal{}
	in.Status = entities.InvoiceStatusPaid
	got, err = repo.Update(ctx, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Total.Valid || got.Subtotal.Valid {
		t.Fatalf("expected null amounts, got %+v", got)
	}
	if got.Status != entities.InvoiceStatusPending {
		t.Fatalf("update must not touch status, got %s", got.Status)
	}
}

func TestConversionStore_SecondConversionRejected(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	estimates := sqlstore.NewEstimateRepository(db)
	store := sqlstore.NewConversionStore(db)

	est := entities.Estimate{ID: "e-1", ClientID: "c-1", Number: "EST-1", Status: entities.EstimateStatusApproved, CreatedAt: time.Now().UTC()}
	if _, err := estimates.Create(ctx, est); err != nil {
		t.Fatalf("create: %v", err)
	}

	converted := est
	converted.Status = entities.EstimateStatusConverted
	converted.InvoiceID = "i-1"
	first := entities.Invoice{ID: "i-1", ClientID: "c-1", EstimateID: "e-1", Number: "INV-1", Status: entities.InvoiceStatusPending}
	second := entities.Invoice{ID: "i-2", ClientID: "c-1", EstimateID: "e-1", Number: "INV-2", Status: entities.InvoiceStatusPending}

	if err := store.SaveConversion(ctx, converted, first); err != nil {
		t.Fatalf("first conversion: %v", err)
	}
	if err := store.SaveConversion(ctx, converted, second); !errors.Is(err, entities.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	var count int64
	db.Table("invoices").Where("estimate_id = ?", "e-1").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one invoice, got %d", count)
	}
	if _, err := estimates.Update(ctx, converted); !errors.Is(err, entities.ErrInvalidState) {
		t.Fatalf("expected converted estimate to be immutable, got %v", err)
	}
	stored, err := estimates.GetByID(ctx, "e-1")
	if err != nil || stored.InvoiceID != "i-1" {
		t.Fatalf("expected estimate linked to i-1, got %+v %v", stored, err)
	}
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("held elsewhere")
}

type failingStatusWrites struct {
	*sqlstore.InvoiceRepository
}

func (failingStatusWrites) UpdateStatus(context.Context, string, entities.InvoiceStatus) (entities.Invoice, error) {
	return entities.Invoice{}, errors.New("status write failed")
}

func seedInvoice(t *testing.T, db *gorm.DB) entities.Invoice {
	t.Helper()
	inv := entities.Invoice{ID: "i-1", ClientID: "c-1", Number: "INV-1", Subtotal: nd("1000"), Total: nd("1180"), Status: entities.InvoiceStatusPending, CreatedAt: time.Now().UTC()}
	if _, err := sqlstore.NewInvoiceRepository(db).Create(context.Background(), inv); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return inv
}

func TestPayments_NoPartialStateWhenReconcileCannotRun(t *testing.T) {
	t.Run("busy invoice", func(t *testing.T) {
		db := setupTestDB(t)
		ctx := context.Background()
		inv := seedInvoice(t, db)
		invoiceRepo := sqlstore.NewInvoiceRepository(db)
		paymentRepo := sqlstore.NewPaymentRepository(db)
		rec := usecase.NewReconciler(invoiceRepo, paymentRepo, busyLocker{}, nil)
		payments := usecase.NewPaymentUseCase(paymentRepo, invoiceRepo, rec, nil)

		for i := 0; i < 2; i++ {
			if _, err := payments.RecordPayment(ctx, inv.ID, usecase.PaymentInput{Amount: decimal.RequireFromString("1180.00")}); !errors.Is(err, usecase.ErrLockNotAcquired) {
				t.Fatalf("attempt %d: expected ErrLockNotAcquired, got %v", i+1, err)
			}
		}

		stored, err := paymentRepo.ListByInvoiceID(ctx, inv.ID)
		if err != nil || len(stored) != 0 {
			t.Fatalf("expected no stored payments, got %d %v", len(stored), err)
		}
	})

	t.Run("status write fails", func(t *testing.T) {
		db := setupTestDB(t)
		ctx := context.Background()
		inv := seedInvoice(t, db)
		invoiceRepo := sqlstore.NewInvoiceRepository(db)
		paymentRepo := sqlstore.NewPaymentRepository(db)
		rec := usecase.NewReconciler(failingStatusWrites{invoiceRepo}, paymentRepo, nil, nil)
		payments := usecase.NewPaymentUseCase(paymentRepo, invoiceRepo, rec, nil)

		if _, err := payments.RecordPayment(ctx, inv.ID, usecase.PaymentInput{Amount: decimal.RequireFromString("1180.00")}); err == nil {
			t.Fatalf("expected error")
		}

		stored, err := paymentRepo.ListByInvoiceID(ctx, inv.ID)
		if err != nil || len(stored) != 0 {
			t.Fatalf("expected payment rolled back, got %d %v", len(stored), err)
		}
		got, _ := invoiceRepo.GetByID(ctx, inv.ID)
		if got.Status != entities.InvoiceStatusPending {
			t.Fatalf("expected PENDING, got %s", got.Status)
		}
	})
}

func TestInvoicing_EndToEnd(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := newApp(db, usecase.DeletePolicyRestrict)

	client, err := a.clients.CreateClient(ctx, entities.Client{Name: "Acme Traders", GSTNumber: "27ABCDE1234F1Z5"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	t.Run("intra and inter state invoices", func(t *testing.T) {
		intra, err := a.invoices.CreateInvoice(ctx, client.ID, usecase.InvoiceInput{Subtotal: nd("1000.00")}, false)
		if err != nil {
			t.Fatalf("create intra: %v", err)
		}
		mustEqual(t, "cgst", intra.CGST, "90.00")
		mustEqual(t, "sgst", intra.SGST, "90.00")
		mustEqual(t, "igst", intra.IGST, "0")
		mustEqual(t, "total", intra.Total, "1180.00")

		inter, err := a.invoices.CreateInvoice(ctx, client.ID, usecase.InvoiceInput{Subtotal: nd("1000.00")}, true)
		if err != nil {
			t.Fatalf("create inter: %v", err)
		}
		mustEqual(t, "igst", inter.IGST, "180.00")
		mustEqual(t, "cgst", inter.CGST, "0")
		mustEqual(t, "total", inter.Total, "1180.00")
	})

	t.Run("estimate approve convert", func(t *testing.T) {
		est, err := a.estimates.CreateEstimate(ctx, client.ID, usecase.EstimateInput{Subtotal: nd("500.00")})
		if err != nil {
			t.Fatalf("create estimate: %v", err)
		}
		mustEqual(t, "gst", est.GSTAmount, "90.00")
		mustEqual(t, "total", est.Total, "590.00")

		if _, err := a.estimates.ConvertToInvoice(ctx, est.ID); !errors.Is(err, entities.ErrInvalidState) {
			t.Fatalf("draft conversion: expected ErrInvalidState, got %v", err)
		}

		if _, err := a.estimates.UpdateEstimate(ctx, est.ID, usecase.EstimateInput{Subtotal: nd("500.00"), Status: entities.EstimateStatusApproved}); err != nil {
			t.Fatalf("approve: %v", err)
		}
		inv, err := a.estimates.ConvertToInvoice(ctx, est.ID)
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		mustEqual(t, "cgst", inv.CGST, "45.00")
		mustEqual(t, "sgst", inv.SGST, "45.00")
		mustEqual(t, "igst", inv.IGST, "0")
		mustEqual(t, "total", inv.Total, "590.00")

		stored, err := a.estimates.GetByID(ctx, est.ID)
		if err != nil || stored.Status != entities.EstimateStatusConverted {
			t.Fatalf("expected CONVERTED, got %v %v", stored.Status, err)
		}
		if _, err := a.estimates.ConvertToInvoice(ctx, est.ID); !errors.Is(err, entities.ErrInvalidState) {
			t.Fatalf("second conversion: expected ErrInvalidState, got %v", err)
		}
		if err := a.estimates.DeleteEstimate(ctx, est.ID); !errors.Is(err, entities.ErrHasDependents) {
			t.Fatalf("restrict delete: expected ErrHasDependents, got %v", err)
		}
	})

	t.Run("payments reconcile", func(t *testing.T) {
		inv, err := a.invoices.CreateInvoice(ctx, client.ID, usecase.InvoiceInput{Subtotal: nd("1000.00")}, false)
		if err != nil {
			t.Fatalf("create invoice: %v", err)
		}

		if _, err := a.payments.RecordPayment(ctx, inv.ID, usecase.PaymentInput{Amount: decimal.RequireFromString("1000.00"), Mode: "BANK_TRANSFER"}); err != nil {
			t.Fatalf("first payment: %v", err)
		}
		assertStatus(t, a, inv.ID, entities.InvoiceStatusPending)

		second, err := a.payments.RecordPayment(ctx, inv.ID, usecase.PaymentInput{Amount: decimal.RequireFromString("180.00"), Mode: "UPI"})
		if err != nil {
			t.Fatalf("second payment: %v", err)
		}
		assertStatus(t, a, inv.ID, entities.InvoiceStatusPaid)

		again, err := a.invoices.Reconcile(ctx, inv.ID)
		if err != nil || again.Status != entities.InvoiceStatusPaid {
			t.Fatalf("reconcile must be idempotent, got %v %v", again.Status, err)
		}

		if err := a.payments.DeletePayment(ctx, second.ID); err != nil {
			t.Fatalf("delete payment: %v", err)
		}
		assertStatus(t, a, inv.ID, entities.InvoiceStatusPending)

		if err := a.invoices.DeleteInvoice(ctx, inv.ID); !errors.Is(err, entities.ErrHasDependents) {
			t.Fatalf("restrict delete: expected ErrHasDependents, got %v", err)
		}
	})

	t.Run("client with documents cannot be deleted", func(t *testing.T) {
		if err := a.clients.DeleteClient(ctx, client.ID); !errors.Is(err, entities.ErrHasDependents) {
			t.Fatalf("expected ErrHasDependents, got %v", err)
		}
	})
}

func TestInvoicing_CascadeDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := newApp(db, usecase.DeletePolicyCascade)

	client, err := a.clients.CreateClient(ctx, entities.Client{Name: "Cascade Co"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	inv, err := a.invoices.CreateInvoice(ctx, client.ID, usecase.InvoiceInput{Subtotal: nd("10")}, false)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	p, err := a.payments.RecordPayment(ctx, inv.ID, usecase.PaymentInput{Amount: decimal.RequireFromString("5")})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}

	if err := a.clients.DeleteClient(ctx, client.ID); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
	if _, err := a.payments.GetByID(ctx, p.ID); !errors.Is(err, entities.ErrNotFound) {
		t.Fatalf("expected payment gone, got %v", err)
	}
	if _, err := a.invoices.GetByID(ctx, inv.ID); !errors.Is(err, entities.ErrNotFound) {
		t.Fatalf("expected invoice gone, got %v", err)
	}
}

func assertStatus(t *testing.T, a app, invoiceID string, want entities.InvoiceStatus) {
	t.Helper()
	inv, err := a.invoices.GetByID(context.Background(), invoiceID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if inv.Status != want {
		t.Fatalf("expected %s, got %s", want, inv.Status)
	}
}
