package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"

	"gorm.io/gorm"
)

// Lookups follow the repository contract: a missing row is a zero-value
// entity and a nil error.

type ClientRepository struct{ db *gorm.DB }

var _ interfaces.IClientRepository = (*ClientRepository)(nil)

func NewClientRepository(db *gorm.DB) *ClientRepository { return &ClientRepository{db: db} }

func (r *ClientRepository) Create(ctx context.Context, c entities.Client) (entities.Client, error) {
	m := toClientModel(c)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return entities.Client{}, err
	}
	return m.toEntity(), nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (entities.Client, error) {
	var m clientModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Client{}, nil
		}
		return entities.Client{}, err
	}
	return m.toEntity(), nil
}

func (r *ClientRepository) List(ctx context.Context) ([]entities.Client, error) {
	var rows []clientModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Client, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

func (r *ClientRepository) Update(ctx context.Context, c entities.Client) (entities.Client, error) {
	m := toClientModel(c)
	res := r.db.WithContext(ctx).Model(&clientModel{}).Where("id = ?", c.ID).
		Select("name", "email", "phone", "address", "gst_number", "category").Updates(&m)
	if res.Error != nil {
		return entities.Client{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.Client{}, nil
	}
	return r.GetByID(ctx, c.ID)
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&clientModel{}, "id = ?", id).Error
}

type EstimateRepository struct{ db *gorm.DB }

var _ interfaces.IEstimateRepository = (*EstimateRepository)(nil)

func NewEstimateRepository(db *gorm.DB) *EstimateRepository { return &EstimateRepository{db: db} }

func (r *EstimateRepository) Create(ctx context.Context, e entities.Estimate) (entities.Estimate, error) {
	m := toEstimateModel(e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return entities.Estimate{}, err
	}
	return m.toEntity(), nil
}

func (r *EstimateRepository) GetByID(ctx context.Context, id string) (entities.Estimate, error) {
	return getEstimate(r.db.WithContext(ctx), id)
}

func getEstimate(db *gorm.DB, id string) (entities.Estimate, error) {
	var m estimateModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Estimate{}, nil
		}
		return entities.Estimate{}, err
	}
	return m.toEntity(), nil
}

func (r *EstimateRepository) List(ctx context.Context) ([]entities.Estimate, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *EstimateRepository) ListByClientID(ctx context.Context, clientID string) ([]entities.Estimate, error) {
	return r.find(r.db.WithContext(ctx).Where("client_id = ?", clientID))
}

func (r *EstimateRepository) find(q *gorm.DB) ([]entities.Estimate, error) {
	var rows []estimateModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Estimate, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// Update rewrites an estimate unless it was converted in the meantime.
func (r *EstimateRepository) Update(ctx context.Context, e entities.Estimate) (entities.Estimate, error) {
	m := toEstimateModel(e)
	db := r.db.WithContext(ctx)
	res := db.Model(&estimateModel{}).
		Where("id = ? AND status <> ?", e.ID, string(entities.EstimateStatusConverted)).
		Select("items", "subtotal", "gst_amount", "total", "status", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return entities.Estimate{}, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := getEstimate(db, e.ID)
		if err != nil || current.ID == "" {
			return entities.Estimate{}, err
		}
		return entities.Estimate{}, fmt.Errorf("%w: estimate %s is converted", entities.ErrInvalidState, e.ID)
	}
	return getEstimate(db, e.ID)
}

func (r *EstimateRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&estimateModel{}, "id = ?", id).Error
}

type InvoiceRepository struct{ db *gorm.DB }

var _ interfaces.IInvoiceRepository = (*InvoiceRepository)(nil)

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository { return &InvoiceRepository{db: db} }

func (r *InvoiceRepository) Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	m := toInvoiceModel(inv)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return entities.Invoice{}, err
	}
	return m.toEntity(), nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *InvoiceRepository) first(q *gorm.DB) (entities.Invoice, error) {
	var m invoiceModel
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Invoice{}, nil
		}
		return entities.Invoice{}, err
	}
	return m.toEntity(), nil
}

func (r *InvoiceRepository) List(ctx context.Context) ([]entities.Invoice, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *InvoiceRepository) ListByClientID(ctx context.Context, clientID string) ([]entities.Invoice, error) {
	return r.find(r.db.WithContext(ctx).Where("client_id = ?", clientID))
}

func (r *InvoiceRepository) ListByStatus(ctx context.Context, status entities.InvoiceStatus) ([]entities.Invoice, error) {
	return r.find(r.db.WithContext(ctx).Where("status = ?", string(status)))
}

func (r *InvoiceRepository) find(q *gorm.DB) ([]entities.Invoice, error) {
	var rows []invoiceModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Invoice, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// Update rewrites the editable fields. Status is left to UpdateStatus.
func (r *InvoiceRepository) Update(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	m := toInvoiceModel(inv)
	res := r.db.WithContext(ctx).Model(&invoiceModel{}).Where("id = ?", inv.ID).
		Select("items", "subtotal", "cgst", "sgst", "igst", "total", "due_date", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return entities.Invoice{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.Invoice{}, nil
	}
	return r.GetByID(ctx, inv.ID)
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id string, status entities.InvoiceStatus) (entities.Invoice, error) {
	res := r.db.WithContext(ctx).Model(&invoiceModel{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return entities.Invoice{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.Invoice{}, nil
	}
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&invoiceModel{}, "id = ?", id).Error
}

type PaymentRepository struct{ db *gorm.DB }

var _ interfaces.IPaymentRepository = (*PaymentRepository)(nil)

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	m := toPaymentModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return entities.Payment{}, err
	}
	return m.toEntity(), nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	var m paymentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Payment{}, nil
		}
		return entities.Payment{}, err
	}
	return m.toEntity(), nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]entities.Payment, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *PaymentRepository) ListByInvoiceID(ctx context.Context, invoiceID string) ([]entities.Payment, error) {
	return r.find(r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID))
}

func (r *PaymentRepository) find(q *gorm.DB) ([]entities.Payment, error) {
	var rows []paymentModel
	if err := q.Order("payment_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, invoiceID, id string) error {
	return r.db.WithContext(ctx).Delete(&paymentModel{}, "invoice_id = ? AND id = ?", invoiceID, id).Error
}

// ConversionStore writes a conversion in one database transaction. The
// estimate row is flipped with a conditional UPDATE, so of two concurrent
// conversions only one matches the APPROVED row.
type ConversionStore struct{ db *gorm.DB }

var _ interfaces.IConversionStore = (*ConversionStore)(nil)

func NewConversionStore(db *gorm.DB) *ConversionStore { return &ConversionStore{db: db} }

func (s *ConversionStore) SaveConversion(ctx context.Context, estimate entities.Estimate, invoice entities.Invoice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&estimateModel{}).
			Where("id = ? AND status = ?", estimate.ID, string(entities.EstimateStatusApproved)).
			Updates(map[string]any{"status": string(estimate.Status), "invoice_id": estimate.InvoiceID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: estimate %s is no longer approved", entities.ErrInvalidState, estimate.ID)
		}
		m := toInvoiceModel(invoice)
		return tx.Create(&m).Error
	})
}
