package repository

import (
	"context"
	"encoding/json"
	"strings"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultInvoicesTableName = "invoices"

type invoiceItem struct {
	ID         string `dynamodbav:"id"`
	ClientID   string `dynamodbav:"client_id"`
	EstimateID string `dynamodbav:"estimate_id,omitempty"`
	Number     string `dynamodbav:"invoice_number"`
	Items      string `dynamodbav:"items,omitempty"`
	Subtotal   string `dynamodbav:"subtotal,omitempty"`
	CGST       string `dynamodbav:"cgst,omitempty"`
	SGST       string `dynamodbav:"sgst,omitempty"`
	IGST       string `dynamodbav:"igst,omitempty"`
	Total      string `dynamodbav:"total,omitempty"`
	Status     string `dynamodbav:"status"`
	DueDate    string `dynamodbav:"due_date,omitempty"`
	CreatedAt  string `dynamodbav:"created_at"`
	UpdatedAt  string `dynamodbav:"updated_at,omitempty"`
}

// InvoiceDynamoRepository persists Invoice entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI client_id-index on client_id
//   - GSI status-index on status
type InvoiceDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IInvoiceRepository = (*InvoiceDynamoRepository)(nil)

func NewInvoiceDynamoRepository(ddb *dynamodb.Client, tableName string) *InvoiceDynamoRepository {
	return &InvoiceDynamoRepository{ddb: ddb, tableName: tableOrDefault(tableName, defaultInvoicesTableName)}
}

func (r *InvoiceDynamoRepository) Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	if err := putNew(ctx, r.ddb, r.tableName, toInvoiceItem(inv)); err != nil {
		return entities.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceDynamoRepository) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	it, found, err := getByID[invoiceItem](ctx, r.ddb, r.tableName, id)
	if err != nil || !found {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func (r *InvoiceDynamoRepository) List(ctx context.Context) ([]entities.Invoice, error) {
	items, err := scanAll[invoiceItem](ctx, r.ddb, r.tableName)
	if err != nil {
		return nil, err
	}
	return mapItems(items, fromInvoiceItem), nil
}

func (r *InvoiceDynamoRepository) ListByClientID(ctx context.Context, clientID string) ([]entities.Invoice, error) {
	items, err := queryIndex[invoiceItem](ctx, r.ddb, r.tableName, clientIDIndex, "client_id", clientID)
	if err != nil {
		return nil, err
	}
	return mapItems(items, fromInvoiceItem), nil
}

func (r *InvoiceDynamoRepository) ListByStatus(ctx context.Context, status entities.InvoiceStatus) ([]entities.Invoice, error) {
	items, err := queryIndex[invoiceItem](ctx, r.ddb, r.tableName, statusIndex, "status", string(status))
	if err != nil {
		return nil, err
	}
	return mapItems(items, fromInvoiceItem), nil
}

// Update rewrites the editable fields only. Status belongs to reconciliation
// and is left as stored.
func (r *InvoiceDynamoRepository) Update(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	it := toInvoiceItem(inv)
	it2, found, err := updateByID[invoiceItem](ctx, r.ddb, r.tableName, inv.ID, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		set := []string{"#updated_at = :updated_at"}
		var remove []string
		vals := map[string]types.AttributeValue{
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{"#updated_at": "updated_at"}
		for _, f := range []struct{ attr, value string }{
			{"items", it.Items},
			{"subtotal", it.Subtotal},
			{"cgst", it.CGST},
			{"sgst", it.SGST},
			{"igst", it.IGST},
			{"total", it.Total},
			{"due_date", it.DueDate},
		} {
			names["#"+f.attr] = f.attr
			if f.value == "" {
				remove = append(remove, "#"+f.attr)
				continue
			}
			set = append(set, "#"+f.attr+" = :"+f.attr)
			vals[":"+f.attr] = &types.AttributeValueMemberS{Value: f.value}
		}
		return buildSetRemove(set, remove), vals, names
	})
	if err != nil || !found {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it2), nil
}

func (r *InvoiceDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.InvoiceStatus) (entities.Invoice, error) {
	it, found, err := updateByID[invoiceItem](ctx, r.ddb, r.tableName, id, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #status = :status, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
		}
		return expr, vals, names
	})
	if err != nil || !found {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func (r *InvoiceDynamoRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.ddb, r.tableName, id)
}

func buildSetRemove(set, remove []string) string {
	expr := "SET " + strings.Join(set, ", ")
	if len(remove) > 0 {
		expr += " REMOVE " + strings.Join(remove, ", ")
	}
	return expr
}

func toInvoiceItem(inv entities.Invoice) invoiceItem {
	it := invoiceItem{
		ID:         inv.ID,
		ClientID:   inv.ClientID,
		EstimateID: inv.EstimateID,
		Number:     inv.Number,
		Items:      string(inv.Items),
		Subtotal:   nullDecimalToString(inv.Subtotal),
		CGST:       nullDecimalToString(inv.CGST),
		SGST:       nullDecimalToString(inv.SGST),
		IGST:       nullDecimalToString(inv.IGST),
		Total:      nullDecimalToString(inv.Total),
		Status:     string(inv.Status),
		CreatedAt:  formatTime(inv.CreatedAt),
	}
	if inv.DueDate != nil {
		it.DueDate = formatTime(*inv.DueDate)
	}
	return it
}

func fromInvoiceItem(it invoiceItem) entities.Invoice {
	inv := entities.Invoice{
		ID:         it.ID,
		ClientID:   it.ClientID,
		EstimateID: it.EstimateID,
		Number:     it.Number,
		Subtotal:   parseNullDecimal(it.Subtotal),
		CGST:       parseNullDecimal(it.CGST),
		SGST:       parseNullDecimal(it.SGST),
		IGST:       parseNullDecimal(it.IGST),
		Total:      parseNullDecimal(it.Total),
		Status:     entities.InvoiceStatus(it.Status),
		CreatedAt:  parseTime(it.CreatedAt),
	}
	if it.Items != "" {
		inv.Items = json.RawMessage(it.Items)
	}
	if it.DueDate != "" {
		due := parseTime(it.DueDate)
		inv.DueDate = &due
	}
	return inv
}
