package repository

import (
	"context"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const defaultPaymentsTableName = "payments"

type paymentItem struct {
	ID             string `dynamodbav:"id"`
	InvoiceID      string `dynamodbav:"invoice_id"`
	Amount         string `dynamodbav:"amount"`
	Mode           string `dynamodbav:"payment_mode,omitempty"`
	TransactionRef string `dynamodbav:"transaction_ref,omitempty"`
	PaymentDate    string `dynamodbav:"payment_date"`
}

// PaymentDynamoRepository persists Payment entities in DynamoDB.
//
// Table requirements:
//   - partition key: invoice_id (string), sort key: id (string)
//   - GSI id-index on id
//
// ListByInvoiceID reads the base table with ConsistentRead, so a payment
// written or deleted just before is always reflected.
type PaymentDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client, tableName string) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{ddb: ddb, tableName: tableOrDefault(tableName, defaultPaymentsTableName)}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if err := putNew(ctx, r.ddb, r.tableName, toPaymentItem(p)); err != nil {
		return entities.Payment{}, err
	}
	return p, nil
}

// GetByID goes through id-index; a payment created a moment ago may not be
// visible yet.
func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	items, err := queryIndex[paymentItem](ctx, r.ddb, r.tableName, paymentIDIndex, "id", id)
	if err != nil || len(items) == 0 {
		return entities.Payment{}, err
	}
	return fromPaymentItem(items[0]), nil
}

func (r *PaymentDynamoRepository) List(ctx context.Context) ([]entities.Payment, error) {
	items, err := scanAll[paymentItem](ctx, r.ddb, r.tableName)
	if err != nil {
		return nil, err
	}
	return mapItems(items, fromPaymentItem), nil
}

func (r *PaymentDynamoRepository) ListByInvoiceID(ctx context.Context, invoiceID string) ([]entities.Payment, error) {
	items, err := queryPartition[paymentItem](ctx, r.ddb, r.tableName, "invoice_id", invoiceID)
	if err != nil {
		return nil, err
	}
	return mapItems(items, fromPaymentItem), nil
}

func (r *PaymentDynamoRepository) Delete(ctx context.Context, invoiceID, id string) error {
	return deleteByKey(ctx, r.ddb, r.tableName, paymentKey(invoiceID, id))
}

func paymentKey(invoiceID, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"invoice_id": &types.AttributeValueMemberS{Value: invoiceID},
		"id":         &types.AttributeValueMemberS{Value: id},
	}
}

func toPaymentItem(p entities.Payment) paymentItem {
	return paymentItem{
		ID:             p.ID,
		InvoiceID:      p.InvoiceID,
		Amount:         p.Amount.String(),
		Mode:           p.Mode,
		TransactionRef: p.TransactionRef,
		PaymentDate:    formatTime(p.PaymentDate),
	}
}

func fromPaymentItem(it paymentItem) entities.Payment {
	amount, _ := decimal.NewFromString(it.Amount)
	return entities.Payment{
		ID:             it.ID,
		InvoiceID:      it.InvoiceID,
		Amount:         amount,
		Mode:           it.Mode,
		TransactionRef: it.TransactionRef,
		PaymentDate:    parseTime(it.PaymentDate),
	}
}
