package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultEstimatesTableName = "estimates"

type estimateItem struct {
	ID        string `dynamodbav:"id"`
	ClientID  string `dynamodbav:"client_id"`
	Number    string `dynamodbav:"estimate_number"`
	Items     string `dynamodbav:"items,omitempty"`
	Subtotal  string `dynamodbav:"subtotal,omitempty"`
	GSTAmount string `dynamodbav:"gst_amount,omitempty"`
	Total     string `dynamodbav:"total,omitempty"`
	Status    string `dynamodbav:"status"`
	InvoiceID string `dynamodbav:"invoice_id,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
}

// EstimateDynamoRepository persists Estimate entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI client_id-index on client_id
//
// Updates are refused once the stored estimate is CONVERTED, so an edit that
// raced a conversion cannot rewrite a converted estimate.
type EstimateDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IEstimateRepository = (*EstimateDynamoRepository)(nil)

func NewEstimateDynamoRepository(ddb *dynamodb.Client, tableName string) *EstimateDynamoRepository {
	return &EstimateDynamoRepository{ddb: ddb, tableName: tableOrDefault(tableName, defaultEstimatesTableName)}
}

func (r *EstimateDynamoRepository) Create(ctx context.Context, e entities.Estimate) (entities.Estimate, error) {
	if err := putNew(ctx, r.ddb, r.tableName, toEstimateItem(e)); err != nil {
		return entities.Estimate{}, err
	}
	return e, nil
}

func (r *EstimateDynamoRepository) GetByID(ctx context.Context, id string) (entities.Estimate, error) {
	it, found, err := getByID[estimateItem](ctx, r.ddb, r.tableName, id)
	if err != nil || !found {
		return entities.Estimate{}, err
	}
	return fromEstimateItem(it), nil
}

func (r *EstimateDynamoRepository) List(ctx context.Context) ([]entities.Estimate, error) {
	items, err := scanAll[estimateItem](ctx, r.ddb, r.tableName)
	if err != nil {
		return nil, err
	}
	return mapItems(items, fromEstimateItem), nil
}

func (r *EstimateDynamoRepository) ListByClientID(ctx context.Context, clientID string) ([]entities.Estimate, error) {
	items, err := queryIndex[estimateItem](ctx, r.ddb, r.tableName, clientIDIndex, "client_id", clientID)
	if err != nil {
		return nil, err
	}
	return mapItems(items, fromEstimateItem), nil
}

func (r *EstimateDynamoRepository) Update(ctx context.Context, e entities.Estimate) (entities.Estimate, error) {
	found, err := replaceExisting(ctx, r.ddb, r.tableName, toEstimateItem(e),
		"#status <> :converted",
		map[string]types.AttributeValue{
			":converted": &types.AttributeValueMemberS{Value: string(entities.EstimateStatusConverted)},
		},
		map[string]string{"#status": "status"},
	)
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Estimate{}, fmt.Errorf("%w: estimate %s is converted", entities.ErrInvalidState, e.ID)
		}
		return entities.Estimate{}, err
	}
	if !found {
		return entities.Estimate{}, nil
	}
	return e, nil
}

func (r *EstimateDynamoRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.ddb, r.tableName, id)
}

func toEstimateItem(e entities.Estimate) estimateItem {
	return estimateItem{
		ID:        e.ID,
		ClientID:  e.ClientID,
		Number:    e.Number,
		Items:     string(e.Items),
		Subtotal:  nullDecimalToString(e.Subtotal),
		GSTAmount: nullDecimalToString(e.GSTAmount),
		Total:     nullDecimalToString(e.Total),
		Status:    string(e.Status),
		InvoiceID: e.InvoiceID,
		CreatedAt: formatTime(e.CreatedAt),
	}
}

func fromEstimateItem(it estimateItem) entities.Estimate {
	e := entities.Estimate{
		ID:        it.ID,
		ClientID:  it.ClientID,
		Number:    it.Number,
		Subtotal:  parseNullDecimal(it.Subtotal),
		GSTAmount: parseNullDecimal(it.GSTAmount),
		Total:     parseNullDecimal(it.Total),
		Status:    entities.EstimateStatus(it.Status),
		InvoiceID: it.InvoiceID,
		CreatedAt: parseTime(it.CreatedAt),
	}
	if it.Items != "" {
		e.Items = json.RawMessage(it.Items)
	}
	return e
}
