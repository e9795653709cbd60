package repository

import (
	"context"
	"errors"
	"fmt"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ConversionDynamoStore writes a conversion with TransactWriteItems: the
// estimate flips APPROVED -> CONVERTED and the invoice is inserted, or
// neither happens.
type ConversionDynamoStore struct {
	ddb            *dynamodb.Client
	estimatesTable string
	invoicesTable  string
}

var _ interfaces.IConversionStore = (*ConversionDynamoStore)(nil)

func NewConversionDynamoStore(ddb *dynamodb.Client, estimatesTable, invoicesTable string) *ConversionDynamoStore {
	return &ConversionDynamoStore{
		ddb:            ddb,
		estimatesTable: tableOrDefault(estimatesTable, defaultEstimatesTableName),
		invoicesTable:  tableOrDefault(invoicesTable, defaultInvoicesTableName),
	}
}

func (s *ConversionDynamoStore) SaveConversion(ctx context.Context, estimate entities.Estimate, invoice entities.Invoice) error {
	av, err := attributevalue.MarshalMap(toInvoiceItem(invoice))
	if err != nil {
		return err
	}

	_, err = s.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(s.estimatesTable),
					Key:                 idKey(estimate.ID),
					UpdateExpression:    aws.String("SET #status = :converted, #invoice_id = :invoice_id"),
					ConditionExpression: aws.String("attribute_exists(#id) AND #status = :approved"),
					ExpressionAttributeNames: map[string]string{
						"#id":         "id",
						"#status":     "status",
						"#invoice_id": "invoice_id",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":converted":  &types.AttributeValueMemberS{Value: string(estimate.Status)},
						":approved":   &types.AttributeValueMemberS{Value: string(entities.EstimateStatusApproved)},
						":invoice_id": &types.AttributeValueMemberS{Value: invoice.ID},
					},
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.invoicesTable),
					Item:                av,
					ConditionExpression: aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{
						"#id": "id",
					},
				},
			},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) > 0 && aws.ToString(tce.CancellationReasons[0].Code) == "ConditionalCheckFailed" {
			return fmt.Errorf("%w: estimate %s is no longer approved", entities.ErrInvalidState, estimate.ID)
		}
		return err
	}
	return nil
}
