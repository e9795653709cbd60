package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Secondary indexes shared by the DynamoDB tables.
const (
	clientIDIndex  = "client_id-index"
	paymentIDIndex = "id-index"
	statusIndex    = "status-index"
)

func tableOrDefault(name, def string) string {
	if name != "" {
		return name
	}
	return def
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Amounts are stored as decimal strings; an absent amount is an absent
// attribute.
func nullDecimalToString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func parseNullDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(v)
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func getByID[I any](ctx context.Context, ddb *dynamodb.Client, table, id string) (I, bool, error) {
	var it I
	out, err := ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return it, false, err
	}
	if len(out.Item) == 0 {
		return it, false, nil
	}
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return it, false, err
	}
	return it, true, nil
}

func putNew(ctx context.Context, ddb *dynamodb.Client, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	_, err = ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	return err
}

// replaceExisting overwrites a whole item, failing when it does not exist.
// found is false when the item was missing.
func replaceExisting(ctx context.Context, ddb *dynamodb.Client, table string, item any, extraCond string, values map[string]types.AttributeValue, names map[string]string) (found bool, err error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return false, err
	}
	cond := "attribute_exists(#id)"
	if extraCond != "" {
		cond += " AND " + extraCond
	}
	_, err = ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                           aws.String(table),
		Item:                                av,
		ConditionExpression:                 aws.String(cond),
		ExpressionAttributeNames:            mergeNames(names, map[string]string{"#id": "id"}),
		ExpressionAttributeValues:           values,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) && len(cfe.Item) == 0 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func updateByID[I any](
	ctx context.Context,
	ddb *dynamodb.Client,
	table, id string,
	build func(now string) (updateExpr string, values map[string]types.AttributeValue, names map[string]string),
) (I, bool, error) {
	var it I
	now := time.Now().UTC().Format(time.RFC3339Nano)
	updateExpr, values, names := build(now)

	out, err := ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       idKey(id),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return it, false, nil
		}
		return it, false, err
	}
	if len(out.Attributes) == 0 {
		return it, false, nil
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return it, false, err
	}
	return it, true, nil
}

func deleteByID(ctx context.Context, ddb *dynamodb.Client, table, id string) error {
	return deleteByKey(ctx, ddb, table, idKey(id))
}

func deleteByKey(ctx context.Context, ddb *dynamodb.Client, table string, key map[string]types.AttributeValue) error {
	_, err := ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	return err
}

func scanAll[I any](ctx context.Context, ddb *dynamodb.Client, table string) ([]I, error) {
	p := dynamodb.NewScanPaginator(ddb, &dynamodb.ScanInput{
		TableName:      aws.String(table),
		ConsistentRead: aws.Bool(true),
	})
	var items []I
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []I
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

// queryIndex lists every item whose attr equals value through a GSI. GSI
// reads are eventually consistent.
func queryIndex[I any](ctx context.Context, ddb *dynamodb.Client, table, index, attr, value string) ([]I, error) {
	in := keyQuery(table, attr, value)
	in.IndexName = aws.String(index)
	return queryAll[I](ctx, ddb, in)
}

// queryPartition lists one partition of the base table with a strongly
// consistent read.
func queryPartition[I any](ctx context.Context, ddb *dynamodb.Client, table, attr, value string) ([]I, error) {
	in := keyQuery(table, attr, value)
	in.ConsistentRead = aws.Bool(true)
	return queryAll[I](ctx, ddb, in)
}

func keyQuery(table, attr, value string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	}
}

func queryAll[I any](ctx context.Context, ddb *dynamodb.Client, in *dynamodb.QueryInput) ([]I, error) {
	p := dynamodb.NewQueryPaginator(ddb, in)
	var items []I
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []I
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

func mapItems[I, E any](items []I, from func(I) E) []E {
	out := make([]E, 0, len(items))
	for _, it := range items {
		out = append(out, from(it))
	}
	return out
}

func mergeNames(a, b map[string]string) map[string]string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
