package database

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	appconfig "mis_invoicing/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ConnectDynamoDB creates a DynamoDB client from the app configuration.
//
// With DYNAMODB_ENDPOINT set (DynamoDB Local), static credentials are used
// and default to "local"; otherwise the default AWS credential chain applies.
func ConnectDynamoDB(ctx context.Context, cfg appconfig.Config) (*dynamodb.Client, error) {
	awsCfg, err := NewDynamoDBConfig(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

func NewDynamoDBConfig(ctx context.Context, region, endpoint string) (aws.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if endpoint != "" {
		// Local DynamoDB does not validate credentials, but the AWS SDK requires them.
		creds := credentials.NewStaticCredentialsProvider(
			getenvDefault("AWS_ACCESS_KEY_ID", "local"),
			getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
			"",
		)
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// TableDefinition describes a table with string keys and string-keyed GSIs.
// An empty PartitionKey means "id"; an empty SortKey means none.
type TableDefinition struct {
	Name         string
	PartitionKey string
	SortKey      string
	Indexes      map[string]string // index name -> partition attribute
}

func (t TableDefinition) partitionKey() string {
	if t.PartitionKey == "" {
		return "id"
	}
	return t.PartitionKey
}

// InvoicingTables lists the tables and indexes the DynamoDB repositories
// query.
func InvoicingTables(cfg appconfig.Config) []TableDefinition {
	return []TableDefinition{
		{Name: cfg.ClientsTable},
		{Name: cfg.EstimatesTable, Indexes: map[string]string{"client_id-index": "client_id"}},
		{Name: cfg.InvoicesTable, Indexes: map[string]string{
			"client_id-index": "client_id",
			"status-index":    "status",
		}},
		// Payments: base-table queries per invoice are strongly consistent.
		{Name: cfg.PaymentsTable, PartitionKey: "invoice_id", SortKey: "id", Indexes: map[string]string{"id-index": "id"}},
	}
}

// EnsureTables creates missing tables (on-demand billing) and waits for them
// to become active. Intended for DynamoDB Local.
func EnsureTables(ctx context.Context, ddb *dynamodb.Client, tables []TableDefinition) error {
	for _, table := range tables {
		input := createTableInput(table)

		_, err := ddb.CreateTable(ctx, input)
		if err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				continue
			}
			return err
		}
		log.Printf("[database][dynamodb] created table=%s indexes=%d", table.Name, len(table.Indexes))

		waiter := dynamodb.NewTableExistsWaiter(ddb)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table.Name)}, 30*time.Second); err != nil {
			return err
		}
	}
	return nil
}

func createTableInput(table TableDefinition) *dynamodb.CreateTableInput {
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(table.Name),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(table.partitionKey()), KeyType: types.KeyTypeHash},
		},
	}
	if table.SortKey != "" {
		input.KeySchema = append(input.KeySchema, types.KeySchemaElement{
			AttributeName: aws.String(table.SortKey), KeyType: types.KeyTypeRange,
		})
	}

	defined := map[string]bool{}
	define := func(attr string) {
		if defined[attr] {
			return
		}
		defined[attr] = true
		input.AttributeDefinitions = append(input.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(attr), AttributeType: types.ScalarAttributeTypeS,
		})
	}
	for _, k := range input.KeySchema {
		define(aws.ToString(k.AttributeName))
	}
	for index, attr := range table.Indexes {
		define(attr)
		input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(index),
			KeySchema:  []types.KeySchemaElement{{AttributeName: aws.String(attr), KeyType: types.KeyTypeHash}},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}
	return input
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
