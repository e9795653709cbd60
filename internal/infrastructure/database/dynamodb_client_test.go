package database

import (
	"testing"

	appconfig "mis_invoicing/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestInvoicingTables_PaymentsKeyedByInvoice(t *testing.T) {
	cfg := appconfig.Config{ClientsTable: "clients", EstimatesTable: "estimates", InvoicesTable: "invoices", PaymentsTable: "payments"}

	var payments TableDefinition
	for _, table := range InvoicingTables(cfg) {
		if table.Name == "payments" {
			payments = table
		}
	}
	input := createTableInput(payments)

	if len(input.KeySchema) != 2 {
		t.Fatalf("expected composite key, got %d elements", len(input.KeySchema))
	}
	if aws.ToString(input.KeySchema[0].AttributeName) != "invoice_id" || input.KeySchema[0].KeyType != types.KeyTypeHash {
		t.Fatalf("unexpected partition key: %+v", input.KeySchema[0])
	}
	if aws.ToString(input.KeySchema[1].AttributeName) != "id" || input.KeySchema[1].KeyType != types.KeyTypeRange {
		t.Fatalf("unexpected sort key: %+v", input.KeySchema[1])
	}
	if len(input.AttributeDefinitions) != 2 {
		t.Fatalf("expected invoice_id and id defined once each, got %d", len(input.AttributeDefinitions))
	}
	if len(input.GlobalSecondaryIndexes) != 1 || aws.ToString(input.GlobalSecondaryIndexes[0].IndexName) != "id-index" {
		t.Fatalf("unexpected indexes: %+v", input.GlobalSecondaryIndexes)
	}
}

func TestCreateTableInput_DefaultsToIDKey(t *testing.T) {
	input := createTableInput(TableDefinition{Name: "invoices", Indexes: map[string]string{"status-index": "status"}})

	if len(input.KeySchema) != 1 || aws.ToString(input.KeySchema[0].AttributeName) != "id" {
		t.Fatalf("unexpected key schema: %+v", input.KeySchema)
	}
	if len(input.AttributeDefinitions) != 2 {
		t.Fatalf("expected id and status definitions, got %d", len(input.AttributeDefinitions))
	}
}
