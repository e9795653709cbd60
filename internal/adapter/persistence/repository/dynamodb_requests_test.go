package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mis_invoicing/internal/domain/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/shopspring/decimal"
)

type dynamoCall struct {
	op   string
	body map[string]any
}

type dynamoRecorder struct {
	mu    sync.Mutex
	calls []dynamoCall
}

func (r *dynamoRecorder) only(t *testing.T) dynamoCall {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) != 1 {
		t.Fatalf("expected exactly one DynamoDB call, got %d", len(r.calls))
	}
	return r.calls[0]
}

// newRecordingDynamo points a real DynamoDB client at an httptest server.
// respond returns the status code and JSON body for each operation.
func newRecordingDynamo(t *testing.T, respond func(op string) (int, string)) (*dynamodb.Client, *dynamoRecorder) {
	t.Helper()
	rec := &dynamoRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := r.Header.Get("X-Amz-Target")
		op = op[strings.LastIndex(op, ".")+1:]
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		rec.mu.Lock()
		rec.calls = append(rec.calls, dynamoCall{op: op, body: body})
		rec.mu.Unlock()

		status, out := respond(op)
		w.Header().Set("Content-Type", "application/x-amz-json-1.0")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, out)
	}))
	t.Cleanup(srv.Close)

	cfg := aws.Config{
		Region:           "ap-south-1",
		Credentials:      credentials.NewStaticCredentialsProvider("test", "test", ""),
		HTTPClient:       srv.Client(),
		RetryMaxAttempts: 1,
	}
	ddb := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
	})
	return ddb, rec
}

func okJSON(body string) func(string) (int, string) {
	return func(string) (int, string) { return http.StatusOK, body }
}

func stringAttr(t *testing.T, m any, key string) string {
	t.Helper()
	attrs, ok := m.(map[string]any)
	if !ok {
		t.Fatalf("expected attribute map, got %T", m)
	}
	v, ok := attrs[key].(map[string]any)
	if !ok {
		t.Fatalf("attribute %s missing in %v", key, attrs)
	}
	s, _ := v["S"].(string)
	return s
}

func TestPaymentDynamoRepository_ListByInvoiceIDIsConsistent(t *testing.T) {
	ddb, rec := newRecordingDynamo(t, okJSON(`{"Count":2,"ScannedCount":2,"Items":[
		{"invoice_id":{"S":"i-1"},"id":{"S":"p-1"},"amount":{"S":"500"},"payment_date":{"S":"2026-10-01T00:00:00Z"}},
		{"invoice_id":{"S":"i-1"},"id":{"S":"p-2"},"amount":{"S":"680"},"payment_date":{"S":"2026-10-02T00:00:00Z"}}
	]}`))
	repo := NewPaymentDynamoRepository(ddb, "payments")

	got, err := repo.ListByInvoiceID(context.Background(), "i-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || !got[0].Amount.Add(got[1].Amount).Equal(decimal.RequireFromString("1180")) {
		t.Fatalf("unexpected payments: %+v", got)
	}

	call := rec.only(t)
	if call.op != "Query" {
		t.Fatalf("expected Query, got %s", call.op)
	}
	if call.body["TableName"] != "payments" {
		t.Fatalf("unexpected table: %v", call.body["TableName"])
	}
	if _, ok := call.body["IndexName"]; ok {
		t.Fatalf("expected base-table query, got index %v", call.body["IndexName"])
	}
	if call.body["ConsistentRead"] != true {
		t.Fatalf("expected ConsistentRead=true, got %v", call.body["ConsistentRead"])
	}
	names, _ := call.body["ExpressionAttributeNames"].(map[string]any)
	if names["#k"] != "invoice_id" {
		t.Fatalf("expected partition on invoice_id, got %v", names)
	}
	if stringAttr(t, call.body["ExpressionAttributeValues"], ":v") != "i-1" {
		t.Fatalf("unexpected key value: %v", call.body["ExpressionAttributeValues"])
	}
}

func TestPaymentDynamoRepository_DeleteUsesFullKey(t *testing.T) {
	ddb, rec := newRecordingDynamo(t, okJSON(`{}`))
	repo := NewPaymentDynamoRepository(ddb, "payments")

	if err := repo.Delete(context.Background(), "i-1", "p-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := rec.only(t)
	if call.op != "DeleteItem" {
		t.Fatalf("expected DeleteItem, got %s", call.op)
	}
	if stringAttr(t, call.body["Key"], "invoice_id") != "i-1" || stringAttr(t, call.body["Key"], "id") != "p-1" {
		t.Fatalf("unexpected key: %v", call.body["Key"])
	}
}

func TestPaymentDynamoRepository_GetByIDUsesIDIndex(t *testing.T) {
	ddb, rec := newRecordingDynamo(t, okJSON(`{"Count":1,"ScannedCount":1,"Items":[
		{"invoice_id":{"S":"i-1"},"id":{"S":"p-1"},"amount":{"S":"500"},"payment_date":{"S":"2026-10-01T00:00:00Z"}}
	]}`))
	repo := NewPaymentDynamoRepository(ddb, "payments")

	got, err := repo.GetByID(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "p-1" || got.InvoiceID != "i-1" {
		t.Fatalf("unexpected payment: %+v", got)
	}
	call := rec.only(t)
	if call.op != "Query" || call.body["IndexName"] != paymentIDIndex {
		t.Fatalf("expected Query on %s, got %s %v", paymentIDIndex, call.op, call.body["IndexName"])
	}
}

func TestPaymentDynamoRepository_GetByIDMissing(t *testing.T) {
	ddb, _ := newRecordingDynamo(t, okJSON(`{"Count":0,"ScannedCount":0,"Items":[]}`))
	repo := NewPaymentDynamoRepository(ddb, "payments")

	got, err := repo.GetByID(context.Background(), "p-1")
	if err != nil || got.ID != "" {
		t.Fatalf("expected zero payment, got %+v %v", got, err)
	}
}

func TestEstimateDynamoRepository_GetByIDReadsInvoiceLink(t *testing.T) {
	ddb, rec := newRecordingDynamo(t, okJSON(`{"Item":{
		"id":{"S":"e-1"},"client_id":{"S":"c-1"},"estimate_number":{"S":"EST-1"},
		"status":{"S":"CONVERTED"},"invoice_id":{"S":"i-1"},"created_at":{"S":"2026-10-01T00:00:00Z"}
	}}`))
	repo := NewEstimateDynamoRepository(ddb, "estimates")

	got, err := repo.GetByID(context.Background(), "e-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.InvoiceID != "i-1" || !got.IsConverted() {
		t.Fatalf("unexpected estimate: %+v", got)
	}
	call := rec.only(t)
	if call.op != "GetItem" || call.body["ConsistentRead"] != true {
		t.Fatalf("expected consistent GetItem, got %s %v", call.op, call.body["ConsistentRead"])
	}
}

func TestConversionDynamoStore_SaveConversion(t *testing.T) {
	est := entities.Estimate{ID: "e-1", ClientID: "c-1", Status: entities.EstimateStatusConverted, InvoiceID: "i-1"}
	inv := entities.Invoice{ID: "i-1", ClientID: "c-1", EstimateID: "e-1", Number: "INV-1", Status: entities.InvoiceStatusPending, CreatedAt: time.Now().UTC()}

	t.Run("flips estimate and inserts invoice in one transaction", func(t *testing.T) {
		ddb, rec := newRecordingDynamo(t, okJSON(`{}`))
		store := NewConversionDynamoStore(ddb, "estimates", "invoices")

		if err := store.SaveConversion(context.Background(), est, inv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		call := rec.only(t)
		if call.op != "TransactWriteItems" {
			t.Fatalf("expected TransactWriteItems, got %s", call.op)
		}
		items, _ := call.body["TransactItems"].([]any)
		if len(items) != 2 {
			t.Fatalf("expected 2 transact items, got %d", len(items))
		}
		update, _ := items[0].(map[string]any)["Update"].(map[string]any)
		if update["TableName"] != "estimates" {
			t.Fatalf("unexpected update table: %v", update["TableName"])
		}
		if !strings.Contains(update["ConditionExpression"].(string), "#status = :approved") {
			t.Fatalf("missing approved guard: %v", update["ConditionExpression"])
		}
		if !strings.Contains(update["UpdateExpression"].(string), "#invoice_id = :invoice_id") {
			t.Fatalf("estimate not linked to invoice: %v", update["UpdateExpression"])
		}
		if stringAttr(t, update["ExpressionAttributeValues"], ":invoice_id") != "i-1" {
			t.Fatalf("unexpected invoice id: %v", update["ExpressionAttributeValues"])
		}
		put, _ := items[1].(map[string]any)["Put"].(map[string]any)
		if put["TableName"] != "invoices" || stringAttr(t, put["Item"], "estimate_id") != "e-1" {
			t.Fatalf("unexpected invoice put: %v", put)
		}
	})

	t.Run("lost race maps to invalid state", func(t *testing.T) {
		ddb, _ := newRecordingDynamo(t, func(string) (int, string) {
			return http.StatusBadRequest, `{"__type":"com.amazonaws.dynamodb.v20120810#TransactionCanceledException",
				"message":"Transaction cancelled",
				"CancellationReasons":[{"Code":"ConditionalCheckFailed"},{"Code":"None"}]}`
		})
		store := NewConversionDynamoStore(ddb, "estimates", "invoices")

		err := store.SaveConversion(context.Background(), est, inv)
		if !errors.Is(err, entities.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}
