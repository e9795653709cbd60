// Package payments charges invoice payments through Mercado Pago.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"mis_invoicing/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

var (
	ErrMissingMercadoPagoAccessToken   = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")
	ErrMissingPaymentMethod            = errors.New("payment_method_id is required")
	ErrInvalidChargePayload            = errors.New("charge payload must be a json object")
)

const sandboxTokenPrefix = "TEST-"

// MercadoPagoOptions configures the gateway. In mock mode no request leaves
// the process and every charge is approved.
type MercadoPagoOptions struct {
	AccessToken     string
	MockMode        bool
	TestPayerEmail  string
	TestPayerUserID string
}

type MercadoPagoGateway struct {
	client payment.Client
	opts   MercadoPagoOptions
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(opts MercadoPagoOptions) (*MercadoPagoGateway, error) {
	if opts.MockMode {
		log.Printf("[payment][gateway] mock mode enabled")
		return &MercadoPagoGateway{opts: opts}, nil
	}
	if opts.AccessToken == "" {
		log.Printf("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(opts.AccessToken)
	if err != nil {
		log.Printf("[payment][gateway] sdk config failed err=%v", err)
		return nil, err
	}
	log.Printf("[payment][gateway] client ready sandbox=%t", strings.HasPrefix(opts.AccessToken, sandboxTokenPrefix))
	return &MercadoPagoGateway{client: payment.NewClient(cfg), opts: opts}, nil
}

// Charge creates a Mercado Pago payment for the request. The invoice id is
// sent as external_reference and the amount always overrides
// transaction_amount from the payload.
func (g *MercadoPagoGateway) Charge(ctx context.Context, req interfaces.ChargeRequest) (interfaces.ChargeResult, error) {
	if g == nil {
		return interfaces.ChargeResult{}, ErrMercadoPagoGatewayNotConfigured
	}
	body, err := g.buildRequestBody(req)
	if err != nil {
		log.Printf("[payment][gateway] charge rejected invoice_id=%s err=%v", req.InvoiceID, err)
		return interfaces.ChargeResult{}, err
	}
	if g.opts.MockMode {
		return mockCharge(req.InvoiceID, body)
	}
	if g.client == nil {
		return interfaces.ChargeResult{}, ErrMercadoPagoGatewayNotConfigured
	}
	if !hasNonEmptyString(body, "payment_method_id") {
		return interfaces.ChargeResult{}, ErrMissingPaymentMethod
	}

	prepared, err := json.Marshal(body)
	if err != nil {
		return interfaces.ChargeResult{}, err
	}
	var mpReq payment.Request
	if err := json.Unmarshal(prepared, &mpReq); err != nil {
		log.Printf("[payment][gateway] sdk request decode failed invoice_id=%s err=%v", req.InvoiceID, err)
		return interfaces.ChargeResult{}, err
	}

	log.Printf("[payment][gateway] charge start invoice_id=%s amount=%s", req.InvoiceID, req.Amount.StringFixed(2))
	resp, err := g.client.Create(ctx, mpReq)
	if err != nil {
		log.Printf("[payment][gateway] sdk create failed invoice_id=%s err=%v", req.InvoiceID, err)
		return interfaces.ChargeResult{}, err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return interfaces.ChargeResult{}, err
	}
	log.Printf("[payment][gateway] charge done invoice_id=%s provider_payment_id=%d provider_status=%s", req.InvoiceID, resp.ID, resp.Status)
	return interfaces.ChargeResult{
		ProviderPaymentID: strconv.FormatInt(int64(resp.ID), 10),
		Status:            resp.Status,
		Response:          raw,
	}, nil
}

// buildRequestBody merges the invoice fields into the caller payload and
// applies the payer defaults.
func (g *MercadoPagoGateway) buildRequestBody(req interfaces.ChargeRequest) (map[string]any, error) {
	body := map[string]any{}
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &body); err != nil || body == nil {
			return nil, ErrInvalidChargePayload
		}
	}
	body["transaction_amount"] = req.Amount.InexactFloat64()
	if !hasNonEmptyString(body, "external_reference") {
		body["external_reference"] = req.InvoiceID
	}
	if !hasNonEmptyString(body, "description") {
		body["description"] = fmt.Sprintf("Invoice %s", req.InvoiceNumber)
	}
	g.normalizeSandboxPayer(body)
	g.ensurePayerDefaults(body)
	return body, nil
}

func mockCharge(invoiceID string, body map[string]any) (interfaces.ChargeResult, error) {
	id := strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	body["id"] = id
	body["status"] = "approved"
	body["status_detail"] = "accredited"
	body["date_created"] = now
	body["date_approved"] = now

	raw, err := json.Marshal(body)
	if err != nil {
		return interfaces.ChargeResult{}, err
	}
	log.Printf("[payment][gateway] mock charge approved invoice_id=%s provider_payment_id=%s", invoiceID, id)
	return interfaces.ChargeResult{ProviderPaymentID: id, Status: "approved", Response: raw}, nil
}

func (g *MercadoPagoGateway) isSandbox() bool {
	return strings.HasPrefix(g.opts.AccessToken, sandboxTokenPrefix)
}

// ensurePayerDefaults fills payer.type and, in sandbox, a test payer email
// when neither payer.id nor payer.email is given.
func (g *MercadoPagoGateway) ensurePayerDefaults(body map[string]any) {
	payer, ok := body["payer"].(map[string]any)
	if !ok {
		if body["payer"] != nil {
			return
		}
		payer = map[string]any{}
		body["payer"] = payer
	}

	if _, ok := payer["type"]; !ok {
		payer["type"] = "customer"
	}
	if hasPayerID(payer) || hasNonEmptyString(payer, "email") {
		return
	}
	switch {
	case g.opts.TestPayerEmail != "":
		payer["email"] = g.opts.TestPayerEmail
	case g.isSandbox():
		payer["email"] = "test_user_in@testuser.com"
	}
}

// normalizeSandboxPayer swaps the configured sandbox user id for its email,
// which is what the sandbox accepts.
func (g *MercadoPagoGateway) normalizeSandboxPayer(body map[string]any) {
	if !g.isSandbox() || g.opts.TestPayerUserID == "" || g.opts.TestPayerEmail == "" {
		return
	}
	payer, ok := body["payer"].(map[string]any)
	if !ok || !hasPayerID(payer) || hasNonEmptyString(payer, "email") {
		return
	}
	if strings.TrimSpace(fmt.Sprint(payer["id"])) != g.opts.TestPayerUserID {
		return
	}

	payer["email"] = g.opts.TestPayerEmail
	delete(payer, "id")
	log.Printf("[payment][gateway] mapped sandbox payer user_id to payer.email")
}

func hasNonEmptyString(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	return ok && strings.TrimSpace(s) != ""
}

func hasPayerID(payer map[string]any) bool {
	v, ok := payer["id"]
	if !ok || v == nil {
		return false
	}
	return strings.TrimSpace(fmt.Sprint(v)) != ""
}
