package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"mis_invoicing/internal/usecase/interfaces"
)

// DeletePolicy decides what happens when a deleted entity still has
// dependents (estimate -> converted invoice, invoice -> payments,
// client -> estimates and invoices).
type DeletePolicy string

const (
	// DeletePolicyRestrict refuses the delete while dependents exist.
	DeletePolicyRestrict DeletePolicy = "restrict"
	// DeletePolicyCascade deletes dependents first.
	DeletePolicyCascade DeletePolicy = "cascade"
	// DeletePolicyOrphan deletes unconditionally and leaves dangling references.
	DeletePolicyOrphan DeletePolicy = "orphan"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DeletePolicyRestrict, DeletePolicyCascade, DeletePolicyOrphan:
		return p, nil
	case "":
		return DeletePolicyRestrict, nil
	default:
		return "", fmt.Errorf("unknown delete policy %q", s)
	}
}

// deleteInvoiceCascade removes an invoice together with its payments.
func deleteInvoiceCascade(ctx context.Context, invoices interfaces.IInvoiceRepository, payments interfaces.IPaymentRepository, invoiceID string) error {
	ps, err := payments.ListByInvoiceID(ctx, invoiceID)
	if err != nil {
		return err
	}
	for _, p := range ps {
		if err := payments.Delete(ctx, invoiceID, p.ID); err != nil {
			return err
		}
	}
	log.Printf("[invoice][usecase] cascade delete invoice_id=%s payments=%d", invoiceID, len(ps))
	return invoices.Delete(ctx, invoiceID)
}
