package service

import (
	"fmt"
	"testing"
	"time"

	"rentautopro/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateForRentalAppliesTaxAndDueDate(t *testing.T) {
	t.Setenv("INVOICE_TAX_RATE", "")
	invoices := newFakeInvoiceRepo()
	svc := NewInvoiceService(invoices, nil, nil, nil)

	rn := &db.Rental{ID: "rent-1", TotalAmount: 100}
	invoice, err := svc.CreateForRental(rn)
	require.NoError(t, err)

	assert.Equal(t, 100.0, invoice.Subtotal)
	assert.Equal(t, 21.0, invoice.TaxAmount, "default tax rate is 21%")
	assert.Equal(t, 121.0, invoice.TotalAmount)
	assert.Equal(t, db.InvoicePending, invoice.Status)
	assert.Equal(t, invoice.IssueDate.AddDate(0, 0, 15), invoice.DueDate)
}

func TestCreateForRentalHonorsTaxRateOverride(t *testing.T) {
	t.Setenv("INVOICE_TAX_RATE", "0.10")
	invoices := newFakeInvoiceRepo()
	svc := NewInvoiceService(invoices, nil, nil, nil)

	invoice, err := svc.CreateForRental(&db.Rental{ID: "rent-1", TotalAmount: 200})
	require.NoError(t, err)
	assert.Equal(t, 20.0, invoice.TaxAmount)
	assert.Equal(t, 220.0, invoice.TotalAmount)
}

func TestCreateForRentalIsIdempotent(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	svc := NewInvoiceService(invoices, nil, nil, nil)

	rn := &db.Rental{ID: "rent-1", TotalAmount: 100}
	first, err := svc.CreateForRental(rn)
	require.NoError(t, err)
	second, err := svc.CreateForRental(rn)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	all, err := invoices.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInvoiceNumbersAreSequentialWithinMonth(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	svc := NewInvoiceService(invoices, nil, nil, nil)

	yearMonth := time.Now().UTC().Format("200601")
	for i := 1; i <= 3; i++ {
		invoice, err := svc.CreateForRental(&db.Rental{ID: fmt.Sprintf("rent-%d", i), TotalAmount: 100})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-%s-%04d", yearMonth, i), invoice.InvoiceNumber)
	}
}

func TestHandleCheckoutCompletedMarksPaid(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	svc := NewInvoiceService(invoices, nil, nil, nil)

	invoice, err := svc.CreateForRental(&db.Rental{ID: "rent-1", TotalAmount: 100})
	require.NoError(t, err)
	require.NoError(t, invoices.SetStripeSession(invoice.ID, "cs_test_123"))

	require.NoError(t, svc.HandleCheckoutCompleted("cs_test_123"))

	updated, err := invoices.GetByID(invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, db.InvoicePaid, updated.Status)

	// Replayed webhooks are a no-op.
	require.NoError(t, svc.HandleCheckoutCompleted("cs_test_123"))

	assert.Error(t, svc.HandleCheckoutCompleted("cs_unknown"))
}

func TestMarkOverdueFlipsOnlyPastDuePending(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	now := time.Now().UTC()

	overdue := &db.Invoice{RentalID: "rent-1", Status: db.InvoicePending, DueDate: now.AddDate(0, 0, -1)}
	current := &db.Invoice{RentalID: "rent-2", Status: db.InvoicePending, DueDate: now.AddDate(0, 0, 5)}
	paid := &db.Invoice{RentalID: "rent-3", Status: db.InvoicePaid, DueDate: now.AddDate(0, 0, -10)}
	for _, inv := range []*db.Invoice{overdue, current, paid} {
		require.NoError(t, invoices.Create(inv))
	}

	n, err := invoices.MarkOverdue(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := invoices.GetByID(overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, db.InvoiceOverdue, got.Status)
}
