package service

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/entities"
	apperrors "rentautopro/internal/errors"
	"rentautopro/internal/repository"

	log "github.com/sirupsen/logrus"
)

const (
	defaultTaxRate      = 0.21
	invoiceDueDays      = 15
	defaultCurrency     = "eur"
	invoiceNumberLayout = "200601"
)

type InvoiceService struct {
	invoices repository.InvoiceRepository
	rentals  repository.RentalRepository
	stripe   *StripeService
	sender   *SenderService
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	rentals repository.RentalRepository,
	stripe *StripeService,
	sender *SenderService,
) *InvoiceService {
	return &InvoiceService{invoices: invoices, rentals: rentals, stripe: stripe, sender: sender}
}

func (s *InvoiceService) ListInvoices() ([]entities.InvoiceDetail, error) {
	return s.invoices.List()
}

func (s *InvoiceService) GetInvoice(id string) (*entities.InvoiceDetail, error) {
	invoice, err := s.invoices.GetByID(id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperrors.NewNotFound("invoice not found")
	}

	detail := &entities.InvoiceDetail{Invoice: *invoice}
	rn, err := s.rentals.GetByID(invoice.RentalID)
	if err != nil {
		return nil, err
	}
	detail.Rental = rn
	return detail, nil
}

// CreateForRental issues the invoice for a completed rental. The call is
// idempotent: a rental keeps at most one invoice.
func (s *InvoiceService) CreateForRental(rn *db.Rental) (*db.Invoice, error) {
	existing, err := s.invoices.GetByRentalID(rn.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	number, err := s.nextInvoiceNumber(now)
	if err != nil {
		return nil, err
	}

	subtotal := rn.TotalAmount
	tax := round2(subtotal * taxRate())
	invoice := &db.Invoice{
		RentalID:      rn.ID,
		InvoiceNumber: number,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, invoiceDueDays),
		Subtotal:      subtotal,
		TaxAmount:     tax,
		TotalAmount:   round2(subtotal + tax),
		Status:        db.InvoicePending,
	}
	if err := s.invoices.Create(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// PayInvoice opens a Stripe Checkout session for a pending or overdue
// invoice and returns the hosted payment URL.
func (s *InvoiceService) PayInvoice(id string) (string, error) {
	invoice, err := s.invoices.GetByID(id)
	if err != nil {
		return "", err
	}
	if invoice == nil {
		return "", apperrors.NewNotFound("invoice not found")
	}
	if invoice.Status != db.InvoicePending && invoice.Status != db.InvoiceOverdue {
		return "", apperrors.NewUnprocessable(fmt.Sprintf("invoice is %s and cannot be paid", invoice.Status))
	}

	customerEmail := ""
	if detail, err := s.rentals.GetDetail(invoice.RentalID); err == nil && detail != nil && detail.Customer != nil {
		customerEmail = detail.Customer.Email
	}

	currency := os.Getenv("INVOICE_CURRENCY")
	if currency == "" {
		currency = defaultCurrency
	}
	amount := int64(math.Round(invoice.TotalAmount * 100))
	description := fmt.Sprintf("RentAutoPro invoice %s", invoice.InvoiceNumber)

	url, sessionID, err := s.stripe.CreateCheckoutSession(amount, currency, description, customerEmail)
	if err != nil {
		return "", err
	}
	if err := s.invoices.SetStripeSession(invoice.ID, sessionID); err != nil {
		return "", err
	}
	return url, nil
}

// HandleCheckoutCompleted marks the invoice behind a finished checkout
// session as paid. Called from the Stripe webhook.
func (s *InvoiceService) HandleCheckoutCompleted(sessionID string) error {
	invoice, err := s.invoices.GetByStripeSessionID(sessionID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return fmt.Errorf("no invoice found for checkout session %s", sessionID)
	}
	if invoice.Status == db.InvoicePaid {
		return nil
	}
	if err := s.invoices.UpdateStatus(invoice.ID, db.InvoicePaid); err != nil {
		return err
	}
	log.Infof("invoice %s marked paid via checkout session %s", invoice.InvoiceNumber, sessionID)
	return nil
}

// MarkPaid records an out-of-band payment (bank transfer, cash).
func (s *InvoiceService) MarkPaid(id string) error {
	invoice, err := s.invoices.GetByID(id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return apperrors.NewNotFound("invoice not found")
	}
	if invoice.Status != db.InvoicePending && invoice.Status != db.InvoiceOverdue {
		return apperrors.NewUnprocessable(fmt.Sprintf("invoice is %s and cannot be marked paid", invoice.Status))
	}
	return s.invoices.UpdateStatus(id, db.InvoicePaid)
}

// CancelInvoice voids an invoice. A paid invoice is refunded through Stripe
// when its payment went through Checkout.
func (s *InvoiceService) CancelInvoice(id string) error {
	invoice, err := s.invoices.GetByID(id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return apperrors.NewNotFound("invoice not found")
	}
	if invoice.Status == db.InvoiceCancelled {
		return nil
	}
	if invoice.Status == db.InvoicePaid && invoice.StripeSessionID != "" {
		if err := s.stripe.RefundPaymentBySessionID(invoice.StripeSessionID); err != nil {
			return err
		}
	}
	return s.invoices.UpdateStatus(id, db.InvoiceCancelled)
}

// nextInvoiceNumber yields INV-YYYYMM-NNNN, sequential within the issue
// month.
func (s *InvoiceService) nextInvoiceNumber(now time.Time) (string, error) {
	yearMonth := now.Format(invoiceNumberLayout)
	count, err := s.invoices.CountForMonth(yearMonth)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%04d", yearMonth, count+1), nil
}

func taxRate() float64 {
	if raw := os.Getenv("INVOICE_TAX_RATE"); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil && rate >= 0 {
			return rate
		}
		log.Warnf("invalid INVOICE_TAX_RATE %q, falling back to default", raw)
	}
	return defaultTaxRate
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
