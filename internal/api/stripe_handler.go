package api

import (
	"encoding/json"
	"io"
	"net/http"

	"rentautopro/internal/service"

	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeWebhookHandler struct {
	StripeSecret   string
	invoiceService *service.InvoiceService
}

func NewStripeWebhookHandler(stripeSecret string, invoiceService *service.InvoiceService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		StripeSecret:   stripeSecret,
		invoiceService: invoiceService,
	}
}

// HandleWebhook verifies the Stripe signature and settles the invoice
// behind a completed checkout session.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.WithError(err).Error("error reading webhook body")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.StripeSecret)
	if err != nil {
		log.WithError(err).Error("webhook signature verification failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.WithError(err).Error("error parsing checkout.session")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			log.Error("no session ID in checkout.session.completed")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.invoiceService.HandleCheckoutCompleted(sess.ID); err != nil {
			log.WithError(err).Error("error settling invoice for checkout session")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	default:
		log.Debugf("unhandled stripe event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
