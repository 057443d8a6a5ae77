package api

import (
	"net/http"

	"rentautopro/internal/service"

	"github.com/gorilla/mux"
)

type InvoiceHandler struct {
	Service *service.InvoiceService
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Service: svc}
}

func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Service.ListInvoices()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.GetInvoice(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// PayInvoice opens a Stripe Checkout session and returns its hosted URL.
func (h *InvoiceHandler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	url, err := h.Service.PayInvoice(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"checkout_url": url})
}

func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.MarkPaid(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invoice marked as paid"})
}

func (h *InvoiceHandler) CancelInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.CancelInvoice(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invoice cancelled"})
}
