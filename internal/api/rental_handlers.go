package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"rentautopro/internal/service"

	"github.com/gorilla/mux"
)

type RentalHandler struct {
	Service *service.RentalService
	PDF     *service.PDFService
}

func NewRentalHandler(svc *service.RentalService, pdf *service.PDFService) *RentalHandler {
	return &RentalHandler{Service: svc, PDF: pdf}
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		rentals, err := h.Service.ListRentalsByCustomer(customerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rentals)
		return
	}

	rentals, err := h.Service.ListRentals()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) ListCustomerRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.Service.ListRentalsByCustomer(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) ListVehicleRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.Service.ListRentalsByVehicle(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.GetRental(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var req service.RentalInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	detail, err := h.Service.CreateRental(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (h *RentalHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	var req service.RentalInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	detail, err := h.Service.UpdateRental(mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *RentalHandler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteRental(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Rental deleted"})
}

type AvailabilityRequest struct {
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type AvailabilityResponse struct {
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}

func (h *RentalHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	available, err := h.Service.CheckAvailability(req.VehicleID, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{
		VehicleID: req.VehicleID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Available: available,
	})
}

func (h *RentalHandler) ConfirmRental(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.ConfirmRental(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *RentalHandler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EndMileage float64 `json:"end_mileage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	detail, err := h.Service.CompleteRental(mux.Vars(r)["id"], req.EndMileage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *RentalHandler) CancelRental(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.CancelRental(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DownloadContract streams the rental contract as a PDF attachment.
func (h *RentalHandler) DownloadContract(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	detail, err := h.Service.GetRental(id)
	if err != nil {
		writeError(w, err)
		return
	}

	contract, err := h.PDF.GenerateRentalContract(detail)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rental-contract-%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	w.Write(contract)
}
