package api

import (
	"encoding/json"
	"net/http"

	"rentautopro/internal/service"

	"github.com/gorilla/mux"
)

type MaintenanceHandler struct {
	Service *service.MaintenanceService
}

func NewMaintenanceHandler(svc *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{Service: svc}
}

func (h *MaintenanceHandler) ListMaintenances(w http.ResponseWriter, r *http.Request) {
	maintenances, err := h.Service.ListMaintenances()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, maintenances)
}

func (h *MaintenanceHandler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	upcoming, err := h.Service.ListScheduled()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, upcoming)
}

func (h *MaintenanceHandler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.GetMaintenance(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *MaintenanceHandler) ListVehicleMaintenances(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListByVehicle(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *MaintenanceHandler) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	var req service.MaintenanceInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	detail, err := h.Service.CreateMaintenance(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (h *MaintenanceHandler) UpdateMaintenance(w http.ResponseWriter, r *http.Request) {
	var req service.MaintenanceInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	detail, err := h.Service.UpdateMaintenance(mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *MaintenanceHandler) DeleteMaintenance(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteMaintenance(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Maintenance record deleted"})
}

func (h *MaintenanceHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListTypes()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *MaintenanceHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req service.MaintenanceTypeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	mt, err := h.Service.CreateType(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mt)
}
