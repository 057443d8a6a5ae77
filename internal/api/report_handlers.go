package api

import (
	"net/http"
	"time"

	"rentautopro/internal/service"
)

type ReportHandler struct {
	Service *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{Service: svc}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.Dashboard(time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := service.ParseReportPeriod(
		r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := h.Service.RevenueReport(start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) MaintenanceCostReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := service.ParseReportPeriod(
		r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := h.Service.MaintenanceCostReport(start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) FleetAvailabilityReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.FleetAvailabilityReport(time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
