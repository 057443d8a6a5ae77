package service

import (
	"time"

	"rentautopro/internal/entities"
	apperrors "rentautopro/internal/errors"
	"rentautopro/internal/rental"
	"rentautopro/internal/repository"
)

const (
	utilizationWindow = 30 * 24 * time.Hour
	topVehiclesLimit  = 5
	alertListLimit    = 10
	trendMonths       = 6
)

// ReportService assembles the dashboard and the period reports out of the
// grouped queries in ReportRepository.
type ReportService struct {
	reports     repository.ReportRepository
	rentals     repository.RentalRepository
	vehicles    repository.VehicleRepository
	maintenance repository.MaintenanceRepository
}

func NewReportService(
	reports repository.ReportRepository,
	rentals repository.RentalRepository,
	vehicles repository.VehicleRepository,
	maintenance repository.MaintenanceRepository,
) *ReportService {
	return &ReportService{reports: reports, rentals: rentals, vehicles: vehicles, maintenance: maintenance}
}

// Dashboard computes the landing-page KPIs, charts and alert lists for the
// given point in time.
func (s *ReportService) Dashboard(now time.Time) (*entities.DashboardResponse, error) {
	resp := &entities.DashboardResponse{}

	counts, err := s.reports.CountVehiclesByStatus()
	if err != nil {
		return nil, err
	}
	resp.KPIs.TotalVehicles = counts.TotalVehicles
	resp.KPIs.AvailableVehicles = counts.Available
	resp.KPIs.RentedVehicles = counts.Rented
	resp.KPIs.MaintenanceVehicles = counts.Maintenance

	// Pending maintenances look one week out; alerts use the 30-day window.
	if resp.KPIs.PendingMaintenances, err = s.reports.CountPendingMaintenances(now, 7*24*time.Hour); err != nil {
		return nil, err
	}
	if resp.KPIs.ActiveAlerts, err = s.reports.CountMaintenanceAlerts(now); err != nil {
		return nil, err
	}
	if resp.KPIs.MonthlyRevenue, err = s.reports.RevenueForMonth(now.Year(), now.Month()); err != nil {
		return nil, err
	}
	if resp.KPIs.ActiveRentals, err = s.reports.CountActiveRentals(); err != nil {
		return nil, err
	}
	if resp.KPIs.NewCustomers, err = s.reports.CountNewCustomers(now.Year(), now.Month()); err != nil {
		return nil, err
	}

	rented, err := s.reports.CountVehiclesRentedSince(now.Add(-utilizationWindow))
	if err != nil {
		return nil, err
	}
	resp.KPIs.UtilizationRate = utilizationRate(rented, counts.TotalVehicles)

	trendStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)
	if resp.Charts.RevenueTrends, err = s.reports.RevenueTrends(trendStart); err != nil {
		return nil, err
	}
	// Top earners are ranked over the last quarter.
	if resp.Charts.TopVehicles, err = s.reports.TopVehiclesByRevenue(now.AddDate(0, -3, 0), topVehiclesLimit); err != nil {
		return nil, err
	}

	if resp.Alerts.UpcomingMaintenances, err = s.maintenance.ListScheduled(now, alertListLimit); err != nil {
		return nil, err
	}
	if resp.Alerts.RecentRentals, err = s.rentals.ListRecent(alertListLimit); err != nil {
		return nil, err
	}
	return resp, nil
}

// RevenueReport aggregates completed and confirmed rentals created within
// the inclusive period.
func (s *ReportService) RevenueReport(startDate, endDate time.Time) (*entities.RevenueReport, error) {
	if err := validatePeriod(startDate, endDate); err != nil {
		return nil, err
	}

	report := &entities.RevenueReport{}
	report.Summary.Period = entities.ReportPeriod{StartDate: startDate, EndDate: endDate}

	rentals, err := s.reports.RentalsBetween(startDate, endDate)
	if err != nil {
		return nil, err
	}
	report.Rentals = rentals
	report.Summary.TotalRentals = len(rentals)
	for i := range rentals {
		report.Summary.TotalRevenue += rentals[i].TotalAmount
	}
	if report.Summary.TotalRentals > 0 {
		report.Summary.AverageRentalValue = report.Summary.TotalRevenue / float64(report.Summary.TotalRentals)
	}

	if report.MonthlyRevenue, err = s.reports.MonthlyRevenue(startDate, endDate); err != nil {
		return nil, err
	}
	if report.RevenueByMake, err = s.reports.RevenueByMake(startDate, endDate); err != nil {
		return nil, err
	}
	return report, nil
}

// MaintenanceCostReport aggregates the maintenance spend performed within
// the inclusive period.
func (s *ReportService) MaintenanceCostReport(startDate, endDate time.Time) (*entities.MaintenanceCostReport, error) {
	if err := validatePeriod(startDate, endDate); err != nil {
		return nil, err
	}

	report := &entities.MaintenanceCostReport{}
	report.Summary.Period = entities.ReportPeriod{StartDate: startDate, EndDate: endDate}

	maintenances, err := s.reports.MaintenancesBetween(startDate, endDate)
	if err != nil {
		return nil, err
	}
	report.Maintenances = maintenances
	report.Summary.TotalMaintenances = len(maintenances)
	for i := range maintenances {
		report.Summary.TotalCosts += maintenances[i].Cost
	}
	if report.Summary.TotalMaintenances > 0 {
		report.Summary.AverageCost = report.Summary.TotalCosts / float64(report.Summary.TotalMaintenances)
	}

	if report.CostsByType, err = s.reports.MaintenanceCostsByType(startDate, endDate); err != nil {
		return nil, err
	}
	if report.CostsByVehicle, err = s.reports.MaintenanceCostsByVehicle(startDate, endDate); err != nil {
		return nil, err
	}
	if report.MonthlyCosts, err = s.reports.MonthlyMaintenanceCosts(startDate, endDate); err != nil {
		return nil, err
	}
	return report, nil
}

// FleetAvailabilityReport is the current fleet snapshot: status counts,
// utilization over the last 30 days and the per-vehicle maintenance flags.
func (s *ReportService) FleetAvailabilityReport(now time.Time) (*entities.FleetAvailabilityReport, error) {
	report := &entities.FleetAvailabilityReport{}

	counts, err := s.reports.CountVehiclesByStatus()
	if err != nil {
		return nil, err
	}
	report.Summary.FleetStatusCounts = counts

	rented, err := s.reports.CountVehiclesRentedSince(now.Add(-utilizationWindow))
	if err != nil {
		return nil, err
	}
	report.Summary.UtilizationRate = utilizationRate(rented, counts.TotalVehicles)

	if report.AvailabilityByMake, err = s.reports.AvailabilityByMake(); err != nil {
		return nil, err
	}

	vehicles, err := s.vehicles.List()
	if err != nil {
		return nil, err
	}
	report.Vehicles = make([]entities.VehicleDetail, 0, len(vehicles))
	for i := range vehicles {
		records, err := s.maintenance.ListByVehicle(vehicles[i].ID)
		if err != nil {
			return nil, err
		}
		report.Vehicles = append(report.Vehicles, entities.VehicleDetail{
			Vehicle:            vehicles[i],
			NeedsMaintenance:   vehicles[i].NeedsMaintenance(records, now),
			MaintenanceOverdue: vehicles[i].MaintenanceOverdue(records, now),
		})
	}
	return report, nil
}

func utilizationRate(rented, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(rented) / float64(total) * 100
}

func validatePeriod(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return apperrors.NewValidation(map[string]string{"end_date": "end_date must be on or after start_date"})
	}
	return nil
}

// ParseReportPeriod reads the period bounds off the wire; both default to
// the current month when absent.
func ParseReportPeriod(startRaw, endRaw string, now time.Time) (time.Time, time.Time, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	if startRaw != "" {
		parsed, err := time.Parse(rental.DateLayout, startRaw)
		if err != nil {
			return start, end, apperrors.NewValidation(map[string]string{"start_date": "start_date must be a valid YYYY-MM-DD date"})
		}
		start = parsed
	}
	if endRaw != "" {
		parsed, err := time.Parse(rental.DateLayout, endRaw)
		if err != nil {
			return start, end, apperrors.NewValidation(map[string]string{"end_date": "end_date must be a valid YYYY-MM-DD date"})
		}
		// Include the whole end day.
		end = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	return start, end, nil
}
