package repository

import (
	"database/sql"
	"fmt"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/entities"
	"rentautopro/internal/rental"

	"github.com/lib/pq"
)

// ReportRepository holds the read-only grouped queries behind the reports
// and dashboard endpoints. Pure projections, no invariants of their own.
type ReportRepository interface {
	CountVehiclesByStatus() (entities.FleetStatusCounts, error)
	CountPendingMaintenances(now time.Time, window time.Duration) (int, error)
	CountMaintenanceAlerts(now time.Time) (int, error)
	CountActiveRentals() (int, error)
	CountNewCustomers(year int, month time.Month) (int, error)
	RevenueForMonth(year int, month time.Month) (float64, error)
	MonthlyRevenue(startDate, endDate time.Time) ([]entities.MonthlyAmount, error)
	RevenueTrends(since time.Time) ([]entities.MonthlyAmount, error)
	TopVehiclesByRevenue(since time.Time, limit int) ([]entities.VehicleRevenue, error)
	RevenueByMake(startDate, endDate time.Time) ([]entities.RevenueByVehicleMake, error)
	RentalsBetween(startDate, endDate time.Time) ([]entities.RentalDetail, error)
	MaintenancesBetween(startDate, endDate time.Time) ([]entities.MaintenanceDetail, error)
	MaintenanceCostsByType(startDate, endDate time.Time) ([]entities.MaintenanceCostByType, error)
	MaintenanceCostsByVehicle(startDate, endDate time.Time) ([]entities.MaintenanceCostByVehicle, error)
	MonthlyMaintenanceCosts(startDate, endDate time.Time) ([]entities.MonthlyAmount, error)
	CountVehiclesRentedSince(since time.Time) (int, error)
	AvailabilityByMake() ([]entities.AvailabilityByMake, error)
}

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(conn *sql.DB) ReportRepository {
	return &reportRepository{db: conn}
}

func (r *reportRepository) CountVehiclesByStatus() (entities.FleetStatusCounts, error) {
	var c entities.FleetStatusCounts
	query := `
		SELECT COUNT(1),
		       COUNT(1) FILTER (WHERE status = 'available'),
		       COUNT(1) FILTER (WHERE status = 'rented'),
		       COUNT(1) FILTER (WHERE status = 'maintenance'),
		       COUNT(1) FILTER (WHERE status = 'unavailable')
		FROM vehicles
		WHERE deleted_at IS NULL`
	err := r.db.QueryRow(query).Scan(&c.TotalVehicles, &c.Available, &c.Rented, &c.Maintenance, &c.Unavailable)
	if err != nil {
		return c, fmt.Errorf("error counting vehicles by status: %w", err)
	}
	return c, nil
}

func (r *reportRepository) CountPendingMaintenances(now time.Time, window time.Duration) (int, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(1) FROM maintenance_records
		WHERE deleted_at IS NULL AND next_due_date >= $1 AND next_due_date <= $2`,
		now, now.Add(window),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting pending maintenances: %w", err)
	}
	return n, nil
}

// CountMaintenanceAlerts counts vehicles that hit their mileage threshold or
// have a maintenance record due within the upcoming window.
func (r *reportRepository) CountMaintenanceAlerts(now time.Time) (int, error) {
	var n int
	query := `
		SELECT COUNT(1) FROM vehicles v
		WHERE v.deleted_at IS NULL
		  AND (
		      (v.next_maintenance_mileage IS NOT NULL AND v.current_mileage >= v.next_maintenance_mileage)
		      OR EXISTS (
		          SELECT 1 FROM maintenance_records m
		          WHERE m.vehicle_id = v.id
		            AND m.deleted_at IS NULL
		            AND m.next_due_date >= $1 AND m.next_due_date <= $2
		      )
		  )`
	err := r.db.QueryRow(query, now, now.Add(db.UpcomingMaintenanceWindow)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting maintenance alerts: %w", err)
	}
	return n, nil
}

func (r *reportRepository) CountActiveRentals() (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(1) FROM rentals WHERE deleted_at IS NULL AND status = ANY($1)`,
		pq.Array(rental.ActiveStatuses),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting active rentals: %w", err)
	}
	return n, nil
}

func (r *reportRepository) CountNewCustomers(year int, month time.Month) (int, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(1) FROM users
		WHERE role = $1
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3`,
		db.RoleCustomer, year, int(month),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting new customers: %w", err)
	}
	return n, nil
}

func (r *reportRepository) RevenueForMonth(year int, month time.Month) (float64, error) {
	var total float64
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(total_amount), 0) FROM rentals
		WHERE deleted_at IS NULL AND status = 'completed'
		  AND EXTRACT(YEAR FROM created_at) = $1
		  AND EXTRACT(MONTH FROM created_at) = $2`,
		year, int(month),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("error summing monthly revenue: %w", err)
	}
	return total, nil
}

func (r *reportRepository) monthlyAmounts(query string, args ...interface{}) ([]entities.MonthlyAmount, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying monthly amounts: %w", err)
	}
	defer rows.Close()

	var out []entities.MonthlyAmount
	for rows.Next() {
		var m entities.MonthlyAmount
		if err := rows.Scan(&m.Month, &m.Amount); err != nil {
			return nil, fmt.Errorf("error scanning monthly amount: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *reportRepository) MonthlyRevenue(startDate, endDate time.Time) ([]entities.MonthlyAmount, error) {
	return r.monthlyAmounts(`
		SELECT to_char(created_at, 'YYYY-MM') AS month, SUM(total_amount)
		FROM rentals
		WHERE deleted_at IS NULL AND status = 'completed'
		  AND created_at >= $1 AND created_at <= $2
		GROUP BY month ORDER BY month`, startDate, endDate)
}

func (r *reportRepository) RevenueTrends(since time.Time) ([]entities.MonthlyAmount, error) {
	return r.monthlyAmounts(`
		SELECT to_char(created_at, 'YYYY-MM') AS month, SUM(total_amount)
		FROM rentals
		WHERE deleted_at IS NULL AND status = 'completed' AND created_at >= $1
		GROUP BY month ORDER BY month`, since)
}

func (r *reportRepository) MonthlyMaintenanceCosts(startDate, endDate time.Time) ([]entities.MonthlyAmount, error) {
	return r.monthlyAmounts(`
		SELECT to_char(performed_at, 'YYYY-MM') AS month, SUM(cost)
		FROM maintenance_records
		WHERE deleted_at IS NULL AND performed_at >= $1 AND performed_at <= $2
		GROUP BY month ORDER BY month`, startDate, endDate)
}

func (r *reportRepository) TopVehiclesByRevenue(since time.Time, limit int) ([]entities.VehicleRevenue, error) {
	query := `
		SELECT v.make, v.model, v.license_plate, COUNT(1), SUM(r.total_amount)
		FROM rentals r
		JOIN vehicles v ON r.vehicle_id = v.id
		WHERE r.deleted_at IS NULL AND r.status = 'completed' AND r.created_at >= $1
		GROUP BY v.id, v.make, v.model, v.license_plate
		ORDER BY SUM(r.total_amount) DESC
		LIMIT $2`
	rows, err := r.db.Query(query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying top vehicles: %w", err)
	}
	defer rows.Close()

	var out []entities.VehicleRevenue
	for rows.Next() {
		var v entities.VehicleRevenue
		if err := rows.Scan(&v.Make, &v.Model, &v.LicensePlate, &v.RentalCount, &v.TotalRevenue); err != nil {
			return nil, fmt.Errorf("error scanning top vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *reportRepository) RevenueByMake(startDate, endDate time.Time) ([]entities.RevenueByVehicleMake, error) {
	query := `
		SELECT v.make, SUM(r.total_amount)
		FROM rentals r
		JOIN vehicles v ON r.vehicle_id = v.id
		WHERE r.deleted_at IS NULL AND r.status = 'completed'
		  AND r.created_at >= $1 AND r.created_at <= $2
		GROUP BY v.make
		ORDER BY SUM(r.total_amount) DESC`
	rows, err := r.db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("error querying revenue by make: %w", err)
	}
	defer rows.Close()

	var out []entities.RevenueByVehicleMake
	for rows.Next() {
		var m entities.RevenueByVehicleMake
		if err := rows.Scan(&m.Make, &m.Revenue); err != nil {
			return nil, fmt.Errorf("error scanning revenue by make: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *reportRepository) RentalsBetween(startDate, endDate time.Time) ([]entities.RentalDetail, error) {
	query := rentalDetailSelect + `
	  AND r.status IN ('completed', 'confirmed')
	  AND r.created_at >= $1 AND r.created_at <= $2
	ORDER BY r.created_at DESC`
	rows, err := r.db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("error querying rentals for period: %w", err)
	}
	defer rows.Close()

	var details []entities.RentalDetail
	for rows.Next() {
		d, err := scanRentalDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning rental: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *reportRepository) MaintenancesBetween(startDate, endDate time.Time) ([]entities.MaintenanceDetail, error) {
	query := maintenanceDetailSelect + `
	  AND m.performed_at >= $1 AND m.performed_at <= $2
	ORDER BY m.performed_at DESC`
	rows, err := r.db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("error querying maintenances for period: %w", err)
	}
	defer rows.Close()

	var details []entities.MaintenanceDetail
	for rows.Next() {
		d, err := scanMaintenanceDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning maintenance: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *reportRepository) MaintenanceCostsByType(startDate, endDate time.Time) ([]entities.MaintenanceCostByType, error) {
	query := `
		SELECT mt.name, SUM(m.cost), COUNT(1)
		FROM maintenance_records m
		JOIN maintenance_types mt ON m.maintenance_type_id = mt.id
		WHERE m.deleted_at IS NULL AND m.performed_at >= $1 AND m.performed_at <= $2
		GROUP BY mt.name
		ORDER BY SUM(m.cost) DESC`
	rows, err := r.db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("error querying costs by type: %w", err)
	}
	defer rows.Close()

	var out []entities.MaintenanceCostByType
	for rows.Next() {
		var c entities.MaintenanceCostByType
		if err := rows.Scan(&c.Type, &c.TotalCost, &c.Count); err != nil {
			return nil, fmt.Errorf("error scanning costs by type: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *reportRepository) MaintenanceCostsByVehicle(startDate, endDate time.Time) ([]entities.MaintenanceCostByVehicle, error) {
	query := `
		SELECT v.make, v.model, v.license_plate, SUM(m.cost), COUNT(1)
		FROM maintenance_records m
		JOIN vehicles v ON m.vehicle_id = v.id
		WHERE m.deleted_at IS NULL AND m.performed_at >= $1 AND m.performed_at <= $2
		GROUP BY v.id, v.make, v.model, v.license_plate
		ORDER BY SUM(m.cost) DESC`
	rows, err := r.db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("error querying costs by vehicle: %w", err)
	}
	defer rows.Close()

	var out []entities.MaintenanceCostByVehicle
	for rows.Next() {
		var c entities.MaintenanceCostByVehicle
		if err := rows.Scan(&c.Make, &c.Model, &c.LicensePlate, &c.TotalCost, &c.Count); err != nil {
			return nil, fmt.Errorf("error scanning costs by vehicle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountVehiclesRentedSince counts distinct vehicles with a non-cancelled
// rental starting after the given time; feeds the utilization rate.
func (r *reportRepository) CountVehiclesRentedSince(since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(DISTINCT vehicle_id) FROM rentals
		WHERE deleted_at IS NULL AND status <> 'cancelled' AND start_date >= $1`,
		since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting rented vehicles: %w", err)
	}
	return n, nil
}

func (r *reportRepository) AvailabilityByMake() ([]entities.AvailabilityByMake, error) {
	query := `
		SELECT make, COUNT(1),
		       COUNT(1) FILTER (WHERE status = 'available'),
		       COUNT(1) FILTER (WHERE status = 'rented'),
		       COUNT(1) FILTER (WHERE status = 'maintenance'),
		       COUNT(1) FILTER (WHERE status = 'unavailable')
		FROM vehicles
		WHERE deleted_at IS NULL
		GROUP BY make
		ORDER BY make`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying availability by make: %w", err)
	}
	defer rows.Close()

	var out []entities.AvailabilityByMake
	for rows.Next() {
		var a entities.AvailabilityByMake
		if err := rows.Scan(&a.Make, &a.Total, &a.Available, &a.Rented, &a.Maintenance, &a.Unavailable); err != nil {
			return nil, fmt.Errorf("error scanning availability by make: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
