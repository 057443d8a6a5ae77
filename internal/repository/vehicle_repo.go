package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/rental"

	"github.com/lib/pq"
)

type VehicleRepository interface {
	List() ([]db.Vehicle, error)
	GetByID(id string) (*db.Vehicle, error)
	Create(v *db.Vehicle) error
	Update(v *db.Vehicle) error
	UpdateStatus(id, status string) error
	UpdateMileage(id string, mileage float64) error
	Delete(id string) error
	PlateExists(licensePlate, excludeVehicleID string) (bool, error)
	ListAvailable(startDate, endDate *time.Time) ([]db.Vehicle, error)
}

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(conn *sql.DB) VehicleRepository {
	return &vehicleRepository{db: conn}
}

const vehicleSelect = `
	SELECT id, license_plate, make, model, year, color, status, current_mileage,
	       fuel_type, fuel_efficiency, last_maintenance_date, next_maintenance_mileage,
	       created_at, updated_at
	FROM vehicles
	WHERE deleted_at IS NULL`

func scanVehicle(s interface{ Scan(...interface{}) error }, v *db.Vehicle) error {
	return s.Scan(
		&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.Color, &v.Status, &v.CurrentMileage,
		&v.FuelType, &v.FuelEfficiency, &v.LastMaintenanceDate, &v.NextMaintenanceMileage,
		&v.CreatedAt, &v.UpdatedAt,
	)
}

func (r *vehicleRepository) list(where string, args ...interface{}) ([]db.Vehicle, error) {
	rows, err := r.db.Query(vehicleSelect+where, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		var v db.Vehicle
		if err := scanVehicle(rows, &v); err != nil {
			return nil, fmt.Errorf("error scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating vehicles: %w", err)
	}
	return vehicles, nil
}

func (r *vehicleRepository) List() ([]db.Vehicle, error) {
	return r.list(` ORDER BY make, model, license_plate`)
}

func (r *vehicleRepository) GetByID(id string) (*db.Vehicle, error) {
	var v db.Vehicle
	err := scanVehicle(r.db.QueryRow(vehicleSelect+` AND id = $1`, id), &v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying vehicle: %w", err)
	}
	return &v, nil
}

func (r *vehicleRepository) Create(v *db.Vehicle) error {
	query := `
		INSERT INTO vehicles
		(license_plate, make, model, year, color, status, current_mileage, fuel_type,
		 fuel_efficiency, last_maintenance_date, next_maintenance_mileage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(query,
		v.LicensePlate, v.Make, v.Model, v.Year, v.Color, v.Status, v.CurrentMileage, v.FuelType,
		v.FuelEfficiency, v.LastMaintenanceDate, v.NextMaintenanceMileage,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *vehicleRepository) Update(v *db.Vehicle) error {
	query := `
		UPDATE vehicles
		SET license_plate = $2, make = $3, model = $4, year = $5, color = $6, status = $7,
		    current_mileage = $8, fuel_type = $9, fuel_efficiency = $10,
		    last_maintenance_date = $11, next_maintenance_mileage = $12, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`
	err := r.db.QueryRow(query,
		v.ID, v.LicensePlate, v.Make, v.Model, v.Year, v.Color, v.Status,
		v.CurrentMileage, v.FuelType, v.FuelEfficiency,
		v.LastMaintenanceDate, v.NextMaintenanceMileage,
	).Scan(&v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("vehicle %s not found", v.ID)
		}
		return fmt.Errorf("error updating vehicle: %w", err)
	}
	return nil
}

func (r *vehicleRepository) UpdateStatus(id, status string) error {
	res, err := r.db.Exec(`UPDATE vehicles SET status = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id, status)
	if err != nil {
		return fmt.Errorf("error updating vehicle status: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) UpdateMileage(id string, mileage float64) error {
	_, err := r.db.Exec(`UPDATE vehicles SET current_mileage = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id, mileage)
	if err != nil {
		return fmt.Errorf("error updating vehicle mileage: %w", err)
	}
	return nil
}

func (r *vehicleRepository) Delete(id string) error {
	res, err := r.db.Exec(`UPDATE vehicles SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("error deleting vehicle: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) PlateExists(licensePlate, excludeVehicleID string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(1) FROM vehicles WHERE license_plate = $1 AND id::text <> $2 AND deleted_at IS NULL`,
		licensePlate, excludeVehicleID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking license plate: %w", err)
	}
	return n > 0, nil
}

// ListAvailable returns vehicles with status 'available'. When a date range
// is given, vehicles with a conflicting confirmed/in-progress rental in that
// inclusive range are filtered out.
func (r *vehicleRepository) ListAvailable(startDate, endDate *time.Time) ([]db.Vehicle, error) {
	if startDate == nil || endDate == nil {
		return r.list(` AND status = $1 ORDER BY make, model`, db.VehicleAvailable)
	}
	where := ` AND status = $1
		AND NOT EXISTS (
			SELECT 1 FROM rentals rn
			WHERE rn.vehicle_id = vehicles.id
			  AND rn.deleted_at IS NULL
			  AND rn.status = ANY($2)
			  AND rn.start_date <= $4
			  AND rn.end_date >= $3
		)
		ORDER BY make, model`
	return r.list(where, db.VehicleAvailable, pq.Array(rental.ActiveStatuses), *startDate, *endDate)
}
