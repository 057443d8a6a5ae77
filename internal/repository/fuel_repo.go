package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentautopro/internal/db"
)

type FuelRepository interface {
	ListByVehicle(vehicleID string) ([]db.FuelRecord, error)
	Create(f *db.FuelRecord) error
	PreviousFill(vehicleID string, before time.Time) (*db.FuelRecord, error)
}

type fuelRepository struct {
	db *sql.DB
}

func NewFuelRepository(conn *sql.DB) FuelRepository {
	return &fuelRepository{db: conn}
}

const fuelSelect = `
	SELECT id, vehicle_id, rental_id, fuel_amount, fuel_cost, mileage, fuel_type, notes, filled_at, created_at
	FROM fuel_records
	WHERE deleted_at IS NULL`

func scanFuel(s interface{ Scan(...interface{}) error }, f *db.FuelRecord) error {
	return s.Scan(&f.ID, &f.VehicleID, &f.RentalID, &f.FuelAmount, &f.FuelCost,
		&f.Mileage, &f.FuelType, &f.Notes, &f.FilledAt, &f.CreatedAt)
}

func (r *fuelRepository) ListByVehicle(vehicleID string) ([]db.FuelRecord, error) {
	rows, err := r.db.Query(fuelSelect+` AND vehicle_id = $1 ORDER BY filled_at DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("error querying fuel records: %w", err)
	}
	defer rows.Close()

	var records []db.FuelRecord
	for rows.Next() {
		var f db.FuelRecord
		if err := scanFuel(rows, &f); err != nil {
			return nil, fmt.Errorf("error scanning fuel record: %w", err)
		}
		records = append(records, f)
	}
	return records, rows.Err()
}

func (r *fuelRepository) Create(f *db.FuelRecord) error {
	query := `
		INSERT INTO fuel_records (vehicle_id, rental_id, fuel_amount, fuel_cost, mileage, fuel_type, notes, filled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	return r.db.QueryRow(query,
		f.VehicleID, f.RentalID, f.FuelAmount, f.FuelCost, f.Mileage, f.FuelType, f.Notes, f.FilledAt,
	).Scan(&f.ID, &f.CreatedAt)
}

// PreviousFill returns the most recent fill before the given time for the
// vehicle, or nil when this is the first one.
func (r *fuelRepository) PreviousFill(vehicleID string, before time.Time) (*db.FuelRecord, error) {
	var f db.FuelRecord
	err := scanFuel(r.db.QueryRow(fuelSelect+` AND vehicle_id = $1 AND filled_at < $2 ORDER BY filled_at DESC LIMIT 1`, vehicleID, before), &f)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying previous fuel record: %w", err)
	}
	return &f, nil
}
