package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/entities"
	"rentautopro/internal/rental"

	"github.com/lib/pq"
)

// ErrVehicleUnavailable is returned when a booking conflicts with a
// confirmed or in-progress rental on the same vehicle.
var ErrVehicleUnavailable = errors.New("vehicle is not available for the requested dates")

type RentalRepository interface {
	List() ([]entities.RentalDetail, error)
	ListRecent(limit int) ([]entities.RentalDetail, error)
	ListByCustomer(customerID string) ([]entities.RentalDetail, error)
	ListByVehicle(vehicleID string) ([]entities.RentalDetail, error)
	GetByID(id string) (*db.Rental, error)
	GetDetail(id string) (*entities.RentalDetail, error)
	IsAvailable(vehicleID string, startDate, endDate time.Time, excludeRentalID string) (bool, error)
	Create(r *db.Rental) error
	Update(r *db.Rental, recheckDates bool) error
	Delete(id string) error
}

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(conn *sql.DB) RentalRepository {
	return &rentalRepository{db: conn}
}

type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// conflictCount counts confirmed/in-progress rentals on the vehicle whose
// inclusive [start_date, end_date] range intersects the requested one.
func conflictCount(q querier, vehicleID string, startDate, endDate time.Time, excludeRentalID string) (int, error) {
	query := `
		SELECT COUNT(1)
		FROM rentals
		WHERE vehicle_id = $1
		  AND deleted_at IS NULL
		  AND status = ANY($2)
		  AND start_date <= $4
		  AND end_date >= $3
		  AND id::text <> $5`
	var n int
	err := q.QueryRow(query, vehicleID, pq.Array(rental.ActiveStatuses), startDate, endDate, excludeRentalID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting conflicting rentals: %w", err)
	}
	return n, nil
}

func (r *rentalRepository) IsAvailable(vehicleID string, startDate, endDate time.Time, excludeRentalID string) (bool, error) {
	n, err := conflictCount(r.db, vehicleID, startDate, endDate, excludeRentalID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Create inserts the rental inside a transaction that serializes bookings per
// vehicle with an advisory lock, so two concurrent overlapping requests cannot
// both pass the availability check.
func (r *rentalRepository) Create(rn *db.Rental) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, rn.VehicleID); err != nil {
		return fmt.Errorf("error acquiring vehicle booking lock: %w", err)
	}
	n, err := conflictCount(tx, rn.VehicleID, rn.StartDate, rn.EndDate, "")
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrVehicleUnavailable
	}

	query := `
		INSERT INTO rentals
		(vehicle_id, customer_id, start_date, end_date, start_mileage, daily_rate, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(query,
		rn.VehicleID,
		rn.CustomerID,
		rn.StartDate,
		rn.EndDate,
		rn.StartMileage,
		rn.DailyRate,
		rn.TotalAmount,
		rn.Status,
	).Scan(&rn.ID, &rn.CreatedAt, &rn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting rental: %w", err)
	}
	return tx.Commit()
}

// Update saves all mutable rental fields. When recheckDates is set the
// availability check re-runs under the same advisory lock, excluding the
// rental's own prior record from the conflict set.
func (r *rentalRepository) Update(rn *db.Rental, recheckDates bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if recheckDates {
		if _, err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, rn.VehicleID); err != nil {
			return fmt.Errorf("error acquiring vehicle booking lock: %w", err)
		}
		n, err := conflictCount(tx, rn.VehicleID, rn.StartDate, rn.EndDate, rn.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrVehicleUnavailable
		}
	}

	query := `
		UPDATE rentals
		SET start_date = $2,
		    end_date = $3,
		    actual_return_date = $4,
		    start_mileage = $5,
		    end_mileage = $6,
		    daily_rate = $7,
		    total_amount = $8,
		    status = $9,
		    updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`
	err = tx.QueryRow(query,
		rn.ID,
		rn.StartDate,
		rn.EndDate,
		rn.ActualReturnDate,
		rn.StartMileage,
		rn.EndMileage,
		rn.DailyRate,
		rn.TotalAmount,
		rn.Status,
	).Scan(&rn.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("rental %s not found", rn.ID)
		}
		return fmt.Errorf("error updating rental: %w", err)
	}
	return tx.Commit()
}

func (r *rentalRepository) GetByID(id string) (*db.Rental, error) {
	query := `
		SELECT id, vehicle_id, customer_id, start_date, end_date, actual_return_date,
		       start_mileage, end_mileage, daily_rate, total_amount, status, created_at, updated_at
		FROM rentals
		WHERE id = $1 AND deleted_at IS NULL`
	var rn db.Rental
	err := r.db.QueryRow(query, id).Scan(
		&rn.ID, &rn.VehicleID, &rn.CustomerID, &rn.StartDate, &rn.EndDate, &rn.ActualReturnDate,
		&rn.StartMileage, &rn.EndMileage, &rn.DailyRate, &rn.TotalAmount, &rn.Status, &rn.CreatedAt, &rn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying rental: %w", err)
	}
	return &rn, nil
}

const rentalDetailSelect = `
	SELECT r.id, r.vehicle_id, r.customer_id, r.start_date, r.end_date, r.actual_return_date,
	       r.start_mileage, r.end_mileage, r.daily_rate, r.total_amount, r.status, r.created_at, r.updated_at,
	       v.id, v.license_plate, v.make, v.model, v.year, v.color, v.status, v.current_mileage,
	       u.id, u.name, u.email, u.role, u.first_name, u.last_name, u.phone
	FROM rentals r
	JOIN vehicles v ON r.vehicle_id = v.id
	JOIN users u ON r.customer_id = u.id
	WHERE r.deleted_at IS NULL`

func scanRentalDetail(rows *sql.Rows) (entities.RentalDetail, error) {
	var d entities.RentalDetail
	var v db.Vehicle
	var u db.User
	err := rows.Scan(
		&d.ID, &d.VehicleID, &d.CustomerID, &d.StartDate, &d.EndDate, &d.ActualReturnDate,
		&d.StartMileage, &d.EndMileage, &d.DailyRate, &d.TotalAmount, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.Color, &v.Status, &v.CurrentMileage,
		&u.ID, &u.Name, &u.Email, &u.Role, &u.FirstName, &u.LastName, &u.Phone,
	)
	if err != nil {
		return d, err
	}
	d.Vehicle = &v
	d.Customer = &u
	return d, nil
}

func (r *rentalRepository) listDetails(where string, args ...interface{}) ([]entities.RentalDetail, error) {
	rows, err := r.db.Query(rentalDetailSelect+where, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying rentals: %w", err)
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
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rentals: %w", err)
	}
	return details, nil
}

func (r *rentalRepository) List() ([]entities.RentalDetail, error) {
	return r.listDetails(` ORDER BY r.created_at DESC`)
}

func (r *rentalRepository) ListRecent(limit int) ([]entities.RentalDetail, error) {
	return r.listDetails(` ORDER BY r.created_at DESC LIMIT $1`, limit)
}

func (r *rentalRepository) ListByCustomer(customerID string) ([]entities.RentalDetail, error) {
	return r.listDetails(` AND r.customer_id = $1 ORDER BY r.created_at DESC`, customerID)
}

func (r *rentalRepository) ListByVehicle(vehicleID string) ([]entities.RentalDetail, error) {
	return r.listDetails(` AND r.vehicle_id = $1 ORDER BY r.created_at DESC`, vehicleID)
}

func (r *rentalRepository) GetDetail(id string) (*entities.RentalDetail, error) {
	details, err := r.listDetails(` AND r.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

func (r *rentalRepository) Delete(id string) error {
	res, err := r.db.Exec(`UPDATE rentals SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("error deleting rental: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
