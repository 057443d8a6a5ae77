package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/entities"
)

type MaintenanceRepository interface {
	List() ([]entities.MaintenanceDetail, error)
	GetByID(id string) (*db.MaintenanceRecord, error)
	GetDetail(id string) (*entities.MaintenanceDetail, error)
	ListByVehicle(vehicleID string) ([]db.MaintenanceRecord, error)
	ListScheduled(now time.Time, limit int) ([]entities.MaintenanceDetail, error)
	Create(m *db.MaintenanceRecord) error
	Update(m *db.MaintenanceRecord) error
	Delete(id string) error
	ListTypes() ([]db.MaintenanceType, error)
	GetType(id string) (*db.MaintenanceType, error)
	CreateType(t *db.MaintenanceType) error
}

type maintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(conn *sql.DB) MaintenanceRepository {
	return &maintenanceRepository{db: conn}
}

const maintenanceDetailSelect = `
	SELECT m.id, m.vehicle_id, m.maintenance_type_id, m.performed_by, m.description,
	       m.cost, m.mileage, m.performed_at, m.next_due_mileage, m.next_due_date,
	       m.created_at, m.updated_at,
	       v.id, v.license_plate, v.make, v.model, v.year, v.color, v.status, v.current_mileage,
	       mt.id, mt.name, mt.description,
	       u.id, u.name, u.email, u.role
	FROM maintenance_records m
	JOIN vehicles v ON m.vehicle_id = v.id
	LEFT JOIN maintenance_types mt ON m.maintenance_type_id = mt.id
	LEFT JOIN users u ON m.performed_by = u.id
	WHERE m.deleted_at IS NULL`

func scanMaintenanceDetail(rows *sql.Rows) (entities.MaintenanceDetail, error) {
	var d entities.MaintenanceDetail
	var v db.Vehicle
	var mtID, mtName, mtDesc sql.NullString
	var uID, uName, uEmail, uRole sql.NullString
	err := rows.Scan(
		&d.ID, &d.VehicleID, &d.MaintenanceTypeID, &d.PerformedBy, &d.Description,
		&d.Cost, &d.Mileage, &d.PerformedAt, &d.NextDueMileage, &d.NextDueDate,
		&d.CreatedAt, &d.UpdatedAt,
		&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.Color, &v.Status, &v.CurrentMileage,
		&mtID, &mtName, &mtDesc,
		&uID, &uName, &uEmail, &uRole,
	)
	if err != nil {
		return d, err
	}
	d.Vehicle = &v
	if mtID.Valid {
		d.MaintenanceType = &db.MaintenanceType{ID: mtID.String, Name: mtName.String, Description: mtDesc.String}
	}
	if uID.Valid {
		d.Performer = &db.User{ID: uID.String, Name: uName.String, Email: uEmail.String, Role: uRole.String}
	}
	return d, nil
}

func (r *maintenanceRepository) listDetails(where string, args ...interface{}) ([]entities.MaintenanceDetail, error) {
	rows, err := r.db.Query(maintenanceDetailSelect+where, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying maintenance records: %w", err)
	}
	defer rows.Close()

	var details []entities.MaintenanceDetail
	for rows.Next() {
		d, err := scanMaintenanceDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning maintenance record: %w", err)
		}
		details = append(details, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating maintenance records: %w", err)
	}
	return details, nil
}

func (r *maintenanceRepository) List() ([]entities.MaintenanceDetail, error) {
	return r.listDetails(` ORDER BY m.performed_at DESC`)
}

func (r *maintenanceRepository) GetDetail(id string) (*entities.MaintenanceDetail, error) {
	details, err := r.listDetails(` AND m.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// ListScheduled returns records whose next due date falls inside the upcoming
// maintenance window, nearest first.
func (r *maintenanceRepository) ListScheduled(now time.Time, limit int) ([]entities.MaintenanceDetail, error) {
	where := ` AND m.next_due_date >= $1 AND m.next_due_date <= $2 ORDER BY m.next_due_date`
	args := []interface{}{now, now.Add(db.UpcomingMaintenanceWindow)}
	if limit > 0 {
		where += ` LIMIT $3`
		args = append(args, limit)
	}
	return r.listDetails(where, args...)
}

const maintenanceSelect = `
	SELECT id, vehicle_id, maintenance_type_id, performed_by, description, cost, mileage,
	       performed_at, next_due_mileage, next_due_date, created_at, updated_at
	FROM maintenance_records
	WHERE deleted_at IS NULL`

func scanMaintenance(s interface{ Scan(...interface{}) error }, m *db.MaintenanceRecord) error {
	return s.Scan(&m.ID, &m.VehicleID, &m.MaintenanceTypeID, &m.PerformedBy, &m.Description,
		&m.Cost, &m.Mileage, &m.PerformedAt, &m.NextDueMileage, &m.NextDueDate,
		&m.CreatedAt, &m.UpdatedAt)
}

func (r *maintenanceRepository) GetByID(id string) (*db.MaintenanceRecord, error) {
	var m db.MaintenanceRecord
	err := scanMaintenance(r.db.QueryRow(maintenanceSelect+` AND id = $1`, id), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying maintenance record: %w", err)
	}
	return &m, nil
}

func (r *maintenanceRepository) ListByVehicle(vehicleID string) ([]db.MaintenanceRecord, error) {
	rows, err := r.db.Query(maintenanceSelect+` AND vehicle_id = $1 ORDER BY performed_at DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("error querying vehicle maintenance records: %w", err)
	}
	defer rows.Close()

	var records []db.MaintenanceRecord
	for rows.Next() {
		var m db.MaintenanceRecord
		if err := scanMaintenance(rows, &m); err != nil {
			return nil, fmt.Errorf("error scanning maintenance record: %w", err)
		}
		records = append(records, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating maintenance records: %w", err)
	}
	return records, nil
}

func (r *maintenanceRepository) Create(m *db.MaintenanceRecord) error {
	query := `
		INSERT INTO maintenance_records
		(vehicle_id, maintenance_type_id, performed_by, description, cost, mileage,
		 performed_at, next_due_mileage, next_due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(query,
		m.VehicleID, m.MaintenanceTypeID, m.PerformedBy, m.Description, m.Cost, m.Mileage,
		m.PerformedAt, m.NextDueMileage, m.NextDueDate,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *maintenanceRepository) Update(m *db.MaintenanceRecord) error {
	query := `
		UPDATE maintenance_records
		SET vehicle_id = $2, maintenance_type_id = $3, performed_by = $4, description = $5,
		    cost = $6, mileage = $7, performed_at = $8, next_due_mileage = $9,
		    next_due_date = $10, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`
	err := r.db.QueryRow(query,
		m.ID, m.VehicleID, m.MaintenanceTypeID, m.PerformedBy, m.Description,
		m.Cost, m.Mileage, m.PerformedAt, m.NextDueMileage, m.NextDueDate,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("maintenance record %s not found", m.ID)
		}
		return fmt.Errorf("error updating maintenance record: %w", err)
	}
	return nil
}

func (r *maintenanceRepository) Delete(id string) error {
	res, err := r.db.Exec(`UPDATE maintenance_records SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("error deleting maintenance record: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *maintenanceRepository) ListTypes() ([]db.MaintenanceType, error) {
	query := `
		SELECT id, name, description, recommended_interval_km, recommended_interval_months, created_at
		FROM maintenance_types ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying maintenance types: %w", err)
	}
	defer rows.Close()

	var types []db.MaintenanceType
	for rows.Next() {
		var t db.MaintenanceType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.RecommendedIntervalKm, &t.RecommendedIntervalMonths, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning maintenance type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *maintenanceRepository) GetType(id string) (*db.MaintenanceType, error) {
	var t db.MaintenanceType
	err := r.db.QueryRow(`
		SELECT id, name, description, recommended_interval_km, recommended_interval_months, created_at
		FROM maintenance_types WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Description, &t.RecommendedIntervalKm, &t.RecommendedIntervalMonths, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying maintenance type: %w", err)
	}
	return &t, nil
}

func (r *maintenanceRepository) CreateType(t *db.MaintenanceType) error {
	query := `
		INSERT INTO maintenance_types (name, description, recommended_interval_km, recommended_interval_months)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.db.QueryRow(query, t.Name, t.Description, t.RecommendedIntervalKm, t.RecommendedIntervalMonths).
		Scan(&t.ID, &t.CreatedAt)
}
