package service

import (
	"database/sql"
	"errors"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/entities"
	apperrors "rentautopro/internal/errors"
	"rentautopro/internal/repository"
)

type MaintenanceInput struct {
	VehicleID         string     `json:"vehicle_id"`
	MaintenanceTypeID *string    `json:"maintenance_type_id"`
	PerformedBy       *string    `json:"performed_by"`
	Description       string     `json:"description"`
	Cost              float64    `json:"cost"`
	Mileage           float64    `json:"mileage"`
	PerformedAt       time.Time  `json:"performed_at"`
	NextDueMileage    *float64   `json:"next_due_mileage"`
	NextDueDate       *time.Time `json:"next_due_date"`
}

type MaintenanceTypeInput struct {
	Name                      string   `json:"name"`
	Description               string   `json:"description"`
	RecommendedIntervalKm     *float64 `json:"recommended_interval_km"`
	RecommendedIntervalMonths *int     `json:"recommended_interval_months"`
}

type MaintenanceService struct {
	maintenance repository.MaintenanceRepository
	vehicles    repository.VehicleRepository
}

func NewMaintenanceService(maintenance repository.MaintenanceRepository, vehicles repository.VehicleRepository) *MaintenanceService {
	return &MaintenanceService{maintenance: maintenance, vehicles: vehicles}
}

func (s *MaintenanceService) ListMaintenances() ([]entities.MaintenanceDetail, error) {
	return s.maintenance.List()
}

// ListScheduled returns services coming due within the next 30 days.
func (s *MaintenanceService) ListScheduled() ([]entities.MaintenanceDetail, error) {
	return s.maintenance.ListScheduled(time.Now(), 0)
}

func (s *MaintenanceService) GetMaintenance(id string) (*entities.MaintenanceDetail, error) {
	detail, err := s.maintenance.GetDetail(id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperrors.NewNotFound("maintenance record not found")
	}
	return detail, nil
}

func (s *MaintenanceService) ListByVehicle(vehicleID string) ([]db.MaintenanceRecord, error) {
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NewNotFound("vehicle not found")
	}
	return s.maintenance.ListByVehicle(vehicleID)
}

// CreateMaintenance records a completed service. The vehicle's odometer,
// last maintenance date and next maintenance threshold move along with it.
func (s *MaintenanceService) CreateMaintenance(in MaintenanceInput) (*entities.MaintenanceDetail, error) {
	if fields := validateMaintenanceInput(in); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	vehicle, err := s.vehicles.GetByID(in.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NewNotFound("vehicle not found")
	}
	if in.MaintenanceTypeID != nil {
		mt, err := s.maintenance.GetType(*in.MaintenanceTypeID)
		if err != nil {
			return nil, err
		}
		if mt == nil {
			return nil, apperrors.NewValidation(map[string]string{"maintenance_type_id": "maintenance type does not exist"})
		}
	}
	if in.PerformedAt.IsZero() {
		in.PerformedAt = time.Now().UTC()
	}

	record := &db.MaintenanceRecord{
		VehicleID:         in.VehicleID,
		MaintenanceTypeID: in.MaintenanceTypeID,
		PerformedBy:       in.PerformedBy,
		Description:       in.Description,
		Cost:              in.Cost,
		Mileage:           in.Mileage,
		PerformedAt:       in.PerformedAt,
		NextDueMileage:    in.NextDueMileage,
		NextDueDate:       in.NextDueDate,
	}
	if err := s.maintenance.Create(record); err != nil {
		return nil, err
	}

	if err := s.syncVehicleAfterService(vehicle, record); err != nil {
		return nil, err
	}
	return s.GetMaintenance(record.ID)
}

func (s *MaintenanceService) UpdateMaintenance(id string, in MaintenanceInput) (*entities.MaintenanceDetail, error) {
	record, err := s.maintenance.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NewNotFound("maintenance record not found")
	}
	if fields := validateMaintenanceInput(in); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	vehicle, err := s.vehicles.GetByID(in.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NewNotFound("vehicle not found")
	}

	record.VehicleID = in.VehicleID
	record.MaintenanceTypeID = in.MaintenanceTypeID
	record.PerformedBy = in.PerformedBy
	record.Description = in.Description
	record.Cost = in.Cost
	record.Mileage = in.Mileage
	if !in.PerformedAt.IsZero() {
		record.PerformedAt = in.PerformedAt
	}
	record.NextDueMileage = in.NextDueMileage
	record.NextDueDate = in.NextDueDate

	if err := s.maintenance.Update(record); err != nil {
		return nil, err
	}
	if err := s.syncVehicleAfterService(vehicle, record); err != nil {
		return nil, err
	}
	return s.GetMaintenance(id)
}

func (s *MaintenanceService) DeleteMaintenance(id string) error {
	err := s.maintenance.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound("maintenance record not found")
	}
	return err
}

func (s *MaintenanceService) ListTypes() ([]db.MaintenanceType, error) {
	return s.maintenance.ListTypes()
}

func (s *MaintenanceService) CreateType(in MaintenanceTypeInput) (*db.MaintenanceType, error) {
	if in.Name == "" {
		return nil, apperrors.NewValidation(map[string]string{"name": "name is required"})
	}
	mt := &db.MaintenanceType{
		Name:                      in.Name,
		Description:               in.Description,
		RecommendedIntervalKm:     in.RecommendedIntervalKm,
		RecommendedIntervalMonths: in.RecommendedIntervalMonths,
	}
	if err := s.maintenance.CreateType(mt); err != nil {
		return nil, err
	}
	return mt, nil
}

// syncVehicleAfterService pushes the service's effects onto the vehicle: a
// higher service mileage bumps the odometer, and the maintenance schedule
// fields follow the record.
func (s *MaintenanceService) syncVehicleAfterService(vehicle *db.Vehicle, record *db.MaintenanceRecord) error {
	if record.Mileage > vehicle.CurrentMileage {
		vehicle.CurrentMileage = record.Mileage
	}
	performedAt := record.PerformedAt
	vehicle.LastMaintenanceDate = &performedAt
	if record.NextDueMileage != nil {
		vehicle.NextMaintenanceMileage = record.NextDueMileage
	}
	return s.vehicles.Update(vehicle)
}

func validateMaintenanceInput(in MaintenanceInput) map[string]string {
	fields := map[string]string{}
	if in.VehicleID == "" {
		fields["vehicle_id"] = "vehicle_id is required"
	}
	if in.Description == "" {
		fields["description"] = "description is required"
	}
	if in.Cost < 0 {
		fields["cost"] = "cost cannot be negative"
	}
	if in.Mileage < 0 {
		fields["mileage"] = "mileage cannot be negative"
	}
	return fields
}
