package service

import (
	"database/sql"
	"errors"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/entities"
	apperrors "rentautopro/internal/errors"
	"rentautopro/internal/rental"
	"rentautopro/internal/repository"
)

var validVehicleStatuses = map[string]bool{
	db.VehicleAvailable:   true,
	db.VehicleRented:      true,
	db.VehicleMaintenance: true,
	db.VehicleUnavailable: true,
}

type VehicleInput struct {
	LicensePlate           string     `json:"license_plate"`
	Make                   string     `json:"make"`
	Model                  string     `json:"model"`
	Year                   int        `json:"year"`
	Color                  string     `json:"color"`
	Status                 string     `json:"status"`
	CurrentMileage         float64    `json:"current_mileage"`
	FuelType               string     `json:"fuel_type"`
	FuelEfficiency         *float64   `json:"fuel_efficiency"`
	LastMaintenanceDate    *time.Time `json:"last_maintenance_date"`
	NextMaintenanceMileage *float64   `json:"next_maintenance_mileage"`
}

type FuelRecordInput struct {
	RentalID   *string   `json:"rental_id"`
	FuelAmount float64   `json:"fuel_amount"`
	FuelCost   float64   `json:"fuel_cost"`
	Mileage    float64   `json:"mileage"`
	FuelType   string    `json:"fuel_type"`
	Notes      string    `json:"notes"`
	FilledAt   time.Time `json:"filled_at"`
}

type VehicleService struct {
	vehicles    repository.VehicleRepository
	maintenance repository.MaintenanceRepository
	rentals     repository.RentalRepository
	fuel        repository.FuelRepository
}

func NewVehicleService(
	vehicles repository.VehicleRepository,
	maintenance repository.MaintenanceRepository,
	rentals repository.RentalRepository,
	fuel repository.FuelRepository,
) *VehicleService {
	return &VehicleService{vehicles: vehicles, maintenance: maintenance, rentals: rentals, fuel: fuel}
}

func (s *VehicleService) ListVehicles() ([]db.Vehicle, error) {
	return s.vehicles.List()
}

// GetVehicle returns the vehicle with its maintenance history and the
// maintenance-due flags recomputed against the current date.
func (s *VehicleService) GetVehicle(id string) (*entities.VehicleDetail, error) {
	vehicle, err := s.vehicles.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NewNotFound("vehicle not found")
	}

	records, err := s.maintenance.ListByVehicle(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &entities.VehicleDetail{
		Vehicle:            *vehicle,
		MaintenanceRecords: records,
		NeedsMaintenance:   vehicle.NeedsMaintenance(records, now),
		MaintenanceOverdue: vehicle.MaintenanceOverdue(records, now),
	}, nil
}

func (s *VehicleService) CreateVehicle(in VehicleInput) (*db.Vehicle, error) {
	if in.Status == "" {
		in.Status = db.VehicleAvailable
	}
	if fields := validateVehicleInput(in); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	taken, err := s.vehicles.PlateExists(in.LicensePlate, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidation(map[string]string{"license_plate": "license plate is already registered"})
	}

	vehicle := &db.Vehicle{
		LicensePlate:           in.LicensePlate,
		Make:                   in.Make,
		Model:                  in.Model,
		Year:                   in.Year,
		Color:                  in.Color,
		Status:                 in.Status,
		CurrentMileage:         in.CurrentMileage,
		FuelType:               in.FuelType,
		FuelEfficiency:         in.FuelEfficiency,
		LastMaintenanceDate:    in.LastMaintenanceDate,
		NextMaintenanceMileage: in.NextMaintenanceMileage,
	}
	if err := s.vehicles.Create(vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) UpdateVehicle(id string, in VehicleInput) (*db.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NewNotFound("vehicle not found")
	}

	if in.Status == "" {
		in.Status = vehicle.Status
	}
	if fields := validateVehicleInput(in); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	taken, err := s.vehicles.PlateExists(in.LicensePlate, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidation(map[string]string{"license_plate": "license plate is already registered"})
	}

	vehicle.LicensePlate = in.LicensePlate
	vehicle.Make = in.Make
	vehicle.Model = in.Model
	vehicle.Year = in.Year
	vehicle.Color = in.Color
	vehicle.Status = in.Status
	vehicle.CurrentMileage = in.CurrentMileage
	vehicle.FuelType = in.FuelType
	vehicle.FuelEfficiency = in.FuelEfficiency
	vehicle.LastMaintenanceDate = in.LastMaintenanceDate
	vehicle.NextMaintenanceMileage = in.NextMaintenanceMileage

	if err := s.vehicles.Update(vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) UpdateVehicleStatus(id, status string) error {
	if !validVehicleStatuses[status] {
		return apperrors.NewValidation(map[string]string{"status": "status is invalid"})
	}
	err := s.vehicles.UpdateStatus(id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound("vehicle not found")
	}
	return err
}

// DeleteVehicle soft-deletes a vehicle. A vehicle with a confirmed or
// in-progress rental cannot be removed.
func (s *VehicleService) DeleteVehicle(id string) error {
	rentals, err := s.rentals.ListByVehicle(id)
	if err != nil {
		return err
	}
	for i := range rentals {
		if rentals[i].Status == rental.StatusConfirmed || rentals[i].Status == rental.StatusInProgress {
			return apperrors.NewUnprocessable("vehicle has active rentals and cannot be deleted")
		}
	}

	err = s.vehicles.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound("vehicle not found")
	}
	return err
}

// ListAvailableVehicles lists vehicles free to rent. Without a date range it
// filters on status alone; with one it also excludes vehicles with a
// conflicting booking in the inclusive range.
func (s *VehicleService) ListAvailableVehicles(startDate, endDate *time.Time) ([]db.Vehicle, error) {
	if (startDate == nil) != (endDate == nil) {
		return nil, apperrors.NewValidation(map[string]string{"end_date": "start_date and end_date must be given together"})
	}
	if startDate != nil && endDate.Before(*startDate) {
		return nil, apperrors.NewValidation(map[string]string{"end_date": "end_date must be on or after start_date"})
	}
	return s.vehicles.ListAvailable(startDate, endDate)
}

// AddFuelRecord stores a fill-up and derives the fuel efficiency against the
// previous fill for the same vehicle. A fill at a higher mileage than the
// vehicle's odometer also bumps the odometer.
func (s *VehicleService) AddFuelRecord(vehicleID string, in FuelRecordInput) (*entities.FuelRecordDetail, error) {
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NewNotFound("vehicle not found")
	}

	fields := map[string]string{}
	if in.FuelAmount <= 0 {
		fields["fuel_amount"] = "fuel_amount must be positive"
	}
	if in.FuelCost < 0 {
		fields["fuel_cost"] = "fuel_cost cannot be negative"
	}
	if in.Mileage < 0 {
		fields["mileage"] = "mileage cannot be negative"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}
	if in.FilledAt.IsZero() {
		in.FilledAt = time.Now().UTC()
	}

	record := &db.FuelRecord{
		VehicleID:  vehicleID,
		RentalID:   in.RentalID,
		FuelAmount: in.FuelAmount,
		FuelCost:   in.FuelCost,
		Mileage:    in.Mileage,
		FuelType:   in.FuelType,
		Notes:      in.Notes,
		FilledAt:   in.FilledAt,
	}
	if err := s.fuel.Create(record); err != nil {
		return nil, err
	}

	if record.Mileage > vehicle.CurrentMileage {
		if err := s.vehicles.UpdateMileage(vehicleID, record.Mileage); err != nil {
			return nil, err
		}
	}

	detail := &entities.FuelRecordDetail{FuelRecord: *record}
	previous, err := s.fuel.PreviousFill(vehicleID, record.FilledAt)
	if err != nil {
		return nil, err
	}
	if eff := fuelEfficiency(record, previous); eff != nil {
		detail.FuelEfficiency = eff
	}
	return detail, nil
}

// ListFuelRecords returns the vehicle's fill history, newest first, with the
// efficiency of each fill derived against the one before it.
func (s *VehicleService) ListFuelRecords(vehicleID string) ([]entities.FuelRecordDetail, error) {
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NewNotFound("vehicle not found")
	}

	records, err := s.fuel.ListByVehicle(vehicleID)
	if err != nil {
		return nil, err
	}

	details := make([]entities.FuelRecordDetail, 0, len(records))
	for i := range records {
		detail := entities.FuelRecordDetail{FuelRecord: records[i]}
		if i+1 < len(records) {
			detail.FuelEfficiency = fuelEfficiency(&records[i], &records[i+1])
		}
		details = append(details, detail)
	}
	return details, nil
}

// fuelEfficiency is distance covered since the previous fill divided by the
// fuel taken now, or nil when there is no usable previous fill.
func fuelEfficiency(current, previous *db.FuelRecord) *float64 {
	if previous == nil || current.FuelAmount <= 0 || current.Mileage <= previous.Mileage {
		return nil
	}
	eff := (current.Mileage - previous.Mileage) / current.FuelAmount
	return &eff
}

func validateVehicleInput(in VehicleInput) map[string]string {
	fields := map[string]string{}
	if in.LicensePlate == "" {
		fields["license_plate"] = "license_plate is required"
	}
	if in.Make == "" {
		fields["make"] = "make is required"
	}
	if in.Model == "" {
		fields["model"] = "model is required"
	}
	if in.Year < 1900 || in.Year > time.Now().Year()+1 {
		fields["year"] = "year is out of range"
	}
	if in.CurrentMileage < 0 {
		fields["current_mileage"] = "current_mileage cannot be negative"
	}
	if !validVehicleStatuses[in.Status] {
		fields["status"] = "status is invalid"
	}
	return fields
}
