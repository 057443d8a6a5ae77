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

	log "github.com/sirupsen/logrus"
)

type RentalInput struct {
	VehicleID  string  `json:"vehicle_id"`
	CustomerID string  `json:"customer_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	DailyRate  float64 `json:"daily_rate"`
}

// RentalService owns the booking lifecycle: creation with conflict
// detection, the status transitions, and the side effects of each move
// (vehicle status, invoicing, notifications).
type RentalService struct {
	rentals  repository.RentalRepository
	vehicles repository.VehicleRepository
	users    repository.UserRepository
	invoices *InvoiceService
	sender   *SenderService
}

func NewRentalService(
	rentals repository.RentalRepository,
	vehicles repository.VehicleRepository,
	users repository.UserRepository,
	invoices *InvoiceService,
	sender *SenderService,
) *RentalService {
	return &RentalService{rentals: rentals, vehicles: vehicles, users: users, invoices: invoices, sender: sender}
}

func (s *RentalService) ListRentals() ([]entities.RentalDetail, error) {
	return s.rentals.List()
}

func (s *RentalService) ListRentalsByCustomer(customerID string) ([]entities.RentalDetail, error) {
	return s.rentals.ListByCustomer(customerID)
}

func (s *RentalService) ListRentalsByVehicle(vehicleID string) ([]entities.RentalDetail, error) {
	return s.rentals.ListByVehicle(vehicleID)
}

// GetRental returns the rental with vehicle, customer and invoice attached.
func (s *RentalService) GetRental(id string) (*entities.RentalDetail, error) {
	detail, err := s.rentals.GetDetail(id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperrors.NewNotFound("rental not found")
	}
	if s.invoices != nil {
		invoice, err := s.invoices.invoices.GetByRentalID(id)
		if err != nil {
			return nil, err
		}
		detail.Invoice = invoice
	}
	return detail, nil
}

// CheckAvailability reports whether the vehicle is free over the inclusive
// date range.
func (s *RentalService) CheckAvailability(vehicleID, startDate, endDate string) (bool, error) {
	start, end, fields := parseRentalDates(startDate, endDate)
	if len(fields) > 0 {
		return false, apperrors.NewValidation(fields)
	}
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return false, err
	}
	if vehicle == nil {
		return false, apperrors.NewNotFound("vehicle not found")
	}
	return s.rentals.IsAvailable(vehicleID, start, end, "")
}

// CreateRental books a vehicle for a customer. The new rental starts in
// pending; a conflicting confirmed or in-progress booking rejects it.
func (s *RentalService) CreateRental(in RentalInput) (*entities.RentalDetail, error) {
	start, end, fields := parseRentalDates(in.StartDate, in.EndDate)
	if in.DailyRate <= 0 {
		fields["daily_rate"] = "daily_rate must be positive"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	vehicle, err := s.vehicles.GetByID(in.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NewNotFound("vehicle not found")
	}
	customer, err := s.users.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.NewNotFound("customer not found")
	}

	startMileage := vehicle.CurrentMileage
	rn := &db.Rental{
		VehicleID:    in.VehicleID,
		CustomerID:   in.CustomerID,
		StartDate:    start,
		EndDate:      end,
		StartMileage: &startMileage,
		DailyRate:    in.DailyRate,
		TotalAmount:  rental.TotalAmount(start, end, in.DailyRate),
		Status:       rental.StatusPending,
	}
	if err := s.rentals.Create(rn); err != nil {
		if errors.Is(err, repository.ErrVehicleUnavailable) {
			return nil, apperrors.NewUnprocessable("vehicle is not available for the selected dates")
		}
		return nil, err
	}
	return s.GetRental(rn.ID)
}

// UpdateRental changes a non-terminal rental's dates or rate. A date change
// re-runs the availability check, excluding the rental itself, and the total
// is repriced.
func (s *RentalService) UpdateRental(id string, in RentalInput) (*entities.RentalDetail, error) {
	rn, err := s.rentals.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rn == nil {
		return nil, apperrors.NewNotFound("rental not found")
	}
	if rental.IsTerminal(rn.Status) {
		return nil, apperrors.NewUnprocessable("a completed or cancelled rental cannot be modified")
	}

	start, end, fields := parseRentalDates(in.StartDate, in.EndDate)
	if in.DailyRate <= 0 {
		fields["daily_rate"] = "daily_rate must be positive"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	datesChanged := !start.Equal(rn.StartDate) || !end.Equal(rn.EndDate)
	rn.StartDate = start
	rn.EndDate = end
	rn.DailyRate = in.DailyRate
	rn.TotalAmount = rental.TotalAmount(start, end, in.DailyRate)

	if err := s.rentals.Update(rn, datesChanged); err != nil {
		if errors.Is(err, repository.ErrVehicleUnavailable) {
			return nil, apperrors.NewUnprocessable("vehicle is not available for the selected dates")
		}
		return nil, err
	}
	return s.GetRental(id)
}

// ConfirmRental moves a pending rental to confirmed and marks the vehicle
// rented.
func (s *RentalService) ConfirmRental(id string) (*entities.RentalDetail, error) {
	rn, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}

	next, err := rental.Transition(rn.Status, rental.StatusConfirmed)
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error())
	}
	rn.Status = next
	if err := s.rentals.Update(rn, false); err != nil {
		return nil, err
	}
	if err := s.vehicles.UpdateStatus(rn.VehicleID, db.VehicleRented); err != nil {
		log.WithError(err).Errorf("rental %s confirmed but vehicle status update failed", id)
	}

	return s.notifyAndReturn(id, "confirmed")
}

// CompleteRental closes out a confirmed or in-progress rental: records the
// return mileage and date, frees the vehicle, syncs its odometer and issues
// the invoice.
func (s *RentalService) CompleteRental(id string, endMileage float64) (*entities.RentalDetail, error) {
	rn, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}

	next, err := rental.Transition(rn.Status, rental.StatusCompleted)
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error())
	}
	if endMileage <= 0 {
		return nil, apperrors.NewValidation(map[string]string{"end_mileage": "end_mileage is required"})
	}
	if rn.StartMileage != nil && endMileage < *rn.StartMileage {
		return nil, apperrors.NewValidation(map[string]string{"end_mileage": "end_mileage cannot be lower than the start mileage"})
	}

	now := time.Now().UTC()
	rn.Status = next
	rn.EndMileage = &endMileage
	rn.ActualReturnDate = &now
	if err := s.rentals.Update(rn, false); err != nil {
		return nil, err
	}

	if err := s.vehicles.UpdateStatus(rn.VehicleID, db.VehicleAvailable); err != nil {
		log.WithError(err).Errorf("rental %s completed but vehicle status update failed", id)
	}
	if err := s.vehicles.UpdateMileage(rn.VehicleID, endMileage); err != nil {
		log.WithError(err).Errorf("rental %s completed but vehicle mileage update failed", id)
	}

	if s.invoices != nil {
		invoice, err := s.invoices.CreateForRental(rn)
		if err != nil {
			log.WithError(err).Errorf("rental %s completed but invoice creation failed", id)
		} else if s.sender != nil {
			if detail, derr := s.rentals.GetDetail(id); derr == nil && detail != nil && detail.Customer != nil {
				s.sender.SendInvoiceEmail(detail.Customer.Email, detail.Customer.Name,
					invoice.InvoiceNumber, invoice.TotalAmount, invoice.DueDate)
			}
		}
	}

	return s.notifyAndReturn(id, "completed")
}

// CancelRental voids a pending or confirmed rental. A confirmed cancellation
// frees the vehicle again.
func (s *RentalService) CancelRental(id string) (*entities.RentalDetail, error) {
	rn, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}

	wasConfirmed := rn.Status == rental.StatusConfirmed
	next, err := rental.Transition(rn.Status, rental.StatusCancelled)
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error())
	}
	rn.Status = next
	if err := s.rentals.Update(rn, false); err != nil {
		return nil, err
	}
	if wasConfirmed {
		if err := s.vehicles.UpdateStatus(rn.VehicleID, db.VehicleAvailable); err != nil {
			log.WithError(err).Errorf("rental %s cancelled but vehicle status update failed", id)
		}
	}

	return s.notifyAndReturn(id, "cancelled")
}

// DeleteRental soft-deletes a rental record. Active bookings must be
// cancelled or completed first.
func (s *RentalService) DeleteRental(id string) error {
	rn, err := s.mustGet(id)
	if err != nil {
		return err
	}
	if rn.Status == rental.StatusConfirmed || rn.Status == rental.StatusInProgress {
		return apperrors.NewUnprocessable("an active rental cannot be deleted")
	}

	err = s.rentals.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound("rental not found")
	}
	return err
}

func (s *RentalService) mustGet(id string) (*db.Rental, error) {
	rn, err := s.rentals.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rn == nil {
		return nil, apperrors.NewNotFound("rental not found")
	}
	return rn, nil
}

func (s *RentalService) notifyAndReturn(id, status string) (*entities.RentalDetail, error) {
	detail, err := s.GetRental(id)
	if err != nil {
		return nil, err
	}
	if s.sender != nil {
		s.sender.SendRentalEmail(*detail, status)
		s.sender.SendRentalSMS(*detail, status)
	}
	return detail, nil
}

// parseRentalDates validates the wire dates. end may equal start (a one-day
// rental) but never precede it.
func parseRentalDates(startDate, endDate string) (time.Time, time.Time, map[string]string) {
	fields := map[string]string{}
	start, err := time.Parse(rental.DateLayout, startDate)
	if err != nil {
		fields["start_date"] = "start_date must be a valid YYYY-MM-DD date"
	}
	end, err := time.Parse(rental.DateLayout, endDate)
	if err != nil {
		fields["end_date"] = "end_date must be a valid YYYY-MM-DD date"
	}
	if len(fields) == 0 && end.Before(start) {
		fields["end_date"] = "end_date must be on or after start_date"
	}
	return start, end, fields
}
