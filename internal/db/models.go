package db

import (
	"time"

	"rentautopro/internal/rental"
)

// UpcomingMaintenanceWindow is how far ahead a next_due_date counts as
// "needs maintenance soon".
const UpcomingMaintenanceWindow = 30 * 24 * time.Hour

// Vehicle statuses.
const (
	VehicleAvailable   = "available"
	VehicleRented      = "rented"
	VehicleMaintenance = "maintenance"
	VehicleUnavailable = "unavailable"
)

// Invoice statuses.
const (
	InvoicePending   = "pending"
	InvoicePaid      = "paid"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

// User roles.
const (
	RoleAdmin        = "admin"
	RoleFleetManager = "fleet_manager"
	RoleCustomer     = "customer"
	RoleMechanic     = "mechanic"
	RoleAccounting   = "accounting"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Vehicle struct {
	ID                     string     `json:"id"`
	LicensePlate           string     `json:"license_plate"`
	Make                   string     `json:"make"`
	Model                  string     `json:"model"`
	Year                   int        `json:"year"`
	Color                  string     `json:"color,omitempty"`
	Status                 string     `json:"status"`
	CurrentMileage         float64    `json:"current_mileage"`
	FuelType               string     `json:"fuel_type,omitempty"`
	FuelEfficiency         *float64   `json:"fuel_efficiency,omitempty"`
	LastMaintenanceDate    *time.Time `json:"last_maintenance_date,omitempty"`
	NextMaintenanceMileage *float64   `json:"next_maintenance_mileage,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type Rental struct {
	ID               string        `json:"id"`
	VehicleID        string        `json:"vehicle_id"`
	CustomerID       string        `json:"customer_id"`
	StartDate        time.Time     `json:"start_date"`
	EndDate          time.Time     `json:"end_date"`
	ActualReturnDate *time.Time    `json:"actual_return_date,omitempty"`
	StartMileage     *float64      `json:"start_mileage,omitempty"`
	EndMileage       *float64      `json:"end_mileage,omitempty"`
	DailyRate        float64       `json:"daily_rate"`
	TotalAmount      float64       `json:"total_amount"`
	Status           rental.Status `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type MaintenanceType struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	Description               string    `json:"description,omitempty"`
	RecommendedIntervalKm     *float64  `json:"recommended_interval_km,omitempty"`
	RecommendedIntervalMonths *int      `json:"recommended_interval_months,omitempty"`
	CreatedAt                 time.Time `json:"created_at"`
}

type MaintenanceRecord struct {
	ID                string     `json:"id"`
	VehicleID         string     `json:"vehicle_id"`
	MaintenanceTypeID *string    `json:"maintenance_type_id,omitempty"`
	PerformedBy       *string    `json:"performed_by,omitempty"`
	Description       string     `json:"description"`
	Cost              float64    `json:"cost"`
	Mileage           float64    `json:"mileage"`
	PerformedAt       time.Time  `json:"performed_at"`
	NextDueMileage    *float64   `json:"next_due_mileage,omitempty"`
	NextDueDate       *time.Time `json:"next_due_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type Invoice struct {
	ID              string    `json:"id"`
	RentalID        string    `json:"rental_id"`
	InvoiceNumber   string    `json:"invoice_number"`
	IssueDate       time.Time `json:"issue_date"`
	DueDate         time.Time `json:"due_date"`
	Subtotal        float64   `json:"subtotal"`
	TaxAmount       float64   `json:"tax_amount"`
	TotalAmount     float64   `json:"total_amount"`
	Status          string    `json:"status"`
	StripeSessionID string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type FuelRecord struct {
	ID         string    `json:"id"`
	VehicleID  string    `json:"vehicle_id"`
	RentalID   *string   `json:"rental_id,omitempty"`
	FuelAmount float64   `json:"fuel_amount"`
	FuelCost   float64   `json:"fuel_cost"`
	Mileage    float64   `json:"mileage"`
	FuelType   string    `json:"fuel_type,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	FilledAt   time.Time `json:"filled_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsUpcoming reports whether the record's next due date falls within the
// 30-day maintenance window starting at now.
func (m *MaintenanceRecord) IsUpcoming(now time.Time) bool {
	if m.NextDueDate == nil {
		return false
	}
	d := *m.NextDueDate
	return !d.Before(now) && !d.After(now.Add(UpcomingMaintenanceWindow))
}

// IsOverdue reports whether the record is past its due date, or the vehicle
// has reached the record's next due mileage.
func (m *MaintenanceRecord) IsOverdue(currentMileage float64, now time.Time) bool {
	if m.NextDueDate != nil && m.NextDueDate.Before(now) {
		return true
	}
	if m.NextDueMileage != nil && currentMileage >= *m.NextDueMileage {
		return true
	}
	return false
}

// NeedsMaintenance is the derived predicate flagged on vehicle reads: the
// vehicle reached its maintenance mileage threshold, or any of its records
// is due within the upcoming window.
func (v *Vehicle) NeedsMaintenance(records []MaintenanceRecord, now time.Time) bool {
	if v.NextMaintenanceMileage != nil && v.CurrentMileage >= *v.NextMaintenanceMileage {
		return true
	}
	for i := range records {
		if records[i].IsUpcoming(now) {
			return true
		}
	}
	return false
}

// MaintenanceOverdue reports whether any record is overdue for this vehicle.
func (v *Vehicle) MaintenanceOverdue(records []MaintenanceRecord, now time.Time) bool {
	if v.NextMaintenanceMileage != nil && v.CurrentMileage >= *v.NextMaintenanceMileage {
		return true
	}
	for i := range records {
		if records[i].IsOverdue(v.CurrentMileage, now) {
			return true
		}
	}
	return false
}
