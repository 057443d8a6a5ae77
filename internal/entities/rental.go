package entities

import "rentautopro/internal/db"

// RentalDetail is a rental with its related entities eagerly attached,
// matching what the list/show endpoints return.
type RentalDetail struct {
	db.Rental
	Vehicle  *db.Vehicle `json:"vehicle,omitempty"`
	Customer *db.User    `json:"customer,omitempty"`
	Invoice  *db.Invoice `json:"invoice,omitempty"`
}

// MaintenanceDetail is a maintenance record with its relations attached.
type MaintenanceDetail struct {
	db.MaintenanceRecord
	Vehicle         *db.Vehicle         `json:"vehicle,omitempty"`
	MaintenanceType *db.MaintenanceType `json:"maintenance_type,omitempty"`
	Performer       *db.User            `json:"performer,omitempty"`
}

// VehicleDetail is a vehicle with its maintenance history and the derived
// maintenance flags, recomputed on read.
type VehicleDetail struct {
	db.Vehicle
	MaintenanceRecords []db.MaintenanceRecord `json:"maintenance_records,omitempty"`
	NeedsMaintenance   bool                   `json:"needs_maintenance"`
	MaintenanceOverdue bool                   `json:"maintenance_overdue"`
}

// InvoiceDetail is an invoice with its rental attached.
type InvoiceDetail struct {
	db.Invoice
	Rental *db.Rental `json:"rental,omitempty"`
}

// FuelRecordDetail carries the fuel efficiency derived against the previous
// fill for the same vehicle, when one exists.
type FuelRecordDetail struct {
	db.FuelRecord
	FuelEfficiency *float64 `json:"fuel_efficiency,omitempty"`
}
