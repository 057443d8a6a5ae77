package service

import (
	"fmt"
	"testing"
	"time"

	"rentautopro/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFuelRepo struct {
	records []db.FuelRecord
	nextID  int
}

func (f *fakeFuelRepo) ListByVehicle(vehicleID string) ([]db.FuelRecord, error) {
	var out []db.FuelRecord
	// Newest first, like the real query.
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].VehicleID == vehicleID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

func (f *fakeFuelRepo) Create(record *db.FuelRecord) error {
	f.nextID++
	record.ID = fmt.Sprintf("fuel-%d", f.nextID)
	record.CreatedAt = time.Now().UTC()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeFuelRepo) PreviousFill(vehicleID string, before time.Time) (*db.FuelRecord, error) {
	var previous *db.FuelRecord
	for i := range f.records {
		r := f.records[i]
		if r.VehicleID != vehicleID || !r.FilledAt.Before(before) {
			continue
		}
		if previous == nil || r.FilledAt.After(previous.FilledAt) {
			previous = &f.records[i]
		}
	}
	if previous == nil {
		return nil, nil
	}
	copied := *previous
	return &copied, nil
}

func newVehicleFixture(t *testing.T) (*VehicleService, *fakeVehicleRepo, string) {
	t.Helper()
	vehicles := newFakeVehicleRepo()
	users := newFakeUserRepo()
	rentals := newFakeRentalRepo(vehicles, users)
	fuel := &fakeFuelRepo{}

	vehicle := &db.Vehicle{
		LicensePlate:   "XY987ZT",
		Make:           "Ford",
		Model:          "Transit",
		Year:           2021,
		Status:         db.VehicleAvailable,
		CurrentMileage: 80000,
	}
	require.NoError(t, vehicles.Create(vehicle))

	svc := NewVehicleService(vehicles, nil, rentals, fuel)
	return svc, vehicles, vehicle.ID
}

func TestCreateVehicleRejectsDuplicatePlate(t *testing.T) {
	svc, _, _ := newVehicleFixture(t)

	_, err := svc.CreateVehicle(VehicleInput{
		LicensePlate:   "XY987ZT",
		Make:           "Fiat",
		Model:          "Ducato",
		Year:           2023,
		CurrentMileage: 10,
	})
	assertHTTPStatus(t, err, 422)

	created, err := svc.CreateVehicle(VehicleInput{
		LicensePlate:   "ZZ111AA",
		Make:           "Fiat",
		Model:          "Ducato",
		Year:           2023,
		CurrentMileage: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, db.VehicleAvailable, created.Status, "status defaults to available")
}

func TestUpdateVehicleStatusValidatesValue(t *testing.T) {
	svc, vehicles, id := newVehicleFixture(t)

	err := svc.UpdateVehicleStatus(id, "parked")
	assertHTTPStatus(t, err, 422)

	require.NoError(t, svc.UpdateVehicleStatus(id, db.VehicleMaintenance))
	vehicle, err := vehicles.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, db.VehicleMaintenance, vehicle.Status)

	err = svc.UpdateVehicleStatus("missing", db.VehicleAvailable)
	assertHTTPStatus(t, err, 404)
}

func TestAddFuelRecordDerivesEfficiencyAndBumpsOdometer(t *testing.T) {
	svc, vehicles, id := newVehicleFixture(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := svc.AddFuelRecord(id, FuelRecordInput{
		FuelAmount: 50,
		FuelCost:   90,
		Mileage:    80200,
		FilledAt:   base,
	})
	require.NoError(t, err)
	assert.Nil(t, first.FuelEfficiency, "first fill has no baseline")

	second, err := svc.AddFuelRecord(id, FuelRecordInput{
		FuelAmount: 40,
		FuelCost:   75,
		Mileage:    80600,
		FilledAt:   base.AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	require.NotNil(t, second.FuelEfficiency)
	assert.InDelta(t, 10.0, *second.FuelEfficiency, 0.001, "400 km on 40 l")

	vehicle, err := vehicles.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, 80600.0, vehicle.CurrentMileage)

	_, err = svc.AddFuelRecord(id, FuelRecordInput{FuelAmount: 0, Mileage: 80700})
	assertHTTPStatus(t, err, 422)
}

func TestListFuelRecordsPairsEachFillWithThePrevious(t *testing.T) {
	svc, _, id := newVehicleFixture(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, in := range []FuelRecordInput{
		{FuelAmount: 50, Mileage: 80200},
		{FuelAmount: 40, Mileage: 80600},
		{FuelAmount: 45, Mileage: 81100},
	} {
		in.FilledAt = base.AddDate(0, 0, i*7)
		_, err := svc.AddFuelRecord(id, in)
		require.NoError(t, err)
	}

	records, err := svc.ListFuelRecords(id)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first: 500 km / 45 l, then 400 km / 40 l, then no baseline.
	require.NotNil(t, records[0].FuelEfficiency)
	assert.InDelta(t, 500.0/45.0, *records[0].FuelEfficiency, 0.001)
	require.NotNil(t, records[1].FuelEfficiency)
	assert.InDelta(t, 10.0, *records[1].FuelEfficiency, 0.001)
	assert.Nil(t, records[2].FuelEfficiency)
}

func TestDeleteVehicleRejectsActiveRentals(t *testing.T) {
	vehicles := newFakeVehicleRepo()
	users := newFakeUserRepo()
	rentals := newFakeRentalRepo(vehicles, users)
	svc := NewVehicleService(vehicles, nil, rentals, &fakeFuelRepo{})

	vehicle := &db.Vehicle{LicensePlate: "AA000BB", Make: "Kia", Model: "Ceed", Year: 2020, Status: db.VehicleAvailable}
	require.NoError(t, vehicles.Create(vehicle))
	customer := &db.User{Name: "John", Email: "john@example.com", Role: db.RoleCustomer}
	require.NoError(t, users.Create(customer))

	rentalService := NewRentalService(rentals, vehicles, users, nil, nil)
	detail, err := rentalService.CreateRental(RentalInput{
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		StartDate:  "2026-04-01",
		EndDate:    "2026-04-03",
		DailyRate:  40,
	})
	require.NoError(t, err)
	_, err = rentalService.ConfirmRental(detail.ID)
	require.NoError(t, err)

	err = svc.DeleteVehicle(vehicle.ID)
	assertHTTPStatus(t, err, 422)

	_, err = rentalService.CancelRental(detail.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteVehicle(vehicle.ID))
}
