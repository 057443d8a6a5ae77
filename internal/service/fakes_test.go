package service

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/entities"
	"rentautopro/internal/rental"
	"rentautopro/internal/repository"
)

// In-memory fakes for the repository interfaces. They reproduce the two
// behaviors the services rely on: (nil, nil) for a missing row, and the
// availability check over confirmed/in-progress bookings.

type fakeVehicleRepo struct {
	vehicles map[string]*db.Vehicle
	nextID   int
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: map[string]*db.Vehicle{}}
}

func (f *fakeVehicleRepo) List() ([]db.Vehicle, error) {
	ids := make([]string, 0, len(f.vehicles))
	for id := range f.vehicles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]db.Vehicle, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.vehicles[id])
	}
	return out, nil
}

func (f *fakeVehicleRepo) GetByID(id string) (*db.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVehicleRepo) Create(v *db.Vehicle) error {
	f.nextID++
	v.ID = fmt.Sprintf("veh-%d", f.nextID)
	stored := *v
	f.vehicles[v.ID] = &stored
	return nil
}

func (f *fakeVehicleRepo) Update(v *db.Vehicle) error {
	if _, ok := f.vehicles[v.ID]; !ok {
		return fmt.Errorf("vehicle %s not found", v.ID)
	}
	stored := *v
	f.vehicles[v.ID] = &stored
	return nil
}

func (f *fakeVehicleRepo) UpdateStatus(id, status string) error {
	v, ok := f.vehicles[id]
	if !ok {
		return sql.ErrNoRows
	}
	v.Status = status
	return nil
}

func (f *fakeVehicleRepo) UpdateMileage(id string, mileage float64) error {
	v, ok := f.vehicles[id]
	if !ok {
		return sql.ErrNoRows
	}
	v.CurrentMileage = mileage
	return nil
}

func (f *fakeVehicleRepo) Delete(id string) error {
	if _, ok := f.vehicles[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.vehicles, id)
	return nil
}

func (f *fakeVehicleRepo) PlateExists(licensePlate, excludeVehicleID string) (bool, error) {
	for id, v := range f.vehicles {
		if v.LicensePlate == licensePlate && id != excludeVehicleID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVehicleRepo) ListAvailable(startDate, endDate *time.Time) ([]db.Vehicle, error) {
	all, _ := f.List()
	out := make([]db.Vehicle, 0, len(all))
	for _, v := range all {
		if v.Status == db.VehicleAvailable {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users  map[string]*db.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*db.User{}}
}

func (f *fakeUserRepo) List() ([]db.User, error) {
	ids := make([]string, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]db.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.users[id])
	}
	return out, nil
}

func (f *fakeUserRepo) GetByID(id string) (*db.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(u *db.User) error {
	f.nextID++
	u.ID = fmt.Sprintf("usr-%d", f.nextID)
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUserRepo) Update(u *db.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return fmt.Errorf("user %s not found", u.ID)
	}
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUserRepo) Delete(id string) error {
	if _, ok := f.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) EmailExists(email, excludeUserID string) (bool, error) {
	for id, u := range f.users {
		if u.Email == email && id != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

type fakeRentalRepo struct {
	rentals  map[string]*db.Rental
	vehicles *fakeVehicleRepo
	users    *fakeUserRepo
	nextID   int
}

func newFakeRentalRepo(vehicles *fakeVehicleRepo, users *fakeUserRepo) *fakeRentalRepo {
	return &fakeRentalRepo{rentals: map[string]*db.Rental{}, vehicles: vehicles, users: users}
}

func (f *fakeRentalRepo) conflict(vehicleID string, start, end time.Time, excludeID string) bool {
	for id, rn := range f.rentals {
		if rn.VehicleID != vehicleID || id == excludeID {
			continue
		}
		if rn.Status != rental.StatusConfirmed && rn.Status != rental.StatusInProgress {
			continue
		}
		if rental.Overlaps(start, end, rn.StartDate, rn.EndDate) {
			return true
		}
	}
	return false
}

func (f *fakeRentalRepo) detail(rn *db.Rental) entities.RentalDetail {
	d := entities.RentalDetail{Rental: *rn}
	d.Vehicle, _ = f.vehicles.GetByID(rn.VehicleID)
	d.Customer, _ = f.users.GetByID(rn.CustomerID)
	return d
}

func (f *fakeRentalRepo) list(filter func(*db.Rental) bool) []entities.RentalDetail {
	ids := make([]string, 0, len(f.rentals))
	for id := range f.rentals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []entities.RentalDetail
	for _, id := range ids {
		if filter == nil || filter(f.rentals[id]) {
			out = append(out, f.detail(f.rentals[id]))
		}
	}
	return out
}

func (f *fakeRentalRepo) List() ([]entities.RentalDetail, error) {
	return f.list(nil), nil
}

func (f *fakeRentalRepo) ListRecent(limit int) ([]entities.RentalDetail, error) {
	all := f.list(nil)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeRentalRepo) ListByCustomer(customerID string) ([]entities.RentalDetail, error) {
	return f.list(func(rn *db.Rental) bool { return rn.CustomerID == customerID }), nil
}

func (f *fakeRentalRepo) ListByVehicle(vehicleID string) ([]entities.RentalDetail, error) {
	return f.list(func(rn *db.Rental) bool { return rn.VehicleID == vehicleID }), nil
}

func (f *fakeRentalRepo) GetByID(id string) (*db.Rental, error) {
	rn, ok := f.rentals[id]
	if !ok {
		return nil, nil
	}
	copied := *rn
	return &copied, nil
}

func (f *fakeRentalRepo) GetDetail(id string) (*entities.RentalDetail, error) {
	rn, ok := f.rentals[id]
	if !ok {
		return nil, nil
	}
	d := f.detail(rn)
	return &d, nil
}

func (f *fakeRentalRepo) IsAvailable(vehicleID string, startDate, endDate time.Time, excludeRentalID string) (bool, error) {
	return !f.conflict(vehicleID, startDate, endDate, excludeRentalID), nil
}

func (f *fakeRentalRepo) Create(rn *db.Rental) error {
	if f.conflict(rn.VehicleID, rn.StartDate, rn.EndDate, "") {
		return repository.ErrVehicleUnavailable
	}
	f.nextID++
	rn.ID = fmt.Sprintf("rent-%d", f.nextID)
	rn.CreatedAt = time.Now().UTC()
	rn.UpdatedAt = rn.CreatedAt
	stored := *rn
	f.rentals[rn.ID] = &stored
	return nil
}

func (f *fakeRentalRepo) Update(rn *db.Rental, recheckDates bool) error {
	if _, ok := f.rentals[rn.ID]; !ok {
		return fmt.Errorf("rental %s not found", rn.ID)
	}
	if recheckDates && f.conflict(rn.VehicleID, rn.StartDate, rn.EndDate, rn.ID) {
		return repository.ErrVehicleUnavailable
	}
	rn.UpdatedAt = time.Now().UTC()
	stored := *rn
	f.rentals[rn.ID] = &stored
	return nil
}

func (f *fakeRentalRepo) Delete(id string) error {
	if _, ok := f.rentals[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rentals, id)
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*db.Invoice
	nextID   int
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*db.Invoice{}}
}

func (f *fakeInvoiceRepo) List() ([]entities.InvoiceDetail, error) {
	ids := make([]string, 0, len(f.invoices))
	for id := range f.invoices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []entities.InvoiceDetail
	for _, id := range ids {
		out = append(out, entities.InvoiceDetail{Invoice: *f.invoices[id]})
	}
	return out, nil
}

func (f *fakeInvoiceRepo) GetByID(id string) (*db.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInvoiceRepo) GetByRentalID(rentalID string) (*db.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.RentalID == rentalID {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) GetByStripeSessionID(sessionID string) (*db.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.StripeSessionID == sessionID {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) Create(inv *db.Invoice) error {
	f.nextID++
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	inv.CreatedAt = time.Now().UTC()
	inv.UpdatedAt = inv.CreatedAt
	stored := *inv
	f.invoices[inv.ID] = &stored
	return nil
}

func (f *fakeInvoiceRepo) UpdateStatus(id, status string) error {
	inv, ok := f.invoices[id]
	if !ok {
		return sql.ErrNoRows
	}
	inv.Status = status
	return nil
}

func (f *fakeInvoiceRepo) SetStripeSession(id, sessionID string) error {
	inv, ok := f.invoices[id]
	if !ok {
		return sql.ErrNoRows
	}
	inv.StripeSessionID = sessionID
	return nil
}

func (f *fakeInvoiceRepo) CountForMonth(yearMonth string) (int, error) {
	n := 0
	for _, inv := range f.invoices {
		if inv.IssueDate.Format("200601") == yearMonth {
			n++
		}
	}
	return n, nil
}

func (f *fakeInvoiceRepo) MarkOverdue(now time.Time) (int64, error) {
	var n int64
	for _, inv := range f.invoices {
		if inv.Status == db.InvoicePending && inv.DueDate.Before(now) {
			inv.Status = db.InvoiceOverdue
			n++
		}
	}
	return n, nil
}
