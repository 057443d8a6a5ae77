package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptrF(v float64) *float64     { return &v }
func ptrT(v time.Time) *time.Time { return &v }

func TestMaintenanceRecordIsUpcoming(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	in10d := MaintenanceRecord{NextDueDate: ptrT(now.Add(10 * 24 * time.Hour))}
	assert.True(t, in10d.IsUpcoming(now))

	in31d := MaintenanceRecord{NextDueDate: ptrT(now.Add(31 * 24 * time.Hour))}
	assert.False(t, in31d.IsUpcoming(now))

	past := MaintenanceRecord{NextDueDate: ptrT(now.Add(-time.Hour))}
	assert.False(t, past.IsUpcoming(now))

	none := MaintenanceRecord{}
	assert.False(t, none.IsUpcoming(now))
}

func TestMaintenanceRecordIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	past := MaintenanceRecord{NextDueDate: ptrT(now.Add(-24 * time.Hour))}
	assert.True(t, past.IsOverdue(1000, now))

	future := MaintenanceRecord{NextDueDate: ptrT(now.Add(24 * time.Hour))}
	assert.False(t, future.IsOverdue(1000, now))

	byMileage := MaintenanceRecord{NextDueMileage: ptrF(5000)}
	assert.True(t, byMileage.IsOverdue(5000, now))
	assert.False(t, byMileage.IsOverdue(4999, now))
}

func TestVehicleNeedsMaintenance(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	v := Vehicle{CurrentMileage: 10000, NextMaintenanceMileage: ptrF(9000)}
	assert.True(t, v.NeedsMaintenance(nil, now))

	v = Vehicle{CurrentMileage: 8000, NextMaintenanceMileage: ptrF(9000)}
	assert.False(t, v.NeedsMaintenance(nil, now))

	records := []MaintenanceRecord{{NextDueDate: ptrT(now.Add(5 * 24 * time.Hour))}}
	assert.True(t, v.NeedsMaintenance(records, now))

	// no threshold and no due records
	v = Vehicle{CurrentMileage: 8000}
	assert.False(t, v.NeedsMaintenance(nil, now))
}

func TestVehicleMaintenanceOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	v := Vehicle{CurrentMileage: 8000}
	records := []MaintenanceRecord{{NextDueDate: ptrT(now.Add(-48 * time.Hour))}}
	assert.True(t, v.MaintenanceOverdue(records, now))

	records = []MaintenanceRecord{{NextDueDate: ptrT(now.Add(48 * time.Hour))}}
	assert.False(t, v.MaintenanceOverdue(records, now))
}
