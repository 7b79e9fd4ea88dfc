package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranavdl/campus-transport/internal/apperr"
	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/schedule"
)

func newFleetFixture(t *testing.T) (*FleetService, *memVehicles, *memDrivers, *memRequisitions) {
	t.Helper()
	vehicles := newMemVehicles()
	drivers := newMemDrivers()
	reqs := newMemRequisitions()
	svc := NewFleetService(vehicles, drivers, reqs, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc, vehicles, drivers, reqs
}

func TestFleetRoleGate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newFleetFixture(t)

	for _, actor := range []model.Actor{requester(), hod()} {
		_, err := svc.AddVehicle(ctx, actor, VehicleInput{Name: "Innova 1"})
		_, ok := apperr.AsState(err)
		assert.True(t, ok, "role %s must not manage the fleet", actor.Role)
	}
}

func TestAddVehicle(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults capacity and starts active", func(t *testing.T) {
		svc, vehicles, _, _ := newFleetFixture(t)
		v, err := svc.AddVehicle(ctx, admin(), VehicleInput{Name: "Innova 1", RegistrationNumber: "KA-01-1234"})
		require.NoError(t, err)

		assert.Equal(t, 4, v.Capacity)
		assert.Equal(t, model.ResourceActive, v.Status)
		assert.Contains(t, vehicles.byID, v.ID)
	})

	t.Run("name is required", func(t *testing.T) {
		svc, _, _, _ := newFleetFixture(t)
		_, err := svc.AddVehicle(ctx, admin(), VehicleInput{})
		_, ok := apperr.AsValidation(err)
		assert.True(t, ok)
	})
}

func TestSetVehicleStatus(t *testing.T) {
	ctx := context.Background()
	svc, vehicles, _, _ := newFleetFixture(t)

	v, err := svc.AddVehicle(ctx, admin(), VehicleInput{Name: "Innova 1"})
	require.NoError(t, err)

	require.NoError(t, svc.SetVehicleStatus(ctx, admin(), v.ID, model.ResourceInactive))
	assert.Equal(t, model.ResourceInactive, vehicles.byID[v.ID].Status)

	err = svc.SetVehicleStatus(ctx, admin(), v.ID, "retired")
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)
}

func TestAddDriver(t *testing.T) {
	ctx := context.Background()
	svc, _, drivers, _ := newFleetFixture(t)

	d, err := svc.AddDriver(ctx, admin(), DriverInput{FullName: "Suresh", PhoneNumber: "9000000001"})
	require.NoError(t, err)
	assert.Equal(t, model.ResourceActive, d.Status)
	assert.Contains(t, drivers.byID, d.ID)

	_, err = svc.AddDriver(ctx, admin(), DriverInput{})
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, vehicles, _, reqs := newFleetFixture(t)

	busy := &model.Vehicle{ID: uuid.New(), Name: "Innova 1", Status: model.ResourceActive}
	idle := &model.Vehicle{ID: uuid.New(), Name: "Innova 2", Status: model.ResourceActive}
	vehicles.byID[busy.ID] = busy
	vehicles.byID[idle.ID] = idle

	driverID := uuid.New()
	today := schedule.DateOf(testNow)
	for _, pickup := range []schedule.TimeOfDay{{Hour: 9}, {Hour: 14}} {
		r := &model.Requisition{
			ID:                uuid.New(),
			RequesterID:       uuid.New(),
			PickupDate:        today,
			PickupTime:        pickup,
			DropTime:          schedule.TimeOfDay{Hour: pickup.Hour + 1},
			Status:            model.StatusApproved,
			AssignedVehicleID: &busy.ID,
			AssignedDriverID:  &driverID,
		}
		reqs.byID[r.ID] = r
	}

	snap, err := svc.Snapshot(ctx, admin())
	require.NoError(t, err)

	assert.Equal(t, today, snap.Date)
	assert.Equal(t, 2, snap.ActiveTrips)
	assert.Equal(t, 2, snap.TotalVehicles)
	assert.Equal(t, 1, snap.VehiclesInUse)
	assert.Equal(t, 2, snap.DriverTripCounts[driverID])
}
