package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavdl/campus-transport/internal/apperr"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to RequisitionStatus
		want     bool
	}{
		{StatusPendingHOD, StatusPendingAdmin, true},
		{StatusPendingHOD, StatusRejected, true},
		{StatusPendingHOD, StatusApproved, false},
		{StatusPendingAdmin, StatusApproved, true},
		{StatusPendingAdmin, StatusRejected, true},
		{StatusPendingAdmin, StatusPendingHOD, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusPendingHOD, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusPendingHOD, InitialStatus(false))
	assert.Equal(t, StatusPendingAdmin, InitialStatus(true))
}

func TestActionsFor(t *testing.T) {
	assert.ElementsMatch(t, []ReviewAction{ActionApprove, ActionReject}, ActionsFor(RoleHOD, StatusPendingHOD))
	assert.ElementsMatch(t, []ReviewAction{ActionApprove, ActionReject}, ActionsFor(RoleAdmin, StatusPendingAdmin))

	assert.Nil(t, ActionsFor(RoleAdmin, StatusPendingHOD))
	assert.Nil(t, ActionsFor(RoleHOD, StatusPendingAdmin))
	assert.Nil(t, ActionsFor(RoleRequester, StatusPendingHOD))
	assert.Nil(t, ActionsFor(RoleHOD, StatusApproved))
}

func TestApplyHODDecision(t *testing.T) {
	hodID := uuid.New()
	now := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)

	t.Run("approve moves to admin queue and stamps the stage", func(t *testing.T) {
		r := &Requisition{Status: StatusPendingHOD}
		require.NoError(t, ApplyHODDecision(r, hodID, ActionApprove, "go ahead", now))

		assert.Equal(t, StatusPendingAdmin, r.Status)
		assert.Equal(t, &hodID, r.HODID)
		require.NotNil(t, r.HODActionAt)
		assert.Equal(t, now, *r.HODActionAt)
		assert.Equal(t, "go ahead", r.HODRemarks)
	})

	t.Run("reject is terminal", func(t *testing.T) {
		r := &Requisition{Status: StatusPendingHOD}
		require.NoError(t, ApplyHODDecision(r, hodID, ActionReject, "no budget", now))

		assert.Equal(t, StatusRejected, r.Status)
		assert.True(t, r.IsTerminal())
	})

	t.Run("wrong state fails", func(t *testing.T) {
		for _, status := range []RequisitionStatus{StatusPendingAdmin, StatusApproved, StatusRejected} {
			r := &Requisition{Status: status}
			err := ApplyHODDecision(r, hodID, ActionApprove, "", now)
			_, ok := apperr.AsState(err)
			assert.True(t, ok, "state %s should refuse HOD review", status)
			assert.Equal(t, status, r.Status, "failed transition must not mutate")
		}
	})
}

func TestApplyAdminDecision(t *testing.T) {
	adminID := uuid.New()
	vehicleID := uuid.New()
	driverID := uuid.New()
	now := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)

	t.Run("approve binds vehicle and driver", func(t *testing.T) {
		r := &Requisition{Status: StatusPendingAdmin}
		require.NoError(t, ApplyAdminDecision(r, adminID, ActionApprove, &vehicleID, &driverID, "", now))

		assert.Equal(t, StatusApproved, r.Status)
		assert.Equal(t, &vehicleID, r.AssignedVehicleID)
		assert.Equal(t, &driverID, r.AssignedDriverID)
		assert.Equal(t, &adminID, r.AdminID)
		require.NotNil(t, r.AdminActionAt)
		assert.Equal(t, now, *r.AdminActionAt)
	})

	t.Run("approve requires the full pair", func(t *testing.T) {
		r := &Requisition{Status: StatusPendingAdmin}
		err := ApplyAdminDecision(r, adminID, ActionApprove, &vehicleID, nil, "", now)
		_, ok := apperr.AsState(err)
		assert.True(t, ok)
		assert.Equal(t, StatusPendingAdmin, r.Status)
		assert.Nil(t, r.AssignedVehicleID)
	})

	t.Run("reject leaves assignment empty", func(t *testing.T) {
		r := &Requisition{Status: StatusPendingAdmin}
		require.NoError(t, ApplyAdminDecision(r, adminID, ActionReject, nil, nil, "no vehicles", now))

		assert.Equal(t, StatusRejected, r.Status)
		assert.Nil(t, r.AssignedVehicleID)
		assert.Nil(t, r.AssignedDriverID)
		assert.Equal(t, "no vehicles", r.AdminRemarks)
	})

	t.Run("wrong state fails", func(t *testing.T) {
		for _, status := range []RequisitionStatus{StatusPendingHOD, StatusApproved, StatusRejected} {
			r := &Requisition{Status: status}
			err := ApplyAdminDecision(r, adminID, ActionApprove, &vehicleID, &driverID, "", now)
			_, ok := apperr.AsState(err)
			assert.True(t, ok, "state %s should refuse admin review", status)
		}
	})
}
