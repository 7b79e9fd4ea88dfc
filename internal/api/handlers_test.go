package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavdl/campus-transport/internal/schedule"
)

func validSubmitRequest() submitRequest {
	return submitRequest{
		PickupDate:  "2026-09-01",
		PickupTime:  "09:00",
		DropTime:    "11:30",
		Destination: "City Airport",
		PickupPoint: "Main Gate",
		Purpose:     "meeting",
		Category:    "staff",
	}
}

func TestDraftFrom(t *testing.T) {
	t.Run("dates parse as UTC midnight", func(t *testing.T) {
		draft, verr := draftFrom(validSubmitRequest())
		require.Nil(t, verr)

		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), draft.PickupDate)
		assert.Equal(t, time.UTC, draft.PickupDate.Location())
		assert.Equal(t, schedule.TimeOfDay{Hour: 9}, draft.PickupTime)
		assert.Equal(t, schedule.TimeOfDay{Hour: 11, Minute: 30}, draft.DropTime)
	})

	t.Run("malformed date and times become field errors", func(t *testing.T) {
		req := validSubmitRequest()
		req.PickupDate = "01-09-2026"
		req.PickupTime = "9am"
		req.DropTime = "11:3x"

		_, verr := draftFrom(req)
		require.NotNil(t, verr)

		fields := make(map[string]bool)
		for _, f := range verr.Fields {
			fields[f.Field] = true
		}
		assert.True(t, fields["pickup_date"])
		assert.True(t, fields["pickup_time"])
		assert.True(t, fields["drop_time"])
	})

	t.Run("missing optionals stay zero for the policy to flag", func(t *testing.T) {
		draft, verr := draftFrom(submitRequest{Destination: "City Airport"})
		require.Nil(t, verr)
		assert.True(t, draft.PickupDate.IsZero())
		assert.True(t, draft.PickupTime.IsZero())
	})
}
