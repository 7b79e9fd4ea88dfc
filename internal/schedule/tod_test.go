package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "09:30", want: TimeOfDay{Hour: 9, Minute: 30}},
		{input: "09:30:15", want: TimeOfDay{Hour: 9, Minute: 30, Second: 15}},
		{input: "00:00", want: TimeOfDay{}},
		{input: "23:59:59", want: TimeOfDay{Hour: 23, Minute: 59, Second: 59}},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "garbage", wantErr: true},
		{input: "", wantErr: true},
		{input: "11:3x", wantErr: true},
		{input: "12:05junk", wantErr: true},
		{input: "09:30:15x", wantErr: true},
		{input: "09:30:", wantErr: true},
		{input: "09:30:15:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05:00", TimeOfDay{Hour: 9, Minute: 5}.String())
	assert.Equal(t, "14:30:45", TimeOfDay{Hour: 14, Minute: 30, Second: 45}.String())
}

func TestTimeOfDayStringRoundTrips(t *testing.T) {
	orig := TimeOfDay{Hour: 18, Minute: 45}
	parsed, err := ParseTimeOfDay(orig.String())
	require.NoError(t, err)
	assert.Equal(t, orig, parsed)
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	got := TimeOfDay{Hour: 14, Minute: 30}.At(date)
	assert.Equal(t, time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC), got)
}

func TestTimeOfDayBeforeAndSub(t *testing.T) {
	pickup := TimeOfDay{Hour: 9}
	drop := TimeOfDay{Hour: 10, Minute: 30}

	assert.True(t, pickup.Before(drop))
	assert.False(t, drop.Before(pickup))
	assert.Equal(t, 90*time.Minute, drop.Sub(pickup))
	assert.Equal(t, -90*time.Minute, pickup.Sub(drop))
}
