package timegrid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "interview-scheduler/errors"
	"interview-scheduler/models"
	"interview-scheduler/timegrid"
)

func mustGrid(t *testing.T, epoch time.Time, step int) *timegrid.Grid {
	t.Helper()
	g, err := timegrid.New(epoch, step)
	require.NoError(t, err)
	return g
}

func TestNewRejectsInvalidStep(t *testing.T) {
	epoch := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	for _, step := range []int{0, -15} {
		_, err := timegrid.New(epoch, step)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTimeStep)
		assert.True(t, apperrors.IsBadRequest(err))
	}
}

func TestSlotConversion(t *testing.T) {
	epoch := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	g := mustGrid(t, epoch, 15)

	tests := map[string]struct {
		at    time.Time
		floor int
		ceil  int
	}{
		"on_boundary": {
			at:    epoch.Add(30 * time.Minute),
			floor: 2,
			ceil:  2,
		},
		"between_slots": {
			at:    epoch.Add(37 * time.Minute),
			floor: 2,
			ceil:  3,
		},
		"epoch_itself": {
			at:    epoch,
			floor: 0,
			ceil:  0,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.floor, g.FloorSlot(tc.at))
			assert.Equal(t, tc.ceil, g.CeilSlot(tc.at))
		})
	}
}

// Round-trip: a floored start is within one step of the original and
// never after it; a ceiled end is never before the original.
func TestRoundTripPolicy(t *testing.T) {
	epoch := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	g := mustGrid(t, epoch, 15)

	for offset := 0; offset < 120; offset += 7 {
		at := epoch.Add(time.Duration(offset) * time.Minute)

		start := g.Time(g.FloorSlot(at))
		assert.False(t, start.After(at))
		assert.Less(t, at.Sub(start), 15*time.Minute)

		end := g.Time(g.CeilSlot(at))
		assert.False(t, end.Before(at))
	}
}

func TestQuantizeWindow(t *testing.T) {
	epoch := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	g := mustGrid(t, epoch, 15)

	w, err := g.QuantizeWindow(models.AvailabilityWindow{
		Start: epoch,
		End:   epoch.Add(8 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 32, w.End)

	_, err = g.QuantizeWindow(models.AvailabilityWindow{
		Start: epoch.Add(time.Hour),
		End:   epoch.Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidWindow)
}

// Off-grid bounds round inward: quantization may shrink a window but
// never extends it past the caller's availability.
func TestQuantizeWindowRoundsInward(t *testing.T) {
	epoch := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	g := mustGrid(t, epoch, 15)

	// 09:10-16:50 on a 15-minute grid: first full slot starts 09:15,
	// last full slot ends 16:45.
	w, err := g.QuantizeWindow(models.AvailabilityWindow{
		Start: epoch.Add(10 * time.Minute),
		End:   epoch.Add(7*time.Hour + 50*time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, w.Start)
	assert.Equal(t, 31, w.End)

	// A window smaller than one slot quantizes to an empty range rather
	// than growing to cover slots it does not fully contain.
	w, err = g.QuantizeWindow(models.AvailabilityWindow{
		Start: epoch.Add(5 * time.Minute),
		End:   epoch.Add(10 * time.Minute),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, w.Start, w.End)
}

func TestQuantizeBusy(t *testing.T) {
	epoch := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	g := mustGrid(t, epoch, 15)

	// Outward rounding keeps the exclusion conservative.
	b, err := g.QuantizeBusy(models.BusyInterval{
		InterviewerID: "intv_1",
		Start:         epoch.Add(20 * time.Minute),
		End:           epoch.Add(50 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Start)
	assert.Equal(t, 4, b.End)

	_, err = g.QuantizeBusy(models.BusyInterval{
		InterviewerID: "intv_1",
		Start:         epoch.Add(time.Hour),
		End:           epoch,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInterval)
}

func TestDayKey(t *testing.T) {
	epoch := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	g := mustGrid(t, epoch, 15)

	sameDay := g.DayKey(0) == g.DayKey(31) // 09:00 vs 16:45
	assert.True(t, sameDay)
	nextDay := g.FloorSlot(time.Date(2025, 9, 2, 9, 0, 0, 0, time.UTC))
	assert.NotEqual(t, g.DayKey(0), g.DayKey(nextDay))
}

func TestParseDailyBound(t *testing.T) {
	m, err := timegrid.ParseDailyBound("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = timegrid.ParseDailyBound("9am")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDailyBound)
}

func TestClipToDaily(t *testing.T) {
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	day2 := day.AddDate(0, 0, 1)

	tests := map[string]struct {
		window models.AvailabilityWindow
		want   []models.AvailabilityWindow
	}{
		"inside_bounds": {
			window: models.AvailabilityWindow{Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour)},
			want: []models.AvailabilityWindow{
				{Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour)},
			},
		},
		"clipped_both_sides": {
			window: models.AvailabilityWindow{Start: day.Add(6 * time.Hour), End: day.Add(20 * time.Hour)},
			want: []models.AvailabilityWindow{
				{Start: day.Add(9 * time.Hour), End: day.Add(17 * time.Hour)},
			},
		},
		"outside_bounds": {
			window: models.AvailabilityWindow{Start: day.Add(18 * time.Hour), End: day.Add(20 * time.Hour)},
			want:   nil,
		},
		"spans_two_days": {
			window: models.AvailabilityWindow{Start: day.Add(9 * time.Hour), End: day2.Add(17 * time.Hour)},
			want: []models.AvailabilityWindow{
				{Start: day.Add(9 * time.Hour), End: day.Add(17 * time.Hour)},
				{Start: day2.Add(9 * time.Hour), End: day2.Add(17 * time.Hour)},
			},
		},
		"second_day_partial": {
			window: models.AvailabilityWindow{Start: day.Add(15 * time.Hour), End: day2.Add(11 * time.Hour)},
			want: []models.AvailabilityWindow{
				{Start: day.Add(15 * time.Hour), End: day.Add(17 * time.Hour)},
				{Start: day2.Add(9 * time.Hour), End: day2.Add(11 * time.Hour)},
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, timegrid.ClipToDaily(tc.window, 9*60, 17*60))
		})
	}
}
