// Package timegrid quantizes wall-clock time onto a fixed step so the
// rest of the system reasons in integer slot indices. Rounding never
// trades away a constraint: availability windows round inward, busy
// intervals round outward, durations round up. No other component
// touches wall-clock units.
package timegrid

import (
	"fmt"
	"time"

	"interview-scheduler/errors"
	"interview-scheduler/models"
)

// ISOFormat is the timestamp layout used at the API boundary.
const ISOFormat = "2006-01-02T15:04"

// Grid converts between wall-clock timestamps and slot indices relative
// to a request-local epoch.
type Grid struct {
	epoch time.Time
	step  int // minutes per slot
}

// New builds a grid anchored at epoch. Fails with ErrInvalidTimeStep
// when stepMinutes is not positive.
func New(epoch time.Time, stepMinutes int) (*Grid, error) {
	if stepMinutes <= 0 {
		return nil, &errors.InputError{
			Field:  "time_step_minutes",
			Detail: fmt.Sprintf("got %d", stepMinutes),
			Err:    errors.ErrInvalidTimeStep,
		}
	}
	return &Grid{epoch: epoch, step: stepMinutes}, nil
}

// Step returns the slot width in minutes.
func (g *Grid) Step() int { return g.step }

// Epoch returns the grid's anchor timestamp.
func (g *Grid) Epoch() time.Time { return g.epoch }

// FloorSlot maps a timestamp to the slot containing it.
func (g *Grid) FloorSlot(t time.Time) int {
	m := int(t.Sub(g.epoch).Minutes())
	if m < 0 {
		// Round toward negative infinity for pre-epoch times.
		return -((-m + g.step - 1) / g.step)
	}
	return m / g.step
}

// CeilSlot maps a timestamp to the first slot boundary at or after it.
func (g *Grid) CeilSlot(t time.Time) int {
	m := int(t.Sub(g.epoch).Minutes())
	if m < 0 {
		return -(-m / g.step)
	}
	return (m + g.step - 1) / g.step
}

// Slots converts a duration in minutes to whole slots, rounding up.
func (g *Grid) Slots(minutes int) int {
	return (minutes + g.step - 1) / g.step
}

// Time converts a slot index back to its wall-clock timestamp.
func (g *Grid) Time(slot int) time.Time {
	return g.epoch.Add(time.Duration(slot*g.step) * time.Minute)
}

// Minutes returns the minute offset of a slot from the epoch.
func (g *Grid) Minutes(slot int) int { return slot * g.step }

// DayKey identifies the calendar day a slot falls on. Equal keys mean
// same day; the day policy compares nothing else.
func (g *Grid) DayKey(slot int) int {
	t := g.Time(slot)
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// SlotWindow is an availability window quantized to the grid,
// end-exclusive.
type SlotWindow struct {
	Start int
	End   int
}

// QuantizeWindow validates and quantizes one availability window.
// Rounding inward (ceil start, floor end) means a quantized window never
// extends past the caller's availability; a window too small to hold a
// whole slot quantizes to an empty slot range.
func (g *Grid) QuantizeWindow(w models.AvailabilityWindow) (SlotWindow, error) {
	if !w.End.After(w.Start) {
		return SlotWindow{}, &errors.InputError{
			Field:  "availability_windows",
			Detail: fmt.Sprintf("%s >= %s", w.Start.Format(ISOFormat), w.End.Format(ISOFormat)),
			Err:    errors.ErrInvalidWindow,
		}
	}
	return SlotWindow{Start: g.CeilSlot(w.Start), End: g.FloorSlot(w.End)}, nil
}

// QuantizeBusy validates and quantizes one busy interval. Rounding
// outward (floor start, ceil end) keeps the exclusion conservative.
func (g *Grid) QuantizeBusy(b models.BusyInterval) (SlotWindow, error) {
	if b.End.Before(b.Start) {
		return SlotWindow{}, &errors.InputError{
			Field:  "busy_intervals",
			Detail: fmt.Sprintf("interviewer %s: %s > %s", b.InterviewerID, b.Start.Format(ISOFormat), b.End.Format(ISOFormat)),
			Err:    errors.ErrInvalidInterval,
		}
	}
	return SlotWindow{Start: g.FloorSlot(b.Start), End: g.CeilSlot(b.End)}, nil
}

// ParseDailyBound parses an "HH:MM" daily availability bound into
// minutes after midnight.
func ParseDailyBound(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, &errors.InputError{
			Field:  "daily_availability",
			Detail: s,
			Err:    errors.ErrInvalidDailyBound,
		}
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClipToDaily intersects a window with the [startMin, endMin] time-of-day
// range on every calendar day the window touches. A window spanning
// several days yields one segment per day; days whose intersection is
// empty contribute nothing.
func ClipToDaily(w models.AvailabilityWindow, startMin, endMin int) []models.AvailabilityWindow {
	var out []models.AvailabilityWindow
	day := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
	for ; day.Before(w.End); day = day.AddDate(0, 0, 1) {
		lo := day.Add(time.Duration(startMin) * time.Minute)
		hi := day.Add(time.Duration(endMin) * time.Minute)
		if w.Start.After(lo) {
			lo = w.Start
		}
		if w.End.Before(hi) {
			hi = w.End
		}
		if hi.After(lo) {
			out = append(out, models.AvailabilityWindow{Start: lo, End: hi})
		}
	}
	return out
}
