// Package aggregator turns raw per-ordering solver assignments into the
// final ranked answer set: materialize, deduplicate, score, rank,
// truncate to top-K.
package aggregator

import (
	"math"
	"sort"
	"strings"
	"time"

	"interview-scheduler/cpmodel"
	"interview-scheduler/metrics"
	"interview-scheduler/models"
	"interview-scheduler/solver"
	"interview-scheduler/timegrid"
)

// OrderingOutcome is one ordering's terminal result. Err marks an
// unexpected adapter failure; such outcomes are excluded from
// aggregation without failing the request.
type OrderingOutcome struct {
	Ordering    models.Ordering
	Model       *cpmodel.Model
	Status      models.Status
	Assignments []solver.Assignment
	Err         error
}

// Aggregate combines all per-ordering outcomes into the bounded top-K
// result. Schedules that are structurally identical across orderings
// collapse to one entry keyed by their canonical form. Ranking is
// efficiency descending, span ascending, then discovery order, which
// makes equal-score output deterministic.
func Aggregate(grid *timegrid.Grid, outcomes []OrderingOutcome, topK int) *models.Result {
	type ranked struct {
		schedule models.Schedule
		seq      int
	}

	var (
		all        []ranked
		seen       = make(map[string]bool)
		seq        int
		sawOptimal bool
		sawTimeout bool
	)

	for _, out := range outcomes {
		if out.Err != nil {
			continue
		}
		switch out.Status {
		case models.StatusOptimal:
			sawOptimal = true
		case models.StatusTimeout:
			sawTimeout = true
		}
		for _, a := range out.Assignments {
			s := Materialize(grid, out.Model, a)
			key := canonicalKey(s)
			if seen[key] {
				metrics.DuplicatesDropped.Inc()
				continue
			}
			seen[key] = true
			all = append(all, ranked{schedule: s, seq: seq})
			seq++
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].schedule, all[j].schedule
		if a.Metrics.Efficiency != b.Metrics.Efficiency {
			return a.Metrics.Efficiency > b.Metrics.Efficiency
		}
		if a.Metrics.TotalSpanMinutes != b.Metrics.TotalSpanMinutes {
			return a.Metrics.TotalSpanMinutes < b.Metrics.TotalSpanMinutes
		}
		return all[i].seq < all[j].seq
	})
	if topK > 0 && len(all) > topK {
		all = all[:topK]
	}

	res := &models.Result{Schedules: make([]models.Schedule, 0, len(all))}
	for _, r := range all {
		res.Schedules = append(res.Schedules, r.schedule)
	}

	switch {
	case len(res.Schedules) > 0 && sawOptimal:
		res.Status = models.StatusOptimal
	case len(res.Schedules) > 0:
		res.Status = models.StatusFeasible
	case sawTimeout:
		res.Status = models.StatusTimeout
	default:
		res.Status = models.StatusInfeasible
	}
	return res
}

// Materialize resolves one raw assignment back to wall-clock events with
// per-role seat assignments attached, and computes metrics and score.
func Materialize(grid *timegrid.Grid, m *cpmodel.Model, a solver.Assignment) models.Schedule {
	events := make([]models.Event, len(m.Stages))
	for i, sv := range m.Stages {
		start := a.Starts[i]
		end := start + sv.DurationSlots

		assigned := make(map[string]map[string]string)
		for q, seat := range sv.Seats {
			if assigned[seat.Role] == nil {
				assigned[seat.Role] = make(map[string]string)
			}
			assigned[seat.Role][seat.ID] = a.Seats[i][q]
		}

		events[i] = models.Event{
			StageName:   sv.Name,
			Duration:    grid.Minutes(sv.DurationSlots),
			Start:       grid.Time(start).Format(timegrid.ISOFormat),
			End:         grid.Time(end).Format(timegrid.ISOFormat),
			Assignments: assigned,
		}
	}

	metrics := ComputeMetrics(events)
	return models.Schedule{
		Score:   metrics.Efficiency,
		Events:  events,
		Metrics: metrics,
	}
}

// ComputeMetrics derives span, idle time, and efficiency for a schedule.
// A zero-span schedule is defined to be perfectly efficient (1.0); the
// degenerate case must never divide by zero.
func ComputeMetrics(events []models.Event) models.ScheduleMetrics {
	if len(events) == 0 {
		return models.ScheduleMetrics{Efficiency: 1.0}
	}

	first, _ := time.Parse(timegrid.ISOFormat, events[0].Start)
	last := first
	totalDuration := 0
	for _, e := range events {
		s, _ := time.Parse(timegrid.ISOFormat, e.Start)
		en, _ := time.Parse(timegrid.ISOFormat, e.End)
		if s.Before(first) {
			first = s
		}
		if en.After(last) {
			last = en
		}
		totalDuration += e.Duration
	}

	span := int(last.Sub(first).Minutes())
	if span <= 0 {
		return models.ScheduleMetrics{TotalSpanMinutes: 0, IdleTimeMinutes: 0, Efficiency: 1.0}
	}
	eff := math.Round(float64(totalDuration)/float64(span)*1000) / 1000
	return models.ScheduleMetrics{
		TotalSpanMinutes: span,
		IdleTimeMinutes:  span - totalDuration,
		Efficiency:       eff,
	}
}

// canonicalKey builds the structural identity of a schedule: sorted
// event tuples with sorted assignment triples. Two schedules found via
// different orderings but naming the same placements hash identically.
func canonicalKey(s models.Schedule) string {
	tuples := make([]string, len(s.Events))
	for i, e := range s.Events {
		var pairs []string
		for role, seats := range e.Assignments {
			for seatID, iv := range seats {
				pairs = append(pairs, role+":"+seatID+"="+iv)
			}
		}
		sort.Strings(pairs)
		tuples[i] = e.StageName + "|" + e.Start + "|" + e.End + "|" + strings.Join(pairs, ",")
	}
	sort.Strings(tuples)
	return strings.Join(tuples, ";")
}
