package solver

import (
	"context"

	"interview-scheduler/cpmodel"
	"interview-scheduler/models"
)

// deadlineCheckInterval is how many search nodes pass between context
// polls. Polling every node doubles the cost of tight searches.
const deadlineCheckInterval = 1024

// Backtracking is the default solving engine: chronological depth-first
// search over start slots and seat assignments. Start slots are tried
// earliest-first, which keeps the span of early solutions small, and
// seat candidates in the model's fairness order. Every leaf reached is a
// distinct assignment by construction.
//
// Status semantics: OPTIMAL when the enumeration terminated on its own
// (domain exhausted or want-k collected), FEASIBLE when the deadline hit
// with at least one assignment in hand, TIMEOUT when it hit with none,
// INFEASIBLE when the exhausted search found nothing.
type Backtracking struct{}

// NewBacktracking returns the default engine.
func NewBacktracking() *Backtracking {
	return &Backtracking{}
}

type search struct {
	ctx   context.Context
	model *cpmodel.Model
	wantK int

	starts    []int
	seats     [][]string
	remaining map[string]int
	days      []int // chosen day key per placed stage

	found     []Assignment
	nodes     int
	cancelled bool
}

// Solve runs the search. It never returns an error: malformed models
// are the builder's problem, and deadline expiry is a status.
func (b *Backtracking) Solve(ctx context.Context, m *cpmodel.Model, wantK int) Result {
	if wantK < 1 {
		wantK = 1
	}
	select {
	case <-ctx.Done():
		return Result{Status: models.StatusTimeout}
	default:
	}
	s := &search{
		ctx:       ctx,
		model:     m,
		wantK:     wantK,
		starts:    make([]int, len(m.Stages)),
		seats:     make([][]string, len(m.Stages)),
		remaining: make(map[string]int),
		days:      make([]int, len(m.Stages)),
	}
	for i, sv := range m.Stages {
		s.seats[i] = make([]string, len(sv.Seats))
		for _, seat := range sv.Seats {
			for _, id := range seat.Candidates {
				if _, ok := s.remaining[id]; !ok {
					s.remaining[id] = m.Ctx.Remaining(id)
				}
			}
		}
	}

	s.placeStage(0, 0)

	switch {
	case s.cancelled && len(s.found) == 0:
		return Result{Status: models.StatusTimeout}
	case s.cancelled:
		return Result{Status: models.StatusFeasible, Assignments: s.found}
	case len(s.found) == 0:
		return Result{Status: models.StatusInfeasible}
	default:
		return Result{Status: models.StatusOptimal, Assignments: s.found}
	}
}

// expired polls the context deadline cooperatively.
func (s *search) expired() bool {
	s.nodes++
	if s.nodes%deadlineCheckInterval == 0 {
		select {
		case <-s.ctx.Done():
			s.cancelled = true
		default:
		}
	}
	return s.cancelled
}

// placeStage chooses a start slot for stage i, honoring precedence and
// the day policy, then fills its seats. Returns false to stop the whole
// search (quota met or deadline hit).
func (s *search) placeStage(i, minStart int) bool {
	if i == len(s.model.Stages) {
		return s.record()
	}
	sv := s.model.Stages[i]
	ctx := s.model.Ctx
	for _, start := range sv.StartDomain {
		if start < minStart {
			continue
		}
		if s.expired() {
			return false
		}
		day := ctx.Grid.DayKey(start)
		if !s.dayAllowed(i, day) {
			continue
		}
		s.starts[i] = start
		s.days[i] = day
		if !s.fillSeat(i, 0, start, start+sv.DurationSlots) {
			return false
		}
	}
	return true
}

// dayAllowed applies the day policy against the stages placed so far.
func (s *search) dayAllowed(i, day int) bool {
	ctx := s.model.Ctx
	if ctx.SameDay {
		return i == 0 || day == s.days[0]
	}
	if ctx.DistinctDays {
		for j := range i {
			if s.days[j] == day {
				return false
			}
		}
	}
	return true
}

// fillSeat assigns seat q of stage i: candidates must have workload
// budget left, no busy overlap with the stage interval, and must not
// already hold another seat on the same stage.
func (s *search) fillSeat(i, q, start, end int) bool {
	sv := s.model.Stages[i]
	if q == len(sv.Seats) {
		minNext := end + s.model.Ctx.GapSlots
		return s.placeStage(i+1, minNext)
	}
	for _, id := range sv.Seats[q].Candidates {
		if s.expired() {
			return false
		}
		if s.remaining[id] <= 0 {
			continue
		}
		if s.usedInStage(i, q, id) {
			continue
		}
		if s.model.Ctx.Overlaps(id, start, end) {
			continue
		}
		s.seats[i][q] = id
		s.remaining[id]--
		ok := s.fillSeat(i, q+1, start, end)
		s.remaining[id]++
		s.seats[i][q] = ""
		if !ok {
			return false
		}
	}
	return true
}

// usedInStage reports whether the interviewer already holds one of the
// earlier seats on stage i. One stage occupies one block of time, so a
// single person cannot sit twice in it.
func (s *search) usedInStage(i, q int, id string) bool {
	for j := range q {
		if s.seats[i][j] == id {
			return true
		}
	}
	return false
}

// record captures the current complete valuation. Returns false once
// the want-k quota is met.
func (s *search) record() bool {
	a := Assignment{
		Starts: append([]int(nil), s.starts...),
		Seats:  make([][]string, len(s.seats)),
	}
	for i, row := range s.seats {
		a.Seats[i] = append([]string(nil), row...)
	}
	s.found = append(s.found, a)
	return len(s.found) < s.wantK
}
