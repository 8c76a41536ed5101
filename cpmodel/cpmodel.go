// Package cpmodel translates one stage ordering plus the request's
// business rules into a discrete constraint model over start slots and
// seat assignments, ready for a solver adapter.
package cpmodel

import (
	"fmt"
	"sort"

	"interview-scheduler/errors"
	"interview-scheduler/models"
	"interview-scheduler/timegrid"
)

// Context holds the request-scoped, pre-quantized inputs shared by every
// per-ordering build. It is read-only after NewContext returns, so
// concurrent builds need no locking.
type Context struct {
	Grid         *timegrid.Grid
	Windows      []timegrid.SlotWindow
	Horizon      int
	Busy         map[string][]timegrid.SlotWindow
	Interviewers map[string]models.Interviewer
	Stages       []models.Stage
	Pools        [][][]string // stage -> seat -> eligible interviewer ids

	WeeklyLimit  int
	GapSlots     int
	SameDay      bool
	DistinctDays bool
}

// NewContext validates and quantizes the request once. All failures here
// are input errors surfaced before any solving starts.
func NewContext(grid *timegrid.Grid, req *models.Request) (*Context, error) {
	if req.ScheduleOnSameDay && req.RequireDistinctDays {
		return nil, &errors.InputError{
			Field: "schedule_on_same_day/require_distinct_days",
			Err:   errors.ErrConflictingPolicy,
		}
	}

	c := &Context{
		Grid:         grid,
		Busy:         make(map[string][]timegrid.SlotWindow),
		Interviewers: make(map[string]models.Interviewer, len(req.Interviewers)),
		Stages:       req.Stages,
		WeeklyLimit:  req.WeeklyLimit,
		GapSlots:     grid.Slots(req.MinGapMinutes),
		SameDay:      req.ScheduleOnSameDay,
		DistinctDays: req.RequireDistinctDays,
	}
	if req.MinGapMinutes <= 0 {
		c.GapSlots = 0
	}

	for _, w := range req.Windows {
		sw, err := grid.QuantizeWindow(w)
		if err != nil {
			return nil, err
		}
		c.Windows = append(c.Windows, sw)
		if sw.End > c.Horizon {
			c.Horizon = sw.End
		}
	}
	sort.Slice(c.Windows, func(i, j int) bool { return c.Windows[i].Start < c.Windows[j].Start })

	for _, b := range req.BusyIntervals {
		sb, err := grid.QuantizeBusy(b)
		if err != nil {
			return nil, err
		}
		c.Busy[b.InterviewerID] = append(c.Busy[b.InterviewerID], sb)
	}

	for _, iv := range req.Interviewers {
		c.Interviewers[iv.ID] = iv
	}

	if err := c.buildPools(req); err != nil {
		return nil, err
	}
	if c.DistinctDays {
		if err := c.checkDistinctDayCapacity(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// buildPools resolves each seat's eligible interviewers from the role
// mapping: an interviewer fills a seat only when their mode matches the
// seat's role tag. Candidates are ordered by trailing load so lower-load
// interviewers are tried first (fairness as a branching heuristic).
func (c *Context) buildPools(req *models.Request) error {
	c.Pools = make([][][]string, len(req.Stages))
	for si, stage := range req.Stages {
		c.Pools[si] = make([][]string, len(stage.Seats))
		for qi, seat := range stage.Seats {
			var pool []string
			for _, iv := range req.Interviewers {
				if iv.Role == seat.Role {
					pool = append(pool, iv.ID)
				}
			}
			if len(pool) == 0 {
				return &errors.InputError{
					Field:  "stages",
					Detail: fmt.Sprintf("stage %q seat %q role %q", stage.Name, seat.ID, seat.Role),
					Err:    errors.ErrEmptyPool,
				}
			}
			sort.Slice(pool, func(a, b int) bool {
				la, lb := c.Interviewers[pool[a]].TrailingLoad, c.Interviewers[pool[b]].TrailingLoad
				if la != lb {
					return la < lb
				}
				return pool[a] < pool[b]
			})
			c.Pools[si][qi] = pool
		}
	}
	return nil
}

// checkDistinctDayCapacity fails fast when the availability windows span
// fewer calendar days than there are stages.
func (c *Context) checkDistinctDayCapacity() error {
	days := make(map[int]bool)
	for _, w := range c.Windows {
		for s := w.Start; s < w.End; s++ {
			days[c.Grid.DayKey(s)] = true
		}
	}
	if len(days) < len(c.Stages) {
		return &errors.InputError{
			Field:  "availability_windows",
			Detail: fmt.Sprintf("%d days for %d stages", len(days), len(c.Stages)),
			Err:    errors.ErrNotEnoughDays,
		}
	}
	return nil
}

// StageVar is the decision problem for one stage in the ordering: pick
// one start slot from the domain and one candidate per seat.
type StageVar struct {
	StageIndex    int // index into the original request stage list
	Name          string
	DurationSlots int
	StartDomain   []int // sorted ascending
	Seats         []SeatVar
}

// SeatVar pairs a seat with its eligible candidates, fairness-ordered.
type SeatVar struct {
	ID         string
	Role       string
	Candidates []string
}

// Model is a solver-ready constraint problem for a single ordering.
// Stage variables appear in ordering (sequence) order; all remaining
// constraints (precedence gap, day policy, busy exclusion, workload,
// per-stage exclusivity) are evaluated against the shared Context.
type Model struct {
	Ctx      *Context
	Ordering models.Ordering
	Stages   []StageVar
}

// Build constructs the model for one ordering or reports, without any
// solver involvement, that the ordering is trivially infeasible
// (ErrInfeasible). ErrInvalidModel covers malformed stage data that
// request validation should have rejected already.
func (c *Context) Build(ordering models.Ordering) (*Model, error) {
	m := &Model{
		Ctx:      c,
		Ordering: ordering,
		Stages:   make([]StageVar, len(ordering)),
	}

	for pos, si := range ordering {
		if si < 0 || si >= len(c.Stages) {
			return nil, fmt.Errorf("%w: ordering references stage %d", errors.ErrInvalidModel, si)
		}
		stage := c.Stages[si]
		if stage.Duration <= 0 || len(stage.Seats) == 0 {
			return nil, fmt.Errorf("%w: stage %q", errors.ErrInvalidModel, stage.Name)
		}

		dur := c.Grid.Slots(stage.Duration)
		domain := c.startDomain(dur)
		if len(domain) == 0 {
			return nil, fmt.Errorf("%w: stage %q fits no window", errors.ErrInfeasible, stage.Name)
		}

		seats := make([]SeatVar, len(stage.Seats))
		for qi, seat := range stage.Seats {
			pool := c.Pools[si][qi]
			if len(pool) == 0 {
				return nil, fmt.Errorf("%w: empty pool for seat %q", errors.ErrInvalidModel, seat.ID)
			}
			seats[qi] = SeatVar{ID: seat.ID, Role: seat.Role, Candidates: pool}
		}

		m.Stages[pos] = StageVar{
			StageIndex:    si,
			Name:          stage.Name,
			DurationSlots: dur,
			StartDomain:   domain,
			Seats:         seats,
		}
	}

	if !m.chainFits() {
		return nil, fmt.Errorf("%w: sequence cannot fit the availability", errors.ErrInfeasible)
	}
	return m, nil
}

// startDomain enumerates every start slot where a stage of the given
// duration lies entirely inside one availability window (containment:
// never split across a window boundary). Under a day policy, starts
// whose interval crosses a calendar day are dropped too.
func (c *Context) startDomain(durationSlots int) []int {
	seen := make(map[int]bool)
	var domain []int
	for _, w := range c.Windows {
		for s := w.Start; s+durationSlots <= w.End; s++ {
			if seen[s] {
				continue
			}
			if (c.SameDay || c.DistinctDays) && c.Grid.DayKey(s) != c.Grid.DayKey(s+durationSlots-1) {
				continue
			}
			seen[s] = true
			domain = append(domain, s)
		}
	}
	sort.Ints(domain)
	return domain
}

// chainFits runs a relaxation of the precedence constraints alone: walk
// the ordering greedily taking the earliest start compatible with the
// previous stage's end plus the gap. If even this fails there is no
// point invoking the solver.
func (m *Model) chainFits() bool {
	minStart := 0
	for _, sv := range m.Stages {
		idx := sort.SearchInts(sv.StartDomain, minStart)
		if idx == len(sv.StartDomain) {
			return false
		}
		minStart = sv.StartDomain[idx] + sv.DurationSlots + m.Ctx.GapSlots
	}
	return true
}

// Overlaps reports whether the interviewer has a busy interval
// intersecting [start, end).
func (c *Context) Overlaps(interviewerID string, start, end int) bool {
	for _, b := range c.Busy[interviewerID] {
		if b.Start < end && start < b.End {
			return true
		}
	}
	return false
}

// Remaining returns how many more stages the interviewer may take this
// period before hitting the weekly limit.
func (c *Context) Remaining(interviewerID string) int {
	iv, ok := c.Interviewers[interviewerID]
	if !ok {
		return 0
	}
	r := c.WeeklyLimit - iv.CurrentLoad
	if r < 0 {
		return 0
	}
	return r
}
