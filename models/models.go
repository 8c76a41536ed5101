package models

import "time"

// Interviewer roles. A seat's role tag selects which interviewers are
// eligible to fill it; the set is a fixed enumeration, not open-ended.
const (
	RoleTrained       = "trained"
	RoleShadow        = "shadow"
	RoleReverseShadow = "reverse_shadow"
)

// ValidRole reports whether r is one of the known role tags.
func ValidRole(r string) bool {
	return r == RoleTrained || r == RoleShadow || r == RoleReverseShadow
}

// Seat is a role-tagged position within a stage that must be filled by
// exactly one eligible interviewer.
type Seat struct {
	ID   string
	Role string
}

// Stage is one interview round. Duration is in minutes; the time grid
// rounds it up to whole slots. Fixed stages keep their position in the
// input order across every enumerated ordering.
type Stage struct {
	Name     string
	Duration int
	Fixed    bool
	Seats    []Seat
}

// Interviewer holds the load bookkeeping used for workload limits and
// fairness. Shared read-only across all model builds within one request.
type Interviewer struct {
	ID           string
	CurrentLoad  int
	TrailingLoad int
	Role         string
}

// AvailabilityWindow bounds when stages may be scheduled. Multiple
// windows form a union; a stage must fit entirely inside one window.
type AvailabilityWindow struct {
	Start time.Time
	End   time.Time
}

// BusyInterval is a hard exclusion: the interviewer cannot be assigned
// to any stage overlapping [Start, End).
type BusyInterval struct {
	InterviewerID string
	Start         time.Time
	End           time.Time
}

// Ordering is one total sequencing of stages, expressed as a permutation
// of indices into the request's stage list. Fixed stages occupy their
// original positions.
type Ordering []int

// Request is the already-validated, already-typed input to the core.
// The transport layer owns parsing and schema validation.
type Request struct {
	Stages        []Stage
	Interviewers  []Interviewer
	Windows       []AvailabilityWindow
	BusyIntervals []BusyInterval

	TimeStepMinutes     int
	WeeklyLimit         int
	MaxTime             time.Duration
	RequireDistinctDays bool
	ScheduleOnSameDay   bool
	TopK                int
	DailyStart          string // "HH:MM", clips every window's time of day
	DailyEnd            string
	MinGapMinutes       int
}

// Event is the concrete placement of one stage: wall-clock bounds plus
// the chosen interviewer per role per seat (role -> seat id -> interviewer).
type Event struct {
	StageName   string                       `json:"stage_name"`
	Duration    int                          `json:"duration"`
	Start       string                       `json:"start"`
	End         string                       `json:"end"`
	Assignments map[string]map[string]string `json:"assignments"`
}

// ScheduleMetrics are derived per schedule: span from first start to last
// end, idle time inside the span, and occupied fraction of the span.
type ScheduleMetrics struct {
	TotalSpanMinutes int     `json:"total_span_minutes"`
	IdleTimeMinutes  int     `json:"idle_time_minutes"`
	Efficiency       float64 `json:"efficiency"`
}

// Schedule is one ranked answer: events in stage-sequence order with
// derived metrics and a score.
type Schedule struct {
	Score   float64         `json:"score"`
	Events  []Event         `json:"events"`
	Metrics ScheduleMetrics `json:"metrics"`
}

// Status is the outcome vocabulary shared by the solver adapter, the
// aggregator, and the API response.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimeout    Status = "TIMEOUT"
)

// Result is the ranked top-K answer set for one request.
type Result struct {
	Status    Status
	Schedules []Schedule
}
