package api

import (
	"fmt"
	"time"

	apperrors "interview-scheduler/errors"
	"interview-scheduler/models"
	"interview-scheduler/timegrid"
)

// scheduleRequest is the wire shape of POST /schedule. Validation tags
// cover structure; timestamp parsing and cross-field rules happen in
// toModel and the core.
type scheduleRequest struct {
	Stages        []stageInput        `json:"stages" validate:"required,min=1,dive"`
	Interviewers  []interviewerInput  `json:"interviewers" validate:"required,min=1,dive"`
	Windows       []windowInput       `json:"availability_windows" validate:"required,min=1,dive"`
	BusyIntervals []busyIntervalInput `json:"busy_intervals" validate:"dive"`

	TimeStepMinutes     *int     `json:"time_step_minutes"`
	WeeklyLimit         *int     `json:"weekly_limit"`
	MaxTimeSeconds      *float64 `json:"max_time_seconds"`
	RequireDistinctDays *bool    `json:"require_distinct_days"`
	ScheduleOnSameDay   *bool    `json:"schedule_on_same_day"`
	TopKSolutions       *int     `json:"top_k_solutions" validate:"omitempty,min=1"`
	DailyStart          *string  `json:"daily_availability_start"`
	DailyEnd            *string  `json:"daily_availability_end"`
	MinGapBetweenStages *int     `json:"min_gap_between_stages" validate:"omitempty,min=0"`
}

type stageInput struct {
	StageName string      `json:"stage_name" validate:"required"`
	Duration  int         `json:"duration" validate:"required,gt=0"`
	IsFixed   bool        `json:"is_fixed"`
	Seats     []seatInput `json:"seats" validate:"required,min=1,dive"`
}

type seatInput struct {
	SeatID string `json:"seat_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=trained shadow reverse_shadow"`
}

type interviewerInput struct {
	ID           string `json:"id" validate:"required"`
	CurrentLoad  int    `json:"current_load" validate:"min=0"`
	TrailingLoad int    `json:"trailing_load" validate:"min=0"`
	Role         string `json:"role" validate:"required,oneof=trained shadow reverse_shadow"`
}

type windowInput struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type busyIntervalInput struct {
	InterviewerID string `json:"interviewer_id" validate:"required"`
	Start         string `json:"start" validate:"required"`
	End           string `json:"end" validate:"required"`
}

// scheduleResponse mirrors the original service's response: schedules
// keyed schedule1..scheduleN in rank order.
type scheduleResponse struct {
	Status    string                     `json:"status"`
	Schedules map[string]models.Schedule `json:"schedules"`
}

// Defaults applied when a knob is omitted.
const (
	defaultTimeStepMinutes = 15
	defaultWeeklyLimit     = 5
	defaultMaxTimeSeconds  = 30.0
	defaultTopK            = 50
	defaultDailyStart      = "09:00"
	defaultDailyEnd        = "17:00"
)

// toModel converts the validated wire request into the core's typed
// request, applying defaults and parsing timestamps.
func (r *scheduleRequest) toModel() (*models.Request, error) {
	req := &models.Request{
		TimeStepMinutes:   defaultTimeStepMinutes,
		WeeklyLimit:       defaultWeeklyLimit,
		MaxTime:           time.Duration(defaultMaxTimeSeconds * float64(time.Second)),
		ScheduleOnSameDay: true,
		TopK:              defaultTopK,
		DailyStart:        defaultDailyStart,
		DailyEnd:          defaultDailyEnd,
	}
	if r.TimeStepMinutes != nil {
		req.TimeStepMinutes = *r.TimeStepMinutes
	}
	if r.WeeklyLimit != nil {
		req.WeeklyLimit = *r.WeeklyLimit
	}
	if r.MaxTimeSeconds != nil {
		req.MaxTime = time.Duration(*r.MaxTimeSeconds * float64(time.Second))
	}
	if r.RequireDistinctDays != nil {
		req.RequireDistinctDays = *r.RequireDistinctDays
	}
	if r.ScheduleOnSameDay != nil {
		req.ScheduleOnSameDay = *r.ScheduleOnSameDay
	}
	if r.TopKSolutions != nil {
		req.TopK = *r.TopKSolutions
	}
	if r.DailyStart != nil {
		req.DailyStart = *r.DailyStart
	}
	if r.DailyEnd != nil {
		req.DailyEnd = *r.DailyEnd
	}
	if r.MinGapBetweenStages != nil {
		req.MinGapMinutes = *r.MinGapBetweenStages
	}

	for _, s := range r.Stages {
		stage := models.Stage{
			Name:     s.StageName,
			Duration: s.Duration,
			Fixed:    s.IsFixed,
		}
		for _, seat := range s.Seats {
			stage.Seats = append(stage.Seats, models.Seat{ID: seat.SeatID, Role: seat.Role})
		}
		req.Stages = append(req.Stages, stage)
	}

	for _, iv := range r.Interviewers {
		req.Interviewers = append(req.Interviewers, models.Interviewer{
			ID:           iv.ID,
			CurrentLoad:  iv.CurrentLoad,
			TrailingLoad: iv.TrailingLoad,
			Role:         iv.Role,
		})
	}

	for i, w := range r.Windows {
		start, err := parseISO("availability_windows", i, w.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseISO("availability_windows", i, w.End)
		if err != nil {
			return nil, err
		}
		req.Windows = append(req.Windows, models.AvailabilityWindow{Start: start, End: end})
	}

	for i, b := range r.BusyIntervals {
		start, err := parseISO("busy_intervals", i, b.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseISO("busy_intervals", i, b.End)
		if err != nil {
			return nil, err
		}
		req.BusyIntervals = append(req.BusyIntervals, models.BusyInterval{
			InterviewerID: b.InterviewerID,
			Start:         start,
			End:           end,
		})
	}
	return req, nil
}

func parseISO(field string, index int, value string) (time.Time, error) {
	t, err := time.Parse(timegrid.ISOFormat, value)
	if err != nil {
		return time.Time{}, &apperrors.InputError{
			Field:  field,
			Detail: fmt.Sprintf("entry %d: %q is not %s", index, value, timegrid.ISOFormat),
			Err:    apperrors.ErrInvalidWindow,
		}
	}
	return t, nil
}

// buildResponse names ranked schedules schedule1..scheduleN.
func buildResponse(res *models.Result) scheduleResponse {
	out := scheduleResponse{
		Status:    string(res.Status),
		Schedules: make(map[string]models.Schedule, len(res.Schedules)),
	}
	for i, s := range res.Schedules {
		out.Schedules[fmt.Sprintf("schedule%d", i+1)] = s
	}
	return out
}
