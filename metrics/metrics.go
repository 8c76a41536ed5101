// Package metrics provides Prometheus observability metrics for the
// interview scheduler: request-level outcomes plus per-ordering solve
// behavior.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// RequestsTotal counts schedule requests by final status (OPTIMAL,
// FEASIBLE, INFEASIBLE, TIMEOUT, or ERROR for rejected input).
var RequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "scheduler",
	Name:      "requests_total",
	Help:      "Schedule requests by final status",
}, []string{"status"})

// RequestDuration tracks end-to-end request handling time.
var RequestDuration = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "scheduler",
	Name:      "request_duration_seconds",
	Help:      "Time taken to serve a schedule request",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
})

// OrderingsPerRequest tracks how many stage orderings each request expands to.
var OrderingsPerRequest = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "scheduler",
	Name:      "orderings_per_request",
	Help:      "Number of stage orderings enumerated per request",
	Buckets:   []float64{1, 2, 6, 24, 120, 720, 5040},
})

// SolveDuration tracks the wall-clock time of one per-ordering solve.
var SolveDuration = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "solver",
	Name:      "solve_duration_seconds",
	Help:      "Time taken to solve one ordering's model",
	Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
})

// SolutionsFound counts raw assignments returned across all solves.
var SolutionsFound = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "solver",
	Name:      "solutions_found_total",
	Help:      "Raw assignments returned by the solver across all orderings",
})

// InfeasibleOrderings counts orderings the builder or solver ruled out.
var InfeasibleOrderings = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "solver",
	Name:      "infeasible_orderings_total",
	Help:      "Orderings determined infeasible",
})

// OrderingFailures counts unexpected per-ordering failures (excluded
// from aggregation, never fatal for the request).
var OrderingFailures = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "solver",
	Name:      "ordering_failures_total",
	Help:      "Orderings dropped due to unexpected solver or builder failure",
})

// SchedulesReturned tracks the ranked answer-set size per request.
var SchedulesReturned = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "scheduler",
	Name:      "schedules_returned",
	Help:      "Number of ranked schedules returned per request",
	Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
})

// DuplicatesDropped counts cross-ordering structural duplicates removed
// during aggregation.
var DuplicatesDropped = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "scheduler",
	Name:      "duplicates_dropped_total",
	Help:      "Structurally identical schedules collapsed during aggregation",
})
