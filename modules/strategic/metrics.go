package strategic

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "strategic_scheduler"

var (
	metricPlacementsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "placements_accepted_total",
			Help:      "total number of work orders accepted into a period by the placement algorithm",
		},
		[]string{"queue"},
	)

	metricPlacementsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "placements_rejected_total",
			Help:      "total number of candidate placements rejected and requeued",
		},
		[]string{"queue"},
	)

	metricUnschedules = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unschedules_total",
			Help:      "total number of orders unscheduled, by trigger",
		},
		[]string{"reason"},
	)

	metricInvariantViolations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invariant_violations_total",
			Help:      "total number of fatal invariant violations encountered",
		},
	)

	metricObjective = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "objective_value",
			Help:      "objective function value as of the last completed iteration",
		},
	)

	metricQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "queue_depth",
			Help:      "number of orders currently queued, by queue",
		},
		[]string{"queue"},
	)

	metricIterations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "iterations_total",
			Help:      "total number of completed placement iterations",
		},
	)
)

func init() {
	prometheus.MustRegister(
		metricPlacementsAccepted,
		metricPlacementsRejected,
		metricUnschedules,
		metricInvariantViolations,
		metricObjective,
		metricQueueDepth,
		metricIterations,
	)
}
