package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BusSubscribers tracks how many active subscriptions each named bus
	// (upstream, internal, sys) currently has.
	BusSubscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "striem_bus_subscribers",
			Help: "Active subscriptions on a broadcast bus",
		},
		[]string{"bus"},
	)

	// BusDropsTotal counts batches a subscriber had to drop because it fell
	// behind the bus's bounded per-subscriber ring buffer.
	BusDropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "striem_bus_drops_total",
			Help: "Batches dropped because a subscriber lagged behind a bus",
		},
		[]string{"bus"},
	)

	// EventsIngestedTotal counts events accepted by the ingest server.
	EventsIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "striem_events_ingested_total",
			Help: "Total events accepted by the ingest server",
		},
	)

	// ConversionFailuresTotal counts JSON-to-columnar conversion failures,
	// split by whether the failing field was required or optional.
	ConversionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "striem_conversion_failures_total",
			Help: "Columnar conversion failures by field requiredness",
		},
		[]string{"kind"},
	)

	// WriteFailuresTotal counts failed Writer.Write calls by OCSF class.
	WriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "striem_write_failures_total",
			Help: "Columnar write failures by class",
		},
		[]string{"class"},
	)

	// RotationsTotal counts writer rotations by outcome (finalized, discarded-empty, failed).
	RotationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "striem_rotations_total",
			Help: "Writer rotation outcomes by class and result",
		},
		[]string{"class", "outcome"},
	)

	// RoutingFailuresTotal counts events dropped for an unrecognized or
	// missing class_uid.
	RoutingFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "striem_routing_failures_total",
			Help: "Events dropped for missing or unrecognized class_uid",
		},
	)

	// DetectionMatchDuration times one detection worker apply() cycle.
	DetectionMatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "striem_detection_match_duration_seconds",
			Help:    "Time spent matching one event against the rule collection",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FindingsTotal counts detection findings produced, by rule id.
	FindingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "striem_findings_total",
			Help: "Detection findings produced by rule id",
		},
		[]string{"rule_id"},
	)

	// RulesLoaded reports how many rules are currently enabled in the
	// collection.
	RulesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "striem_rules_loaded",
			Help: "Number of detection rules currently loaded",
		},
	)

	// ForwarderReconnectsTotal counts forwarder connections established
	// (the first and every later one); failed attempts are not counted.
	ForwarderReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "striem_forwarder_reconnects_total",
			Help: "Forwarder client connections established to the downstream target",
		},
	)
)

func init() {
	prometheus.MustRegister(BusSubscribers)
	prometheus.MustRegister(BusDropsTotal)
	prometheus.MustRegister(EventsIngestedTotal)
	prometheus.MustRegister(ConversionFailuresTotal)
	prometheus.MustRegister(WriteFailuresTotal)
	prometheus.MustRegister(RotationsTotal)
	prometheus.MustRegister(RoutingFailuresTotal)
	prometheus.MustRegister(DetectionMatchDuration)
	prometheus.MustRegister(FindingsTotal)
	prometheus.MustRegister(RulesLoaded)
	prometheus.MustRegister(ForwarderReconnectsTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
