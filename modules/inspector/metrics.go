package inspector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "adtsinfo"

var (
	metricFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "files_total",
		Help:      "Inputs inspected, by result: ok, invalid (a header field failed) or error (source unreadable).",
	}, []string{"result"})

	metricFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "frames_total",
		Help:      "ADTS frames counted across all inspections.",
	})

	metricFieldFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "field_failures_total",
		Help:      "Header fields that failed to decode, by field.",
	}, []string{"field"})

	metricLastFrames = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "last_frames",
		Help:      "Frame count from the most recent inspection of each path.",
	}, []string{"path"})
)

const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultError   = "error"
)
