// Package metrics wires the ambient /metrics surface: a mode gauge,
// connected-viewer gauge, bytes-relayed counter, and subprocess-restart
// counter, exposed via promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mode is 0=idle, 1=starting, 2=live — set by the API layer on every
	// transition.
	Mode = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "multiview",
		Name:      "mode",
		Help:      "Current broadcast mode: 0=idle, 1=starting, 2=live.",
	})

	ConnectedViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "multiview",
		Name:      "connected_viewers",
		Help:      "Number of currently attached /stream viewers.",
	})

	BytesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "multiview",
		Name:      "bytes_relayed_total",
		Help:      "Total bytes read from the subprocess and fanned out to viewers.",
	})

	SubprocessRestarts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "multiview",
		Name:      "subprocess_restarts_total",
		Help:      "Number of times the media subprocess was started (cold start, replace, or recycle).",
	})
)

// ModeValue maps a broadcast.Mode string to the numeric gauge value.
func ModeValue(mode string) float64 {
	switch mode {
	case "idle":
		return 0
	case "starting":
		return 1
	case "live":
		return 2
	default:
		return -1
	}
}
