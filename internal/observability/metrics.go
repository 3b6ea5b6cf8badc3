package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionRead  = "read"
	DirectionWrite = "write"
)

var (
	registerOnce sync.Once

	frameMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencode",
			Subsystem: "frame",
			Name:      "messages_total",
			Help:      "Framed messages read or written.",
		},
		[]string{"direction", "compressed"},
	)
	frameBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bencode",
			Subsystem: "frame",
			Name:      "payload_bytes",
			Help:      "Bencoded payload size per framed message, before compression.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"direction"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencode",
			Subsystem: "codec",
			Name:      "decode_errors_total",
			Help:      "Rejected messages by decode error kind.",
		},
		[]string{"kind"},
	)
)

// RegisterMetrics adds the collectors to the default registry once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(frameMessages, frameBytes, decodeErrors)
	})
}

func RecordFrame(direction string, payloadBytes int, compressed bool) {
	RegisterMetrics()
	frameMessages.WithLabelValues(direction, strconv.FormatBool(compressed)).Inc()
	frameBytes.WithLabelValues(direction).Observe(float64(payloadBytes))
}

func RecordDecodeError(kind string) {
	RegisterMetrics()
	decodeErrors.WithLabelValues(kind).Inc()
}
