// Package metrics provides the Prometheus collectors for the shop service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the metrics surface used by the store, controllers and bus.
type Recorder interface {
	RecordStorageFault(op string)
	RecordCheckout(outcome string)
	RecordGatewayLatency(step string, duration time.Duration)
	RecordSignal(signal string)
}

// Checkout outcomes.
const (
	CheckoutSucceeded = "succeeded"
	CheckoutFailed    = "failed"
	CheckoutRejected  = "rejected"
)

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	storageFaults  *prometheus.CounterVec
	checkouts      *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	signals        *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storageFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuta_storage_faults_total",
			Help: "Storage reads, writes and removals that failed and fell back to defaults.",
		}, []string{"op"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuta_checkouts_total",
			Help: "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ayuta_gateway_latency_seconds",
			Help:    "Payment gateway call latency by step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuta_signals_total",
			Help: "Cross-page signals published.",
		}, []string{"signal"}),
	}

	reg.MustRegister(
		c.storageFaults,
		c.checkouts,
		c.gatewayLatency,
		c.signals,
	)

	return c
}

// RecordStorageFault counts a storage operation that failed.
func (c *Collector) RecordStorageFault(op string) {
	c.storageFaults.WithLabelValues(op).Inc()
}

// RecordCheckout counts a checkout attempt.
func (c *Collector) RecordCheckout(outcome string) {
	c.checkouts.WithLabelValues(outcome).Inc()
}

// RecordGatewayLatency observes the duration of a gateway step.
func (c *Collector) RecordGatewayLatency(step string, duration time.Duration) {
	c.gatewayLatency.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordSignal counts a published signal.
func (c *Collector) RecordSignal(signal string) {
	c.signals.WithLabelValues(signal).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordStorageFault(string)                  {}
func (Nop) RecordCheckout(string)                      {}
func (Nop) RecordGatewayLatency(string, time.Duration) {}
func (Nop) RecordSignal(string)                        {}
