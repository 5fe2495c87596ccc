// Package metrics provides Prometheus instrumentation for the store adapter
// and the auth slice.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder is the instrumentation surface used by storage and services.
type Recorder interface {
	RecordStoreRead(key string)
	RecordStoreWrite(key string)
	RecordStoreFailure(key, op string)
	RecordParseFailure(key string)
	RecordAuthAttempt(action string, ok bool)
}

// Collector implements Recorder with Prometheus counters.
type Collector struct {
	storeReads    *prometheus.CounterVec
	storeWrites   *prometheus.CounterVec
	storeFailures *prometheus.CounterVec
	parseFailures *prometheus.CounterVec
	authAttempts  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storeReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_store_reads_total",
			Help: "Store adapter reads by key.",
		}, []string{"key"}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_store_writes_total",
			Help: "Store adapter writes by key.",
		}, []string{"key"}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_store_failures_total",
			Help: "Backend failures by key and operation.",
		}, []string{"key", "op"}),
		parseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_store_parse_failures_total",
			Help: "Malformed persisted values recovered as empty.",
		}, []string{"key"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_auth_attempts_total",
			Help: "Login and signup attempts by outcome.",
		}, []string{"action", "outcome"}),
	}

	reg.MustRegister(
		c.storeReads,
		c.storeWrites,
		c.storeFailures,
		c.parseFailures,
		c.authAttempts,
	)

	return c
}

func (c *Collector) RecordStoreRead(key string) {
	c.storeReads.WithLabelValues(key).Inc()
}

func (c *Collector) RecordStoreWrite(key string) {
	c.storeWrites.WithLabelValues(key).Inc()
}

func (c *Collector) RecordStoreFailure(key, op string) {
	c.storeFailures.WithLabelValues(key, op).Inc()
}

func (c *Collector) RecordParseFailure(key string) {
	c.parseFailures.WithLabelValues(key).Inc()
}

func (c *Collector) RecordAuthAttempt(action string, ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	c.authAttempts.WithLabelValues(action, outcome).Inc()
}

// Nop returns a Recorder that discards everything.
func Nop() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) RecordStoreRead(string) {}
func (nopRecorder) RecordStoreWrite(string) {}
func (nopRecorder) RecordStoreFailure(string, string) {}
func (nopRecorder) RecordParseFailure(string) {}
func (nopRecorder) RecordAuthAttempt(string, bool) {}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
