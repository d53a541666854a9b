// Package metrics exports buffer pool telemetry as Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/holmberd/go-binpool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace    = "binpool"
	subsystem    = "buffers"
	labelManager = "manager"
)

// Collectors holds the metric vectors shared by all pool observers of a registry.
type Collectors struct {
	current   *prometheus.GaugeVec
	highWater *prometheus.GaugeVec
	total     *prometheus.GaugeVec
	noBuffers *prometheus.CounterVec
	empty     *prometheus.CounterVec
}

// NewCollectors creates the pool metric vectors and registers them with reg.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		current: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "current",
				Help:      "Number of buffers currently allocated.",
			}, []string{labelManager}),
		highWater: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "high_water",
				Help:      "Maximum number of simultaneously allocated buffers.",
			}, []string{labelManager}),
		total: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "total",
				Help:      "Number of buffers tracked by the pool.",
			}, []string{labelManager}),
		noBuffers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "no_buffers_total",
				Help:      "Total number of acquire requests that found no buffer.",
			}, []string{labelManager}),
		empty: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "empty_buffers_total",
				Help:      "Total number of zero-size buffers released.",
			}, []string{labelManager}),
	}
	for _, col := range []prometheus.Collector{c.current, c.highWater, c.total, c.noBuffers, c.empty} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observer records the events of one pool into Collectors.
type Observer struct {
	current   prometheus.Gauge
	highWater prometheus.Gauge
	total     prometheus.Gauge
	noBuffers prometheus.Counter
	empty     prometheus.Counter
}

// Observer returns an observer labelled with managerID.
func (c *Collectors) Observer(managerID uint32) *Observer {
	m := strconv.FormatUint(uint64(managerID), 10)
	return &Observer{
		current:   c.current.WithLabelValues(m),
		highWater: c.highWater.WithLabelValues(m),
		total:     c.total.WithLabelValues(m),
		noBuffers: c.noBuffers.WithLabelValues(m),
		empty:     c.empty.WithLabelValues(m),
	}
}

func (o *Observer) CurrentCountChanged(n int) { o.current.Set(float64(n)) }
func (o *Observer) HighWaterChanged(n int)    { o.highWater.Set(float64(n)) }
func (o *Observer) NoBufferAvailable(int)     { o.noBuffers.Inc() }
func (o *Observer) EmptyBufferWarning()       { o.empty.Inc() }
func (o *Observer) PoolReady(total int)       { o.total.Set(float64(total)) }

var (
	_ binpool.Observer      = (*Observer)(nil)
	_ binpool.ReadyObserver = (*Observer)(nil)
)
