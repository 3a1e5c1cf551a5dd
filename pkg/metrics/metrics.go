// Package metrics provides Prometheus collectors for worker pool activity
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus collectors updated by a pool.
// All methods are safe to call on a nil *Collector.
type Collector struct {
	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    prometheus.Counter
	Workers       prometheus.Gauge
	BusyWorkers   prometheus.Gauge
	QueueDepth    prometheus.Gauge
	JobDuration   prometheus.Histogram
}

// NewCollector creates an unregistered collector set
func NewCollector(namespace, subsystem string) *Collector {
	return &Collector{
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs accepted by the pool",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs that ran to completion",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_failed_total",
			Help:      "Total number of jobs that panicked or could not be invoked",
		}),
		Workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers",
			Help:      "Number of live worker goroutines",
		}),
		BusyWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "busy_workers",
			Help:      "Number of workers currently executing a job",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Number of jobs waiting for a worker",
		}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Histogram of job execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.JobsSubmitted,
		c.JobsCompleted,
		c.JobsFailed,
		c.Workers,
		c.BusyWorkers,
		c.QueueDepth,
		c.JobDuration,
	}
}

// Register registers every collector with reg. Collectors that are already
// registered are left in place.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if c == nil {
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	for _, collector := range c.collectors() {
		if err := reg.Register(collector); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// Enqueued records a job about to be sent to the queue. It must precede
// the send so QueueDepth never goes negative.
func (c *Collector) Enqueued() {
	if c == nil {
		return
	}
	c.QueueDepth.Inc()
}

// Rejected undoes Enqueued for a job the queue refused
func (c *Collector) Rejected() {
	if c == nil {
		return
	}
	c.QueueDepth.Dec()
}

// Submitted records a job accepted into the queue
func (c *Collector) Submitted() {
	if c == nil {
		return
	}
	c.JobsSubmitted.Inc()
}

// Started records a worker taking a job off the queue
func (c *Collector) Started() {
	if c == nil {
		return
	}
	c.QueueDepth.Dec()
	c.BusyWorkers.Inc()
}

// Finished records the end of a job execution
func (c *Collector) Finished(d time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.BusyWorkers.Dec()
	c.JobDuration.Observe(d.Seconds())
	if failed {
		c.JobsFailed.Inc()
	} else {
		c.JobsCompleted.Inc()
	}
}

// WorkerStarted records a worker goroutine coming up
func (c *Collector) WorkerStarted() {
	if c == nil {
		return
	}
	c.Workers.Inc()
}

// WorkerStopped records a worker goroutine exiting
func (c *Collector) WorkerStopped() {
	if c == nil {
		return
	}
	c.Workers.Dec()
}
