package taskpool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bridges a [Pool] into a prometheus registry. Gauges reflect the
// live counters (queued, waiting, running, workers); cumulative counters
// (submitted, executed, failed, abandoned, promotions) are exported only
// when the pool was created with [WithMetrics].
//
// Register it like any collector:
//
//	pool, _ := taskpool.New(taskpool.WithMetrics(true))
//	prometheus.MustRegister(taskpool.NewCollector(pool))
type Collector struct {
	pool *Pool

	queued    *prometheus.Desc
	waiting   *prometheus.Desc
	running   *prometheus.Desc
	workers   *prometheus.Desc
	submitted *prometheus.Desc
	executed  *prometheus.Desc
	failed    *prometheus.Desc
	abandoned *prometheus.Desc
	promoted  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a prometheus collector reading from p.
func NewCollector(p *Pool) *Collector {
	return &Collector{
		pool: p,
		queued: prometheus.NewDesc(
			"taskpool_tasks_queued",
			"Current number of tasks in the ready queue.",
			nil, nil),
		waiting: prometheus.NewDesc(
			"taskpool_tasks_waiting",
			"Current number of tasks in the waiting set.",
			nil, nil),
		running: prometheus.NewDesc(
			"taskpool_tasks_running",
			"Current number of tasks executing on workers.",
			nil, nil),
		workers: prometheus.NewDesc(
			"taskpool_workers",
			"Configured worker count.",
			nil, nil),
		submitted: prometheus.NewDesc(
			"taskpool_tasks_submitted_total",
			"Total accepted submissions, deferred included.",
			nil, nil),
		executed: prometheus.NewDesc(
			"taskpool_tasks_executed_total",
			"Total tasks that ran to successful completion.",
			nil, nil),
		failed: prometheus.NewDesc(
			"taskpool_tasks_failed_total",
			"Total tasks that returned an error or panicked.",
			nil, nil),
		abandoned: prometheus.NewDesc(
			"taskpool_tasks_abandoned_total",
			"Total records dropped undispatched by abort, reset or close.",
			nil, nil),
		promoted: prometheus.NewDesc(
			"taskpool_tasks_promoted_total",
			"Total records migrated from the waiting set to the ready queue.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queued
	ch <- c.waiting
	ch <- c.running
	ch <- c.workers
	if c.pool.metrics != nil {
		ch <- c.submitted
		ch <- c.executed
		ch <- c.failed
		ch <- c.abandoned
		ch <- c.promoted
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.queued, prometheus.GaugeValue, float64(c.pool.Queued()))
	ch <- prometheus.MustNewConstMetric(c.waiting, prometheus.GaugeValue, float64(c.pool.Waiting()))
	ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, float64(c.pool.Running()))
	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(c.pool.ThreadCount()))

	m := c.pool.Metrics()
	if m == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue, float64(m.Submitted))
	ch <- prometheus.MustNewConstMetric(c.executed, prometheus.CounterValue, float64(m.Executed))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(m.Failed))
	ch <- prometheus.MustNewConstMetric(c.abandoned, prometheus.CounterValue, float64(m.Abandoned))
	ch <- prometheus.MustNewConstMetric(c.promoted, prometheus.CounterValue, float64(m.Promotions))
}
