// Package metrics exports bridge activity as Prometheus metrics.
//
// A Collector implements the observer interfaces of the task queue, the
// command registry, the bridge and the resource table. Attach it with Attach
// and expose the registry it was built with:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.New(reg)
//	c.Attach(b, table)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/script-bridge/bridge"
	"github.com/wippyai/script-bridge/command"
	"github.com/wippyai/script-bridge/resource"
	"github.com/wippyai/script-bridge/taskqueue"
)

const namespace = "script_bridge"

// Collector turns lifecycle and queue events into Prometheus metrics.
type Collector struct {
	tasksRegistered  prometheus.Counter
	tasksExecuted    prometheus.Counter
	taskQueueDepth   prometheus.Gauge
	commands         *prometheus.CounterVec
	commandsDrained  prometheus.Counter
	commandQueues    prometheus.Gauge
	objectsCreated   prometheus.Counter
	objectsLive      prometheus.Gauge
	disposals        *prometheus.CounterVec
	disposalsApplied prometheus.Counter
	mirrors          prometheus.Gauge
}

// New creates a collector and registers its metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tasksRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_registered_total",
			Help:      "Tasks registered on the global task queue",
		}),
		tasksExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_executed_total",
			Help:      "Tasks executed by the UI thread",
		}),
		taskQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "task_queue_depth",
			Help:      "Tasks waiting on the global task queue",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_registered_total",
			Help:      "Commands appended to per-context command queues",
		}, []string{"kind"}),
		commandsDrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_drained_total",
			Help:      "Commands taken from per-context command queues",
		}),
		commandQueues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "command_queues",
			Help:      "Registered per-context command queues",
		}),
		objectsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_created_total",
			Help:      "Bridged objects constructed",
		}),
		objectsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "objects_live",
			Help:      "Bridged objects that have not started disposal",
		}),
		disposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disposals_total",
			Help:      "Bridged objects that left the live state, by trigger",
		}, []string{"trigger"}),
		disposalsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disposals_enqueued_total",
			Help:      "Dispose commands delivered to their context queue",
		}),
		mirrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "native_mirrors",
			Help:      "Native mirrors held by the UI thread",
		}),
	}

	reg.MustRegister(
		c.tasksRegistered,
		c.tasksExecuted,
		c.taskQueueDepth,
		c.commands,
		c.commandsDrained,
		c.commandQueues,
		c.objectsCreated,
		c.objectsLive,
		c.disposals,
		c.disposalsApplied,
		c.mirrors,
	)
	return c
}

// Attach subscribes the collector to every event source of b and, when not
// nil, to table.
func (c *Collector) Attach(b *bridge.Bridge, table *resource.Table) {
	b.Tasks().Subscribe(c)
	b.Commands().Subscribe(c)
	b.Subscribe(c)
	if table != nil {
		table.Subscribe(c)
	}
}

// OnTaskEvent implements taskqueue.Observer.
func (c *Collector) OnTaskEvent(e taskqueue.Event) {
	switch e.Type {
	case taskqueue.EventRegistered:
		c.tasksRegistered.Inc()
	case taskqueue.EventExecuted:
		c.tasksExecuted.Inc()
	}
	c.taskQueueDepth.Set(float64(e.Depth))
}

// OnCommandEvent implements command.Observer.
func (c *Collector) OnCommandEvent(e command.Event) {
	switch e.Type {
	case command.EventQueueCreated:
		c.commandQueues.Inc()
	case command.EventQueueRemoved:
		c.commandQueues.Dec()
	case command.EventRegistered:
		c.commands.WithLabelValues(e.Kind.String()).Add(float64(e.Count))
	case command.EventDrained:
		c.commandsDrained.Add(float64(e.Count))
	}
}

// OnObjectEvent implements bridge.Observer.
func (c *Collector) OnObjectEvent(e bridge.Event) {
	switch e.Type {
	case bridge.EventCreated:
		c.objectsCreated.Inc()
		c.objectsLive.Inc()
	case bridge.EventDisposing:
		c.objectsLive.Dec()
		c.disposals.WithLabelValues(e.Trigger.String()).Inc()
	case bridge.EventDisposed:
		c.disposalsApplied.Inc()
	}
}

// OnResourceEvent implements resource.Observer.
func (c *Collector) OnResourceEvent(e resource.Event) {
	switch e.Type {
	case resource.EventCreated:
		c.mirrors.Inc()
	case resource.EventDropped:
		c.mirrors.Dec()
	}
}
