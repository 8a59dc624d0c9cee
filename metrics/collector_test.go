package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wippyai/script-bridge/bridge"
	"github.com/wippyai/script-bridge/command"
	"github.com/wippyai/script-bridge/resource"
)

func TestCollector_Lifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	b := bridge.New()
	table := resource.NewTable()
	c.Attach(b, table)

	ctx := bridge.NewHandle(1)
	o1 := b.NewObject(ctx)
	o2 := b.NewObject(ctx)
	table.Insert(resource.Key{Context: 1, Object: o1.ID()}, "a")

	if got := testutil.ToFloat64(c.objectsLive); got != 2 {
		t.Fatalf("objects_live = %v, want 2", got)
	}

	o1.Release()
	o2.Dispose()

	if got := testutil.ToFloat64(c.taskQueueDepth); got != 2 {
		t.Fatalf("task_queue_depth = %v, want 2", got)
	}

	b.Tasks().Drain()
	b.Commands().Instance(1).Drain()
	table.Remove(resource.Key{Context: 1, Object: o1.ID()})

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"objects_created", c.objectsCreated, 2},
		{"objects_live", c.objectsLive, 0},
		{"tasks_registered", c.tasksRegistered, 2},
		{"tasks_executed", c.tasksExecuted, 2},
		{"task_queue_depth", c.taskQueueDepth, 0},
		{"disposals_release", c.disposals.WithLabelValues("release"), 1},
		{"disposals_context", c.disposals.WithLabelValues("context"), 1},
		{"disposals_enqueued", c.disposalsApplied, 2},
		{"commands_dispose", c.commands.WithLabelValues(command.Dispose.String()), 2},
		{"commands_drained", c.commandsDrained, 2},
		{"command_queues", c.commandQueues, 1},
		{"native_mirrors", c.mirrors, 0},
	}
	for _, tt := range checks {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	b.Commands().Remove(1)
	if got := testutil.ToFloat64(c.commandQueues); got != 0 {
		t.Fatalf("command_queues after remove = %v, want 0", got)
	}
}

func TestCollector_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.Attach(bridge.New(), nil)

	expected := `
# HELP script_bridge_objects_created_total Bridged objects constructed
# TYPE script_bridge_objects_created_total counter
script_bridge_objects_created_total 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "script_bridge_objects_created_total"); err != nil {
		t.Fatal(err)
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected registering twice to panic")
		}
	}()
	New(reg)
}
