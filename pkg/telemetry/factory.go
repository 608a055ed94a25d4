package telemetry

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Component names the part of the server that owns a set of instruments.
type Component string

const (
	ComponentRooms     Component = "rooms"
	ComponentLiveness  Component = "liveness"
	ComponentTransport Component = "transport"
)

const meterPrefix = "github.com/sharetube/watchparty/"

// Bucket bounds in seconds for in-process event handling, from sub-millisecond
// dispatch up to a slow frame.
var durationBuckets = []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1}

var (
	registered   = make(map[string]Component)
	registeredMu sync.Mutex
)

// MetricFactory creates instruments for one component on the global meter.
// Instruments created before Init delegate to the provider installed later.
type MetricFactory struct {
	meter     metric.Meter
	component Component
}

func NewFactory(component Component) *MetricFactory {
	return &MetricFactory{
		meter:     otel.Meter(meterPrefix + string(component)),
		component: component,
	}
}

// name qualifies suffix and panics if another instrument already took the name.
func (f *MetricFactory) name(suffix string) string {
	fullName := PrefixWatchParty + "." + suffix

	registeredMu.Lock()
	defer registeredMu.Unlock()
	if owner, ok := registered[fullName]; ok {
		panic(fmt.Sprintf("metric %s already registered by %s", fullName, owner))
	}
	registered[fullName] = f.component

	return fullName
}

// Counter creates a monotonic event counter.
func (f *MetricFactory) Counter(target *metric.Int64Counter, name, description string) {
	fullName := f.name(name)
	counter, err := f.meter.Int64Counter(fullName, metric.WithDescription(description), metric.WithUnit("{event}"))
	if err != nil {
		panic(fmt.Sprintf("failed to create counter %s: %v", fullName, err))
	}
	*target = counter
}

// Gauge creates an up-down counter for things currently open, such as rooms or connections.
func (f *MetricFactory) Gauge(target *metric.Int64UpDownCounter, name, description string) {
	fullName := f.name(name)
	counter, err := f.meter.Int64UpDownCounter(fullName, metric.WithDescription(description))
	if err != nil {
		panic(fmt.Sprintf("failed to create gauge %s: %v", fullName, err))
	}
	*target = counter
}

// Duration creates a histogram recorded in seconds.
func (f *MetricFactory) Duration(target *metric.Float64Histogram, name, description string) {
	fullName := f.name(name)
	histogram, err := f.meter.Float64Histogram(fullName,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create histogram %s: %v", fullName, err))
	}
	*target = histogram
}
