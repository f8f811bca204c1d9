package influxdb

import (
	"context"
	"strings"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/deviceservice/internal/dispatch"
	"github.com/nerrad567/deviceservice/internal/reconcile"
)

// Measurement names.
const (
	MeasurementDecisions  = "dispatch_decisions"
	MeasurementReconciles = "reconcile_outcomes"
)

// unregisteredProtocol replaces caller-supplied protocol names that match
// no handler, keeping tag cardinality bounded.
const unregisteredProtocol = "unregistered"

// PointWriter accepts points for asynchronous delivery. *Client implements it.
type PointWriter interface {
	WritePoint(p *write.Point)
}

// Writer turns dispatch decisions and reconcile outcomes into points.
// It implements dispatch.Recorder and reconcile.Observer.
type Writer struct {
	points PointWriter
}

var (
	_ dispatch.Recorder  = (*Writer)(nil)
	_ reconcile.Observer = (*Writer)(nil)
)

// NewWriter creates a Writer that sends points to w.
func NewWriter(w PointWriter) *Writer {
	return &Writer{points: w}
}

// RecordDecision writes one dispatch_decisions point.
func (w *Writer) RecordDecision(d dispatch.Decision) {
	protocol := d.Protocol
	if !d.Registered {
		protocol = unregisteredProtocol
	}

	w.points.WritePoint(write.NewPoint(
		MeasurementDecisions,
		map[string]string{
			"surface":  string(d.Surface),
			"protocol": protocol,
			"result":   d.Result,
		},
		map[string]any{
			"device_id":   d.DeviceID,
			"registered":  d.Registered,
			"duration_ms": float64(d.Duration.Microseconds()) / 1000,
		},
		d.At,
	))
}

// ObserveReconcile writes one reconcile_outcomes point.
func (w *Writer) ObserveReconcile(_ context.Context, o reconcile.Outcome) {
	fields := map[string]any{
		"name":        o.Name,
		"failed":      o.Err != nil,
		"duration_ms": float64(o.Duration.Microseconds()) / 1000,
	}
	if o.Capacity > 0 {
		fields["capacity"] = int64(o.Capacity)
	}
	if o.LookupFailure != "" {
		fields["lookup_failure"] = string(o.LookupFailure)
	}

	w.points.WritePoint(write.NewPoint(
		MeasurementReconciles,
		map[string]string{
			"kind":      strings.ToLower(o.Kind.Kind),
			"namespace": o.Namespace,
			"action":    string(o.Action),
		},
		fields,
		o.At,
	))
}
