package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
	"github.com/nerrad567/deviceservice/internal/reconcile"
)

// Publisher is the subset of Client used by EventPublisher.
type Publisher interface {
	PublishAsync(topic string, payload []byte, qos byte, retained bool, done func(error)) error
}

// ReconcileEvent is the JSON body published for each reconciliation.
type ReconcileEvent struct {
	Kind          string `json:"kind"`
	Namespace     string `json:"namespace"`
	Name          string `json:"name"`
	Action        string `json:"action"`
	LookupFailure string `json:"lookup_failure,omitempty"`
	Capacity      int32  `json:"capacity,omitempty"`
	Error         string `json:"error,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
	Timestamp     string `json:"timestamp"`
}

// EventPublisher publishes reconcile outcomes. It implements
// reconcile.Observer.
type EventPublisher struct {
	client Publisher
	qos    byte
	logger *logging.Logger
	topics Topics
}

var _ reconcile.Observer = (*EventPublisher)(nil)

// NewEventPublisher creates an EventPublisher publishing at qos.
func NewEventPublisher(client Publisher, qos byte, logger *logging.Logger) *EventPublisher {
	return &EventPublisher{
		client: client,
		qos:    qos,
		logger: logger.With("component", "mqtt-events"),
	}
}

// ObserveReconcile implements reconcile.Observer. It does not wait for the
// broker; send and delivery failures are logged. Events are not retained.
func (p *EventPublisher) ObserveReconcile(_ context.Context, o reconcile.Outcome) {
	event := ReconcileEvent{
		Kind:          o.Kind.Kind,
		Namespace:     o.Namespace,
		Name:          o.Name,
		Action:        string(o.Action),
		LookupFailure: string(o.LookupFailure),
		Capacity:      o.Capacity,
		DurationMS:    o.Duration.Milliseconds(),
		Timestamp:     o.At.UTC().Format(time.RFC3339),
	}
	if o.Err != nil {
		event.Error = o.Err.Error()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("encoding reconcile event failed", "error", err)
		return
	}

	topic := p.topics.ReconcileEvent(event.Kind, event.Namespace, event.Name)
	if err := p.client.PublishAsync(topic, payload, p.qos, false, func(deliveryErr error) {
		if deliveryErr != nil {
			p.logger.Warn("reconcile event not delivered", "topic", topic, "error", deliveryErr)
		}
	}); err != nil {
		p.logger.Warn("publishing reconcile event failed", "topic", topic, "error", err)
	}
}
