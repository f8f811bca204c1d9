package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/deviceservice/internal/infrastructure/config"
	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
	"github.com/nerrad567/deviceservice/internal/reconcile"
	"github.com/nerrad567/deviceservice/internal/resource"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "deviceservice-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     30,
		},
	}
}

func TestBrokerURL(t *testing.T) {
	cfg := testConfig()
	if got := brokerURL(cfg); got != "tcp://localhost:1883" {
		t.Errorf("brokerURL() = %q, want tcp://localhost:1883", got)
	}

	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883
	if got := brokerURL(cfg); got != "ssl://localhost:8883" {
		t.Errorf("brokerURL() = %q, want ssl://localhost:8883", got)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "svc"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if opts.ClientID != "deviceservice-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "svc" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want svc/secret", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.ConnectRetry {
		t.Error("expected auto-reconnect and connect retry")
	}
	if opts.MaxReconnectInterval != 30*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 30s", opts.MaxReconnectInterval)
	}
	if !opts.WillEnabled || opts.WillTopic != "deviceservice/system/status" || !opts.WillRetained {
		t.Errorf("LWT = enabled:%v topic:%q retained:%v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}
	if !strings.Contains(string(opts.WillPayload), `"status":"offline"`) {
		t.Errorf("WillPayload = %s", opts.WillPayload)
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS should not be configured for plain tcp")
	}
}

func TestStatusPayload(t *testing.T) {
	var body map[string]string
	if err := json.Unmarshal([]byte(statusPayload("offline", "svc-1", "graceful_shutdown")), &body); err != nil {
		t.Fatalf("statusPayload is not JSON: %v", err)
	}
	if body["status"] != "offline" || body["client_id"] != "svc-1" || body["reason"] != "graceful_shutdown" {
		t.Errorf("statusPayload = %v", body)
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Errorf("timestamp %q: %v", body["timestamp"], err)
	}

	if err := json.Unmarshal([]byte(statusPayload("online", "svc-1", "")), &body); err != nil {
		t.Fatalf("statusPayload is not JSON: %v", err)
	}
}

func TestTopics(t *testing.T) {
	topics := Topics{}
	tests := []struct {
		got  string
		want string
	}{
		{topics.SystemStatus(), "deviceservice/system/status"},
		{topics.ReconcileEvent("CronTab", "newcr-with-instance", "cam-1"), "deviceservice/events/crontab/newcr-with-instance/cam-1"},
		{topics.ReconcileEvent("Asset", "azure-iot-operations", "onvif-asset-1a2b3c4d"), "deviceservice/events/asset/azure-iot-operations/onvif-asset-1a2b3c4d"},
		{topics.AllReconcileEvents(), "deviceservice/events/#"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("topic = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestValidatePublish(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"valid", "deviceservice/x", []byte("{}"), 1, nil},
		{"empty topic", "", []byte("{}"), 1, ErrInvalidTopic},
		{"bad qos", "deviceservice/x", []byte("{}"), 3, ErrInvalidQoS},
		{"oversized", "deviceservice/x", make([]byte, maxPayloadSize+1), 0, ErrPublishFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePublish(tt.topic, tt.payload, tt.qos)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validatePublish() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHealthCheck_NotConnected(t *testing.T) {
	c := &Client{cfg: testConfig()}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client = %v", err)
	}
}

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// fakePublisher records messages and holds their delivery callbacks until
// deliver is called.
type fakePublisher struct {
	messages []published
	pending  []func(error)
	err      error
}

func (f *fakePublisher) PublishAsync(topic string, payload []byte, qos byte, retained bool, done func(error)) error {
	f.messages = append(f.messages, published{topic, payload, qos, retained})
	if f.err != nil {
		return f.err
	}
	if done != nil {
		f.pending = append(f.pending, done)
	}
	return nil
}

func (f *fakePublisher) deliver(err error) {
	for _, done := range f.pending {
		done(err)
	}
	f.pending = nil
}

func TestEventPublisher_ObserveReconcile(t *testing.T) {
	fake := &fakePublisher{}
	p := NewEventPublisher(fake, 1, logging.Discard())

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p.ObserveReconcile(context.Background(), reconcile.Outcome{
		Kind:          resource.KindCronTab,
		Namespace:     "newcr-with-instance",
		Name:          "cam-1",
		Action:        reconcile.ActionUpdated,
		LookupFailure: "",
		Capacity:      2,
		Duration:      15 * time.Millisecond,
		At:            at,
	})

	if len(fake.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(fake.messages))
	}
	msg := fake.messages[0]
	if msg.topic != "deviceservice/events/crontab/newcr-with-instance/cam-1" {
		t.Errorf("topic = %q", msg.topic)
	}
	if msg.qos != 1 || msg.retained {
		t.Errorf("qos=%d retained=%v, want qos 1 not retained", msg.qos, msg.retained)
	}

	var event ReconcileEvent
	if err := json.Unmarshal(msg.payload, &event); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	want := ReconcileEvent{
		Kind:       "CronTab",
		Namespace:  "newcr-with-instance",
		Name:       "cam-1",
		Action:     "updated",
		Capacity:   2,
		DurationMS: 15,
		Timestamp:  "2026-03-01T09:00:00Z",
	}
	if event != want {
		t.Errorf("event = %+v, want %+v", event, want)
	}
}

func TestEventPublisher_DoesNotWaitForDelivery(t *testing.T) {
	fake := &fakePublisher{}
	p := NewEventPublisher(fake, 1, logging.Discard())

	outcome := reconcile.Outcome{
		Kind:      resource.KindCronTab,
		Namespace: "ns",
		Name:      "job",
		Action:    reconcile.ActionUpdated,
		At:        time.Now(),
	}
	p.ObserveReconcile(context.Background(), outcome)
	p.ObserveReconcile(context.Background(), outcome)

	if len(fake.pending) != 2 {
		t.Fatalf("pending deliveries = %d, want 2", len(fake.pending))
	}
	fake.deliver(ErrPublishFailed)
	if len(fake.pending) != 0 {
		t.Errorf("pending deliveries = %d after deliver, want 0", len(fake.pending))
	}
}

func TestPublishAsync_NotConnected(t *testing.T) {
	c := &Client{cfg: testConfig()}
	called := false

	err := c.PublishAsync("deviceservice/events/crontab/ns/job", []byte("{}"), 1, false, func(error) { called = true })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishAsync() = %v, want ErrNotConnected", err)
	}
	if err := c.PublishAsync("", nil, 1, false, nil); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("PublishAsync(empty topic) = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("deviceservice/system/status", nil, 1, true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() = %v, want ErrNotConnected", err)
	}
	if called {
		t.Error("done called for a message that was never sent")
	}
}

func TestEventPublisher_FailureIsSwallowed(t *testing.T) {
	fake := &fakePublisher{err: ErrNotConnected}
	p := NewEventPublisher(fake, 0, logging.Discard())

	p.ObserveReconcile(context.Background(), reconcile.Outcome{
		Kind:          resource.KindAsset,
		Namespace:     "azure-iot-operations",
		Name:          "onvif-asset-1a2b3c4d",
		Action:        reconcile.ActionFailed,
		LookupFailure: resource.LookupNotFound,
		Err:           errors.New("create rejected"),
		At:            time.Now(),
	})

	if len(fake.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(fake.messages))
	}
	var event ReconcileEvent
	if err := json.Unmarshal(fake.messages[0].payload, &event); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if event.Error != "create rejected" || event.LookupFailure != string(resource.LookupNotFound) {
		t.Errorf("event = %+v", event)
	}
}
