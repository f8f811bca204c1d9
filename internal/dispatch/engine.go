package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
)

// Surface names the decision an event asked for.
type Surface string

// Decision surfaces.
const (
	SurfaceQuery      Surface = "query"
	SurfaceCredential Surface = "credential"
	SurfaceChange     Surface = "change"
)

// Decision is one answered event, as reported to Recorders.
type Decision struct {
	Surface  Surface
	Protocol string
	DeviceID string
	Result   string

	// Registered is false when the protocol had no strategy and the
	// Unsupported fallback answered.
	Registered bool

	Duration time.Duration
	At       time.Time
}

// Recorder receives every decision made by the Engine. Implementations
// must not block and handle their own failures.
type Recorder interface {
	RecordDecision(d Decision)
}

// Engine routes events to the strategy registered for their protocol.
//
// Thread Safety: Register must complete before the Engine serves requests.
// After that all methods are safe for concurrent use.
type Engine struct {
	protocols map[string]Protocol
	fallback  Protocol
	recorders []Recorder
	logger    *logging.Logger
	now       func() time.Time
}

// NewEngine creates an Engine with no protocols registered.
func NewEngine(logger *logging.Logger, recorders ...Recorder) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		protocols: make(map[string]Protocol),
		fallback:  Unsupported{},
		recorders: recorders,
		logger:    logger.With("component", "dispatch"),
		now:       time.Now,
	}
}

// Register binds a strategy to a protocol name, replacing any previous one.
func (e *Engine) Register(name string, p Protocol) {
	e.protocols[name] = p
}

// Protocols returns the registered protocol names, sorted.
func (e *Engine) Protocols() []string {
	names := make([]string, 0, len(e.protocols))
	for name := range e.protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) lookup(name string) (Protocol, bool) {
	if p, ok := e.protocols[name]; ok {
		return p, true
	}
	return e.fallback, false
}

// QueryDevice decides whether to accept a discovered device.
func (e *Engine) QueryDevice(ctx context.Context, req QueryRequest) QueryResponse {
	start := e.now()
	p, ok := e.lookup(req.Protocol)
	resp := p.QueryDevice(ctx, req.ID)
	e.record(SurfaceQuery, req.Protocol, req.ID, resp.Result, ok, start)
	return resp
}

// QueryCredential returns stored credentials for a device.
func (e *Engine) QueryCredential(ctx context.Context, req CredentialRequest) CredentialResponse {
	start := e.now()
	p, ok := e.lookup(req.Protocol)
	resp := p.QueryCredential(ctx, req.Data.ID)
	e.record(SurfaceCredential, req.Protocol, req.Data.ID, resp.Result, ok, start)
	return resp
}

// DeviceChange handles a device lifecycle change.
func (e *Engine) DeviceChange(ctx context.Context, req ChangeRequest) ChangeResponse {
	start := e.now()
	p, ok := e.lookup(req.Protocol)
	resp := p.DeviceChange(ctx, req.Data.Reason, req.Data.Device)
	e.record(SurfaceChange, req.Protocol, req.Data.Device.ID, resp.Result, ok, start)
	return resp
}

func (e *Engine) record(surface Surface, protocol, deviceID, result string, registered bool, start time.Time) {
	at := e.now()
	d := Decision{
		Surface:    surface,
		Protocol:   protocol,
		DeviceID:   deviceID,
		Result:     result,
		Registered: registered,
		Duration:   at.Sub(start),
		At:         at,
	}

	e.logger.Info("decision",
		"surface", string(surface),
		"protocol", protocol,
		"device_id", deviceID,
		"result", result,
		"registered", registered,
	)

	for _, r := range e.recorders {
		r.RecordDecision(d)
	}
}
