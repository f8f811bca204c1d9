package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/nerrad567/deviceservice/internal/dispatch"
)

// handleHelloWorld answers the liveness probe.
func (s *Server) handleHelloWorld(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "Hello World")
}

// handleQueryDevice decides whether a discovered device is accepted.
// Missing or non-string id/protocol fields are read as "".
func (s *Server) handleQueryDevice(w http.ResponseWriter, r *http.Request) {
	body := s.readBody(r)

	var fields map[string]any
	//nolint:errcheck // A malformed body is answered as an empty request
	json.Unmarshal(body, &fields)

	req := dispatch.QueryRequest{
		ID:       stringField(fields, "id"),
		Protocol: stringField(fields, "protocol"),
	}
	s.logger.Info("query device", "protocol", req.Protocol, "device_id", req.ID, "request_id", requestID(r.Context()))

	resp := s.dispatcher.QueryDevice(r.Context(), req)
	s.respond(w, r, resp.Result, resp)
}

// handleQueryCredential resolves credentials for a device.
func (s *Server) handleQueryCredential(w http.ResponseWriter, r *http.Request) {
	var req dispatch.CredentialRequest
	decodeOrDefault(s.readBody(r), &req)
	s.logger.Info("query device credential", "protocol", req.Protocol, "device_id", req.Data.ID, "request_id", requestID(r.Context()))

	resp := s.dispatcher.QueryCredential(r.Context(), req)
	s.respond(w, r, resp.Result, resp)
}

// handleDeviceChange reacts to a device lifecycle change.
func (s *Server) handleDeviceChange(w http.ResponseWriter, r *http.Request) {
	var req dispatch.ChangeRequest
	decodeOrDefault(s.readBody(r), &req)
	s.logger.Info("device change",
		"protocol", req.Protocol,
		"reason", req.Data.Reason,
		"device_id", req.Data.Device.ID,
		"request_id", requestID(r.Context()),
	)

	resp := s.dispatcher.DeviceChange(r.Context(), req)
	s.respond(w, r, resp.Result, resp)
}

// readBody returns the request body, or nil if it cannot be read. The raw
// body is logged at debug level.
func (s *Server) readBody(r *http.Request) []byte {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Warn("reading request body failed", "error", err, "request_id", requestID(r.Context()))
		return nil
	}
	s.logger.Debug("request body", "path", r.URL.Path, "body", string(body), "request_id", requestID(r.Context()))
	return body
}

// respond writes a business response. Every decision is HTTP 200.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, result string, resp any) {
	s.logger.Info("response", "path", r.URL.Path, "result", result, "request_id", requestID(r.Context()))
	writeJSON(w, http.StatusOK, resp)
}

// decodeOrDefault decodes body into v, resetting v to its zero value if the
// body is not a valid document for v.
func decodeOrDefault[T any](body []byte, v *T) {
	if err := json.Unmarshal(body, v); err != nil {
		var zero T
		*v = zero
	}
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
