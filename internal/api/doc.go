// Package api implements the HTTP surface that device discovery adapters
// call back into.
//
// Four routes are served:
//
//	GET  /api/v1/helloworld        liveness probe, "Hello World"
//	POST /queryDevice              accept or reject a discovered device
//	POST /queryDeviceCredential    resolve credentials for a device
//	POST /deviceChange             react to a device lifecycle change
//
// Everything else, including a known path with the wrong method, is a
// plain-text 404. Business outcomes are always HTTP 200 with a result
// field; a malformed body is answered as if an empty request had been sent.
//
// # Middleware
//
// Request ID, request logging (bodies at debug level), panic recovery,
// a 1 MB body limit, an optional per-request deadline and HTTP metrics.
package api
