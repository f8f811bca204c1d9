// Package influxdb records dispatch decisions and reconcile outcomes as
// InfluxDB time-series points.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched non-blocking writes and health monitoring.
//
// # Measurements
//
//	dispatch_decisions   tags: surface, protocol, result   fields: device_id, registered, duration_ms
//	reconcile_outcomes   tags: kind, namespace, action     fields: name, capacity, lookup_failure, failed, duration_ms
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	writer := influxdb.NewWriter(client)
//	engine := dispatch.NewEngine(logger, writer)
//	reconciler := reconcile.New(store, digester, logger, writer)
//
// # Error Handling
//
// Writes are non-blocking; batch errors are delivered to the SetOnError
// callback. Connection and health check errors are returned directly.
package influxdb
