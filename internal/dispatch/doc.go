// Package dispatch maps device events from protocol adapters to decisions.
//
// Each protocol is a strategy registered under its wire name. The Engine
// looks the strategy up and falls back to Unsupported, which rejects every
// query and fails every credential and change request. Adding a protocol is
// a Register call.
//
// Strategies that provision resources do so through the small reconciler
// interfaces declared here, so tests can substitute the store.
//
// Every decision is reported to the registered Recorders.
package dispatch
