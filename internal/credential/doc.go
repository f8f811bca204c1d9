// Package credential resolves per-device credentials from an
// operator-provisioned directory.
//
// The directory holds one file per field, named after the device identifier
// with every "-" replaced by "_":
//
//	<key>_username   required, must be non-empty
//	<key>_password   optional
//
// File contents are returned verbatim; no trimming is applied.
//
// Lookups perform blocking file I/O and run on a bounded set of slots so a
// slow or hung filesystem cannot occupy every request goroutine.
package credential
