// Package naming derives stable Kubernetes resource names from device identifiers.
//
// Asset names embed a short BLAKE2b digest of the device identifier so that
// repeated provisioning events for the same device always address the same
// object. The digest width is configurable; the default of 4 bytes matches
// names already present in clusters, at the cost of a birthday-bound
// collision risk once a namespace holds tens of thousands of devices.
package naming

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// DefaultDigestSize is the digest width in bytes used when none is configured.
const DefaultDigestSize = 4

// AssetPrefix is prepended to every ONVIF asset name.
const AssetPrefix = "onvif-asset-"

// ErrInvalidDigestSize is returned for widths outside BLAKE2b's 1..64 byte range.
var ErrInvalidDigestSize = errors.New("naming: digest size must be between 1 and 64 bytes")

// Digester fingerprints identifiers with a fixed-width unkeyed BLAKE2b hash.
// It holds no mutable state and is safe for concurrent use.
type Digester struct {
	size int
}

// NewDigester returns a Digester producing size-byte digests.
func NewDigester(size int) (*Digester, error) {
	if size < 1 || size > blake2b.Size {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDigestSize, size)
	}
	return &Digester{size: size}, nil
}

// Size returns the digest width in bytes. The hex token is twice as long.
func (d *Digester) Size() int {
	return d.size
}

// Digest returns the lowercase hex BLAKE2b fingerprint of id.
func (d *Digester) Digest(id string) string {
	// New only fails for a bad size or an oversized key; both are ruled
	// out by NewDigester.
	h, err := blake2b.New(d.size, nil)
	if err != nil {
		panic(fmt.Sprintf("naming: blake2b.New(%d): %v", d.size, err))
	}
	h.Write([]byte(id)) //nolint:errcheck // hash.Hash.Write never returns an error
	return hex.EncodeToString(h.Sum(nil))
}

// AssetName returns the Asset resource name for a device key.
func (d *Digester) AssetName(key string) string {
	return AssetPrefix + d.Digest(key)
}

// SanitizeName replaces characters that are not allowed in Kubernetes
// object names (":", "/", "_") with "-".
func SanitizeName(name string) string {
	return nameReplacer.Replace(name)
}

var nameReplacer = strings.NewReplacer(":", "-", "/", "-", "_", "-")
