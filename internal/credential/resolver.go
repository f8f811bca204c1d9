package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
)

// DefaultMaxConcurrentLookups bounds concurrent lookups when the caller
// does not supply a limit.
const DefaultMaxConcurrentLookups = 16

const (
	usernameSuffix = "_username"
	passwordSuffix = "_password"
)

// ErrInvalidConcurrency is returned by NewResolver for a non-positive limit.
var ErrInvalidConcurrency = errors.New("credential: max concurrent lookups must be positive")

// Credential is a username with an optional password.
type Credential struct {
	Username    string
	Password    string
	HasPassword bool
}

// Fields returns the credential as a wire map. The password key is present
// only when a password file was read.
func (c *Credential) Fields() map[string]string {
	fields := map[string]string{"username": c.Username}
	if c.HasPassword {
		fields["password"] = c.Password
	}
	return fields
}

// Resolver looks up credentials in a directory.
//
// Thread Safety: safe for concurrent use.
type Resolver struct {
	dir    string
	slots  *semaphore.Weighted
	logger *logging.Logger
}

// NewResolver creates a resolver over dir. An empty dir yields a resolver
// that never finds a credential.
//
// Parameters:
//   - dir: Credential directory, may be empty
//   - maxConcurrent: Maximum lookups running at once
//   - logger: Logger for lookup diagnostics
//
// Returns:
//   - *Resolver: Ready to use
//   - error: ErrInvalidConcurrency if maxConcurrent < 1
func NewResolver(dir string, maxConcurrent int, logger *logging.Logger) (*Resolver, error) {
	if maxConcurrent < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConcurrency, maxConcurrent)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{
		dir:    dir,
		slots:  semaphore.NewWeighted(int64(maxConcurrent)),
		logger: logger.With("component", "credential"),
	}, nil
}

// Key converts a device identifier into the file name prefix.
func Key(deviceID string) string {
	return strings.ReplaceAll(deviceID, "-", "_")
}

// Resolve returns the credential for deviceID, or nil when there is none.
//
// "None" covers an unconfigured or unreadable directory, a missing or
// unreadable username file, and an empty username. The only error is the
// context ending while waiting for a lookup slot.
func (r *Resolver) Resolve(ctx context.Context, deviceID string) (*Credential, error) {
	if r.dir == "" {
		r.logger.Debug("credential directory not configured", "device_id", deviceID)
		return nil, nil
	}

	if err := r.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("credential: waiting for lookup slot: %w", err)
	}
	defer r.slots.Release(1)

	return r.lookup(deviceID), nil
}

func (r *Resolver) lookup(deviceID string) *Credential {
	if _, err := os.ReadDir(r.dir); err != nil {
		r.logger.Warn("credential directory unreadable", "dir", r.dir, "error", err)
		return nil
	}

	key := Key(deviceID)

	usernamePath := filepath.Join(r.dir, key+usernameSuffix)
	username, err := os.ReadFile(usernamePath)
	if err != nil {
		r.logger.Debug("no username file", "path", usernamePath, "error", err)
		return nil
	}
	if len(username) == 0 {
		r.logger.Debug("empty username file", "path", usernamePath)
		return nil
	}

	cred := &Credential{Username: string(username)}

	passwordPath := filepath.Join(r.dir, key+passwordSuffix)
	password, err := os.ReadFile(passwordPath)
	if err == nil {
		cred.Password = string(password)
		cred.HasPassword = true
	} else {
		r.logger.Debug("no password file", "path", passwordPath, "error", err)
	}

	r.logger.Debug("credential resolved", "device_id", deviceID, "has_password", cred.HasPassword)
	return cred
}
