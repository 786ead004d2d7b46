// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
)

// ImportLock serializes imports per user across processes.
type ImportLock interface {
	// Acquire returns a release function when the lock was taken, or
	// domainerror.ErrImportInProgress when another import holds it.
	Acquire(ctx context.Context, userID uuid.UUID) (release func(), err error)
}
