// Package store defines the principal store contract.
//
// The metering subsystem owns principal records exclusively. Concrete
// backings are injectable: an in-memory store for tests and single-process
// deployments, and a Postgres-backed store for production.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fixlab/api-core/internal/models"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrDuplicateKeyHash is returned by Create when the API key hash is already
// indexed. Keys carry 256 bits of randomness, so this signals a bug rather
// than a collision.
var ErrDuplicateKeyHash = errors.New("api key hash already registered")

// PrincipalStore provides CRUD and counter operations over principals.
// Lookups return (nil, nil) when no record matches.
type PrincipalStore interface {
	Create(ctx context.Context, p *models.Principal) error

	FindByID(ctx context.Context, id string) (*models.Principal, error)

	FindByEmail(ctx context.Context, email string) (*models.Principal, error)

	// FindByKeyHash resolves a principal by the SHA-256 hash of its API key.
	// Implementations must index by hash; this is on the hot request path.
	FindByKeyHash(ctx context.Context, hash string) (*models.Principal, error)

	// IncrementRequests atomically adds one to the principal's request
	// counter and returns the new value. Never rolled back on rejection.
	IncrementRequests(ctx context.Context, id uuid.UUID) (int64, error)

	// ResetUsage zeroes request counters for all principals and stamps the
	// reset time. Returns the number of principals reset.
	ResetUsage(ctx context.Context, now time.Time) (int64, error)

	List(ctx context.Context) ([]models.Principal, error)
}
