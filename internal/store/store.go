// Package store persists looks and their placement records.
//
// Two backends are provided: MemoryStore for tests and single-process CLI
// use, and MongoStore for server deployments. Both satisfy the reconcile
// engine's Persister interface, so the diff engine never knows which backend
// it is talking to.
package store

import (
	"context"
	"time"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/reconcile"
)

// Look is a saved outfit composition.
type Look struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	UserID         string    `json:"user_id" bson:"user_id"`
	CompositeImage string    `json:"composite_image,omitempty" bson:"composite_image,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the persistence surface for looks and placements.
// The embedded Persister methods are what the reconcile engine drives.
type Store interface {
	reconcile.Persister

	// CreateLook stores a new look. An empty ID is assigned.
	CreateLook(ctx context.Context, look *Look) error

	// GetLook retrieves a look by id.
	GetLook(ctx context.Context, id string) (*Look, error)

	// ListLooks returns all looks for a user, most recently updated first.
	ListLooks(ctx context.Context, userID string) ([]Look, error)

	// DeleteLook removes a look and all its placement records.
	DeleteLook(ctx context.Context, id string) error

	// UpdateLookComposite stores the rendered composite data URI on a look.
	UpdateLookComposite(ctx context.Context, id, dataURI string) error

	// ListPlacements returns a look's placement records ordered by SortOrder.
	ListPlacements(ctx context.Context, lookID string) ([]reconcile.Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
