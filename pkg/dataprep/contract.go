package dataprep

import (
	"context"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// ObjectStore creates, renames and destroys objects on behalf of operations.
type ObjectStore interface {
	// Duplicate copies obj as outer/name.
	Duplicate(obj *model.Object, outer, name string) (*model.Object, error)
	// Construct creates a new asset of class c as outer/name.
	Construct(c *model.Class, outer, name string) (*model.Object, error)
	// SpawnActor creates a world actor of class c under a free name derived
	// from name.
	SpawnActor(c *model.Class, name string) (*model.Object, error)
	// MakeUniqueName returns a name derived from base that is free under outer.
	MakeUniqueName(outer, base string) string
	// Destroy removes an actor from the world.
	Destroy(obj *model.Object) error
	// Dispose moves an asset to the disposal area.
	Dispose(obj *model.Object) error
	// CollectGarbage releases disposed objects and returns how many went away.
	CollectGarbage() int
	IsAsset(obj *model.Object) bool
}

// ProgressReporter receives progress and is polled for cancellation between
// steps.
type ProgressReporter interface {
	BeginWork(title string, amount float64)
	EndWork()
	ReportProgress(amount float64, message string)
	IsWorkCancelled() bool
}

// RebuildService builds the derived data of assets.
type RebuildService interface {
	Rebuild(ctx context.Context, assets []*model.Object, reporter ProgressReporter) error
}
