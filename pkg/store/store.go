package store

import (
	"context"
	"errors"

	"github.com/ferryhq/ferry/pkg/types"
)

// ErrNotFound is returned when a requested app has no persisted record.
var ErrNotFound = errors.New("app not found")

// AppStore defines the interface for persisted application definitions.
// Implemented by BoltDB-backed storage.
type AppStore interface {
	PutApp(ctx context.Context, app *types.App) error
	GetApp(ctx context.Context, id types.AppID) (*types.App, error)
	ListApps(ctx context.Context) ([]*types.App, error)
	AllAppIDs(ctx context.Context) ([]types.AppID, error)
	ExpungeApp(ctx context.Context, id types.AppID) error
	Close() error
}
