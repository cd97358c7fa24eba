package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/ferryhq/ferry/pkg/types"
)

var (
	// Bucket names
	bucketApps = []byte("apps")
)

// BoltStore implements AppStore using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "ferry.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketApps); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketApps, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// PutApp stores an application definition (upsert)
func (s *BoltStore) PutApp(ctx context.Context, app *types.App) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := app.ID.Validate(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketApps)
		data, err := json.Marshal(app)
		if err != nil {
			return err
		}
		return b.Put([]byte(app.ID), data)
	})
}

// GetApp returns the persisted definition for one application
func (s *BoltStore) GetApp(ctx context.Context, id types.AppID) (*types.App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var app types.App
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketApps)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &app)
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApps returns all persisted application definitions
func (s *BoltStore) ListApps(ctx context.Context) ([]*types.App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var apps []*types.App
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketApps)
		return b.ForEach(func(k, v []byte) error {
			var app types.App
			if err := json.Unmarshal(v, &app); err != nil {
				return err
			}
			apps = append(apps, &app)
			return nil
		})
	})
	return apps, err
}

// AllAppIDs returns the identifiers of all persisted applications
func (s *BoltStore) AllAppIDs(ctx context.Context) ([]types.AppID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []types.AppID
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketApps)
		return b.ForEach(func(k, v []byte) error {
			ids = append(ids, types.AppID(k))
			return nil
		})
	})
	return ids, err
}

// ExpungeApp removes an application's persisted record. Removing an absent
// record is not an error.
func (s *BoltStore) ExpungeApp(ctx context.Context, id types.AppID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketApps)
		return b.Delete([]byte(id))
	})
}
