// Package bolt implements storage.Storage with bbolt.
package bolt

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Comcast/autostate/storage"

	bolt "go.etcd.io/bbolt"
)

// Storage keeps each scope in its own bucket, keyed by owner.
type Storage struct {
	Debug bool

	// Logger is used when Debug is true.  Defaults to
	// slog.Default().
	Logger *slog.Logger

	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(ctx context.Context, msg string, args ...interface{}) {
	if !s.Debug {
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "bolt storage "+msg, args...)
}

func (s *Storage) MakeScope(ctx context.Context, scope string) error {
	s.logf(ctx, "MakeScope", "scope", scope)
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(scope))
		return err
	})
}

func (s *Storage) RemScope(ctx context.Context, scope string) error {
	s.logf(ctx, "RemScope", "scope", scope)
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(scope))
		if err == bolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
}

func (s *Storage) GetScope(ctx context.Context, scope string) ([]*storage.Snapshot, error) {
	ss := make([]*storage.Snapshot, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(scope))
		if b == nil {
			return nil
		}
		return b.ForEach(func(owner, js []byte) error {
			var snap storage.Snapshot
			if err := json.Unmarshal(js, &snap); err != nil {
				return err
			}
			snap.Owner = string(owner)
			ss = append(ss, &snap)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logf(ctx, "GetScope", "scope", scope, "found", len(ss))

	if len(ss) == 0 {
		return nil, nil
	}

	return ss, nil
}

func (s *Storage) WriteState(ctx context.Context, scope string, ss []*storage.Snapshot) error {
	s.logf(ctx, "WriteState", "scope", scope, "count", len(ss))

	if 0 == len(ss) {
		return nil
	}

	vals := make(map[string][]byte, len(ss))

	for _, snap := range ss {
		if snap.Deleted {
			vals[snap.Owner] = nil
			continue
		}
		// The owner is the key, so don't store it twice.
		js, err := json.Marshal(&storage.Snapshot{
			Manager: snap.Manager,
			State:   snap.State,
		})
		if err != nil {
			return err
		}
		vals[snap.Owner] = js
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(scope))
		if err != nil {
			return err
		}
		for owner, js := range vals {
			key := []byte(owner)
			if js == nil {
				err = b.Delete(key)
			} else {
				err = b.Put(key, js)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
