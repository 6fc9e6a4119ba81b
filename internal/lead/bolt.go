package lead

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/glowheal/catalog/internal/model"
)

const leadBucket = "leads"

// BoltStore implements Store on a bbolt file. Leads are keyed by id, so
// generated ids iterate in creation order.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates a bbolt database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(leadBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Put(ctx context.Context, l *model.Lead) (*model.Lead, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	prepare(l)

	var result model.Lead
	created := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(leadBucket))
		if existing := b.Get([]byte(l.ID)); existing != nil {
			return json.Unmarshal(existing, &result)
		}

		data, err := json.Marshal(l)
		if err != nil {
			return err
		}
		result = *l
		created = true
		return b.Put([]byte(l.ID), data)
	})
	if err != nil {
		return nil, false, fmt.Errorf("put lead: %w", err)
	}
	return &result, created, nil
}

func (s *BoltStore) Get(ctx context.Context, id string) (*model.Lead, error) {
	var l model.Lead
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(leadBucket)).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &l)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *BoltStore) List(ctx context.Context, p ListParams) ([]model.Lead, error) {
	var leads []model.Lead
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(leadBucket)).ForEach(func(k, v []byte) error {
			var l model.Lead
			if err := json.Unmarshal(v, &l); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			if matches(&l, p) {
				leads = append(leads, l)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(leads)
	if n := limitOf(p); len(leads) > n {
		leads = leads[:n]
	}
	return leads, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
