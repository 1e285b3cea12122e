package cachemeta

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

// boltRecord is the JSON value stored under the storage id.
type boltRecord struct {
	Key       string `json:"key"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
	Size      int64  `json:"size"`
	Checksum  uint64 `json:"checksum"`
}

// BoltStore keeps metadata in a bbolt file with one bucket per kind.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the bbolt index at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Put(_ context.Context, e Entry) error {
	data, err := json.Marshal(boltRecord{
		Key:       e.Key,
		CreatedAt: e.CreatedAt.UnixNano(),
		ExpiresAt: e.ExpiresAt.UnixNano(),
		Size:      e.Size,
		Checksum:  e.Checksum,
	})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(e.Kind))
		if err != nil {
			return err
		}
		return b.Put([]byte(e.StorageID), data)
	})
}

func (s *BoltStore) Get(_ context.Context, kind, storageID string) (Entry, bool, error) {
	var (
		e     Entry
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(storageID))
		if v == nil {
			return nil
		}
		var err error
		e, err = decodeBoltRecord(kind, storageID, v)
		found = err == nil
		return err
	})
	return e, found, err
}

func (s *BoltStore) Delete(_ context.Context, kind, storageID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(storageID))
	})
}

func (s *BoltStore) DeleteIf(_ context.Context, kind, storageID string, createdAt time.Time) (bool, error) {
	deleted := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(storageID))
		if v == nil {
			return nil
		}
		e, err := decodeBoltRecord(kind, storageID, v)
		if err != nil {
			return err
		}
		if e.CreatedAt.UnixNano() != createdAt.UnixNano() {
			return nil
		}
		deleted = true
		return b.Delete([]byte(storageID))
	})
	return deleted, err
}

func (s *BoltStore) DeleteKind(_ context.Context, kind string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(kind)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(kind))
	})
}

func (s *BoltStore) List(_ context.Context, kind string) ([]Entry, error) {
	entries, err := s.scan(kind, func(Entry) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *BoltStore) Expired(_ context.Context, kind string, now time.Time) ([]Entry, error) {
	entries, err := s.scan(kind, func(e Entry) bool { return e.Expired(now) })
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ExpiresAt.Before(entries[j].ExpiresAt)
	})
	return entries, nil
}

func (s *BoltStore) Usage(_ context.Context, kind string) (int64, error) {
	entries, err := s.scan(kind, func(Entry) bool { return true })
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) scan(kind string, keep func(Entry) bool) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			e, err := decodeBoltRecord(kind, string(k), v)
			if err != nil {
				return err
			}
			if keep(e) {
				entries = append(entries, e)
			}
			return nil
		})
	})
	return entries, err
}

func decodeBoltRecord(kind, storageID string, v []byte) (Entry, error) {
	var r boltRecord
	if err := json.Unmarshal(v, &r); err != nil {
		return Entry{}, fmt.Errorf("decode %s/%s: %w", kind, storageID, err)
	}
	return Entry{
		Kind:      kind,
		Key:       r.Key,
		StorageID: storageID,
		CreatedAt: time.Unix(0, r.CreatedAt),
		ExpiresAt: time.Unix(0, r.ExpiresAt),
		Size:      r.Size,
		Checksum:  r.Checksum,
	}, nil
}
