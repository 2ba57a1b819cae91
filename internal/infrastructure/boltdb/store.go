package boltdb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store wraps BoltDB as a bucketed JSON document store.
type Store struct {
	db      *bolt.DB
	buckets [][]byte
}

// Tx exposes the write operations available inside a single Bolt transaction.
type Tx interface {
	Put(bucket, key string, value interface{}) error
	Delete(bucket, key string) error
}

type writeTx struct {
	tx *bolt.Tx
}

// Open initializes the BoltDB file and ensures every bucket exists. A file held by another
// process fails after timeout instead of blocking forever.
func Open(path string, timeout time.Duration, buckets ...string) (*Store, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}

	names := make([][]byte, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, []byte(b))
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range names {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, buckets: names}, nil
}

// Get decodes the value stored under key into dest. It reports false when the key is absent.
func (s *Store) Get(bucket, key string, dest interface{}) (bool, error) {
	if s == nil || s.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return bolt.ErrBucketNotFound
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, dest)
	})
	return found, err
}

// ForEach walks a bucket in key order. Values are only valid inside fn.
func (s *Store) ForEach(bucket string, fn func(key, value []byte) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return bolt.ErrBucketNotFound
		}
		return b.ForEach(fn)
	})
}

// Update runs fn inside one read-write transaction. Either every write in fn commits or none does.
func (s *Store) Update(fn func(Tx) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(writeTx{tx: tx})
	})
}

// Size returns the number of keys in a bucket.
func (s *Store) Size(bucket string) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return bolt.ErrBucketNotFound
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil || s.db == nil {
		return ""
	}
	return s.db.Path()
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

func (w writeTx) Put(bucket, key string, value interface{}) error {
	b := w.tx.Bucket([]byte(bucket))
	if b == nil {
		return bolt.ErrBucketNotFound
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), payload)
}

func (w writeTx) Delete(bucket, key string) error {
	b := w.tx.Bucket([]byte(bucket))
	if b == nil {
		return bolt.ErrBucketNotFound
	}
	return b.Delete([]byte(key))
}
