// Package cache memoizes C4/C5's recomputable outputs
// (CorrelationAnalysis, CaseSummary) keyed by a snapshot hash of a case's
// evidence, so that re-running correlate/aggregate over an unchanged case
// is a cache hit rather than a full re-read-and-recompute. Grounded on the
// teacher's internal/cache/manager.go local+remote two-tier shape; the
// local tier moves from patrickmn/go-cache (in-memory only, lost on
// restart) to go.etcd.io/bbolt so a snapshot survives process restarts
// without a server to run.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/evidence-toolkit/evitool/internal/logging"
)

var (
	bucketCorrelation = []byte("correlation")
	bucketCaseSummary = []byte("case_summary")
)

// BoltCache is the local, on-disk tier. A zero value is not usable; build
// one with OpenBolt.
type BoltCache struct {
	db  *bbolt.DB
	log *logging.Logger
}

// OpenBolt opens (creating if absent) a bbolt database at path with the
// two buckets this package uses.
func OpenBolt(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketCorrelation); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketCaseSummary)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache buckets: %w", err)
	}
	return &BoltCache{db: db, log: logging.With("component", "cache")}, nil
}

// Close releases the underlying database file lock.
func (b *BoltCache) Close() error {
	return b.db.Close()
}

func (b *BoltCache) get(bucket []byte, key string, target interface{}) (bool, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(key))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("unmarshal cached value for key %s: %w", key, err)
	}
	return true, nil
}

func (b *BoltCache) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for key %s: %w", key, err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (b *BoltCache) delete(bucket []byte, key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}
