// Package sledengine implements the alternative embedded-store backend
// (§4.5): the same Set/Get/Remove contract as internal/kvstore, backed
// by an ordered on-disk KV library instead of a hand-rolled log. It
// exists so the store can be opened against either engine behind the
// same internal/engine.Engine interface.
//
// Grounded on github.com/boltdb/bolt's single-bucket Put/Get/Delete
// API, the embedded-store dependency the example pack surfaces via
// mrshabel-gumlog's raft-boltdb backed log store.
package sledengine

import (
	"time"
	"unicode/utf8"

	bolt "github.com/boltdb/bolt"

	"github.com/aleksandarhr/kvs/pkg/kvserrors"
)

var bucketName = []byte("kvs")

// Store wraps a single-bucket bolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bolt database at path and
// ensures the store's bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, kvserrors.NewEmbeddedStoreError(err)
	}

	return &Store{db: db}, nil
}

// Set stores value under key, durable before Set returns (bolt commits
// synchronously by default).
func (s *Store) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return kvserrors.NewEmbeddedStoreError(err)
	}
	return nil
}

// Get returns the value for key, or ("", false, nil) if absent. Bolt
// stores and returns raw bytes, so the value is validated as UTF-8 on
// the way out (spec §4.5), matching the original implementation's
// sled.rs, which maps the read bytes through String::from_utf8 and
// propagates a Utf8 error rather than returning invalid text.
func (s *Store) Get(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, kvserrors.NewEmbeddedStoreError(err)
	}
	if value == nil {
		return "", false, nil
	}
	if !utf8.Valid(value) {
		return "", false, kvserrors.NewUtf8Error(key)
	}
	return string(value), true, nil
}

// Remove deletes key. Unlike kvstore.Store, bolt's Bucket.Delete is a
// silent no-op on an absent key, so Remove first checks presence and
// synthesizes kvserrors.ErrKeyNotFound itself to match the spec's
// remove-absent-key contract (§9).
func (s *Store) Remove(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			return kvserrors.ErrKeyNotFound
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		if err == kvserrors.ErrKeyNotFound {
			return err
		}
		return kvserrors.NewEmbeddedStoreError(err)
	}
	return nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}
