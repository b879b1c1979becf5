// Package cache implements the tarball digest index described in
// SPEC_FULL.md §4.6: a small embedded KV store recording, per package
// version, the SHA-512 digest and file stat of the tarball last verified
// against the registry. It reuses the "pluggable embedded KV store for
// local state" idiom from the teacher's server/storage/db.go, narrowed to
// the single go.etcd.io/bbolt backend this tool actually needs — see
// DESIGN.md for why the teacher's DB/DBConn registration indirection was
// dropped rather than kept unused.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("tarballs")

// Store mirrors storage.Store from the teacher's server/storage/db.go: a
// flat string-keyed record, values stringified rather than typed, so the
// on-disk shape never needs a schema migration as fields are added.
type Store map[string]string

// Index is a bbolt-backed digest cache, one bucket, one file.
type Index struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the digest index at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

// Get returns the record for key ("name@version"), if any.
func (idx *Index) Get(key string) (store Store, ok bool, err error) {
	err = idx.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &store)
	})
	return
}

// Put records store under key, replacing any previous record.
func (idx *Index) Put(key string, store Store) error {
	data, err := json.Marshal(store)
	if err != nil {
		return err
	}
	return idx.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), data)
	})
}

// Close releases the underlying bbolt file lock.
func (idx *Index) Close() error {
	return idx.db.Close()
}
