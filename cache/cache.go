// Package cache provides a per-root change detection cache, recording the
// modtime, size and config signature each file was last processed with so
// unchanged files can be skipped on subsequent runs.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

const bucketPaths = "paths"

var ErrKeyNotFound = errors.New("key not found")

// Entry records what a file looked like when it was last processed.
type Entry struct {
	Size      int64  `msgpack:"size"`
	ModTime   int64  `msgpack:"mod_time"`
	Signature []byte `msgpack:"signature"`
}

// Changed reports whether the file no longer matches this entry, either
// because it was modified or because the effective config it was processed
// with differs.
func (e *Entry) Changed(info fs.FileInfo, signature []byte) bool {
	return e.Size != info.Size() ||
		e.ModTime != info.ModTime().Unix() ||
		!bytes.Equal(e.Signature, signature)
}

// Path returns a unique local cache file path for the given root string,
// using its SHA-256 hash. With dir unset the platform cache home is used.
func Path(root string, dir string) (string, error) {
	digest := sha256.Sum256([]byte(root))

	name := hex.EncodeToString(digest[:]) + ".db"

	if dir == "" {
		path, err := xdg.CacheFile(filepath.Join("blackfmt", name))
		if err != nil {
			return "", fmt.Errorf("could not resolve local path for the cache: %w", err)
		}

		return path, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create cache directory %s: %w", dir, err)
	}

	return filepath.Join(dir, name), nil
}

// Cache wraps a bolt database holding one entry per relative path.
type Cache struct {
	db *bolt.DB
}

// Open initialises the cache database for the given root, storing it in dir
// or the platform cache home when dir is empty.
func Open(root string, dir string) (*Cache, error) {
	path, err := Path(root, dir)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketPaths))
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get looks up the entry for relPath, returning ErrKeyNotFound on a miss.
func (c *Cache) Get(relPath string) (*Entry, error) {
	var entry *Entry

	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketPaths)).Get([]byte(relPath))
		if raw == nil {
			return ErrKeyNotFound
		}

		entry = &Entry{}
		if err := msgpack.Unmarshal(raw, entry); err != nil {
			return fmt.Errorf("failed to unmarshal cache entry for %s: %w", relPath, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Put records the entry for relPath.
func (c *Cache) Put(relPath string, entry *Entry) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		raw, err := msgpack.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry for %s: %w", relPath, err)
		}

		if err = tx.Bucket([]byte(bucketPaths)).Put([]byte(relPath), raw); err != nil {
			return fmt.Errorf("failed to put cache entry for %s: %w", relPath, err)
		}

		return nil
	})
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketPaths)); err != nil {
			return fmt.Errorf("failed to delete bucket: %w", err)
		}

		if _, err := tx.CreateBucket([]byte(bucketPaths)); err != nil {
			return fmt.Errorf("failed to recreate bucket: %w", err)
		}

		return nil
	})
}
