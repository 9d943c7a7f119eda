package cart

import (
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const cartsBucket = "carts"

// Store persists carts to an embedded bbolt file, the server-side stand-in
// for the browser's device storage: every mutation is written through
// synchronously and carts are rehydrated on access.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (or creates) the cart database under workdir.
func OpenStore(workdir string) (*Store, error) {
	db, err := bolt.Open(filepath.Join(workdir, "carts.db"), 0o600, &bolt.Options{
		Timeout: 3 * time.Second,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open cart store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cartsBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init cart bucket")
	}
	return &Store{db: db}, nil
}

// Get rehydrates the cart for id. A missing record or an undecodable one
// fails open to a fresh empty cart.
func (s *Store) Get(id string) *Cart {
	var raw []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(cartsBucket)).Get([]byte(id)); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if raw == nil {
		return New(id)
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		zap.L().Warn("discarding undecodable cart", zap.String("cart_id", id), zap.Error(err))
		return New(id)
	}
	c.ID = id
	if c.Items == nil {
		c.Items = []Item{}
	}
	return &c
}

// Save serializes and writes the cart synchronously.
func (s *Store) Save(c *Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(cartsBucket)).Put([]byte(c.ID), raw)
	})
}

// Delete removes a cart record entirely.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(cartsBucket)).Delete([]byte(id))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
