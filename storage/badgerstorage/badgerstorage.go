// Package badgerstorage provides a Storage backed by an embedded BadgerDB,
// for durable single-process persistence without an external server.
//
// The adapter takes an opened *badger.DB; the caller owns its lifecycle.
package badgerstorage

import (
	"context"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/normcache/normcache"
)

var _ normcache.Storage = &storageHandler{}

const defaultKeyPrefix = "normcache:"

// New returns a Storage over the given BadgerDB handle.
func New(db *badger.DB, opts ...StorageOption) normcache.Storage {
	sh := &storageHandler{
		db:        db,
		keyPrefix: defaultKeyPrefix,
	}

	for _, opt := range opts {
		opt.Apply(sh)
	}

	if sh.logf == nil {
		sh.logf = func(ctx context.Context, format string, args ...interface{}) {}
	}

	return sh
}

type storageHandler struct {
	db        *badger.DB
	keyPrefix string
	logf      func(ctx context.Context, format string, args ...interface{})
}

// StorageOption configures the badger storage.
type StorageOption interface {
	Apply(*storageHandler)
}

func (sh *storageHandler) Get(ctx context.Context, key string) (string, error) {
	var value []byte
	err := sh.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sh.keyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", normcache.ErrValueMissing
	}
	if err != nil {
		sh.logf(ctx, "badgerstorage.Get: key=%s err=%s", sh.keyPrefix+key, err.Error())
		return "", err
	}

	return string(value), nil
}

func (sh *storageHandler) Set(ctx context.Context, key, value string) error {
	err := sh.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(sh.keyPrefix+key), []byte(value))
	})
	if err != nil {
		sh.logf(ctx, "badgerstorage.Set: key=%s err=%s", sh.keyPrefix+key, err.Error())
		return err
	}

	return nil
}

func (sh *storageHandler) Remove(ctx context.Context, key string) error {
	err := sh.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sh.keyPrefix + key))
	})
	if err != nil {
		sh.logf(ctx, "badgerstorage.Remove: key=%s err=%s", sh.keyPrefix+key, err.Error())
		return err
	}

	return nil
}

func (sh *storageHandler) Clear(ctx context.Context) error {
	err := sh.db.DropPrefix([]byte(sh.keyPrefix))
	if err != nil {
		sh.logf(ctx, "badgerstorage.Clear: err=%s", err.Error())
		return err
	}

	return nil
}

func (sh *storageHandler) Keys(ctx context.Context) ([]string, error) {
	prefix := []byte(sh.keyPrefix)

	var keys []string
	err := sh.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.PrefetchValues = false
		itOpts.Prefix = prefix

		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			keys = append(keys, key[len(sh.keyPrefix):])
		}
		return nil
	})
	if err != nil {
		sh.logf(ctx, "badgerstorage.Keys: err=%s", err.Error())
		return nil, err
	}
	sort.Strings(keys)

	return keys, nil
}
