// Package memcachestorage provides a memcached-backed Storage.
//
// memcached cannot enumerate its keys, so the storage maintains its own
// key index under a reserved entry inside the key namespace. The index is
// updated in the same synchronous step as the value it describes; the
// cache issues one storage call at a time, so the read-modify-write on the
// index is safe under this package's contract.
package memcachestorage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/normcache/normcache"
)

var _ normcache.Storage = &storageHandler{}

const (
	defaultKeyPrefix = "normcache:"
	indexSuffix      = "!keys"
)

// New returns a Storage backed by the given memcache client.
func New(client *memcache.Client, opts ...StorageOption) normcache.Storage {
	sh := &storageHandler{
		client:    client,
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
	client    *memcache.Client
	keyPrefix string
	logf      func(ctx context.Context, format string, args ...interface{})
}

// StorageOption configures the memcache storage.
type StorageOption interface {
	Apply(*storageHandler)
}

func (sh *storageHandler) Get(ctx context.Context, key string) (string, error) {
	item, err := sh.client.Get(sh.keyPrefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return "", normcache.ErrValueMissing
	}
	if err != nil {
		sh.logf(ctx, "memcachestorage.Get: key=%s err=%s", sh.keyPrefix+key, err.Error())
		return "", err
	}

	return string(item.Value), nil
}

func (sh *storageHandler) Set(ctx context.Context, key, value string) error {
	err := sh.client.Set(&memcache.Item{
		Key:   sh.keyPrefix + key,
		Value: []byte(value),
	})
	if err != nil {
		sh.logf(ctx, "memcachestorage.Set: key=%s err=%s", sh.keyPrefix+key, err.Error())
		return err
	}

	return sh.updateIndex(ctx, func(index map[string]struct{}) {
		index[key] = struct{}{}
	})
}

func (sh *storageHandler) Remove(ctx context.Context, key string) error {
	err := sh.client.Delete(sh.keyPrefix + key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		sh.logf(ctx, "memcachestorage.Remove: key=%s err=%s", sh.keyPrefix+key, err.Error())
		return err
	}

	return sh.updateIndex(ctx, func(index map[string]struct{}) {
		delete(index, key)
	})
}

func (sh *storageHandler) Clear(ctx context.Context) error {
	index, err := sh.loadIndex(ctx)
	if err != nil {
		return err
	}

	for key := range index {
		err := sh.client.Delete(sh.keyPrefix + key)
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			sh.logf(ctx, "memcachestorage.Clear: key=%s err=%s", sh.keyPrefix+key, err.Error())
			return err
		}
	}

	err = sh.client.Delete(sh.indexKey())
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}

	return nil
}

func (sh *storageHandler) Keys(ctx context.Context) ([]string, error) {
	index, err := sh.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}

func (sh *storageHandler) indexKey() string {
	return sh.keyPrefix + indexSuffix
}

func (sh *storageHandler) loadIndex(ctx context.Context) (map[string]struct{}, error) {
	item, err := sh.client.Get(sh.indexKey())
	if errors.Is(err, memcache.ErrCacheMiss) {
		return make(map[string]struct{}), nil
	}
	if err != nil {
		sh.logf(ctx, "memcachestorage.loadIndex: err=%s", err.Error())
		return nil, err
	}

	var keys []string
	if err := json.Unmarshal(item.Value, &keys); err != nil {
		sh.logf(ctx, "memcachestorage.loadIndex: json.Unmarshal err=%s", err.Error())
		return nil, err
	}

	index := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		index[key] = struct{}{}
	}

	return index, nil
}

func (sh *storageHandler) updateIndex(ctx context.Context, mutate func(index map[string]struct{})) error {
	index, err := sh.loadIndex(ctx)
	if err != nil {
		return err
	}

	mutate(index)

	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	b, err := json.Marshal(keys)
	if err != nil {
		return err
	}

	err = sh.client.Set(&memcache.Item{Key: sh.indexKey(), Value: b})
	if err != nil {
		sh.logf(ctx, "memcachestorage.updateIndex: err=%s", err.Error())
		return err
	}

	return nil
}
