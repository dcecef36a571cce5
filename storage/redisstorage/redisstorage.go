// Package redisstorage provides a redis-backed Storage.
//
// Keys are namespaced with a configurable prefix so a shared redis can
// hold more than one cache; Keys enumeration and Clear only see the
// prefixed key space.
package redisstorage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/normcache/normcache"
)

var _ normcache.Storage = &storageHandler{}

const defaultKeyPrefix = "normcache:"

// New returns a Storage backed by the given redis connection. The
// connection is owned by the caller.
func New(conn redis.Conn, opts ...StorageOption) normcache.Storage {
	sh := &storageHandler{
		conn:      conn,
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
	conn           redis.Conn
	keyPrefix      string
	expireDuration time.Duration
	logf           func(ctx context.Context, format string, args ...interface{})
}

// StorageOption configures the redis storage.
type StorageOption interface {
	Apply(*storageHandler)
}

func (sh *storageHandler) Get(ctx context.Context, key string) (string, error) {
	value, err := redis.String(sh.conn.Do("GET", sh.keyPrefix+key))
	if errors.Is(err, redis.ErrNil) {
		return "", normcache.ErrValueMissing
	}
	if err != nil {
		sh.logf(ctx, `redisstorage.Get: conn.Do("GET", "%s") err=%s`, sh.keyPrefix+key, err.Error())
		return "", err
	}

	return value, nil
}

func (sh *storageHandler) Set(ctx context.Context, key, value string) error {
	var err error
	if sh.expireDuration <= 0 {
		_, err = sh.conn.Do("SET", sh.keyPrefix+key, value)
	} else {
		_, err = sh.conn.Do("SET", sh.keyPrefix+key, value, "PX", int64(sh.expireDuration/time.Millisecond))
	}
	if err != nil {
		sh.logf(ctx, `redisstorage.Set: conn.Do("SET", "%s", ...) err=%s`, sh.keyPrefix+key, err.Error())
		return err
	}

	return nil
}

func (sh *storageHandler) Remove(ctx context.Context, key string) error {
	_, err := sh.conn.Do("DEL", sh.keyPrefix+key)
	if err != nil {
		sh.logf(ctx, `redisstorage.Remove: conn.Do("DEL", "%s") err=%s`, sh.keyPrefix+key, err.Error())
		return err
	}

	return nil
}

func (sh *storageHandler) Clear(ctx context.Context) error {
	rawKeys, err := redis.Strings(sh.conn.Do("KEYS", sh.keyPrefix+"*"))
	if err != nil {
		sh.logf(ctx, `redisstorage.Clear: conn.Do("KEYS") err=%s`, err.Error())
		return err
	}
	for _, rawKey := range rawKeys {
		if _, err := sh.conn.Do("DEL", rawKey); err != nil {
			sh.logf(ctx, `redisstorage.Clear: conn.Do("DEL", "%s") err=%s`, rawKey, err.Error())
			return err
		}
	}

	return nil
}

func (sh *storageHandler) Keys(ctx context.Context) ([]string, error) {
	rawKeys, err := redis.Strings(sh.conn.Do("KEYS", sh.keyPrefix+"*"))
	if err != nil {
		sh.logf(ctx, `redisstorage.Keys: conn.Do("KEYS") err=%s`, err.Error())
		return nil, err
	}

	keys := make([]string, 0, len(rawKeys))
	for _, rawKey := range rawKeys {
		keys = append(keys, strings.TrimPrefix(rawKey, sh.keyPrefix))
	}
	sort.Strings(keys)

	return keys, nil
}
