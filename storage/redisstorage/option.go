package redisstorage

import (
	"context"
	"time"
)

// WithKeyPrefix replaces the default "normcache:" key namespace.
func WithKeyPrefix(prefix string) StorageOption {
	return &withKeyPrefix{prefix}
}

type withKeyPrefix struct{ prefix string }

func (w *withKeyPrefix) Apply(sh *storageHandler) {
	sh.keyPrefix = w.prefix
}

// WithExpireDuration sets a TTL on every stored value. The default is no
// expiry: this storage is the cache's persistence target, not a
// look-aside cache, so values normally live until removed.
func WithExpireDuration(d time.Duration) StorageOption {
	return &withExpireDuration{d}
}

type withExpireDuration struct{ d time.Duration }

func (w *withExpireDuration) Apply(sh *storageHandler) {
	sh.expireDuration = w.d
}

// WithLogf sets the log function. Default is a no-op.
func WithLogf(logf func(ctx context.Context, format string, args ...interface{})) StorageOption {
	return &withLogf{logf}
}

type withLogf struct {
	logf func(ctx context.Context, format string, args ...interface{})
}

func (w *withLogf) Apply(sh *storageHandler) {
	sh.logf = w.logf
}
