package memcachestorage

import (
	"context"
)

// WithKeyPrefix replaces the default "normcache:" key namespace.
func WithKeyPrefix(prefix string) StorageOption {
	return &withKeyPrefix{prefix}
}

type withKeyPrefix struct{ prefix string }

func (w *withKeyPrefix) Apply(sh *storageHandler) {
	sh.keyPrefix = w.prefix
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
