// Package storagelog wraps any Storage and logs every operation through an
// injected log function, with a running operation counter. Useful for
// observing which storage calls a cache operation actually issues.
package storagelog

import (
	"context"
	"sync"

	"github.com/normcache/normcache"
)

var _ normcache.Storage = &logger{}

// New wraps next with operation logging. Every log line starts with prefix.
func New(next normcache.Storage, prefix string, logf func(ctx context.Context, format string, args ...interface{})) normcache.Storage {
	return &logger{Next: next, Prefix: prefix, Logf: logf, counter: 1}
}

type logger struct {
	Next   normcache.Storage
	Prefix string
	Logf   func(ctx context.Context, format string, args ...interface{})

	m       sync.Mutex
	counter int
}

func (l *logger) next() int {
	l.m.Lock()
	cnt := l.counter
	l.counter++
	l.m.Unlock()

	return cnt
}

func (l *logger) Get(ctx context.Context, key string) (string, error) {
	cnt := l.next()

	l.Logf(ctx, l.Prefix+"Get #%d, key=%s", cnt, key)

	value, err := l.Next.Get(ctx, key)

	if err == nil {
		l.Logf(ctx, l.Prefix+"Get #%d, len(value)=%d", cnt, len(value))
	} else {
		l.Logf(ctx, l.Prefix+"Get #%d, err=%s", cnt, err.Error())
	}

	return value, err
}

func (l *logger) Set(ctx context.Context, key, value string) error {
	cnt := l.next()

	l.Logf(ctx, l.Prefix+"Set #%d, key=%s len(value)=%d", cnt, key, len(value))

	err := l.Next.Set(ctx, key, value)

	if err != nil {
		l.Logf(ctx, l.Prefix+"Set #%d, err=%s", cnt, err.Error())
	}

	return err
}

func (l *logger) Remove(ctx context.Context, key string) error {
	cnt := l.next()

	l.Logf(ctx, l.Prefix+"Remove #%d, key=%s", cnt, key)

	err := l.Next.Remove(ctx, key)

	if err != nil {
		l.Logf(ctx, l.Prefix+"Remove #%d, err=%s", cnt, err.Error())
	}

	return err
}

func (l *logger) Clear(ctx context.Context) error {
	cnt := l.next()

	l.Logf(ctx, l.Prefix+"Clear #%d", cnt)

	err := l.Next.Clear(ctx)

	if err != nil {
		l.Logf(ctx, l.Prefix+"Clear #%d, err=%s", cnt, err.Error())
	}

	return err
}

func (l *logger) Keys(ctx context.Context) ([]string, error) {
	cnt := l.next()

	l.Logf(ctx, l.Prefix+"Keys #%d", cnt)

	keys, err := l.Next.Keys(ctx)

	if err == nil {
		l.Logf(ctx, l.Prefix+"Keys #%d, len(keys)=%d", cnt, len(keys))
	} else {
		l.Logf(ctx, l.Prefix+"Keys #%d, err=%s", cnt, err.Error())
	}

	return keys, err
}
