package normcache

import (
	"context"
)

// Option configures a Cache at construction time.
type Option interface {
	Apply(*Cache)
}

// WithIdentityFn replaces the default (typename, id) identity rule.
func WithIdentityFn(f IdentityFn) Option {
	return &withIdentityFn{f}
}

type withIdentityFn struct{ f IdentityFn }

func (w *withIdentityFn) Apply(c *Cache) {
	c.identityFn = w.f
}

// WithCodec replaces the default JSON codec.
func WithCodec(codec Codec) Option {
	return &withCodec{codec}
}

type withCodec struct{ codec Codec }

func (w *withCodec) Apply(c *Cache) {
	c.codec = w.codec
}

// WithLogf sets the operational log function. Default is a no-op.
func WithLogf(logf func(ctx context.Context, format string, args ...interface{})) Option {
	return &withLogf{logf}
}

type withLogf struct {
	logf func(ctx context.Context, format string, args ...interface{})
}

func (w *withLogf) Apply(c *Cache) {
	c.logf = w.logf
}

// WithDiagnosticf sets the diagnostic log function for contained
// structural errors: corrupt records, dangling references, shape
// mismatches. These degrade to cache misses and never abort a read; this
// hook is how they stay observable. Default is a no-op.
func WithDiagnosticf(diagf func(ctx context.Context, format string, args ...interface{})) Option {
	return &withDiagnosticf{diagf}
}

type withDiagnosticf struct {
	diagf func(ctx context.Context, format string, args ...interface{})
}

func (w *withDiagnosticf) Apply(c *Cache) {
	c.diagf = w.diagf
}
