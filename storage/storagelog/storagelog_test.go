package storagelog_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/normcache/normcache"
	"github.com/normcache/normcache/storage/memstorage"
	"github.com/normcache/normcache/storage/storagelog"
)

func TestStorageLog_Basic(t *testing.T) {
	ctx := context.Background()

	var logs []string
	logf := func(ctx context.Context, format string, args ...interface{}) {
		t.Logf(format, args...)
		logs = append(logs, fmt.Sprintf(format, args...))
	}

	st := storagelog.New(memstorage.New(), "storage: ", logf)

	if err := st.Set(ctx, "ROOT_QUERY", `{"field":"simple value"}`); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, "ROOT_QUERY"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, "missing"); err != normcache.ErrValueMissing {
		t.Fatalf("unexpected: %v", err)
	}
	if _, err := st.Keys(ctx); err != nil {
		t.Fatal(err)
	}
	if err := st.Remove(ctx, "ROOT_QUERY"); err != nil {
		t.Fatal(err)
	}
	if err := st.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	expected := heredoc.Doc(`
		storage: Set #1, key=ROOT_QUERY len(value)=24
		storage: Get #2, key=ROOT_QUERY
		storage: Get #2, len(value)=24
		storage: Get #3, key=missing
		storage: Get #3, err=normcache: value missing
		storage: Keys #4
		storage: Keys #4, len(keys)=1
		storage: Remove #5, key=ROOT_QUERY
		storage: Clear #6
	`)

	if v := strings.Join(logs, "\n") + "\n"; v != expected {
		t.Errorf("unexpected: %v", v)
	}
}

func TestStorageLog_ObservesCacheTraffic(t *testing.T) {
	ctx := context.Background()

	var logs []string
	logf := func(ctx context.Context, format string, args ...interface{}) {
		t.Logf(format, args...)
		logs = append(logs, fmt.Sprintf(format, args...))
	}

	base := memstorage.New()
	base.Seed("ROOT_QUERY", `{"field":"simple value"}`)

	cache, err := normcache.New(storagelog.New(base, "storage: ", logf))
	if err != nil {
		t.Fatal(err)
	}

	plan := &normcache.Plan{Selections: []normcache.Selection{{Name: "field"}}}

	// served by read-through, one storage get
	res, err := cache.Read(ctx, "q1", plan)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Complete() {
		t.Fatalf("unexpected: %v", res.Missing)
	}

	// identical write is a no-op, no storage traffic
	if err := cache.Write(ctx, plan, map[string]interface{}{"field": "simple value"}); err != nil {
		t.Fatal(err)
	}

	// changed write persists
	if err := cache.Write(ctx, plan, map[string]interface{}{"field": "after"}); err != nil {
		t.Fatal(err)
	}

	expected := heredoc.Doc(`
		storage: Get #1, key=ROOT_QUERY
		storage: Get #1, len(value)=24
		storage: Set #2, key=ROOT_QUERY len(value)=17
	`)

	if v := strings.Join(logs, "\n") + "\n"; v != expected {
		t.Errorf("unexpected: %v", v)
	}
}
