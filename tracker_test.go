package normcache

import (
	"reflect"
	"testing"
)

func TestTracker_ExactMatchInvalidation(t *testing.T) {
	tr := newTracker()

	tr.beginRead("q1")
	tr.recordAccess("q1", RootKey)
	tr.recordAccess("q1", "User:1")

	tr.beginRead("q2")
	tr.recordAccess("q2", RootKey)
	tr.recordAccess("q2", "Item:1")

	if v := tr.onWrite("User:1"); !reflect.DeepEqual(v, []string{"q1"}) {
		t.Errorf("unexpected: %v", v)
	}
	if v := tr.onWrite("Item:1"); !reflect.DeepEqual(v, []string{"q2"}) {
		t.Errorf("unexpected: %v", v)
	}
	if v := tr.onWrite(RootKey); !reflect.DeepEqual(v, []string{"q1", "q2"}) {
		t.Errorf("unexpected: %v", v)
	}
	if v := tr.onWrite("User:999"); v != nil {
		t.Errorf("unexpected: %v", v)
	}
}

func TestTracker_RecordAccessIsIdempotent(t *testing.T) {
	tr := newTracker()

	tr.beginRead("q1")
	tr.recordAccess("q1", "User:1")
	tr.recordAccess("q1", "User:1")

	if v := tr.deps["q1"]; len(v) != 1 {
		t.Errorf("unexpected: %v", v)
	}
}

func TestTracker_BeginReadSupersedes(t *testing.T) {
	tr := newTracker()

	tr.beginRead("q1")
	tr.recordAccess("q1", "User:1")

	tr.beginRead("q1")
	tr.recordAccess("q1", "Item:1")

	if v := tr.onWrite("User:1"); v != nil {
		t.Errorf("unexpected: %v", v)
	}
	if v := tr.onWrite("Item:1"); !reflect.DeepEqual(v, []string{"q1"}) {
		t.Errorf("unexpected: %v", v)
	}
}

func TestTracker_ReleasedReadDoesNotResurrect(t *testing.T) {
	tr := newTracker()

	tr.beginRead("q1")
	tr.release("q1")

	// a read released mid-flight may still report accesses; they must not
	// recreate the set
	tr.recordAccess("q1", "User:1")

	if v := tr.onWrite("User:1"); v != nil {
		t.Errorf("unexpected: %v", v)
	}
	if _, ok := tr.deps["q1"]; ok {
		t.Errorf("unexpected: released set recreated")
	}
}

func TestTracker_Active(t *testing.T) {
	tr := newTracker()

	tr.beginRead("q2")
	tr.beginRead("q1")

	if v := tr.active(); !reflect.DeepEqual(v, []string{"q1", "q2"}) {
		t.Errorf("unexpected: %v", v)
	}
}
