package normcache

import (
	"reflect"
	"testing"
)

func TestRecord_MergeOverwritesFieldwise(t *testing.T) {
	record := Record{
		"name": ScalarValue("before"),
		"age":  ScalarValue(float64(30)),
	}

	record.Merge(Record{
		"name": ScalarValue("after"),
		"mail": ScalarValue("a@example.com"),
	})

	expected := Record{
		"name": ScalarValue("after"),
		"age":  ScalarValue(float64(30)),
		"mail": ScalarValue("a@example.com"),
	}
	if !reflect.DeepEqual(record, expected) {
		t.Errorf("unexpected: %#v", record)
	}
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	record := Record{
		"tags": ListValue(ScalarValue("a"), ScalarValue("b")),
	}

	clone := record.Clone()
	clone["tags"].List[0] = ScalarValue("mutated")

	if v := record["tags"].List[0].Scalar; v != "a" {
		t.Errorf("unexpected: %v", v)
	}
}
