package normcache

// ValueKind discriminates the variants a record field can hold. A record
// never embeds another record: nested objects become references at
// normalization time, recursively.
type ValueKind int

const (
	// ScalarKind is a plain value: string, number, bool or nil.
	ScalarKind ValueKind = iota
	// ListKind is an ordered list of values (scalars or references).
	ListKind
	// ReferenceKind points at another record by entity key.
	ReferenceKind
)

// Reference points at another normalized record.
type Reference struct {
	Key       string
	Generated bool
	Typename  string
}

// Value is one field of a normalized record. Exactly one of Scalar, List
// and Ref is meaningful, selected by Kind.
type Value struct {
	Kind   ValueKind
	Scalar interface{}
	List   []Value
	Ref    Reference
}

// ScalarValue wraps a plain value.
func ScalarValue(v interface{}) Value {
	return Value{Kind: ScalarKind, Scalar: v}
}

// ListValue wraps an ordered list.
func ListValue(vs ...Value) Value {
	return Value{Kind: ListKind, List: vs}
}

// RefValue wraps a reference to another record.
func RefValue(ref Reference) Value {
	return Value{Kind: ReferenceKind, Ref: ref}
}

// Record is one normalized record: field name to value.
type Record map[string]Value

// Clone returns a copy of r that shares no mutable state with it.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for name, v := range r {
		out[name] = v.clone()
	}
	return out
}

// Merge overwrites r's fields with those of in, field by field. Fields of
// r absent from in are kept.
func (r Record) Merge(in Record) {
	for name, v := range in {
		r[name] = v.clone()
	}
}

func (v Value) clone() Value {
	if v.Kind != ListKind {
		return v
	}
	list := make([]Value, len(v.List))
	for idx, el := range v.List {
		list[idx] = el.clone()
	}
	return Value{Kind: ListKind, List: list}
}
