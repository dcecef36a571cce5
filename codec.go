package normcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// refMarker is the field that distinguishes a serialized reference from
// any other JSON object. Normalized records never contain embedded
// objects, so an object without the marker is corrupt data.
const refMarker = "$ref"

// DefaultCodec serializes records as JSON. References encode as
// {"$ref": key, "generated": bool, "typename": t}, lists as arrays and
// scalars as raw JSON values.
var DefaultCodec Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Encode(record Record) (string, error) {
	m := make(map[string]interface{}, len(record))
	for name, v := range record {
		ev, err := encodeValue(v)
		if err != nil {
			return "", fmt.Errorf("normcache: encode field %q: %w", name, err)
		}
		m[name] = ev
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeValue(v Value) (interface{}, error) {
	switch v.Kind {
	case ScalarKind:
		return v.Scalar, nil
	case ListKind:
		list := make([]interface{}, len(v.List))
		for idx, el := range v.List {
			ev, err := encodeValue(el)
			if err != nil {
				return nil, err
			}
			list[idx] = ev
		}
		return list, nil
	case ReferenceKind:
		return map[string]interface{}{
			refMarker:   v.Ref.Key,
			"generated": v.Ref.Generated,
			"typename":  v.Ref.Typename,
		}, nil
	}
	return nil, fmt.Errorf("unknown value kind %d", v.Kind)
}

func (jsonCodec) Decode(key, value string) (Record, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &m); err != nil {
		return nil, &CorruptRecordError{Key: key, Err: err}
	}
	record := make(Record, len(m))
	for name, raw := range m {
		v, err := decodeValue(raw)
		if err != nil {
			return nil, &CorruptRecordError{Key: key, Err: fmt.Errorf("field %q: %w", name, err)}
		}
		record[name] = v
	}
	return record, nil
}

func decodeValue(raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Value{}, errors.New("empty value")
	}
	switch trimmed[0] {
	case '{':
		return decodeReference(trimmed)
	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return Value{}, err
		}
		list := make([]Value, len(elements))
		for idx, el := range elements {
			v, err := decodeValue(el)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", idx, err)
			}
			list[idx] = v
		}
		return Value{Kind: ListKind, List: list}, nil
	default:
		var scalar interface{}
		if err := json.Unmarshal(trimmed, &scalar); err != nil {
			return Value{}, err
		}
		return ScalarValue(scalar), nil
	}
}

func decodeReference(raw []byte) (Value, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Value{}, err
	}
	rawKey, ok := fields[refMarker]
	if !ok {
		return Value{}, errors.New("embedded object is not a reference")
	}

	ref := Reference{}
	if err := json.Unmarshal(rawKey, &ref.Key); err != nil {
		return Value{}, fmt.Errorf("reference key: %w", err)
	}
	if rawGenerated, ok := fields["generated"]; ok {
		if err := json.Unmarshal(rawGenerated, &ref.Generated); err != nil {
			return Value{}, fmt.Errorf("reference generated flag: %w", err)
		}
	}
	if rawTypename, ok := fields["typename"]; ok {
		if err := json.Unmarshal(rawTypename, &ref.Typename); err != nil {
			return Value{}, fmt.Errorf("reference typename: %w", err)
		}
	}
	for name := range fields {
		switch name {
		case refMarker, "generated", "typename":
		default:
			return Value{}, fmt.Errorf("unknown reference field %q", name)
		}
	}

	return RefValue(ref), nil
}
