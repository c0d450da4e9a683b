package domain

import (
	"encoding/json"
	"fmt"
)

// MetaValue is a closed union of primitive values allowed in metadata maps.
// Restricting the value space keeps store round-trips serializable without
// reintroducing dynamic typing in the rest of the core.
type MetaValue struct {
	kind metaKind
	s    string
	i    int64
	f    float64
	b    bool
}

type metaKind uint8

const (
	metaString metaKind = iota
	metaInt
	metaFloat
	metaBool
)

func MetaString(v string) MetaValue  { return MetaValue{kind: metaString, s: v} }
func MetaInt(v int64) MetaValue      { return MetaValue{kind: metaInt, i: v} }
func MetaFloat(v float64) MetaValue  { return MetaValue{kind: metaFloat, f: v} }
func MetaBool(v bool) MetaValue      { return MetaValue{kind: metaBool, b: v} }

func (v MetaValue) String() (string, bool)  { return v.s, v.kind == metaString }
func (v MetaValue) Int() (int64, bool)      { return v.i, v.kind == metaInt }
func (v MetaValue) Float() (float64, bool)  { return v.f, v.kind == metaFloat }
func (v MetaValue) Bool() (bool, bool)      { return v.b, v.kind == metaBool }

func (v MetaValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case metaString:
		return json.Marshal(v.s)
	case metaInt:
		return json.Marshal(v.i)
	case metaFloat:
		return json.Marshal(v.f)
	case metaBool:
		return json.Marshal(v.b)
	}
	return nil, fmt.Errorf("unknown metadata value kind %d", v.kind)
}

func (v *MetaValue) UnmarshalJSON(raw []byte) error {
	var any interface{}
	if err := json.Unmarshal(raw, &any); err != nil {
		return err
	}
	switch t := any.(type) {
	case string:
		*v = MetaString(t)
	case bool:
		*v = MetaBool(t)
	case float64:
		// JSON numbers arrive as float64; keep integral values as ints so
		// counters survive a round-trip unchanged.
		if t == float64(int64(t)) {
			*v = MetaInt(int64(t))
		} else {
			*v = MetaFloat(t)
		}
	default:
		return fmt.Errorf("%w: metadata values must be string, number, or bool", ErrInvalidInput)
	}
	return nil
}

// Metadata is the typed key/value bag carried by licenses and sessions.
type Metadata map[string]MetaValue

// Clone returns an independent copy so cached entities cannot be mutated
// through shared maps.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
