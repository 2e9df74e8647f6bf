package models

import (
	"encoding/json"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ActiveFlag keeps the raw stored encoding of a record's "activo" field.
// Older documents carry it as a bool, a number, a string or null, so the
// value is interpreted at read time instead of being coerced on decode.
// A flag that was never set (field absent) behaves like the default, true.
type ActiveFlag struct {
	value interface{}
	set   bool
}

// NewActiveFlag wraps a raw stored value.
func NewActiveFlag(v interface{}) ActiveFlag {
	return ActiveFlag{value: v, set: true}
}

// Active returns a flag holding the boolean b.
func Active(b bool) ActiveFlag {
	return NewActiveFlag(b)
}

// IsSet reports whether the field was present in storage.
func (f ActiveFlag) IsSet() bool { return f.set }

// Raw returns the stored value (nil for null or absent).
func (f ActiveFlag) Raw() interface{} { return f.value }

// Truthy applies the permissive interpretation: null, false, numeric zero,
// "false" and "" are inactive; every other value is active.
func (f ActiveFlag) Truthy() bool {
	if !f.set {
		return true
	}
	switch v := f.value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != "" && v != "false"
	default:
		return true
	}
}

// Strict is true only when the stored value is the boolean true.
func (f ActiveFlag) Strict() bool {
	b, ok := f.value.(bool)
	return f.set && ok && b
}

// MarshalBSONValue writes the raw value back unchanged; an unset flag is
// written as true.
func (f ActiveFlag) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !f.set {
		return bson.MarshalValue(true)
	}
	if f.value == nil {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(f.value)
}

// UnmarshalBSONValue captures the stored value without interpreting it.
func (f *ActiveFlag) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	f.set = true
	switch t {
	case bsontype.Null, bsontype.Undefined:
		f.value = nil
	case bsontype.Boolean:
		f.value = rv.Boolean()
	case bsontype.Int32:
		f.value = rv.Int32()
	case bsontype.Int64:
		f.value = rv.Int64()
	case bsontype.Double:
		f.value = rv.Double()
	case bsontype.String:
		f.value = rv.StringValue()
	default:
		f.value = t.String()
	}
	return nil
}

// MarshalJSON renders the interpreted boolean.
func (f ActiveFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Truthy())
}

// UnmarshalJSON accepts any JSON scalar.
func (f *ActiveFlag) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.value = v
	f.set = true
	return nil
}
