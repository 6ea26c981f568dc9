// Package tag provides typed, fallible access to decoded NBT compounds and the
// gzip container shared by the schematic codecs.
package tag

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrMalformed is returned when the gzip container or the tag tree cannot be read.
	ErrMalformed = errors.New("malformed container")
	// ErrMissing is returned when a required key is absent.
	ErrMissing = errors.New("missing tag")
	// ErrWrongType is returned when a key holds a different tag type than requested.
	ErrWrongType = errors.New("wrong tag type")
)

// FieldError identifies the key a typed lookup failed on.
type FieldError struct {
	Key  string
	Want string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Want, e.Key, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Compound is a decoded TAG_Compound.
type Compound map[string]any

// Has reports whether key is present, regardless of its type.
func (c Compound) Has(key string) bool {
	_, ok := c[key]
	return ok
}

func (c Compound) lookup(key, want string) (any, error) {
	v, ok := c[key]
	if !ok {
		return nil, &FieldError{Key: key, Want: want, Err: ErrMissing}
	}
	return v, nil
}

func wrongType(key, want string) error {
	return &FieldError{Key: key, Want: want, Err: ErrWrongType}
}

// Byte returns the TAG_Byte stored at key.
func (c Compound) Byte(key string) (int8, error) {
	v, err := c.lookup(key, "byte")
	if err != nil {
		return 0, err
	}
	switch b := v.(type) {
	case uint8:
		return int8(b), nil
	case int8:
		return b, nil
	}
	return 0, wrongType(key, "byte")
}

// Short returns the TAG_Short stored at key.
func (c Compound) Short(key string) (int16, error) {
	v, err := c.lookup(key, "short")
	if err != nil {
		return 0, err
	}
	s, ok := v.(int16)
	if !ok {
		return 0, wrongType(key, "short")
	}
	return s, nil
}

// Int returns the TAG_Int stored at key.
func (c Compound) Int(key string) (int32, error) {
	v, err := c.lookup(key, "int")
	if err != nil {
		return 0, err
	}
	i, ok := v.(int32)
	if !ok {
		return 0, wrongType(key, "int")
	}
	return i, nil
}

// Long returns the TAG_Long stored at key.
func (c Compound) Long(key string) (int64, error) {
	v, err := c.lookup(key, "long")
	if err != nil {
		return 0, err
	}
	l, ok := v.(int64)
	if !ok {
		return 0, wrongType(key, "long")
	}
	return l, nil
}

// Float returns the TAG_Float stored at key.
func (c Compound) Float(key string) (float32, error) {
	v, err := c.lookup(key, "float")
	if err != nil {
		return 0, err
	}
	f, ok := v.(float32)
	if !ok {
		return 0, wrongType(key, "float")
	}
	return f, nil
}

// Double returns the TAG_Double stored at key.
func (c Compound) Double(key string) (float64, error) {
	v, err := c.lookup(key, "double")
	if err != nil {
		return 0, err
	}
	d, ok := v.(float64)
	if !ok {
		return 0, wrongType(key, "double")
	}
	return d, nil
}

// String returns the TAG_String stored at key.
func (c Compound) String(key string) (string, error) {
	v, err := c.lookup(key, "string")
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(key, "string")
	}
	return s, nil
}

// ByteArray returns the TAG_Byte_Array stored at key.
func (c Compound) ByteArray(key string) ([]byte, error) {
	v, err := c.lookup(key, "byte array")
	if err != nil {
		return nil, err
	}
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	rv := reflect.ValueOf(v)
	if !isSequence(rv) || (rv.Type().Elem().Kind() != reflect.Uint8 && rv.Type().Elem().Kind() != reflect.Int8) {
		return nil, wrongType(key, "byte array")
	}
	out := make([]byte, rv.Len())
	for i := range out {
		e := rv.Index(i)
		if e.Kind() == reflect.Int8 {
			out[i] = byte(e.Int())
		} else {
			out[i] = byte(e.Uint())
		}
	}
	return out, nil
}

// IntArray returns the TAG_Int_Array stored at key. A list of ints is accepted too.
func (c Compound) IntArray(key string) ([]int32, error) {
	v, err := c.lookup(key, "int array")
	if err != nil {
		return nil, err
	}
	if a, ok := v.([]int32); ok {
		return a, nil
	}
	out, ok := sequenceOf[int32](v)
	if !ok {
		return nil, wrongType(key, "int array")
	}
	return out, nil
}

// LongArray returns the TAG_Long_Array stored at key. A list of longs is accepted too.
func (c Compound) LongArray(key string) ([]int64, error) {
	v, err := c.lookup(key, "long array")
	if err != nil {
		return nil, err
	}
	if a, ok := v.([]int64); ok {
		return a, nil
	}
	out, ok := sequenceOf[int64](v)
	if !ok {
		return nil, wrongType(key, "long array")
	}
	return out, nil
}

// Doubles returns a TAG_List of doubles stored at key.
func (c Compound) Doubles(key string) ([]float64, error) {
	v, err := c.lookup(key, "double list")
	if err != nil {
		return nil, err
	}
	out, ok := sequenceOf[float64](v)
	if !ok {
		return nil, wrongType(key, "double list")
	}
	return out, nil
}

// Floats returns a TAG_List of floats stored at key.
func (c Compound) Floats(key string) ([]float32, error) {
	v, err := c.lookup(key, "float list")
	if err != nil {
		return nil, err
	}
	out, ok := sequenceOf[float32](v)
	if !ok {
		return nil, wrongType(key, "float list")
	}
	return out, nil
}

// Strings returns a TAG_List of strings stored at key.
func (c Compound) Strings(key string) ([]string, error) {
	v, err := c.lookup(key, "string list")
	if err != nil {
		return nil, err
	}
	out, ok := sequenceOf[string](v)
	if !ok {
		return nil, wrongType(key, "string list")
	}
	return out, nil
}

// Compound returns the TAG_Compound stored at key.
func (c Compound) Compound(key string) (Compound, error) {
	v, err := c.lookup(key, "compound")
	if err != nil {
		return nil, err
	}
	m, ok := asCompound(v)
	if !ok {
		return nil, wrongType(key, "compound")
	}
	return m, nil
}

// Compounds returns a TAG_List of compounds stored at key.
func (c Compound) Compounds(key string) ([]Compound, error) {
	v, err := c.lookup(key, "compound list")
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(v)
	if !isSequence(rv) {
		return nil, wrongType(key, "compound list")
	}
	out := make([]Compound, rv.Len())
	for i := range out {
		m, ok := asCompound(rv.Index(i).Interface())
		if !ok {
			return nil, wrongType(key, "compound list")
		}
		out[i] = m
	}
	return out, nil
}

func asCompound(v any) (Compound, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Compound:
		return m, true
	}
	return nil, false
}

func isSequence(rv reflect.Value) bool {
	return rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array)
}

// sequenceOf converts a decoded array, typed slice or []any into []T, failing if any
// element has a different type.
func sequenceOf[T any](v any) ([]T, bool) {
	rv := reflect.ValueOf(v)
	if !isSequence(rv) {
		return nil, false
	}
	out := make([]T, rv.Len())
	for i := range out {
		e, ok := rv.Index(i).Interface().(T)
		if !ok {
			return nil, false
		}
		out[i] = e
	}
	return out, true
}
