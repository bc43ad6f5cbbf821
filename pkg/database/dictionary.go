package database

import "sort"

// Dictionary maps parameter names to values. Setting a name that is
// already present replaces the previous value (last write wins); the
// dictionary never grows when a key is overwritten.
//
// A Dictionary is not safe for concurrent use.
type Dictionary struct {
	values   map[string]Value
	declared map[string]Type
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		values:   make(map[string]Value),
		declared: make(map[string]Type),
	}
}

// Set stores a value under the given name, replacing any previous value
// and any previously declared null type.
func (d *Dictionary) Set(name string, value Value) {
	d.values[name] = value
	delete(d.declared, name)
}

// SetNull stores an untyped NULL.
func (d *Dictionary) SetNull(name string) {
	d.Set(name, Null{})
}

// SetInteger64 stores a 64-bit integer.
func (d *Dictionary) SetInteger64(name string, value int64) {
	d.Set(name, Integer64(value))
}

// SetUtf8 stores a UTF-8 string.
func (d *Dictionary) SetUtf8(name string, value string) {
	d.Set(name, Utf8(value))
}

// SetBinary stores a raw byte string.
func (d *Dictionary) SetBinary(name string, value []byte) {
	d.Set(name, Binary(value))
}

// SetInputFile stores a large binary payload travelling into the
// database.
func (d *Dictionary) SetInputFile(name string, content []byte) {
	d.Set(name, InputFile(content))
}

// SetUtf8Null stores a NULL while declaring the parameter as a string,
// for engines that must know the affinity of a NULL bind.
func (d *Dictionary) SetUtf8Null(name string) {
	d.Set(name, Null{})
	d.declared[name] = TypeUtf8
}

// SetBinaryNull stores a NULL while declaring the parameter as binary.
func (d *Dictionary) SetBinaryNull(name string) {
	d.Set(name, Null{})
	d.declared[name] = TypeBinary
}

// Has reports whether the name is present.
func (d *Dictionary) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Value returns the value stored under the name.
func (d *Dictionary) Value(name string) (Value, bool) {
	v, ok := d.values[name]
	return v, ok
}

// DeclaredType returns the effective type of the parameter: the type
// declared by SetUtf8Null or SetBinaryNull, otherwise the type of the
// stored value itself.
func (d *Dictionary) DeclaredType(name string) (Type, bool) {
	if t, ok := d.declared[name]; ok {
		return t, true
	}
	v, ok := d.values[name]
	if !ok {
		return TypeNull, false
	}
	return v.Type(), true
}

// Count returns the number of distinct names.
func (d *Dictionary) Count() int {
	return len(d.values)
}

// Names returns the parameter names in sorted order, for deterministic
// logging.
func (d *Dictionary) Names() []string {
	names := make([]string, 0, len(d.values))
	for name := range d.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterTypes returns a snapshot of name to effective type, for
// validating a dictionary against a compiled statement and for the
// parameter-rejection diagnostic.
func (d *Dictionary) ParameterTypes() map[string]Type {
	types := make(map[string]Type, len(d.values))
	for name := range d.values {
		t, _ := d.DeclaredType(name)
		types[name] = t
	}
	return types
}

// Clear empties the dictionary so it can be reused.
func (d *Dictionary) Clear() {
	d.values = make(map[string]Value)
	d.declared = make(map[string]Type)
}
