package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionarySetters(t *testing.T) {
	d := NewDictionary()
	d.SetInteger64("id", 42)
	d.SetUtf8("publicId", "1.2.840.113619.2.1")
	d.SetBinary("tags", []byte{0x08, 0x00})
	d.SetInputFile("pixelData", []byte("dicom"))
	d.SetNull("parent")

	assert.Equal(t, 5, d.Count())

	v, ok := d.Value("id")
	require.True(t, ok)
	assert.Equal(t, Integer64(42), v)

	v, ok = d.Value("publicId")
	require.True(t, ok)
	assert.Equal(t, Utf8("1.2.840.113619.2.1"), v)

	v, ok = d.Value("parent")
	require.True(t, ok)
	assert.Equal(t, TypeNull, v.Type())

	assert.False(t, d.Has("missing"))
	_, ok = d.Value("missing")
	assert.False(t, ok)
}

func TestDictionaryLastWriteWins(t *testing.T) {
	d := NewDictionary()

	for i := 0; i < 10000; i++ {
		d.SetInteger64("value", int64(i))
	}

	assert.Equal(t, 1, d.Count())
	v, ok := d.Value("value")
	require.True(t, ok)
	assert.Equal(t, Integer64(9999), v)

	// Overwrites may change the type as well.
	d.SetUtf8("value", "last")
	assert.Equal(t, 1, d.Count())
	v, _ = d.Value("value")
	assert.Equal(t, Utf8("last"), v)
}

func TestDictionaryDeclaredNullTypes(t *testing.T) {
	d := NewDictionary()
	d.SetUtf8Null("name")
	d.SetBinaryNull("payload")
	d.SetNull("plain")

	v, ok := d.Value("name")
	require.True(t, ok)
	assert.Equal(t, TypeNull, v.Type())

	declared, ok := d.DeclaredType("name")
	require.True(t, ok)
	assert.Equal(t, TypeUtf8, declared)

	declared, ok = d.DeclaredType("payload")
	require.True(t, ok)
	assert.Equal(t, TypeBinary, declared)

	declared, ok = d.DeclaredType("plain")
	require.True(t, ok)
	assert.Equal(t, TypeNull, declared)

	// Overwriting with a real value forgets the declaration.
	d.SetInteger64("name", 7)
	declared, ok = d.DeclaredType("name")
	require.True(t, ok)
	assert.Equal(t, TypeInteger64, declared)
}

func TestDictionaryNamesSorted(t *testing.T) {
	d := NewDictionary()
	d.SetInteger64("zulu", 1)
	d.SetInteger64("alpha", 2)
	d.SetInteger64("mike", 3)

	assert.Equal(t, []string{"alpha", "mike", "zulu"}, d.Names())
}

func TestDictionaryParameterTypes(t *testing.T) {
	d := NewDictionary()
	d.SetInteger64("id", 42)
	d.SetUtf8Null("name")

	types := d.ParameterTypes()
	assert.Equal(t, map[string]Type{
		"id":   TypeInteger64,
		"name": TypeUtf8,
	}, types)
}

func TestDictionaryClear(t *testing.T) {
	d := NewDictionary()
	d.SetInteger64("id", 42)
	d.SetUtf8Null("name")

	d.Clear()
	assert.Equal(t, 0, d.Count())
	_, ok := d.DeclaredType("name")
	assert.False(t, ok)
}
