package jsonstream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterCompactObject(t *testing.T) {
	w := NewWriter()
	w.BeginObject()
	w.WriteName("x")
	w.WriteInt(1)
	w.WriteName("y")
	w.WriteString("2")
	w.WriteName("list")
	w.BeginArray()
	w.WriteBool(true)
	w.WriteNull()
	w.EndArray()
	w.EndObject()

	s, err := w.String()
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"y":"2","list":[true,null]}`, s)
}

func TestWriterPretty(t *testing.T) {
	w := NewPrettyWriter()
	w.BeginObject()
	w.WriteName("a")
	w.WriteInt(1)
	w.WriteName("b")
	w.BeginArray()
	w.WriteInt(2)
	w.EndArray()
	w.EndObject()

	s, err := w.String()
	require.NoError(t, err)
	expected := "{\n    \"a\": 1,\n    \"b\": [\n        2\n    ]\n}"
	assert.Equal(t, expected, s)
}

func TestWriterNonFiniteFloats(t *testing.T) {
	w := NewWriter()
	w.BeginArray()
	w.WriteFloat(math.NaN())
	w.WriteFloat(math.Inf(1))
	w.WriteFloat(math.Inf(-1))
	w.WriteFloat(1.5)
	w.EndArray()

	s, err := w.String()
	require.NoError(t, err)
	assert.Equal(t, `["NaN","Infinity","-Infinity",1.5]`, s)
}

func TestWriterEscapes(t *testing.T) {
	w := NewWriter()
	w.WriteString("q\" b\\ s/ \b \f \n \r \t \x01")

	s, err := w.String()
	require.NoError(t, err)
	assert.Equal(t, `"q\" b\\ s/ \b \f \n \r \t \u0001"`, s)
}

func TestWriterSurrogatePassThrough(t *testing.T) {
	w := NewWriter()
	w.WriteString("😀")
	s, err := w.String()
	require.NoError(t, err)
	assert.Equal(t, `"😀"`, s)
}

func TestWriterBytesIdempotent(t *testing.T) {
	w := NewWriter()
	w.BeginObject()
	w.EndObject()

	first, err := w.Bytes()
	require.NoError(t, err)
	second, err := w.Bytes()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriterRawValue(t *testing.T) {
	w := NewWriter()
	w.BeginObject()
	w.WriteName("pre")
	w.WriteRawValue(`{"already":"serialized"}`)
	w.EndObject()

	s, err := w.String()
	require.NoError(t, err)
	assert.Equal(t, `{"pre":{"already":"serialized"}}`, s)
}

func TestWriterStateErrors(t *testing.T) {
	w := NewWriter()
	w.BeginObject()
	w.WriteInt(1) // value without name
	_, err := w.Bytes()
	assert.Error(t, err)

	w2 := NewWriter()
	w2.BeginArray()
	w2.EndObject() // mismatched close
	_, err = w2.Bytes()
	assert.Error(t, err)
}

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.BeginObject()
	w.WriteName("n")
	w.WriteFloat(2.25)
	w.WriteName("s")
	w.WriteString("line\nbreak")
	w.EndObject()

	doc, err := w.String()
	require.NoError(t, err)

	tokens := drainTokens(t, doc)
	require.Len(t, tokens, 7)
	assert.Equal(t, "2.25", tokens[2].Text)
	assert.Equal(t, "line\nbreak", tokens[4].Text)
}
