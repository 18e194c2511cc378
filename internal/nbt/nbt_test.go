package nbt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompoundRoundTrip(t *testing.T) {
	root := Compound{
		"byte":   &Byte{-5},
		"short":  &Short{1234},
		"int":    &Int{-99999},
		"long":   &Long{1 << 40},
		"float":  &Float{1.5},
		"double": &Double{2.25},
		"str":    &String{"hello"},
		"ints":   &IntArray{Value: []int32{1, 2, 3}},
		"longs":  &LongArray{Value: []int64{4, 5, 6}},
		"bytes":  &ByteArray{Value: []byte{1, 2, 3}},
		"list":   &List{TagType: TagByte, Value: []ITag{&Byte{1}, &Byte{2}}},
		"nested": Compound{"inner": &Int{7}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root))

	got, err := Read(&buf)
	require.NoError(t, err)

	require.Equal(t, root["byte"].(*Byte).Value, got["byte"].(*Byte).Value)
	require.Equal(t, root["int"].(*Int).Value, got["int"].(*Int).Value)
	require.Equal(t, root["str"].(*String).Value, got["str"].(*String).Value)
	require.Equal(t, root["ints"].(*IntArray).Value, got["ints"].(*IntArray).Value)
	require.Equal(t, root["longs"].(*LongArray).Value, got["longs"].(*LongArray).Value)
	require.Equal(t, root["list"].(*List).Value[1].(*Byte).Value, got["list"].(*List).Value[1].(*Byte).Value)
	require.Equal(t, int32(7), got["nested"].(Compound)["inner"].(*Int).Value)
}

func TestEmptyListRoundTrip(t *testing.T) {
	root := Compound{"empty": &List{TagType: TagByte, Value: nil}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Empty(t, got["empty"].(*List).Value)
}

func TestRootMustBeCompound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Byte{1}).Write(&buf))
	buf2 := bytes.Buffer{}
	require.NoError(t, writeTagAndName(&buf2, &Byte{1}, ""))

	_, err := Read(&buf2)
	require.Error(t, err)
}
