package strutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUtf8RoundTrip(t *testing.T) {
	samples := []rune{0x00, 0x41, 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF, 0x10000, MaxCodepoint}
	for _, r := range samples {
		buf := make([]byte, 4)
		n := Utf8Encode(r, buf)
		require.Greater(t, n, 0, "code point %x should encode", r)
		got, consumed := Utf8DecodeOne(buf[:n])
		require.Equal(t, n, consumed)
		require.Equal(t, r, got)
	}
}

func TestUtf8RejectsSurrogates(t *testing.T) {
	require.False(t, ValidCodepoint(0xD800))
	require.False(t, ValidCodepoint(0xDFFF))
	require.False(t, ValidCodepoint(MaxCodepoint+1))
	require.True(t, ValidCodepoint(MaxCodepoint))
}

func TestDecodeAllFlagsEncoding(t *testing.T) {
	runes, enc := DecodeAll([]byte("hello"))
	require.Equal(t, EncodingASCII, enc)
	require.Equal(t, []rune("hello"), runes)

	runes, enc = DecodeAll([]byte("héllo"))
	require.Equal(t, EncodingUTF8, enc)
	require.Equal(t, []rune("héllo"), runes)

	_, enc = DecodeAll([]byte{0x68, 0xFF, 0x6C})
	require.Equal(t, EncodingUnknown, enc)
}

func TestMinWidth(t *testing.T) {
	require.Equal(t, 1, MinWidth([]rune("abc")))
	require.Equal(t, 2, MinWidth([]rune{0x1FF}))
	require.Equal(t, 4, MinWidth([]rune{0x10000}))
}
