package world

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSectionIsAllAirAndEmpty(t *testing.T) {
	s := NewSection()
	require.True(t, s.IsEmpty())
	require.EqualValues(t, 0, s.Get(0, 0, 0))
	require.EqualValues(t, 0, s.Get(15, 15, 15))
}

func TestSetGetRoundTripWithinIndirectPalette(t *testing.T) {
	s := NewSection()
	s.Set(1, 2, 3, 7)
	require.EqualValues(t, 7, s.Get(1, 2, 3))
	require.False(t, s.IsEmpty())
	require.EqualValues(t, 0, s.Get(0, 0, 0))
}

func TestSetBackToAirShrinksBlockCount(t *testing.T) {
	s := NewSection()
	s.Set(0, 0, 0, 5)
	require.EqualValues(t, 5, s.Get(0, 0, 0))
	s.Set(0, 0, 0, 0)
	require.True(t, s.IsEmpty())
}

func TestPaletteGrowsBitsPerBlockAsEntriesAccumulate(t *testing.T) {
	s := NewSection()
	require.Equal(t, minBitsPerBlock, s.bitsPer)

	// 16 entries (including air) needs 4 bits; the 17th forces a grow to 5.
	for i := int32(1); i < 16; i++ {
		s.Set(int(i)%16, 0, 0, i)
	}
	require.Equal(t, minBitsPerBlock, s.bitsPer)

	s.Set(0, 1, 0, 100)
	require.GreaterOrEqual(t, s.bitsPer, 5)

	for i := int32(1); i < 16; i++ {
		require.EqualValues(t, i, s.Get(int(i)%16, 0, 0))
	}
	require.EqualValues(t, 100, s.Get(0, 1, 0))
}

func TestPaletteUpgradesToDirectForLargePalettes(t *testing.T) {
	s := NewSection()
	// Exactly SectionBlocks writes, one per coordinate, each a distinct
	// global id: once the palette passes 256 entries it must switch to
	// Direct well before filling every slot.
	for i := 0; i < SectionBlocks; i++ {
		x, y, z := i%16, (i/16)%16, (i/256)%16
		s.Set(x, y, z, int32(i+1))
	}
	require.Nil(t, s.palette)
	require.Equal(t, directBitsPerBlock, s.bitsPer)

	for i := 0; i < SectionBlocks; i++ {
		x, y, z := i%16, (i/16)%16, (i/256)%16
		require.EqualValues(t, i+1, s.Get(x, y, z))
	}
}

func TestEncodeIndirectPaletteShape(t *testing.T) {
	s := NewSection()
	s.Set(0, 0, 0, 9)

	encoded, err := s.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, encoded)
	// block count (int16 big endian) + bits-per-block byte must lead the frame.
	require.Equal(t, byte(0), encoded[0])
	require.Equal(t, byte(1), encoded[1])
	require.Equal(t, byte(minBitsPerBlock), encoded[2])
}

func TestPackedBitsRoundTripNonSpanningLayout(t *testing.T) {
	data := make([]uint64, wordsFor(SectionBlocks, 5))
	for i := 0; i < SectionBlocks; i++ {
		setPacked(data, 5, i, uint64(i%31))
	}
	for i := 0; i < SectionBlocks; i++ {
		require.EqualValues(t, i%31, getPacked(data, 5, i))
	}
}

func TestBlocksPerWordLeavesUnusedHighBitsWhenNotDivisible(t *testing.T) {
	// 64/5 = 12 entries per word with 4 bits left over unused, per spec
	// §4.5's blocks_per_u64 = 64/bits_per_block (floor division, no
	// straddling across the word boundary).
	require.Equal(t, 12, blocksPerWord(5))
	require.Equal(t, wordsFor(13, 5), 2) // the 13th entry starts a new word.
}

func TestBitsPerBlockForMatchesKnownValues(t *testing.T) {
	require.Equal(t, 4, bitsPerBlockFor(1))
	require.Equal(t, 4, bitsPerBlockFor(16))
	require.Equal(t, 5, bitsPerBlockFor(17))
	require.Equal(t, 8, bitsPerBlockFor(256))
}
