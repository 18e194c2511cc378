package world

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/opencraft-go/corecraft/internal/varint"
)

// SectionBlocks is the number of block slots in a 16x16x16 chunk section.
const SectionBlocks = 16 * 16 * 16

// directBitsPerBlock is the width used once a section's palette would need
// more bits than an indirect palette supports (spec §4.5, grounded on the
// Rust original's ChunkSections encoder: Palette::Direct writes a flat
// 15-bit-per-block global-registry-id array with no palette list).
const directBitsPerBlock = 15

// minBitsPerBlock is the narrowest indirect palette width the format
// allows, even for a 1- or 2-entry palette.
const minBitsPerBlock = 4

// indirectMaxBits is the widest an indirect palette is allowed to grow
// before a section switches to Direct encoding. Real block-state
// registries hold far more than 2^bitsPer entries once bitsPer grows much
// past single digits, so vanilla caps the indirect palette at 8 bits
// (256 entries) for block sections; beyond that, a flat per-block global
// id is cheaper than a palette lookup anyway.
const indirectMaxBits = 8

// Section is one 16x16x16 vertical slice of a chunk: a paletted, bit-packed
// block-state array plus the non-air count the client uses for lighting.
// Grounded on bws/protocol/src/datatypes.rs's ChunkSection (block_count +
// palette + data) and implementations.rs's bits-per-block derivation.
type Section struct {
	blockCount int16
	palette    []int32 // nil when Direct.
	bitsPer    int
	data       []uint64
}

// NewSection creates an empty (all-air) section.
func NewSection() *Section {
	s := &Section{bitsPer: minBitsPerBlock}
	s.palette = []int32{0} // global id 0 is air.
	s.data = make([]uint64, wordsFor(SectionBlocks, s.bitsPer))
	return s
}

// IsEmpty reports whether the section has no non-air blocks, letting a
// chunk column drop it from PrimaryBitMask (spec §4.5 "empty sections are
// omitted").
func (s *Section) IsEmpty() bool {
	return s.blockCount == 0
}

// blockIndex maps local section coordinates (0-15 each) to a flat index in
// YZX order, matching the wire format's iteration order.
func blockIndex(x, y, z int) int {
	return (y << 8) | (z << 4) | x
}

// Get returns the global block-state id at local coordinates (x, y, z).
func (s *Section) Get(x, y, z int) int32 {
	return s.get(blockIndex(x, y, z))
}

// Set assigns the global block-state id at local coordinates (x, y, z),
// growing the palette (or upgrading to Direct) as needed, and maintaining
// the non-air block count (spec §4.5's set-block algorithm).
func (s *Section) Set(x, y, z int, globalID int32) {
	i := blockIndex(x, y, z)
	wasAir := s.get(i) == 0
	isAir := globalID == 0

	s.set(i, globalID)

	switch {
	case wasAir && !isAir:
		s.blockCount++
	case !wasAir && isAir:
		s.blockCount--
	}
}

func (s *Section) get(i int) int32 {
	if s.palette == nil {
		return int32(s.getPacked(i))
	}
	paletteIndex := s.getPacked(i)
	if int(paletteIndex) >= len(s.palette) {
		return 0
	}
	return s.palette[paletteIndex]
}

func (s *Section) set(i int, globalID int32) {
	if s.palette == nil {
		s.setPacked(i, uint64(globalID))
		return
	}

	idx := s.paletteIndexOf(globalID)
	if idx < 0 {
		s.palette = append(s.palette, globalID)
		idx = len(s.palette) - 1
		s.growPaletteIfNeeded()
		if s.palette == nil {
			s.setPacked(i, uint64(globalID))
			return
		}
	}
	s.setPacked(i, uint64(idx))
}

func (s *Section) paletteIndexOf(globalID int32) int {
	for idx, id := range s.palette {
		if id == globalID {
			return idx
		}
	}
	return -1
}

// growPaletteIfNeeded recomputes bitsPer for the current palette size and
// repacks the data array if the width grew, or upgrades to Direct once the
// needed width would exceed indirectMaxBits (spec §4.5:
// "bits_per_block = max(4, ceil(log2(max(palette_len,1))))").
func (s *Section) growPaletteIfNeeded() {
	needed := bitsPerBlockFor(len(s.palette))
	if needed <= s.bitsPer {
		return
	}
	if needed > indirectMaxBits {
		s.upgradeToDirect()
		return
	}
	s.repack(needed)
}

// upgradeToDirect re-encodes every block as its raw global id and drops the
// palette entirely.
func (s *Section) upgradeToDirect() {
	old := s.palette
	oldData := s.data
	oldBits := s.bitsPer

	s.palette = nil
	s.bitsPer = directBitsPerBlock
	s.data = make([]uint64, wordsFor(SectionBlocks, s.bitsPer))

	for i := 0; i < SectionBlocks; i++ {
		paletteIdx := getPacked(oldData, oldBits, i)
		globalID := int32(0)
		if int(paletteIdx) < len(old) {
			globalID = old[paletteIdx]
		}
		setPacked(s.data, s.bitsPer, i, uint64(globalID))
	}
}

func (s *Section) repack(newBits int) {
	old := s.data
	oldBits := s.bitsPer
	s.bitsPer = newBits
	s.data = make([]uint64, wordsFor(SectionBlocks, newBits))
	for i := 0; i < SectionBlocks; i++ {
		setPacked(s.data, s.bitsPer, i, getPacked(old, oldBits, i))
	}
}

func (s *Section) getPacked(i int) uint64 {
	return getPacked(s.data, s.bitsPer, i)
}

func (s *Section) setPacked(i int, v uint64) {
	setPacked(s.data, s.bitsPer, i, v)
}

// bitsPerBlockFor computes the indirect palette width for n distinct
// entries: max(4, bit length of max(n-1,1)), i.e. max(4, ceil(log2(n))) for
// n >= 2, exactly the Rust original's
// `32 - (max(len-1,1)).leading_zeros()`.
func bitsPerBlockFor(n int) int {
	span := n - 1
	if span < 1 {
		span = 1
	}
	bits := 32 - leadingZeros32(uint32(span))
	if bits < minBitsPerBlock {
		bits = minBitsPerBlock
	}
	return bits
}

func leadingZeros32(v uint32) int {
	if v == 0 {
		return 32
	}
	n := 0
	for v&0x80000000 == 0 {
		v <<= 1
		n++
	}
	return n
}

// blocksPerWord is spec §4.5's blocks_per_u64 = 64 / bits_per_block: entries
// never straddle a word boundary, so each word's leftover high bits (when
// bitsPer doesn't divide 64 evenly) sit unused.
func blocksPerWord(bitsPer int) int {
	return 64 / bitsPer
}

// wordsFor computes how many 64-bit words count entries of width bitsPer
// need under the non-spanning layout.
func wordsFor(count, bitsPer int) int {
	perWord := blocksPerWord(bitsPer)
	return int(math.Ceil(float64(count) / float64(perWord)))
}

func getPacked(data []uint64, bitsPer, i int) uint64 {
	perWord := blocksPerWord(bitsPer)
	word := i / perWord
	lane := i % perWord
	shift := uint(lane * bitsPer)
	mask := uint64(1)<<uint(bitsPer) - 1
	return (data[word] >> shift) & mask
}

// setPacked XORs in (v XOR get(i)) << shift, exactly spec §4.5's set(i, v)
// definition.
func setPacked(data []uint64, bitsPer, i int, v uint64) {
	perWord := blocksPerWord(bitsPer)
	word := i / perWord
	lane := i % perWord
	shift := uint(lane * bitsPer)
	mask := uint64(1)<<uint(bitsPer) - 1
	v &= mask
	current := (data[word] >> shift) & mask
	data[word] ^= (v ^ current) << shift
}

// Encode writes the section's wire representation: block count, bits per
// block, optional indirect palette, then the packed long array, matching
// ChunkSections::to_writer in the Rust original.
func (s *Section) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, s.blockCount); err != nil {
		return nil, err
	}
	buf.WriteByte(uint8(s.bitsPer))

	if s.palette != nil {
		if err := varint.WriteInt32(&buf, int32(len(s.palette))); err != nil {
			return nil, err
		}
		for _, id := range s.palette {
			if err := varint.WriteInt32(&buf, id); err != nil {
				return nil, err
			}
		}
	}

	if err := varint.WriteInt32(&buf, int32(len(s.data))); err != nil {
		return nil, err
	}
	for _, word := range s.data {
		if err := binary.Write(&buf, binary.BigEndian, word); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
