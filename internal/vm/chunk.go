package vm

import (
	"encoding/binary"
	"math"
)

// Chunk is the shared bytecode buffer of a context. Addresses are 3
// bytes big-endian, INVOKE indices 2 bytes big-endian, integer push
// operands little-endian signed bytes. The buffer grows monotonically
// across evaluations; the compiler guarantees a trailing END at all
// times.
type Chunk struct {
	Code []byte
}

// MaxAddr is the largest encodable code address (3-byte operands).
const MaxAddr = 1<<24 - 1

func NewChunk() *Chunk {
	return &Chunk{Code: make([]byte, 0, 256)}
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}

// Truncate discards everything at and after offset.
func (c *Chunk) Truncate(offset int) {
	c.Code = c.Code[:offset]
}

func (c *Chunk) Write(b byte) {
	c.Code = append(c.Code, b)
}

func (c *Chunk) WriteOp(op Opcode) {
	c.Code = append(c.Code, byte(op))
}

func (c *Chunk) WriteBytes(b []byte) {
	c.Code = append(c.Code, b...)
}

// WriteAddr writes a 3-byte big-endian code address.
func (c *Chunk) WriteAddr(addr uint32) {
	c.Code = append(c.Code, byte(addr>>16), byte(addr>>8), byte(addr))
}

// PatchAddr overwrites the 3 bytes at offset with a big-endian address.
func (c *Chunk) PatchAddr(offset int, addr uint32) {
	c.Code[offset] = byte(addr >> 16)
	c.Code[offset+1] = byte(addr >> 8)
	c.Code[offset+2] = byte(addr)
}

// ReadAddr reads a 3-byte big-endian code address at offset.
func (c *Chunk) ReadAddr(offset int) uint32 {
	return uint32(c.Code[offset])<<16 | uint32(c.Code[offset+1])<<8 | uint32(c.Code[offset+2])
}

// WriteIndex writes a 2-byte big-endian native index.
func (c *Chunk) WriteIndex(idx int) {
	c.Code = append(c.Code, byte(idx>>8), byte(idx))
}

// ReadIndex reads a 2-byte big-endian native index at offset.
func (c *Chunk) ReadIndex(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// WriteInt8 writes a 1-byte signed integer operand.
func (c *Chunk) WriteInt8(n int8) {
	c.Code = append(c.Code, byte(n))
}

// WriteInt16 writes a 2-byte little-endian signed integer operand.
func (c *Chunk) WriteInt16(n int16) {
	c.Code = append(c.Code, byte(n), byte(uint16(n)>>8))
}

// WriteFloat writes the 8 raw bytes of the host float representation.
func (c *Chunk) WriteFloat(n float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(n))
	c.Code = append(c.Code, buf[:]...)
}

func (c *Chunk) ReadInt8(offset int) int8 {
	return int8(c.Code[offset])
}

func (c *Chunk) ReadInt16(offset int) int16 {
	return int16(uint16(c.Code[offset]) | uint16(c.Code[offset+1])<<8)
}

func (c *Chunk) ReadFloat(offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(c.Code[offset : offset+8]))
}

// ReadUint32 reads a 4-byte little-endian length (long string literals).
func (c *Chunk) ReadUint32(offset int) uint32 {
	return binary.LittleEndian.Uint32(c.Code[offset : offset+4])
}

// WriteUint32 writes a 4-byte little-endian length.
func (c *Chunk) WriteUint32(n uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	c.Code = append(c.Code, buf[:]...)
}
