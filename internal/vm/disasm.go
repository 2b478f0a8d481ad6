package vm

import (
	"fmt"
	"io"
)

// Disassemble writes a listing of the whole chunk, one instruction per
// line with its offset, mnemonic and decoded operand.
func (c *Chunk) Disassemble(w io.Writer) {
	for offset := 0; offset < len(c.Code); {
		offset = c.DisassembleAt(w, offset)
	}
}

// DisassembleAt writes the instruction at offset and returns the offset
// of the next one.
func (c *Chunk) DisassembleAt(w io.Writer, offset int) int {
	op := Opcode(c.Code[offset])
	switch op {
	case OP_JMP, OP_JMP_TRUE, OP_JMP_FALSE, OP_CALL:
		fmt.Fprintf(w, "0x%06x %-16s 0x%06x\n", offset, op, c.ReadAddr(offset+1))
		return offset + 4
	case OP_INVOKE:
		fmt.Fprintf(w, "0x%06x %-16s %d\n", offset, op, c.ReadIndex(offset+1))
		return offset + 3
	case OP_PUSH_INT8:
		fmt.Fprintf(w, "0x%06x %-16s %d\n", offset, op, c.ReadInt8(offset+1))
		return offset + 2
	case OP_PUSH_INT16:
		fmt.Fprintf(w, "0x%06x %-16s %d\n", offset, op, c.ReadInt16(offset+1))
		return offset + 3
	case OP_PUSH_NUMBER:
		fmt.Fprintf(w, "0x%06x %-16s %v\n", offset, op, c.ReadFloat(offset+1))
		return offset + 9
	case OP_PUSH_STRING:
		n := int(c.Code[offset+1])
		fmt.Fprintf(w, "0x%06x %-16s %q\n", offset, op, string(c.Code[offset+2:offset+2+n]))
		return offset + 2 + n
	case OP_PUSH_STRING_LONG:
		n := int(c.ReadUint32(offset + 1))
		fmt.Fprintf(w, "0x%06x %-16s %q\n", offset, op, string(c.Code[offset+5:offset+5+n]))
		return offset + 5 + n
	case OP_PUSH_NAME, OP_PUSH_REFNAME:
		n := int(c.Code[offset+1])
		fmt.Fprintf(w, "0x%06x %-16s %s\n", offset, op, string(c.Code[offset+2:offset+2+n]))
		return offset + 2 + n
	default:
		fmt.Fprintf(w, "0x%06x %s\n", offset, op)
		return offset + 1
	}
}
