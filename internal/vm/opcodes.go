// Package vm implements the Kokoki compiler and bytecode virtual machine.
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Control
	OP_END       Opcode = iota // Return control to the host
	OP_JMP                     // Unconditional jump, 3-byte big-endian address
	OP_JMP_TRUE                // Pop, jump if truthy
	OP_JMP_FALSE               // Pop, jump if falsy
	OP_CALL                    // Push return address, jump
	OP_RETURN                  // Pop return stack, jump back
	OP_INVOKE                  // Call native, 2-byte big-endian index

	// Value pushing
	OP_PUSH_NIL
	OP_PUSH_TRUE
	OP_PUSH_FALSE
	OP_PUSH_INT8        // 1 byte, signed
	OP_PUSH_INT16       // 2 bytes, little-endian signed
	OP_PUSH_NUMBER      // 8 bytes, raw float64 bits
	OP_PUSH_STRING      // 1-byte length + bytes
	OP_PUSH_STRING_LONG // 4-byte little-endian length + bytes
	OP_PUSH_NAME        // 1-byte length + bytes, pushes a name value
	OP_PUSH_REFNAME     // 1-byte length + bytes, pushes a ref-name value
	OP_PUSH_ARRAY       // Push a fresh empty array
	OP_PUSH_HASHMAP     // Push a fresh empty hashmap

	// Arithmetic, comparison, logic
	OP_PLUS
	OP_MINUS
	OP_MUL
	OP_DIV
	OP_MOD
	OP_LT
	OP_GT
	OP_LTE
	OP_GTE
	OP_SHL
	OP_SHR
	OP_EQ
	OP_AND
	OP_OR

	// Stack manipulation
	OP_DUP
	OP_DROP
	OP_SWAP
	OP_ROT  // (a b c -> b c a)
	OP_OVER // (a b -> a b a)
	OP_NIP  // (a b -> b)
	OP_TUCK // (a b -> b a b)
	OP_PICK1
	OP_PICK2
	OP_PICK3
	OP_PICK4
	OP_PICK5
	OP_PICKN // Pop n, copy the (n+1)-th item to the top
	OP_MOVE1
	OP_MOVE2
	OP_MOVE3
	OP_MOVE4
	OP_MOVE5
	OP_MOVEN // Pop n, move the (n+1)-th item to the top

	// Aggregate building
	OP_APUSH // (arr val -> arr), append val
	OP_HMPUT // (hm key val -> hm), bind key to val

	// Debug
	OP_PRINT
)

var OpcodeNames = map[Opcode]string{
	OP_END:              "END",
	OP_JMP:              "JMP",
	OP_JMP_TRUE:         "JMP_TRUE",
	OP_JMP_FALSE:        "JMP_FALSE",
	OP_CALL:             "CALL",
	OP_RETURN:           "RETURN",
	OP_INVOKE:           "INVOKE",
	OP_PUSH_NIL:         "PUSH_NIL",
	OP_PUSH_TRUE:        "PUSH_TRUE",
	OP_PUSH_FALSE:       "PUSH_FALSE",
	OP_PUSH_INT8:        "PUSH_INT8",
	OP_PUSH_INT16:       "PUSH_INT16",
	OP_PUSH_NUMBER:      "PUSH_NUMBER",
	OP_PUSH_STRING:      "PUSH_STRING",
	OP_PUSH_STRING_LONG: "PUSH_STRING_LONG",
	OP_PUSH_NAME:        "PUSH_NAME",
	OP_PUSH_REFNAME:     "PUSH_REFNAME",
	OP_PUSH_ARRAY:       "PUSH_ARRAY",
	OP_PUSH_HASHMAP:     "PUSH_HASHMAP",
	OP_PLUS:             "PLUS",
	OP_MINUS:            "MINUS",
	OP_MUL:              "MUL",
	OP_DIV:              "DIV",
	OP_MOD:              "MOD",
	OP_LT:               "LT",
	OP_GT:               "GT",
	OP_LTE:              "LTE",
	OP_GTE:              "GTE",
	OP_SHL:              "SHL",
	OP_SHR:              "SHR",
	OP_EQ:               "EQ",
	OP_AND:              "AND",
	OP_OR:               "OR",
	OP_DUP:              "DUP",
	OP_DROP:             "DROP",
	OP_SWAP:             "SWAP",
	OP_ROT:              "ROT",
	OP_OVER:             "OVER",
	OP_NIP:              "NIP",
	OP_TUCK:             "TUCK",
	OP_PICK1:            "PICK1",
	OP_PICK2:            "PICK2",
	OP_PICK3:            "PICK3",
	OP_PICK4:            "PICK4",
	OP_PICK5:            "PICK5",
	OP_PICKN:            "PICKN",
	OP_MOVE1:            "MOVE1",
	OP_MOVE2:            "MOVE2",
	OP_MOVE3:            "MOVE3",
	OP_MOVE4:            "MOVE4",
	OP_MOVE5:            "MOVE5",
	OP_MOVEN:            "MOVEN",
	OP_APUSH:            "APUSH",
	OP_HMPUT:            "HMPUT",
	OP_PRINT:            "PRINT",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
