package vm

// execute runs a single non-END instruction and advances the program
// counter past the opcode and its operands.
func (vm *VM) execute(op Opcode) {
	switch op {
	case OP_JMP:
		vm.pc = int(vm.chunk.ReadAddr(vm.pc + 1))

	case OP_JMP_TRUE:
		vm.branch(true)

	case OP_JMP_FALSE:
		vm.branch(false)

	case OP_CALL:
		addr := vm.chunk.ReadAddr(vm.pc + 1)
		vm.rstack = append(vm.rstack, vm.pc+4)
		vm.pc = int(addr)

	case OP_RETURN:
		if len(vm.rstack) == 0 {
			vm.Push(ErrorVal("Return stack underflow!"))
			vm.pc++
			return
		}
		last := len(vm.rstack) - 1
		vm.pc = vm.rstack[last]
		vm.rstack = vm.rstack[:last]

	case OP_INVOKE:
		idx := vm.chunk.ReadIndex(vm.pc + 1)
		vm.pc += 3
		if idx < 0 || idx >= len(vm.natives) {
			vm.Push(Errorf("Unknown native index %d", idx))
			return
		}
		vm.natives[idx].Fn(vm)

	case OP_PUSH_INT8:
		vm.Push(NumberVal(float64(vm.chunk.ReadInt8(vm.pc + 1))))
		vm.pc += 2

	case OP_PUSH_INT16:
		vm.Push(NumberVal(float64(vm.chunk.ReadInt16(vm.pc + 1))))
		vm.pc += 3

	case OP_PUSH_NUMBER:
		vm.Push(NumberVal(vm.chunk.ReadFloat(vm.pc + 1)))
		vm.pc += 9

	case OP_PUSH_STRING:
		n := int(vm.chunk.Code[vm.pc+1])
		vm.Push(StringVal(string(vm.chunk.Code[vm.pc+2 : vm.pc+2+n])))
		vm.pc += 2 + n

	case OP_PUSH_STRING_LONG:
		n := int(vm.chunk.ReadUint32(vm.pc + 1))
		vm.Push(StringVal(string(vm.chunk.Code[vm.pc+5 : vm.pc+5+n])))
		vm.pc += 5 + n

	case OP_PUSH_NAME:
		n := int(vm.chunk.Code[vm.pc+1])
		vm.Push(NameVal(string(vm.chunk.Code[vm.pc+2 : vm.pc+2+n])))
		vm.pc += 2 + n

	case OP_PUSH_REFNAME:
		n := int(vm.chunk.Code[vm.pc+1])
		vm.Push(RefNameVal(string(vm.chunk.Code[vm.pc+2 : vm.pc+2+n])))
		vm.pc += 2 + n

	default:
		vm.pc++
		vm.simple(op)
	}
}

// simple executes an opcode that carries no operand bytes. The INVOKE
// path for alias natives reuses it.
func (vm *VM) simple(op Opcode) {
	switch op {
	case OP_PUSH_NIL:
		vm.Push(NilVal())
	case OP_PUSH_TRUE:
		vm.Push(BoolVal(true))
	case OP_PUSH_FALSE:
		vm.Push(BoolVal(false))
	case OP_PUSH_ARRAY:
		vm.Push(ArrayVal(NewArray()))
	case OP_PUSH_HASHMAP:
		vm.Push(HashmapVal(NewHashmap()))
	case OP_PLUS:
		vm.opNumeric("+", func(a, b float64) float64 { return a + b })
	case OP_MINUS:
		vm.opNumeric("-", func(a, b float64) float64 { return a - b })
	case OP_MUL:
		vm.opNumeric("*", func(a, b float64) float64 { return a * b })
	case OP_DIV:
		vm.opNumeric("/", func(a, b float64) float64 { return a / b })
	case OP_MOD:
		vm.opMod()
	case OP_SHL:
		vm.opInteger("<<", func(a, b int64) int64 { return a << uint64(b) })
	case OP_SHR:
		vm.opInteger(">>", func(a, b int64) int64 { return a >> uint64(b) })
	case OP_LT:
		vm.opCompare("<", func(a, b float64) bool { return a < b })
	case OP_GT:
		vm.opCompare(">", func(a, b float64) bool { return a > b })
	case OP_LTE:
		vm.opCompare("<=", func(a, b float64) bool { return a <= b })
	case OP_GTE:
		vm.opCompare(">=", func(a, b float64) bool { return a >= b })
	case OP_EQ:
		vm.opEq()
	case OP_AND:
		vm.opLogic(func(a, b bool) bool { return a && b })
	case OP_OR:
		vm.opLogic(func(a, b bool) bool { return a || b })
	case OP_DUP:
		vm.opDup()
	case OP_DROP:
		vm.opDrop()
	case OP_SWAP:
		vm.opSwap()
	case OP_ROT:
		vm.opRot()
	case OP_OVER:
		vm.opOver()
	case OP_NIP:
		vm.opNip()
	case OP_TUCK:
		vm.opTuck()
	case OP_PICK1, OP_PICK2, OP_PICK3, OP_PICK4, OP_PICK5:
		vm.opPick(int(op - OP_PICK1 + 1))
	case OP_PICKN:
		vm.opPickN()
	case OP_MOVE1, OP_MOVE2, OP_MOVE3, OP_MOVE4, OP_MOVE5:
		vm.opMove(int(op - OP_MOVE1 + 1))
	case OP_MOVEN:
		vm.opMoveN()
	case OP_APUSH:
		vm.opAPush()
	case OP_HMPUT:
		vm.opHMPut()
	case OP_PRINT:
		vm.opPrint()
	default:
		vm.Push(Errorf("Unknown opcode %d", byte(op)))
	}
}

// branch implements JMP_TRUE and JMP_FALSE: pop, test truthiness,
// either take the 3-byte address or fall through past it.
func (vm *VM) branch(want bool) {
	if !vm.need(1) {
		vm.pc += 4
		return
	}
	v, _ := vm.Pop()
	if v.Truthy() == want {
		vm.pc = int(vm.chunk.ReadAddr(vm.pc + 1))
		return
	}
	vm.pc += 4
}
