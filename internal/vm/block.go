package vm

import "fmt"

// blockAddr returns the code address for executing arr as a block,
// compiling its elements into a RETURN-terminated fragment on first use.
// The address is memoized on the array and invalidated by mutation.
func (vm *VM) blockAddr(arr *Array) (uint32, error) {
	if addr, ok := arr.BlockAddr(); ok {
		return addr, nil
	}
	start := vm.chunk.Len()
	if err := vm.compileBlock(arr); err != nil {
		vm.chunk.Truncate(start)
		return 0, err
	}
	vm.chunk.WriteOp(OP_RETURN)
	addr := uint32(start)
	arr.SetBlockAddr(addr)
	return addr, nil
}

// compileBlock emits executable code for the array's elements: names
// resolve to calls, everything else pushes itself. An integral 1..5
// element directly followed by the name pick or move fuses into the
// dedicated opcode, mirroring the source-level lookahead.
func (vm *VM) compileBlock(arr *Array) error {
	items := arr.Items
	for i := 0; i < len(items); i++ {
		v := items[i]
		if v.Type == ValNumber && i+1 < len(items) {
			if op, ok := fusedPickMove(v, items[i+1]); ok {
				vm.chunk.WriteOp(op)
				i++
				continue
			}
		}
		if err := vm.compileElement(v); err != nil {
			return err
		}
	}
	return nil
}

func fusedPickMove(num, next Value) (Opcode, bool) {
	if next.Type != ValName {
		return 0, false
	}
	n := num.AsNumber()
	k := int(n)
	if n != float64(k) || k < 1 || k > 5 {
		return 0, false
	}
	switch next.Str {
	case "pick":
		return OP_PICK1 + Opcode(k-1), true
	case "move":
		return OP_MOVE1 + Opcode(k-1), true
	}
	return 0, false
}

// compileElement emits one block element in executable position.
func (vm *VM) compileElement(v Value) error {
	switch v.Type {
	case ValNil:
		vm.chunk.WriteOp(OP_PUSH_NIL)
		return nil
	case ValTrue:
		vm.chunk.WriteOp(OP_PUSH_TRUE)
		return nil
	case ValFalse:
		vm.chunk.WriteOp(OP_PUSH_FALSE)
		return nil
	case ValNumber:
		vm.emitNumber(v.AsNumber())
		return nil
	case ValString:
		vm.emitString(v.Str)
		return nil
	case ValName:
		return vm.emitNameCall(v.Str)
	case ValRefName:
		return vm.emitRefName(v.Str)
	case ValArray:
		return vm.compileArrayValue(v.Array())
	case ValHashmap:
		return vm.compileHashmapValue(v.Hashmap())
	default:
		return fmt.Errorf("cannot compile a %s into a block", v.Type)
	}
}

// compileArrayValue emits code that rebuilds the array at runtime, so
// each execution of the enclosing block pushes a fresh container.
func (vm *VM) compileArrayValue(arr *Array) error {
	vm.chunk.WriteOp(OP_PUSH_ARRAY)
	for _, item := range arr.Items {
		if err := vm.compileQuotedValue(item); err != nil {
			return err
		}
		vm.chunk.WriteOp(OP_APUSH)
	}
	return nil
}

func (vm *VM) compileHashmapValue(hm *Hashmap) error {
	vm.chunk.WriteOp(OP_PUSH_HASHMAP)
	var err error
	hm.Each(func(k, v Value) {
		if err != nil {
			return
		}
		if err = vm.compileQuotedValue(k); err != nil {
			return
		}
		if err = vm.compileQuotedValue(v); err != nil {
			return
		}
		vm.chunk.WriteOp(OP_HMPUT)
	})
	return err
}

// compileQuotedValue emits a value in data position: names stay names.
func (vm *VM) compileQuotedValue(v Value) error {
	switch v.Type {
	case ValNil:
		vm.chunk.WriteOp(OP_PUSH_NIL)
		return nil
	case ValTrue:
		vm.chunk.WriteOp(OP_PUSH_TRUE)
		return nil
	case ValFalse:
		vm.chunk.WriteOp(OP_PUSH_FALSE)
		return nil
	case ValNumber:
		vm.emitNumber(v.AsNumber())
		return nil
	case ValString:
		vm.emitString(v.Str)
		return nil
	case ValName:
		return vm.emitName(v.Str)
	case ValRefName:
		return vm.emitRefName(v.Str)
	case ValArray:
		return vm.compileArrayValue(v.Array())
	case ValHashmap:
		return vm.compileHashmapValue(v.Hashmap())
	default:
		return fmt.Errorf("cannot compile a %s into a block", v.Type)
	}
}
