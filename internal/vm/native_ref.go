package vm

// Ref cells live in the name table keyed by their ref-name, so @x names
// the same cell across evaluations in a context.

func (vm *VM) refCell(name string, create bool) *Ref {
	key := RefNameVal(name)
	if bound := vm.names.Get(key); bound.Type == ValRef {
		return bound.Ref()
	}
	if !create {
		return nil
	}
	r := NewRef(NilVal())
	vm.names.Put(key, RefVal(r))
	return r
}

func popRefName(vm *VM, name string) (string, bool) {
	v, _ := vm.Pop()
	if v.Type != ValRefName {
		vm.Push(Errorf("%s needs a ref name, got %s", name, v.Type))
		return "", false
	}
	return v.Str, true
}

// nativeRefGet: (@r -> v), nil when the cell was never written.
func nativeRefGet(vm *VM) {
	if !vm.need(1) {
		return
	}
	name, ok := popRefName(vm, "?")
	if !ok {
		return
	}
	cell := vm.refCell(name, false)
	if cell == nil {
		vm.Push(NilVal())
		return
	}
	vm.Push(cell.Value)
}

// nativeRefSet: (@r v -> ), stores v in the cell.
func nativeRefSet(vm *VM) {
	if !vm.need(2) {
		return
	}
	v, _ := vm.Pop()
	name, ok := popRefName(vm, "!")
	if !ok {
		return
	}
	vm.refCell(name, true).Value = v
}

func refUpdate(vm *VM, opName string, keep bool) {
	if !vm.need(2) {
		return
	}
	block, _ := vm.Pop()
	name, ok := popRefName(vm, opName)
	if !ok {
		return
	}
	cell := vm.refCell(name, true)
	vm.Push(cell.Value)
	vm.runValue(block)
	r, popped := vm.Pop()
	if !popped {
		vm.Push(Errorf("%s block left nothing on the stack", opName))
		return
	}
	cell.Value = r
	if keep {
		vm.Push(r)
	}
}

// nativeRefUpdate: (@r block -> ), runs the block on the cell's value
// and stores the result.
func nativeRefUpdate(vm *VM) {
	refUpdate(vm, "!!", false)
}

// nativeRefUpdateGet: (@r block -> v), like !! but leaves the stored
// value on the stack.
func nativeRefUpdateGet(vm *VM) {
	refUpdate(vm, "!?", true)
}
