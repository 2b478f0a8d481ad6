package vm

import "math"

// Operand-stack operations shared by the exec loop, the INVOKE path and
// the alias natives. Every operation states its minimum stack depth
// through need; a deficit pushes an underflow error and the VM resumes
// at the next opcode.

func (vm *VM) popNumericPair(name string) (float64, float64, bool) {
	if !vm.need(2) {
		return 0, 0, false
	}
	b, _ := vm.Pop()
	a, _ := vm.Pop()
	if a.Type != ValNumber || b.Type != ValNumber {
		vm.Push(Errorf("%s needs numbers, got %s and %s", name, a.Type, b.Type))
		return 0, 0, false
	}
	return a.AsNumber(), b.AsNumber(), true
}

func (vm *VM) opNumeric(name string, fn func(a, b float64) float64) {
	a, b, ok := vm.popNumericPair(name)
	if !ok {
		return
	}
	vm.Push(NumberVal(fn(a, b)))
}

// opInteger coerces both operands to host 64-bit signed integers before
// the operation and converts the result back.
func (vm *VM) opInteger(name string, fn func(a, b int64) int64) {
	a, b, ok := vm.popNumericPair(name)
	if !ok {
		return
	}
	vm.Push(NumberVal(float64(fn(int64(a), int64(b)))))
}

func (vm *VM) opMod() {
	a, b, ok := vm.popNumericPair("%")
	if !ok {
		return
	}
	vm.Push(NumberVal(math.Mod(float64(int64(a)), float64(int64(b)))))
}

func (vm *VM) opCompare(name string, fn func(a, b float64) bool) {
	a, b, ok := vm.popNumericPair(name)
	if !ok {
		return
	}
	vm.Push(BoolVal(fn(a, b)))
}

func (vm *VM) opEq() {
	if !vm.need(2) {
		return
	}
	b, _ := vm.Pop()
	a, _ := vm.Pop()
	vm.Push(BoolVal(a.Equals(b)))
}

func (vm *VM) opLogic(fn func(a, b bool) bool) {
	if !vm.need(2) {
		return
	}
	b, _ := vm.Pop()
	a, _ := vm.Pop()
	vm.Push(BoolVal(fn(a.Truthy(), b.Truthy())))
}

func (vm *VM) opDup() {
	if !vm.need(1) {
		return
	}
	vm.Push(vm.stack[len(vm.stack)-1])
}

func (vm *VM) opDrop() {
	if !vm.need(1) {
		return
	}
	vm.Pop()
}

func (vm *VM) opSwap() {
	if !vm.need(2) {
		return
	}
	n := len(vm.stack)
	vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]
}

// opRot: (a b c -> b c a)
func (vm *VM) opRot() {
	if !vm.need(3) {
		return
	}
	n := len(vm.stack)
	a := vm.stack[n-3]
	vm.stack[n-3] = vm.stack[n-2]
	vm.stack[n-2] = vm.stack[n-1]
	vm.stack[n-1] = a
}

// opOver: (a b -> a b a)
func (vm *VM) opOver() {
	if !vm.need(2) {
		return
	}
	vm.Push(vm.stack[len(vm.stack)-2])
}

// opNip: (a b -> b)
func (vm *VM) opNip() {
	if !vm.need(2) {
		return
	}
	n := len(vm.stack)
	vm.stack[n-2] = vm.stack[n-1]
	vm.stack[n-1] = Value{}
	vm.stack = vm.stack[:n-1]
}

// opTuck: (a b -> b a b)
func (vm *VM) opTuck() {
	if !vm.need(2) {
		return
	}
	n := len(vm.stack)
	top := vm.stack[n-1]
	vm.stack = append(vm.stack, top)
	vm.stack[n-1] = vm.stack[n-2]
	vm.stack[n-2] = top
}

// opPick copies the (n+1)-th item from the top onto the top.
func (vm *VM) opPick(n int) {
	if len(vm.stack) < n+1 {
		vm.Push(Errorf("Stack underflow! (%d < %d)", len(vm.stack), n+1))
		return
	}
	vm.Push(vm.stack[len(vm.stack)-1-n])
}

func (vm *VM) opPickN() {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	if v.Type != ValNumber {
		vm.Push(Errorf("pick needs a number, got %s", v.Type))
		return
	}
	n := int(v.AsInt())
	if n < 0 {
		vm.Push(Errorf("pick needs a non-negative number, got %d", n))
		return
	}
	vm.opPick(n)
}

// opMove removes the (n+1)-th item from the top and pushes it,
// preserving the relative order of the remaining items.
func (vm *VM) opMove(n int) {
	if len(vm.stack) < n+1 {
		vm.Push(Errorf("Stack underflow! (%d < %d)", len(vm.stack), n+1))
		return
	}
	idx := len(vm.stack) - 1 - n
	v := vm.stack[idx]
	copy(vm.stack[idx:], vm.stack[idx+1:])
	vm.stack[len(vm.stack)-1] = v
}

func (vm *VM) opMoveN() {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	if v.Type != ValNumber {
		vm.Push(Errorf("move needs a number, got %s", v.Type))
		return
	}
	n := int(v.AsInt())
	if n < 0 {
		vm.Push(Errorf("move needs a non-negative number, got %d", n))
		return
	}
	vm.opMove(n)
}

// opAPush: (arr val -> arr)
func (vm *VM) opAPush() {
	if !vm.need(2) {
		return
	}
	v, _ := vm.Pop()
	top, _ := vm.Top()
	if top.Type != ValArray {
		vm.Push(Errorf("apush needs an array, got %s", top.Type))
		return
	}
	top.Array().Push(v)
}

// opHMPut: (hm key val -> hm)
func (vm *VM) opHMPut() {
	if !vm.need(3) {
		return
	}
	v, _ := vm.Pop()
	k, _ := vm.Pop()
	top, _ := vm.Top()
	if top.Type != ValHashmap {
		vm.Push(Errorf("hmput needs a hashmap, got %s", top.Type))
		return
	}
	top.Hashmap().Put(k, v)
}

func (vm *VM) opPrint() {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	writeOut(vm, v.Dump())
}
