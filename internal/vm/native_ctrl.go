package vm

// nativeExec: (v -> ...). Arrays run as blocks, names resolve and run,
// code addresses are called; anything else just stays.
func nativeExec(vm *VM) {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	switch v.Type {
	case ValArray:
		vm.runBlock(v.Array())
	case ValName:
		vm.execName(v.Str)
	case ValCodeAddr:
		vm.callBlockAt(v.AsCodeAddr())
	default:
		vm.Push(v)
	}
}

// nativeEach: (arr block -> arr'), maps the block over each element and
// collects the results into a new array.
func nativeEach(vm *VM) {
	if !vm.need(2) {
		return
	}
	block, _ := vm.Pop()
	src, _ := vm.Pop()
	if src.Type != ValArray {
		vm.Push(Errorf("each needs an array, got %s", src.Type))
		return
	}
	dst := NewArrayCap(src.Array().Len())
	for _, item := range src.Array().Items {
		vm.Push(item)
		vm.runValue(block)
		r, ok := vm.Pop()
		if !ok {
			vm.Push(Errorf("each block left nothing on the stack"))
			return
		}
		dst.Push(r)
	}
	vm.Push(ArrayVal(dst))
}

// nativeFold: (arr block -> acc), seeded from the first element. An
// empty array folds to nil.
func nativeFold(vm *VM) {
	if !vm.need(2) {
		return
	}
	block, _ := vm.Pop()
	src, _ := vm.Pop()
	if src.Type != ValArray {
		vm.Push(Errorf("fold needs an array, got %s", src.Type))
		return
	}
	items := src.Array().Items
	if len(items) == 0 {
		vm.Push(NilVal())
		return
	}
	acc := items[0]
	for _, item := range items[1:] {
		vm.Push(acc)
		vm.Push(item)
		vm.runValue(block)
		r, ok := vm.Pop()
		if !ok {
			vm.Push(Errorf("fold block left nothing on the stack"))
			return
		}
		acc = r
	}
	vm.Push(acc)
}

// nativeFoldi: (arr seed block -> acc), explicit seed.
func nativeFoldi(vm *VM) {
	if !vm.need(3) {
		return
	}
	block, _ := vm.Pop()
	acc, _ := vm.Pop()
	src, _ := vm.Pop()
	if src.Type != ValArray {
		vm.Push(Errorf("foldi needs an array, got %s", src.Type))
		return
	}
	for _, item := range src.Array().Items {
		vm.Push(acc)
		vm.Push(item)
		vm.runValue(block)
		r, ok := vm.Pop()
		if !ok {
			vm.Push(Errorf("foldi block left nothing on the stack"))
			return
		}
		acc = r
	}
	vm.Push(acc)
}

// nativeFilter: (arr block -> arr'), keeps the elements for which the
// block leaves a truthy result.
func nativeFilter(vm *VM) {
	if !vm.need(2) {
		return
	}
	block, _ := vm.Pop()
	src, _ := vm.Pop()
	if src.Type != ValArray {
		vm.Push(Errorf("filter needs an array, got %s", src.Type))
		return
	}
	dst := NewArray()
	for _, item := range src.Array().Items {
		vm.Push(item)
		vm.runValue(block)
		r, ok := vm.Pop()
		if !ok {
			vm.Push(Errorf("filter block left nothing on the stack"))
			return
		}
		if r.Truthy() {
			dst.Push(item)
		}
	}
	vm.Push(ArrayVal(dst))
}

// nativeTimes: (n v -> ...). A block runs n times; a plain value is
// pushed n times.
func nativeTimes(vm *VM) {
	if !vm.need(2) {
		return
	}
	v, _ := vm.Pop()
	n, _ := vm.Pop()
	if n.Type != ValNumber {
		vm.Push(Errorf("times needs a number, got %s", n.Type))
		return
	}
	count := int(n.AsInt())
	if v.Type == ValArray {
		for i := 0; i < count; i++ {
			vm.runBlock(v.Array())
		}
		return
	}
	for i := 0; i < count; i++ {
		vm.Push(v)
	}
}

// nativeWhile: (block -> ...), runs the block and pops a flag after each
// round, stopping on the first falsy one.
func nativeWhile(vm *VM) {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	if v.Type != ValArray {
		vm.Push(Errorf("while needs a block, got %s", v.Type))
		return
	}
	for {
		vm.runBlock(v.Array())
		flag, ok := vm.Pop()
		if !ok {
			vm.Push(Errorf("while block left nothing on the stack"))
			return
		}
		if !flag.Truthy() {
			return
		}
	}
}

// nativeCond: (v pairs -> v ...). The pairs array alternates condition
// and action. A block condition runs against a copy of the tested value;
// a plain condition counts by its own truthiness, so true works as a
// catch-all. The first match runs its action and stops. A trailing odd
// element is a default action.
func nativeCond(vm *VM) {
	if !vm.need(2) {
		return
	}
	pairs, _ := vm.Pop()
	if pairs.Type != ValArray {
		vm.Push(Errorf("cond needs an array, got %s", pairs.Type))
		return
	}
	if !vm.need(1) {
		return
	}
	test, _ := vm.Top()
	items := pairs.Array().Items
	for i := 0; i < len(items); i += 2 {
		if i == len(items)-1 {
			vm.runValue(items[i])
			return
		}
		matched := false
		if c := items[i]; c.Type == ValArray {
			vm.Push(test)
			vm.runBlock(c.Array())
			flag, ok := vm.Pop()
			if !ok {
				vm.Push(Errorf("cond condition left nothing on the stack"))
				return
			}
			matched = flag.Truthy()
		} else {
			matched = c.Truthy()
		}
		if matched {
			vm.runValue(items[i+1])
			return
		}
	}
}

// nativeNot: (v -> bool)
func nativeNot(vm *VM) {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	vm.Push(BoolVal(!v.Truthy()))
}

// nativeCopy: (v -> v'), deep copy.
func nativeCopy(vm *VM) {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	vm.Push(v.Copy())
}
