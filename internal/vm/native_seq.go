package vm

import "sort"

// catOperand coerces a cat argument to a byte sequence: strings pass
// through, numbers become a single byte.
func catOperand(v Value) (string, bool) {
	switch v.Type {
	case ValString:
		return v.Str, true
	case ValNumber:
		return string([]byte{byte(v.AsInt())}), true
	}
	return "", false
}

// nativeCat: (a b -> ab). Strings and single-byte numbers concatenate
// into a string; two arrays concatenate into a new array.
func nativeCat(vm *VM) {
	if !vm.need(2) {
		return
	}
	b, _ := vm.Pop()
	a, _ := vm.Pop()
	if a.Type == ValArray && b.Type == ValArray {
		dst := NewArrayCap(a.Array().Len() + b.Array().Len())
		dst.Items = append(dst.Items, a.Array().Items...)
		dst.Items = append(dst.Items, b.Array().Items...)
		vm.Push(ArrayVal(dst))
		return
	}
	sa, oka := catOperand(a)
	sb, okb := catOperand(b)
	if !oka || !okb {
		vm.Push(Errorf("cat needs strings, got %s and %s", a.Type, b.Type))
		return
	}
	vm.Push(StringVal(sa + sb))
}

// nativeLen: (seq -> seq n), the container stays on the stack.
func nativeLen(vm *VM) {
	if !vm.need(1) {
		return
	}
	top, _ := vm.Top()
	switch top.Type {
	case ValString:
		vm.Push(NumberVal(float64(len(top.Str))))
	case ValArray:
		vm.Push(NumberVal(float64(top.Array().Len())))
	case ValHashmap:
		vm.Push(NumberVal(float64(top.Hashmap().Len())))
	default:
		vm.Push(Errorf("len needs an array, hashmap or string, got %s", top.Type))
	}
}

func popIndex(vm *VM, name string) (int, bool) {
	v, _ := vm.Pop()
	if v.Type != ValNumber {
		vm.Push(Errorf("%s needs a number index, got %s", name, v.Type))
		return 0, false
	}
	return int(v.AsInt()), true
}

// nativeAGet: (seq i -> seq v). Indexing a string yields the byte value
// as a number.
func nativeAGet(vm *VM) {
	if !vm.need(2) {
		return
	}
	i, ok := popIndex(vm, "aget")
	if !ok {
		return
	}
	top, _ := vm.Top()
	switch top.Type {
	case ValArray:
		v, ok := top.Array().Get(i)
		if !ok {
			vm.Push(Errorf("Index out of bounds %d (0 - %d inclusive)", i, top.Array().Len()-1))
			return
		}
		vm.Push(v)
	case ValString:
		if i < 0 || i >= len(top.Str) {
			vm.Push(Errorf("Index out of bounds %d (0 - %d inclusive)", i, len(top.Str)-1))
			return
		}
		vm.Push(NumberVal(float64(top.Str[i])))
	default:
		vm.Push(Errorf("aget needs an array or string, got %s", top.Type))
	}
}

// nativeASet: (arr i v -> arr). Setting at the current length appends.
func nativeASet(vm *VM) {
	if !vm.need(3) {
		return
	}
	v, _ := vm.Pop()
	i, ok := popIndex(vm, "aset")
	if !ok {
		return
	}
	top, _ := vm.Top()
	if top.Type != ValArray {
		vm.Push(Errorf("aset needs an array, got %s", top.Type))
		return
	}
	arr := top.Array()
	if i == arr.Len() {
		arr.Push(v)
		return
	}
	if !arr.Set(i, v) {
		vm.Push(Errorf("Index out of bounds %d (0 - %d inclusive)", i, arr.Len()))
	}
}

// nativeADel: (arr i -> arr)
func nativeADel(vm *VM) {
	if !vm.need(2) {
		return
	}
	i, ok := popIndex(vm, "adel")
	if !ok {
		return
	}
	top, _ := vm.Top()
	if top.Type != ValArray {
		vm.Push(Errorf("adel needs an array, got %s", top.Type))
		return
	}
	if !top.Array().Delete(i) {
		vm.Push(Errorf("Index out of bounds %d (0 - %d inclusive)", i, top.Array().Len()-1))
	}
}

// nativeSlice: (seq from to -> part), to exclusive. Produces a new
// container; the source is consumed.
func nativeSlice(vm *VM) {
	if !vm.need(3) {
		return
	}
	to, ok := popIndex(vm, "slice")
	if !ok {
		return
	}
	from, ok := popIndex(vm, "slice")
	if !ok {
		return
	}
	src, _ := vm.Pop()
	switch src.Type {
	case ValString:
		n := len(src.Str)
		if from < 0 || to > n || from > to {
			vm.Push(Errorf("Bad slice %d - %d of length %d", from, to, n))
			return
		}
		vm.Push(StringVal(src.Str[from:to]))
	case ValArray:
		items := src.Array().Items
		if from < 0 || to > len(items) || from > to {
			vm.Push(Errorf("Bad slice %d - %d of length %d", from, to, len(items)))
			return
		}
		vm.Push(ArrayVal(NewArrayFrom(items[from:to]...)))
	default:
		vm.Push(Errorf("slice needs an array or string, got %s", src.Type))
	}
}

// nativeReverse: (seq -> seq). Arrays reverse in place and stay shared;
// strings produce a new string.
func nativeReverse(vm *VM) {
	if !vm.need(1) {
		return
	}
	top, _ := vm.Top()
	switch top.Type {
	case ValArray:
		arr := top.Array()
		for i, j := 0, arr.Len()-1; i < j; i, j = i+1, j-1 {
			arr.Items[i], arr.Items[j] = arr.Items[j], arr.Items[i]
		}
		arr.compiled = false
	case ValString:
		vm.Pop()
		b := []byte(top.Str)
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
		vm.Push(StringVal(string(b)))
	default:
		vm.Push(Errorf("reverse needs an array or string, got %s", top.Type))
	}
}

// nativeSort: (arr -> arr), ascending in place.
func nativeSort(vm *VM) {
	if !vm.need(1) {
		return
	}
	top, _ := vm.Top()
	if top.Type != ValArray {
		vm.Push(Errorf("sort needs an array, got %s", top.Type))
		return
	}
	arr := top.Array()
	sort.SliceStable(arr.Items, func(i, j int) bool {
		return arr.Items[i].Compare(arr.Items[j]) < 0
	})
	arr.compiled = false
}

// nativeCompare: (a b -> n), -1, 0 or 1.
func nativeCompare(vm *VM) {
	if !vm.need(2) {
		return
	}
	b, _ := vm.Pop()
	a, _ := vm.Pop()
	vm.Push(NumberVal(float64(a.Compare(b))))
}

// nativeHMGet: (hm k -> hm v), nil when the key is missing.
func nativeHMGet(vm *VM) {
	if !vm.need(2) {
		return
	}
	k, _ := vm.Pop()
	top, _ := vm.Top()
	if top.Type != ValHashmap {
		vm.Push(Errorf("hmget needs a hashmap, got %s", top.Type))
		return
	}
	vm.Push(top.Hashmap().Get(k))
}

// nativeHMDel: (hm k -> hm)
func nativeHMDel(vm *VM) {
	if !vm.need(2) {
		return
	}
	k, _ := vm.Pop()
	top, _ := vm.Top()
	if top.Type != ValHashmap {
		vm.Push(Errorf("hmdel needs a hashmap, got %s", top.Type))
		return
	}
	top.Hashmap().Del(k)
}
