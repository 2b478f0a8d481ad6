package vm

// NativeFn is a host-provided primitive. It reads its arguments from the
// operand stack and pushes its results, reporting failures by pushing an
// error value.
type NativeFn func(vm *VM)

// NativeEntry describes one slot of the native dispatch table. A direct
// entry carries an opcode the compiler inlines instead of INVOKE; its Fn
// stays usable for runtime name execution.
type NativeEntry struct {
	Name   string
	Fn     NativeFn
	Op     Opcode
	Direct bool
}

// RegisterNative binds a name to a host primitive callable via INVOKE.
// Registering an existing name replaces its function.
func (vm *VM) RegisterNative(name string, fn NativeFn) {
	if idx, ok := vm.nativeIdx[name]; ok {
		vm.natives[idx].Fn = fn
		vm.natives[idx].Direct = false
		return
	}
	vm.nativeIdx[name] = len(vm.natives)
	vm.natives = append(vm.natives, NativeEntry{Name: name, Fn: fn})
}

func (vm *VM) registerOp(name string, op Opcode) {
	vm.nativeIdx[name] = len(vm.natives)
	vm.natives = append(vm.natives, NativeEntry{
		Name:   name,
		Fn:     func(vm *VM) { vm.simple(op) },
		Op:     op,
		Direct: true,
	})
}

func (vm *VM) installNatives() {
	// direct-opcode aliases
	vm.registerOp("+", OP_PLUS)
	vm.registerOp("-", OP_MINUS)
	vm.registerOp("*", OP_MUL)
	vm.registerOp("/", OP_DIV)
	vm.registerOp("%", OP_MOD)
	vm.registerOp("<", OP_LT)
	vm.registerOp(">", OP_GT)
	vm.registerOp("<=", OP_LTE)
	vm.registerOp(">=", OP_GTE)
	vm.registerOp("<<", OP_SHL)
	vm.registerOp(">>", OP_SHR)
	vm.registerOp("=", OP_EQ)
	vm.registerOp("and", OP_AND)
	vm.registerOp("or", OP_OR)
	vm.registerOp("dup", OP_DUP)
	vm.registerOp("drop", OP_DROP)
	vm.registerOp("swap", OP_SWAP)
	vm.registerOp("rot", OP_ROT)
	vm.registerOp("over", OP_OVER)
	vm.registerOp("nip", OP_NIP)
	vm.registerOp("tuck", OP_TUCK)
	vm.registerOp("pick", OP_PICKN)
	vm.registerOp("move", OP_MOVEN)
	vm.registerOp("apush", OP_APUSH)
	vm.registerOp("hmput", OP_HMPUT)
	vm.registerOp(".", OP_PRINT)
	vm.registerOp("dump", OP_PRINT)

	// I/O
	vm.RegisterNative("slurp", nativeSlurp)
	vm.RegisterNative("nl", nativeNl)
	vm.RegisterNative("read", nativeRead)
	vm.RegisterNative("eval", nativeEval)
	vm.RegisterNative("use", nativeUse)

	// strings, arrays, hashmaps
	vm.RegisterNative("cat", nativeCat)
	vm.RegisterNative("len", nativeLen)
	vm.RegisterNative("aget", nativeAGet)
	vm.RegisterNative("aset", nativeASet)
	vm.RegisterNative("adel", nativeADel)
	vm.RegisterNative("slice", nativeSlice)
	vm.RegisterNative("reverse", nativeReverse)
	vm.RegisterNative("sort", nativeSort)
	vm.RegisterNative("compare", nativeCompare)
	vm.RegisterNative("hmget", nativeHMGet)
	vm.RegisterNative("hmdel", nativeHMDel)

	// control and higher-order
	vm.RegisterNative("exec", nativeExec)
	vm.RegisterNative("each", nativeEach)
	vm.RegisterNative("fold", nativeFold)
	vm.RegisterNative("foldi", nativeFoldi)
	vm.RegisterNative("filter", nativeFilter)
	vm.RegisterNative("times", nativeTimes)
	vm.RegisterNative("while", nativeWhile)
	vm.RegisterNative("cond", nativeCond)
	vm.RegisterNative("not", nativeNot)
	vm.RegisterNative("copy", nativeCopy)

	// ref cells
	vm.RegisterNative("?", nativeRefGet)
	vm.RegisterNative("!", nativeRefSet)
	vm.RegisterNative("!!", nativeRefUpdate)
	vm.RegisterNative("!?", nativeRefUpdateGet)
}
