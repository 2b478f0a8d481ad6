package vm

import (
	"bufio"
	"io"
	"os"
	"strings"
)

func writeOut(vm *VM, s string) {
	io.WriteString(vm.out, s)
}

// nativeSlurp: (filename -> contents)
func nativeSlurp(vm *VM) {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	if v.Type != ValString {
		vm.Push(Errorf("slurp needs a string, got %s", v.Type))
		return
	}
	data, err := os.ReadFile(v.Str)
	if err != nil {
		vm.Push(Errorf("Cannot read %s: %s", v.Str, err))
		return
	}
	vm.Push(StringVal(string(data)))
}

// nativeNl writes a newline to the output sink.
func nativeNl(vm *VM) {
	writeOut(vm, "\n")
}

// nativeRead: ( -> line), pushes the eof sentinel when input is drained.
func nativeRead(vm *VM) {
	if vm.inBuf == nil {
		vm.inBuf = bufio.NewReader(vm.in)
	}
	line, err := vm.inBuf.ReadString('\n')
	if err != nil && line == "" {
		vm.Push(EOFVal())
		return
	}
	line = strings.TrimRight(line, "\r\n")
	vm.Push(StringVal(line))
}

// nativeEval: (source -> ...), compiles the string as a fragment and
// runs it in the current context.
func nativeEval(vm *VM) {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	if v.Type != ValString {
		vm.Push(Errorf("eval needs a string, got %s", v.Type))
		return
	}
	addr, err := vm.compileFragment(v.Str)
	if err != nil {
		vm.Push(ErrorVal(err.Error()))
		return
	}
	vm.callBlockAt(addr)
}

// nativeUse: (filename -> ...), slurp then eval.
func nativeUse(vm *VM) {
	if !vm.need(1) {
		return
	}
	v, _ := vm.Pop()
	if v.Type != ValString {
		vm.Push(Errorf("use needs a string, got %s", v.Type))
		return
	}
	data, err := os.ReadFile(v.Str)
	if err != nil {
		vm.Push(Errorf("Cannot read %s: %s", v.Str, err))
		return
	}
	addr, cerr := vm.compileFragment(string(data))
	if cerr != nil {
		vm.Push(ErrorVal(cerr.Error()))
		return
	}
	vm.callBlockAt(addr)
}
