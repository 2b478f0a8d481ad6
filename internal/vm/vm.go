package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/funvibe/kokoki/internal/lexer"
)

// returnSentinel marks a return-stack frame pushed by the host-side
// block executor rather than by a CALL instruction.
const returnSentinel = -1

// VM is a single execution context: the operand stack, the return
// stack, the shared bytecode buffer, the name table, and the native
// dispatch table. It is created once and extended monotonically across
// successive evaluations within the same session.
type VM struct {
	chunk     *Chunk
	stack     []Value
	rstack    []int
	pc        int
	names     *Hashmap
	natives   []NativeEntry
	nativeIdx map[string]int

	out   io.Writer
	diag  io.Writer
	in    io.Reader
	inBuf *bufio.Reader
}

func New() *VM {
	vm := &VM{
		chunk:     NewChunk(),
		names:     NewHashmap(),
		nativeIdx: make(map[string]int),
		out:       os.Stdout,
		diag:      os.Stderr,
		in:        os.Stdin,
	}
	vm.installNatives()
	return vm
}

// SetOutput redirects VM output (PRINT, dump, nl).
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// SetDiag redirects compile-error diagnostics.
func (vm *VM) SetDiag(w io.Writer) {
	vm.diag = w
}

// SetInput redirects the read native's input.
func (vm *VM) SetInput(r io.Reader) {
	vm.in = r
	vm.inBuf = nil
}

// Chunk exposes the bytecode buffer for the disassembler and tests.
func (vm *VM) Chunk() *Chunk {
	return vm.chunk
}

// Names exposes the name table.
func (vm *VM) Names() *Hashmap {
	return vm.names
}

// Stack returns the live operand stack, bottom first.
func (vm *VM) Stack() []Value {
	return vm.stack
}

// Depth returns the operand stack depth.
func (vm *VM) Depth() int {
	return len(vm.stack)
}

func (vm *VM) Push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) Pop() (Value, bool) {
	if len(vm.stack) == 0 {
		return Value{}, false
	}
	last := len(vm.stack) - 1
	v := vm.stack[last]
	vm.stack[last] = Value{}
	vm.stack = vm.stack[:last]
	return v, true
}

func (vm *VM) Top() (Value, bool) {
	if len(vm.stack) == 0 {
		return Value{}, false
	}
	return vm.stack[len(vm.stack)-1], true
}

// need reports whether the stack holds at least n values. A deficit
// pushes an underflow error and leaves the stack otherwise untouched.
func (vm *VM) need(n int) bool {
	if len(vm.stack) >= n {
		return true
	}
	vm.Push(Errorf("Stack underflow! (%d < %d)", len(vm.stack), n))
	return false
}

// Eval compiles source onto the shared bytecode buffer and executes
// from the saved program counter. It reports false on a compile or
// parse failure, in which case the buffer is truncated back to its
// pre-eval size and the diagnostic is written to the diag writer.
func (vm *VM) Eval(source string) bool {
	start := vm.chunk.Len()
	c := newCompiler(vm, lexer.New(source))
	if err := c.compileProgram(); err != nil {
		fmt.Fprintln(vm.diag, err)
		vm.chunk.Truncate(start)
		return false
	}
	if start > 0 {
		// continue from the previous END into the new fragment
		vm.chunk.Code[vm.pc] = byte(OP_JMP)
		vm.chunk.PatchAddr(vm.pc+1, uint32(start))
	}
	vm.run()
	return true
}

// run drives the fetch-decode-execute loop until END, leaving the
// program counter on the END opcode so a later evaluation can resume
// there.
func (vm *VM) run() {
	for {
		op := Opcode(vm.chunk.Code[vm.pc])
		if op == OP_END {
			return
		}
		vm.execute(op)
	}
}

// callBlockAt executes code at addr until its matching RETURN, then
// restores the instruction pointer. Natives use this to run compiled
// blocks and definitions synchronously.
func (vm *VM) callBlockAt(addr uint32) {
	saved := vm.pc
	vm.rstack = append(vm.rstack, returnSentinel)
	vm.pc = int(addr)
	for {
		op := Opcode(vm.chunk.Code[vm.pc])
		if op == OP_END {
			if len(vm.rstack) > 0 && vm.rstack[len(vm.rstack)-1] == returnSentinel {
				vm.rstack = vm.rstack[:len(vm.rstack)-1]
			}
			break
		}
		if op == OP_RETURN && len(vm.rstack) > 0 && vm.rstack[len(vm.rstack)-1] == returnSentinel {
			vm.rstack = vm.rstack[:len(vm.rstack)-1]
			break
		}
		vm.execute(op)
	}
	vm.pc = saved
}

// runBlock compiles the array's elements into the bytecode buffer if
// needed and executes the resulting code.
func (vm *VM) runBlock(arr *Array) {
	addr, err := vm.blockAddr(arr)
	if err != nil {
		vm.Push(ErrorVal(err.Error()))
		return
	}
	vm.callBlockAt(addr)
}

// runValue executes a value the way higher-order natives expect:
// arrays run as blocks, anything else pushes itself.
func (vm *VM) runValue(v Value) {
	if v.Type == ValArray {
		vm.runBlock(v.Array())
		return
	}
	vm.Push(v)
}

// execName resolves and executes a name at runtime: a bound definition
// is called, a native is invoked, anything else is an error value.
func (vm *VM) execName(name string) {
	bound := vm.names.Get(NameVal(name))
	if bound.Type == ValCodeAddr {
		vm.callBlockAt(bound.AsCodeAddr())
		return
	}
	if idx, ok := vm.nativeIdx[name]; ok {
		vm.natives[idx].Fn(vm)
		return
	}
	vm.Push(Errorf("Undefined name: %s", name))
}
