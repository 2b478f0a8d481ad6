// Package kokoki provides the host-embedding API: create a context,
// evaluate source onto it, and extend it with Go-implemented natives.
package kokoki

import (
	"io"

	"github.com/funvibe/kokoki/internal/vm"
)

// Value is a runtime value of the interpreter.
type Value = vm.Value

// Native is a host primitive operating directly on the machine's
// operand stack.
type Native = vm.NativeFn

// VM wraps the underlying Kokoki machine and provides a high-level
// embedding API. A VM holds one context: its operand stack, name table
// and bytecode buffer persist across Eval calls.
type VM struct {
	machine *vm.VM
}

// New creates a new Kokoki VM instance.
func New() *VM {
	return &VM{machine: vm.New()}
}

// Init constructs a context and invokes cb inside its lifetime.
func Init(cb func(*VM)) {
	cb(New())
}

// Eval compiles source onto the context's bytecode buffer and executes
// it from where the previous evaluation stopped. It reports false on a
// compile or parse failure; runtime failures surface as error values on
// the stack instead.
func (v *VM) Eval(source string) bool {
	return v.machine.Eval(source)
}

// RegisterNative binds name to a host primitive callable from source.
func (v *VM) RegisterNative(name string, fn Native) {
	v.machine.RegisterNative(name, fn)
}

// Stack returns the live operand stack, bottom first.
func (v *VM) Stack() []Value {
	return v.machine.Stack()
}

// Top returns the top of the operand stack.
func (v *VM) Top() (Value, bool) {
	return v.machine.Top()
}

// Depth returns the operand stack depth.
func (v *VM) Depth() int {
	return v.machine.Depth()
}

// SetOutput redirects interpreter output.
func (v *VM) SetOutput(w io.Writer) {
	v.machine.SetOutput(w)
}

// SetDiag redirects compile-error diagnostics.
func (v *VM) SetDiag(w io.Writer) {
	v.machine.SetDiag(w)
}

// SetInput redirects the read native's input.
func (v *VM) SetInput(r io.Reader) {
	v.machine.SetInput(r)
}

// Machine exposes the underlying VM for hosts that need the full
// internal surface, such as the bundled CLI.
func (v *VM) Machine() *vm.VM {
	return v.machine
}
