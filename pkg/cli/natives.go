package cli

import (
	"github.com/google/uuid"

	"github.com/funvibe/kokoki/internal/vm"
	kokoki "github.com/funvibe/kokoki/pkg/embed"
)

// registerHostNatives extends a context with the primitives the CLI
// provides on top of the built-in set.
func registerHostNatives(v *kokoki.VM) {
	// uuid: ( -> string), a fresh random UUID
	v.RegisterNative("uuid", func(m *vm.VM) {
		m.Push(vm.StringVal(uuid.NewString()))
	})
}
