// Package cli implements the kokoki command: an interactive REPL when
// run without arguments, a file runner when given a script path.
package cli

import (
	"fmt"
	"os"

	"github.com/funvibe/kokoki/internal/config"
	kokoki "github.com/funvibe/kokoki/pkg/embed"
)

// Run dispatches the command line and returns the process exit code.
func Run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	colorMode = cfg.Color

	v := kokoki.New()
	registerHostNatives(v)

	for _, path := range cfg.Preload {
		if !runFile(v, path) {
			return 1
		}
	}

	if len(args) == 0 {
		return runRepl(v, cfg)
	}
	if !runFile(v, args[0]) {
		return 1
	}
	return 0
}

// runFile evaluates a script by handing the path to the language's own
// use native, so a file run behaves exactly like typing its contents.
func runFile(v *kokoki.VM, path string) bool {
	if !v.Eval(`"` + resolveScript(path) + `" use`) {
		return false
	}
	if top, ok := v.Top(); ok && top.IsError() {
		fmt.Fprintln(os.Stderr, ansiFg(fgRed, top.Dump()))
		return false
	}
	return true
}

// resolveScript tries the known source extensions when the given path
// does not exist as written, so "kokoki foo" finds foo.kki.
func resolveScript(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	for _, ext := range config.SourceFileExtensions {
		if _, err := os.Stat(path + ext); err == nil {
			return path + ext
		}
	}
	return path
}
