package config

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".kki", ".kokoki"}

const (
	// PromptFormat renders the REPL prompt with the current stack depth.
	PromptFormat = "kokoki(%d)> "

	// Banner is printed when the REPL starts on a terminal.
	Banner = "Kokoki bytecode interpreter"

	// OkSuffix acknowledges a successful toplevel evaluation.
	OkSuffix = " ok"

	// ByeLine is printed when the REPL exits.
	ByeLine = "Bye!"
)

// DefaultHistoryLimit caps how many history rows the REPL recalls.
const DefaultHistoryLimit = 20
