package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// colorLevel caches the detected color support: 0=none, 1=basic(16), 256=256colors, 16777216=truecolor
var (
	colorLevelOnce sync.Once
	colorLevelVal  int

	// colorMode comes from the config file: "auto", "always" or "never".
	colorMode = "auto"
)

func detectColorLevel() int {
	switch colorMode {
	case "never":
		return 0
	case "always":
		return 1
	}

	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return 0
	}

	// Not a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return 0
	}

	term := os.Getenv("TERM")
	if term == "dumb" {
		return 0
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		return 16777216
	}

	if strings.Contains(term, "256color") {
		return 256
	}

	return 1
}

func getColorLevel() int {
	colorLevelOnce.Do(func() {
		colorLevelVal = detectColorLevel()
	})
	return colorLevelVal
}

func ansiWrap(code, resetCode, s string) string {
	if getColorLevel() == 0 {
		return s
	}
	return code + s + resetCode
}

func ansiFg(colorCode int, s string) string {
	return ansiWrap(fmt.Sprintf("\033[%dm", colorCode), "\033[39m", s)
}

const (
	fgRed    = 31
	fgGreen  = 32
	fgYellow = 33
	fgCyan   = 36
)

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
