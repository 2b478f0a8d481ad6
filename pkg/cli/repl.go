package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/funvibe/kokoki/internal/config"
	kokoki "github.com/funvibe/kokoki/pkg/embed"
)

// runRepl drives the interactive loop: prompt with the current stack
// depth, evaluate, acknowledge. Escapes starting with a backslash are
// handled by the driver, not the language.
func runRepl(v *kokoki.VM, cfg *config.Config) int {
	out := os.Stdout
	tty := stdinIsTerminal()

	var hist *History
	if cfg.HistoryPath != "" {
		h, err := OpenHistory(cfg.HistoryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			hist = h
			defer hist.Close()
		}
	}

	if tty {
		fmt.Fprintln(out, config.Banner)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if tty {
			fmt.Fprint(out, ansiFg(fgCyan, fmt.Sprintf(cfg.Prompt, v.Depth())))
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "bye" {
			break
		}
		if strings.HasPrefix(line, `\`) {
			replEscape(v, cfg, hist, out, line)
			continue
		}
		if hist != nil {
			hist.Append(line)
		}
		if v.Eval(line) {
			fmt.Fprintln(out, ansiFg(fgGreen, config.OkSuffix))
		}
	}

	if tty {
		fmt.Fprintln(out, config.ByeLine)
	}
	return 0
}

func replEscape(v *kokoki.VM, cfg *config.Config, hist *History, out io.Writer, line string) {
	switch line {
	case `\dis`:
		v.Machine().Chunk().Disassemble(out)
	case `\hist`:
		if hist == nil {
			fmt.Fprintln(out, "history is disabled (set history_path in kokoki.yaml)")
			return
		}
		lines, err := hist.Recent(cfg.HistoryLimit)
		if err != nil {
			fmt.Fprintln(out, ansiFg(fgRed, err.Error()))
			return
		}
		for _, l := range lines {
			fmt.Fprintln(out, l)
		}
	case `\stack`:
		for _, val := range v.Stack() {
			fmt.Fprintln(out, val.Dump())
		}
	default:
		fmt.Fprintln(out, ansiFg(fgYellow, "unknown escape "+line))
	}
}
