// Package repl implements the interactive prompt spec §6 "run mode"
// describes for evilcandy invoked with no INFILE: read one statement at
// a time, assemble it against the running program's globals, execute
// it against a single persistent VM so bindings survive across lines.
package repl

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"evilcandy/internal/assembler"
	"evilcandy/internal/ecconfig"
	"evilcandy/internal/vm"
)

const banner = "evilcandy REPL | :help for commands, :exit to quit"

// Start runs the REPL loop against a fresh VM until EOF, ":exit", or
// (when stdin isn't a terminal — a pipe or redirected file) until the
// input is exhausted, at which point it runs silently the way a script
// would rather than printing prompts nobody will see.
func Start() {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	v := vm.New()
	scanner := bufio.NewScanner(os.Stdin)

	if interactive {
		fmt.Println(banner)
	}

	started := time.Now()
	count := 0
	for {
		if interactive {
			fmt.Print(">>> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if interactive && handleCommand(v, line, count, started) {
			if line == ":exit" || line == ":quit" {
				return
			}
			continue
		}

		src := line
		if !strings.HasSuffix(src, ";") && !strings.HasSuffix(src, "}") {
			src += ";"
		}
		x, err := assembler.Assemble("<repl>", src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "syntax error:", err)
			continue
		}
		if _, err := v.Run(x); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		count++
	}
	if interactive {
		fmt.Println()
	}
}

// handleCommand recognizes the REPL's own ":"-prefixed directives,
// separate from evilcandy source so a line like ":exit" can't collide
// with a bareword identifier statement. Returns false for anything that
// isn't a recognized command, leaving line to be assembled as source.
func handleCommand(v *vm.VM, line string, count int, started time.Time) bool {
	switch line {
	case ":exit", ":quit":
		return true
	case ":help":
		fmt.Println("  :stats   show VM and session counters")
		fmt.Println("  :exit    leave the REPL")
		return true
	case ":stats":
		printStats(v, count, started)
		return true
	default:
		return false
	}
}

// printStats surfaces a handful of VM configuration and session
// counters in human-readable form — the kind of lightweight
// introspection command the teacher's CLI exposes, here reporting
// evilcandy-specific numbers (value stack size, recursion ceiling)
// instead of the teacher's own.
func printStats(v *vm.VM, count int, started time.Time) {
	fmt.Printf("statements run   : %s\n", humanize.Comma(int64(count)))
	fmt.Printf("session age      : %s\n", humanize.RelTime(started, time.Now(), "ago", "from now"))
	fmt.Printf("value stack size : %s slots\n", humanize.Comma(int64(ecconfig.StackSize)))
	fmt.Printf("recursion ceiling: %s frames\n", humanize.Comma(int64(ecconfig.RecursionCeiling)))
}
