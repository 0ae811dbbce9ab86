// Command calc is a terminal keypad for the calculator engine.
//
// Each input line is a sequence of keys, e.g. "12+3=" or "9 DEL". After every
// line the display is printed; the history follows whenever it changed.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"go-chi-calculator/internal/calculator"
)

func main() {
	verbose := flag.Bool("v", false, "Log every applied key to stderr")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		printBanner(os.Stdout)
	}

	run(os.Stdin, os.Stdout, interactive, logger)
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "calc (Ctrl+D to exit)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys: 0-9 .  + - × ÷ (or * /)  =  C  DEL  CH")
	fmt.Fprintln(w)
}

// run reads key lines from r until EOF and writes the display after each.
func run(r io.Reader, w io.Writer, prompt bool, logger *zap.Logger) {
	state := calculator.NewState()
	scanner := bufio.NewScanner(r)

	for {
		if prompt {
			fmt.Fprint(w, "> ")
		}
		if !scanner.Scan() {
			if prompt {
				fmt.Fprintln(w)
			}
			return
		}

		keys := calculator.SplitKeys(scanner.Text())
		if len(keys) == 0 {
			continue
		}

		before := len(state.History)
		next, err := calculator.PressAll(state, keys...)
		state = next
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}

		logger.Debug("keys applied",
			zap.Int("keys", len(keys)),
			zap.String("display", state.Display),
			zap.String("pending_operation", string(state.PendingOperation)),
		)

		fmt.Fprintln(w, state.Display)
		if len(state.History) != before {
			for _, entry := range state.History {
				fmt.Fprintf(w, "  %s\n", entry)
			}
		}
	}
}
