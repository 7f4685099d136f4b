package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	cflat "github.com/RobDangerous/Cflat"
)

const (
	appName     = "cflat"
	historyFile = ".cflat_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = "Cflat REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit."

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Cflat

Usage:
  %s run <file.cpp>         Run a script file.
  %s repl [-history path]   Start the REPL.

`, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.cpp>\n", appName)
		return 2
	}
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	env := cflat.NewEnvironment()
	if ok := env.Load(filepath.Base(file), string(src)); !ok {
		fmt.Fprintln(os.Stderr, red(env.GetErrorMessage()))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	history := fs.String("history", "", "path to the REPL history file (default: $HOME/"+historyFile+")")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	fmt.Println(banner)

	histPath := *history
	if histPath == "" {
		home, _ := os.UserHomeDir()
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	env := cflat.NewEnvironment()
	n := 0

	for {
		code, ok := readByBraceDepth(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return 0
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		n++
		name := fmt.Sprintf("repl-%d", n)
		if ok := env.Load(name, code); !ok {
			fmt.Fprintln(os.Stderr, red(cflat.WrapErrorWithSource(env.LastError(), code).Error()))
		} else {
			fmt.Println(green("ok"))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByBraceDepth accumulates lines until braces/parens/brackets balance,
// mirroring the teacher's incomplete-parse probe but driven by bracket depth
// rather than a parser error classification (Cflat has no ParseSExprIncomplete
// equivalent — a curly-brace grammar's "still open" signal is purely lexical).
func readByBraceDepth(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	depth := 0

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		depth += braceDelta(line)

		if depth <= 0 {
			return b.String(), true
		}
	}
}

func braceDelta(line string) int {
	d := 0
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString {
			if c == '\\' && i+1 < len(line) {
				i++
				continue
			}
			if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '(', '[':
			d++
		case '}', ')', ']':
			d--
		}
	}
	return d
}
