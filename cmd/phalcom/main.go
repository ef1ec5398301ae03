// Command phalcom is the CLI front end for the Phalcom interpreter: a
// REPL, a file runner, and the usual version/help subcommands, following
// the teacher's own cmd/smog/main.go subcommand-dispatch shape.
//
// The teacher's `compile`/`disassemble` subcommands round-trip a `.sg`
// on-disk bytecode format; spec.md's Non-goals rule out a persistent
// bytecode format entirely ("no persistent bytecode format on disk"), so
// those two subcommands have no home here — bytecode only ever exists
// in memory, built fresh from source on every run.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/phalcom-lang/phalcom/pkg/compiler"
	"github.com/phalcom-lang/phalcom/pkg/runtime"
	"github.com/phalcom-lang/phalcom/pkg/vm"
)

const version = "0.1.0"

var errorColor = color.New(color.FgRed, color.Bold)

func main() {
	if len(os.Args) < 2 {
		runREPL()
		return
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		fmt.Printf("phalcom version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	case "repl":
		runREPL()
	case "run":
		if len(os.Args) < 3 {
			fmt.Println("Error: no file specified")
			printUsage()
			os.Exit(1)
		}
		runFile(os.Args[2])
	default:
		runFile(os.Args[1])
	}
}

func printUsage() {
	fmt.Println("phalcom - a small class-based, message-sending language")
	fmt.Println("\nUsage:")
	fmt.Println("  phalcom                Start interactive REPL")
	fmt.Println("  phalcom [file]         Run a .phalcom source file")
	fmt.Println("  phalcom run [file]     Run a .phalcom source file")
	fmt.Println("  phalcom repl           Start interactive REPL")
	fmt.Println("  phalcom version        Show version")
	fmt.Println("  phalcom help           Show this help")
}

// runFile compiles and runs a single source file to completion, printing
// spec.md §6's two-part diagnostic (message, then stack trace) on
// failure.
func runFile(filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	rt := runtime.New()
	closure, err := compiler.Compile(rt, string(data))
	if err != nil {
		errorColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	module := rt.GetOrCreateModule(runtime.MainModuleName)
	e := vm.New(rt)
	if result, err := e.RunModule(module, closure); err != nil {
		printRuntimeError(os.Stderr, err)
		os.Exit(1)
	} else if !result.IsNil() {
		fmt.Println(runtime.FormatValue(e, result))
	}
}

func printRuntimeError(w io.Writer, err error) {
	if rerr, ok := err.(*vm.RuntimeError); ok {
		errorColor.Fprintf(w, "%s\n", rerr.Message)
		fmt.Fprintln(w, "Stack trace:")
		for _, frame := range rerr.StackTrace {
			fmt.Fprintf(w, "  at %s [IP: %d]\n", frame.Name, frame.IP)
		}
		return
	}
	errorColor.Fprintf(w, "%v\n", err)
}

// runREPL starts an interactive session: every line is compiled against
// the same persistent Runtime and re-entered into the same "<main>"
// module, so `let` bindings and class declarations from earlier lines
// stay visible to later ones.
func runREPL() {
	fmt.Printf("phalcom REPL v%s\n", version)
	fmt.Println("Type ':quit' or ':exit' to exit.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	rt := runtime.New()
	e := vm.New(rt)

	for {
		input, err := line.Prompt("phalcom> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("Goodbye!")
				return
			}
			errorColor.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			return
		}
		switch input {
		case ":quit", ":exit":
			fmt.Println("Goodbye!")
			return
		case "":
			continue
		}
		line.AppendHistory(input)
		evalREPL(rt, e, input)
	}
}

func evalREPL(rt *runtime.Runtime, e *vm.VM, input string) {
	closure, err := compiler.Compile(rt, input)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "%v\n", err)
		return
	}

	module := rt.GetOrCreateModule(runtime.MainModuleName)
	result, err := e.RunModule(module, closure)
	if err != nil {
		printRuntimeError(os.Stderr, err)
		return
	}
	fmt.Printf("=> %s\n", runtime.FormatValue(e, result))
}
