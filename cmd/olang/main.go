package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/red-freak/olang/pkg/diag"
	"github.com/red-freak/olang/pkg/driver"
	"github.com/red-freak/olang/pkg/interpreter"
	"github.com/red-freak/olang/pkg/parser"
	"github.com/red-freak/olang/pkg/runtime"
)

const cliToolVersion = "olang-cli 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runREPL(os.Stdin, os.Stdout, os.Stderr)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "eval":
		return runEval(args[1:])
	default:
		return runEntry(args)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  olang                 start a REPL on stdin")
	fmt.Fprintln(w, "  olang run [file]      run a script, or the manifest entry when no file is given")
	fmt.Fprintln(w, "  olang eval <expr>     evaluate a single expression and print the result")
	fmt.Fprintln(w, "  olang --version       print the CLI version")
}

// runEntry executes a script file. With no argument it resolves the entry
// script through the nearest olang.yml manifest.
func runEntry(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		manifestPath, err := driver.FindManifest(".")
		if err != nil {
			if errors.Is(err, driver.ErrManifestNotFound) {
				fmt.Fprintln(os.Stderr, "olang run requires a source file or an olang.yml manifest")
			} else {
				fmt.Fprintf(os.Stderr, "failed to locate manifest: %v\n", err)
			}
			return 1
		}
		manifest, err := driver.LoadManifest(manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		path = manifest.EntryPath()
	}
	return executeFile(path)
}

func runEval(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "olang eval requires an expression")
		return 1
	}
	source := strings.Join(args, " ")
	program, err := parser.ParseProgram(source)
	if err != nil {
		reportError("<eval>", err)
		return 1
	}
	result, err := interpreter.New().EvaluateProgram(program)
	if err != nil {
		reportError("<eval>", err)
		return 1
	}
	printResult(os.Stdout, result)
	return 0
}

func executeFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		return 1
	}
	program, err := parser.ParseProgram(string(data))
	if err != nil {
		reportError(path, err)
		return 1
	}
	result, err := interpreter.New().EvaluateProgram(program)
	if err != nil {
		reportError(path, err)
		return 1
	}
	printResult(os.Stdout, result)
	return 0
}

// runREPL evaluates one line at a time against a shared environment, so
// bindings persist across inputs.
func runREPL(in io.Reader, out, errOut io.Writer) int {
	interp := interpreter.New()
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, cliToolVersion)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		program, err := parser.ParseProgram(line)
		if err != nil {
			fmt.Fprintf(errOut, "%v\n", err)
			continue
		}
		result, err := interp.EvaluateProgram(program)
		if err != nil {
			fmt.Fprintf(errOut, "%v\n", err)
			continue
		}
		printResult(out, result)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "read input: %v\n", err)
		return 1
	}
	return 0
}

func printResult(w io.Writer, result runtime.Value) {
	if result == nil || result.Kind() == runtime.KindNil {
		return
	}
	fmt.Fprintln(w, result.String())
}

func reportError(origin string, err error) {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", origin, d.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", origin, err)
}
