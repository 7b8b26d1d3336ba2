package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/pkg/cli"
)

const esm2cjsVersion = "0.3.0"

const helpText = `
Usage:
  esm2cjs [options] [file]

Reads the file, or stdin if there is none, and writes the result to stdout
unless --outfile is given.

Options:
  --format=...           Output format: cjs rewrites import and export to
                         require and exports (default), esm only reprints
  --outfile=...          Write the output to this file
  --deps                 Print the require() arguments of the output as a
                         JSON array instead of the code
  --watch                Run again whenever the input file changes
  --color=...            Force use of color terminal escapes (true or false)
  --log-level=...        Disable logging (verbose, info, warning, error,
                         silent)

Advanced options:
  --version                 Print the current version and exit (` + esm2cjsVersion + `)
  --indent=...              Spaces per indent level, or "tab"
  --line-end=...            Line terminator (lf or crlf)
  --comments                Keep /*! */ and //! comments
  --ast                     Print the final tree as ESTree JSON
  --ast-input               Read the input as ESTree JSON
  --non-literal=...         What to do with an import or export whose module
                            specifier is not a string (pass or error)
  --private-members=...     Print #x as __private_x (preserve or rename)
  --log-override:X=Y        Use log level Y for message X, where X is a
                            message name or "esm" for all module warnings
  --error-limit=...         Maximum error count or 0 to disable (default 10)
  --sourcefile=...          File name to show in messages for stdin input
  --cpuprofile=...          Write a CPU profile to this file

Examples:
  # Rewrite one module
  esm2cjs src/index.mjs --outfile=dist/index.cjs

  # Provide input via stdin, get output via stdout
  esm2cjs < input.mjs > output.cjs

  # List the modules the rewritten file requires
  esm2cjs src/index.mjs --deps
`

func main() {
	osArgs := os.Args[1:]
	cpuprofileFile := ""

	// Do an initial scan over the argument list
	argsEnd := 0
	for _, arg := range osArgs {
		switch {
		// Show help if a common help flag is provided
		case arg == "-h", arg == "-help", arg == "--help", arg == "/?":
			fmt.Fprintf(os.Stderr, "%s\n", helpText)
			os.Exit(0)

		// Special-case the version flag here
		case arg == "--version":
			fmt.Fprintf(os.Stderr, "%s\n", esm2cjsVersion)
			os.Exit(0)

		case strings.HasPrefix(arg, "--cpuprofile="):
			cpuprofileFile = arg[len("--cpuprofile="):]

		default:
			// Strip any arguments that were handled above
			osArgs[argsEnd] = arg
			argsEnd++
		}
	}
	osArgs = osArgs[:argsEnd]

	// Print help text when there are no arguments
	if len(osArgs) == 0 && logger.GetTerminalInfo(os.Stdin).IsTTY {
		fmt.Fprintf(os.Stderr, "%s\n", helpText)
		os.Exit(0)
	}

	exitCode := 1
	func() {
		// To view a CPU profile, use "go tool pprof [file]"
		if cpuprofileFile != "" {
			f, err := os.Create(cpuprofileFile)
			if err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to create cpuprofile file: %s", err.Error()))
				return
			}
			defer f.Close()
			pprof.StartCPUProfile(f)
			defer pprof.StopCPUProfile()
		}

		exitCode = cli.Run(osArgs)
	}()

	os.Exit(exitCode)
}
