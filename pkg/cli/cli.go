// Package cli implements the esm2cjs command line on top of the api
// package. It is separate from cmd/esm2cjs so the command can be embedded
// in other Go programs.
package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/esm2cjs/esm2cjs/internal/exitcode"
	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/pkg/api"
	"github.com/go-json-experiment/json"
)

// ParseOptions turns command line arguments into options without running
// anything.
func ParseOptions(osArgs []string) (Options, error) {
	options := newOptions()
	err := parseOptionsImpl(osArgs, &options)
	return options, err
}

// Run runs the command line and returns the exit code. Input comes from the
// file argument or from stdin, and output goes to "--outfile" or stdout.
func Run(osArgs []string) int {
	options, err := ParseOptions(osArgs)
	if err != nil {
		logger.PrintErrorToStderr(osArgs, err.Error())
		return exitcode.Get(err)
	}

	if err := runOnce(osArgs, &options); err != nil && !options.Watch {
		return exitcode.Get(err)
	}
	if !options.Watch {
		return 0
	}

	watcher, err := api.Watch(api.WatchOptions{
		Color:    options.Transform.Color,
		LogLevel: options.Transform.LogLevel,
		Paths:    []string{options.InputFile},
		OnChange: func(string) {
			// Errors were already logged and the watch goes on
			runOnce(osArgs, &options)
		},
	})
	if err != nil {
		logger.PrintErrorToStderr(osArgs, fmt.Sprintf("Failed to start watching: %s", err.Error()))
		return 1
	}
	logger.PrintTextWithColor(os.Stderr, logger.ColorIfTerminal, func(colors logger.Colors) string {
		return fmt.Sprintf("%s[watch] watching %q for changes...%s\n", colors.Dim, options.InputFile, colors.Reset)
	})

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	watcher.Stop()
	return 0
}

func runOnce(osArgs []string, options *Options) error {
	input, err := readInput(options.InputFile)
	if err != nil {
		logger.PrintErrorToStderr(osArgs, err.Error())
		return err
	}

	result := api.Transform(string(input), options.Transform)
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d errors", len(result.Errors))
	}

	var output []byte
	switch {
	case options.PrintDependencies:
		deps, err := json.Marshal(result.Dependencies)
		if err != nil {
			return err
		}
		output = append(deps, '\n')
	case options.Transform.OutputAST:
		output = append(result.AST, '\n')
	default:
		output = []byte(result.Code)
	}

	if options.Outfile == "" {
		if _, err := os.Stdout.Write(output); err != nil {
			logger.PrintErrorToStderr(osArgs, fmt.Sprintf("Failed to write to stdout: %s", err.Error()))
			return err
		}
		return nil
	}
	if err := os.WriteFile(options.Outfile, output, 0644); err != nil {
		logger.PrintErrorToStderr(osArgs, fmt.Sprintf("Failed to write to output file: %s", err.Error()))
		return err
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		bytes, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("Could not read from stdin: %s", err.Error())
		}
		return bytes, nil
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Could not read from file: %s", err.Error())
	}
	return bytes, nil
}
