package api

import (
	"fmt"

	"github.com/esm2cjs/esm2cjs/internal/collector"
	"github.com/esm2cjs/esm2cjs/internal/config"
	"github.com/esm2cjs/esm2cjs/internal/esm_to_cjs"
	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/helpers"
	"github.com/esm2cjs/esm2cjs/internal/js_parser"
	"github.com/esm2cjs/esm2cjs/internal/js_printer"
	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/internal/walker"
)

func newLog(options TransformOptions, overrides map[logger.MsgID]logger.LogLevel) logger.Log {
	if options.LogLevel == LogLevelSilent {
		return logger.NewDeferLog(overrides)
	}
	return logger.NewStderrLog(logger.OutputOptions{
		IncludeSource: true,
		ErrorLimit:    options.ErrorLimit,
		Color:         validateColor(options.Color),
		LogLevel:      validateLogLevel(options.LogLevel),
		Overrides:     overrides,
	})
}

func transformImpl(input string, options TransformOptions) TransformResult {
	overrides, overrideProblems := validateLogOverrides(options.LogOverride)
	log := newLog(options, overrides)
	for _, msg := range overrideProblems {
		log.AddMsg(msg)
	}

	// Convert and validate the options
	transformOptions := validateTransformOptions(log, options)
	transformOptions.Stdin.Contents = input

	// Stop now if there were errors
	var result TransformResult
	if !log.HasErrors() {
		result = transformWithLog(log, &transformOptions)
	}

	msgs := log.Done()
	result.Errors = convertMessagesToPublic(logger.Error, msgs)
	result.Warnings = convertMessagesToPublic(logger.Warning, msgs)
	if len(result.Errors) > 0 {
		result.Code = ""
		result.AST = nil
		result.Dependencies = nil
	}
	return result
}

// transformWithLog reports every failure to the log. An internal panic is
// reported as an error with a stack trace instead of taking the host
// process down.
func transformWithLog(log logger.Log, options *config.Options) (result TransformResult) {
	defer func() {
		if r := recover(); r != nil {
			log.AddError(nil, logger.Range{},
				fmt.Sprintf("panic: %v\n%s", r, helpers.PrettyPrintedStack()))
			result = TransformResult{}
		}
	}()

	program, ok := parseInput(log, options)
	if !ok {
		return
	}

	if options.OutputFormat == config.FormatCommonJS {
		err := esm_to_cjs.ToCommonJSWithOptions(program, esm_to_cjs.Options{
			NonLiteralSpecifiers: options.NonLiteralSpecifiers,
			Log:                  log,
		})
		if err != nil {
			log.AddError(nil, logger.Range{}, err.Error())
			return
		}
	}

	if options.CollectDependencies {
		result.Dependencies = collector.CollectRequireArguments(program)
	}

	if options.Output == config.OutputESTree {
		ast, err := estree.Encode(program, "  ")
		if err != nil {
			log.AddError(nil, logger.Range{}, err.Error())
			return
		}
		result.AST = ast
		return
	}

	if options.PrivateMembers == js_printer.PrivateMembersRename && hasPrivateMembers(program) {
		log.AddID(logger.MsgID_Printer_PrivateMemberRenamed, logger.Info, nil, logger.Range{},
			"Private class members were printed as \"__private_\" properties and are no longer private")
	}
	code, err := js_printer.Print(program, options.PrinterOptions())
	if err != nil {
		log.AddError(nil, logger.Range{}, err.Error())
		return
	}
	result.Code = code
	return
}

func parseInput(log logger.Log, options *config.Options) (*estree.Node, bool) {
	switch options.Loader {
	case config.LoaderESTree:
		program, err := estree.Decode([]byte(options.Stdin.Contents))
		if err != nil {
			log.AddError(nil, logger.Range{}, fmt.Sprintf("Invalid ESTree JSON: %s", err.Error()))
			return nil, false
		}
		return program, true

	default:
		source := logger.Source{
			KeyPath:    options.Stdin.SourceFile,
			PrettyPath: options.Stdin.SourceFile,
			Contents:   options.Stdin.Contents,
		}
		if source.PrettyPath == "" {
			source.PrettyPath = "<stdin>"
		}
		return js_parser.Parse(log, source)
	}
}

func hasPrivateMembers(program *estree.Node) bool {
	found := false
	walker.SimpleWalk(program, func(node *estree.Node, parent *estree.Node) bool {
		if node.Is("PrivateIdentifier") {
			found = true
		}
		return !found
	})
	return found
}
