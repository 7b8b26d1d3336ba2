package api

import (
	"fmt"
	"strings"

	"github.com/esm2cjs/esm2cjs/internal/config"
	"github.com/esm2cjs/esm2cjs/internal/esm_to_cjs"
	"github.com/esm2cjs/esm2cjs/internal/js_printer"
	"github.com/esm2cjs/esm2cjs/internal/logger"
)

func validateFormat(value Format) config.Format {
	switch value {
	case FormatDefault, FormatCommonJS:
		return config.FormatCommonJS
	case FormatESModule:
		return config.FormatPreserve
	default:
		panic("Invalid format")
	}
}

func validateLoader(value Loader) config.Loader {
	switch value {
	case LoaderDefault, LoaderJS:
		return config.LoaderJS
	case LoaderESTree:
		return config.LoaderESTree
	default:
		panic("Invalid loader")
	}
}

func validateNonLiteralSpecifiers(value NonLiteralSpecifiers) esm_to_cjs.NonLiteralPolicy {
	switch value {
	case NonLiteralPassThrough:
		return esm_to_cjs.NonLiteralPassThrough
	case NonLiteralError:
		return esm_to_cjs.NonLiteralError
	default:
		panic("Invalid non-literal specifier policy")
	}
}

func validatePrivateMembers(value PrivateMembers) js_printer.PrivateMemberMode {
	switch value {
	case PrivateMembersPreserve:
		return js_printer.PrivateMembersPreserve
	case PrivateMembersRename:
		return js_printer.PrivateMembersRename
	default:
		panic("Invalid private member mode")
	}
}

func validateColor(value StderrColor) logger.UseColor {
	switch value {
	case ColorIfTerminal:
		return logger.ColorIfTerminal
	case ColorNever:
		return logger.ColorNever
	case ColorAlways:
		return logger.ColorAlways
	default:
		panic("Invalid color")
	}
}

func validateLogLevel(value LogLevel) logger.LogLevel {
	switch value {
	case LogLevelVerbose:
		return logger.LevelVerbose
	case LogLevelInfo:
		return logger.LevelInfo
	case LogLevelWarning:
		return logger.LevelWarning
	case LogLevelError:
		return logger.LevelError
	case LogLevelSilent:
		return logger.LevelSilent
	default:
		panic("Invalid log level")
	}
}

// validateLogOverrides runs before any log exists, so problems are returned
// as messages instead.
func validateLogOverrides(value map[string]LogLevel) (map[logger.MsgID]logger.LogLevel, []logger.Msg) {
	if value == nil {
		return nil, nil
	}
	overrides := make(map[logger.MsgID]logger.LogLevel)
	var problems []logger.Msg
	for id, level := range value {
		ids := make(map[logger.MsgID]logger.LogLevel)
		logger.StringToMsgIDs(id, validateLogLevel(level), ids)
		if len(ids) == 0 {
			problems = append(problems, logger.Msg{
				Kind: logger.Warning,
				Text: fmt.Sprintf("Unknown log override name %q", id),
			})
		}
		for msgID, msgLevel := range ids {
			overrides[msgID] = msgLevel
		}
	}
	return overrides, problems
}

func validateIndent(log logger.Log, value string) string {
	if strings.Trim(value, " \t") != "" {
		log.AddError(nil, logger.Range{}, fmt.Sprintf("Invalid indent %q: only spaces and tabs are allowed", value))
		return ""
	}
	return value
}

func validateLineEnd(log logger.Log, value string) string {
	switch value {
	case "", "\n", "\r\n":
		return value
	}
	log.AddError(nil, logger.Range{}, fmt.Sprintf("Invalid line end %q: must be \"\\n\" or \"\\r\\n\"", value))
	return ""
}

func validateTransformOptions(log logger.Log, options TransformOptions) config.Options {
	return config.Options{
		OutputFormat:         validateFormat(options.Format),
		Loader:               validateLoader(options.Loader),
		Indent:               validateIndent(log, options.Indent),
		LineEnd:              validateLineEnd(log, options.LineEnd),
		Comments:             options.Comments,
		PrivateMembers:       validatePrivateMembers(options.PrivateMembers),
		NonLiteralSpecifiers: validateNonLiteralSpecifiers(options.NonLiteralSpecifiers),
		CollectDependencies:  true,
		Output:               validateOutput(options.OutputAST),
		Stdin: &config.StdinInfo{
			SourceFile: options.Sourcefile,
		},
	}
}

func validateOutput(outputAST bool) config.Output {
	if outputAST {
		return config.OutputESTree
	}
	return config.OutputCode
}
