package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/esm2cjs/esm2cjs/internal/exitcode"
	"github.com/esm2cjs/esm2cjs/internal/helpers"
	"github.com/esm2cjs/esm2cjs/pkg/api"
)

// Options is everything the command line controls. The transform options
// are passed through to the api package unchanged.
type Options struct {
	Transform api.TransformOptions

	InputFile string
	Outfile   string

	// Print the "require" arguments as a JSON array instead of the code
	PrintDependencies bool

	Watch bool
}

func newOptions() Options {
	return Options{
		Transform: api.TransformOptions{
			// Defaults appropriate for the CLI
			ErrorLimit: 10,
			LogLevel:   api.LogLevelInfo,
		},
	}
}

var knownFlags = []string{
	"--format=",
	"--indent=",
	"--line-end=",
	"--comments",
	"--deps",
	"--ast",
	"--ast-input",
	"--non-literal=",
	"--private-members=",
	"--log-level=",
	"--log-override:",
	"--error-limit=",
	"--color=",
	"--outfile=",
	"--sourcefile=",
	"--watch",
}

var flagTypos = helpers.MakeTypoDetector(flagNames())

func flagNames() []string {
	names := make([]string, 0, len(knownFlags))
	for _, flag := range knownFlags {
		names = append(names, strings.TrimRight(flag, "=:"))
	}
	return names
}

func badFlag(format string, args ...interface{}) error {
	return exitcode.Set(fmt.Errorf(format, args...), exitcode.BadFlags)
}

func parseLogLevel(value string) (api.LogLevel, error) {
	switch value {
	case "verbose":
		return api.LogLevelVerbose, nil
	case "info":
		return api.LogLevelInfo, nil
	case "warning":
		return api.LogLevelWarning, nil
	case "error":
		return api.LogLevelError, nil
	case "silent":
		return api.LogLevelSilent, nil
	default:
		return 0, badFlag("Invalid log level: %q (valid: verbose, info, warning, error, silent)", value)
	}
}

func parseOptionsImpl(osArgs []string, options *Options) error {
	for _, arg := range osArgs {
		switch {
		case strings.HasPrefix(arg, "--format="):
			value := arg[len("--format="):]
			switch value {
			case "cjs":
				options.Transform.Format = api.FormatCommonJS
			case "esm":
				options.Transform.Format = api.FormatESModule
			default:
				return badFlag("Invalid format: %q (valid: cjs, esm)", value)
			}

		case strings.HasPrefix(arg, "--indent="):
			value := arg[len("--indent="):]
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				options.Transform.Indent = strings.Repeat(" ", n)
			} else if value == "tab" {
				options.Transform.Indent = "\t"
			} else {
				return badFlag("Invalid indent: %q (use a number of spaces or \"tab\")", value)
			}

		case strings.HasPrefix(arg, "--line-end="):
			value := arg[len("--line-end="):]
			switch value {
			case "lf":
				options.Transform.LineEnd = "\n"
			case "crlf":
				options.Transform.LineEnd = "\r\n"
			default:
				return badFlag("Invalid line end: %q (valid: lf, crlf)", value)
			}

		case arg == "--comments":
			options.Transform.Comments = true

		case arg == "--deps":
			options.PrintDependencies = true

		case arg == "--ast":
			options.Transform.OutputAST = true

		case arg == "--ast-input":
			options.Transform.Loader = api.LoaderESTree

		case strings.HasPrefix(arg, "--non-literal="):
			value := arg[len("--non-literal="):]
			switch value {
			case "pass":
				options.Transform.NonLiteralSpecifiers = api.NonLiteralPassThrough
			case "error":
				options.Transform.NonLiteralSpecifiers = api.NonLiteralError
			default:
				return badFlag("Invalid non-literal policy: %q (valid: pass, error)", value)
			}

		case strings.HasPrefix(arg, "--private-members="):
			value := arg[len("--private-members="):]
			switch value {
			case "preserve":
				options.Transform.PrivateMembers = api.PrivateMembersPreserve
			case "rename":
				options.Transform.PrivateMembers = api.PrivateMembersRename
			default:
				return badFlag("Invalid private member mode: %q (valid: preserve, rename)", value)
			}

		case strings.HasPrefix(arg, "--log-level="):
			level, err := parseLogLevel(arg[len("--log-level="):])
			if err != nil {
				return err
			}
			options.Transform.LogLevel = level

		case strings.HasPrefix(arg, "--log-override:"):
			value := arg[len("--log-override:"):]
			equals := strings.IndexByte(value, '=')
			if equals == -1 {
				return badFlag("Missing \"=\": %q", value)
			}
			level, err := parseLogLevel(value[equals+1:])
			if err != nil {
				return err
			}
			if options.Transform.LogOverride == nil {
				options.Transform.LogOverride = make(map[string]api.LogLevel)
			}
			options.Transform.LogOverride[value[:equals]] = level

		case strings.HasPrefix(arg, "--error-limit="):
			value := arg[len("--error-limit="):]
			limit, err := strconv.Atoi(value)
			if err != nil || limit < 0 {
				return badFlag("Invalid error limit: %q", value)
			}
			options.Transform.ErrorLimit = limit

		case strings.HasPrefix(arg, "--color="):
			value := arg[len("--color="):]
			switch value {
			case "true":
				options.Transform.Color = api.ColorAlways
			case "false":
				options.Transform.Color = api.ColorNever
			default:
				return badFlag("Invalid color: %q (valid: true, false)", value)
			}

		case strings.HasPrefix(arg, "--outfile="):
			options.Outfile = arg[len("--outfile="):]

		case strings.HasPrefix(arg, "--sourcefile="):
			options.Transform.Sourcefile = arg[len("--sourcefile="):]

		case arg == "--watch":
			options.Watch = true

		case strings.HasPrefix(arg, "'--"):
			return badFlag("Unexpected single quote character before flag: %s", arg)

		case !strings.HasPrefix(arg, "-"):
			if options.InputFile != "" {
				return badFlag("Only one input file is supported, got %q and %q", options.InputFile, arg)
			}
			options.InputFile = arg

		default:
			name := arg
			if i := strings.IndexAny(arg, "=:"); i != -1 {
				name = arg[:i]
			}
			if corrected, ok := flagTypos.MaybeCorrectTypo(name); ok {
				return badFlag("Invalid flag: %q (did you mean %q?)", arg, corrected)
			}
			return badFlag("Invalid flag: %q", arg)
		}
	}

	if options.Watch && options.InputFile == "" {
		return badFlag("Cannot use \"--watch\" without an input file")
	}
	if options.Transform.Sourcefile == "" {
		options.Transform.Sourcefile = options.InputFile
	}
	return nil
}
