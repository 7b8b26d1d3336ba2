// Package api is the public entry point for rewriting JavaScript modules.
// Transform takes source text and TransformAST takes an ESTree JSON
// document. Both return the printed result together with any messages.
package api

type Format uint8

const (
	// Same as FormatCommonJS
	FormatDefault Format = iota
	FormatCommonJS

	// Parse and print without rewriting "import" and "export"
	FormatESModule
)

type Loader uint8

const (
	LoaderDefault Loader = iota
	LoaderJS
	LoaderESTree
)

type NonLiteralSpecifiers uint8

const (
	// Leave the statement alone and log a warning
	NonLiteralPassThrough NonLiteralSpecifiers = iota

	// Fail the whole transform
	NonLiteralError
)

type PrivateMembers uint8

const (
	PrivateMembersPreserve PrivateMembers = iota

	// Print "#x" as "__private_x"
	PrivateMembersRename
)

type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

type Message struct {
	// Empty for errors. Otherwise this is the name "LogOverride" accepts.
	ID string

	Text     string
	Location *Location
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelVerbose
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

////////////////////////////////////////////////////////////////////////////////
// Transform API

type TransformOptions struct {
	Color       StderrColor
	ErrorLimit  int
	LogLevel    LogLevel
	LogOverride map[string]LogLevel

	Format     Format
	Loader     Loader
	Sourcefile string

	Indent         string
	LineEnd        string
	Comments       bool
	PrivateMembers PrivateMembers

	NonLiteralSpecifiers NonLiteralSpecifiers

	// Return the final tree as ESTree JSON in "AST" instead of printing it
	OutputAST bool
}

type TransformResult struct {
	Errors   []Message
	Warnings []Message

	Code string
	AST  []byte

	// The string arguments of every "require" call in the output
	Dependencies []string
}

func Transform(input string, options TransformOptions) TransformResult {
	return transformImpl(input, options)
}

// TransformAST is Transform for an ESTree JSON document.
func TransformAST(tree []byte, options TransformOptions) TransformResult {
	options.Loader = LoaderESTree
	return transformImpl(string(tree), options)
}

////////////////////////////////////////////////////////////////////////////////
// Watch API

type WatchOptions struct {
	Color    StderrColor
	LogLevel LogLevel

	// Files to watch. Their directories are watched too, so a file that is
	// replaced by an editor is still picked up.
	Paths []string

	// Called from a background goroutine after a watched file changed
	OnChange func(path string)
}

type Watcher interface {
	Stop()
}

func Watch(options WatchOptions) (Watcher, error) {
	return watchImpl(options)
}
