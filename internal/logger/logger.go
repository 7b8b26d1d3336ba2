package logger

// Diagnostics look like clang's: a "file:line:column: kind: text" header, the
// offending source line, and a marker underneath. The parser reports syntax
// errors here and the rewrite reports policy warnings here.

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg

	// Per-ID log levels set by "--log-override". A nil map keeps the kind
	// chosen by the code that reports the message.
	Overrides map[MsgID]LogLevel
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelVerbose
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Info
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	}
	return "unknown"
}

type Msg struct {
	ID       MsgID
	Kind     MsgKind
	Text     string
	Location *MsgLocation
}

type MsgLocation struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

type Loc struct {
	// 0-based byte offset from the start of the file
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

type Source struct {
	// Used to read and watch the file. Never shown to the user.
	KeyPath string

	// Used in diagnostics. "<stdin>" for piped input.
	PrettyPath string

	Contents string
}

// LocForLineColumn turns a 1-based line and 0-based column into a byte
// offset. Out-of-range values clamp to the end of the contents.
func (s *Source) LocForLineColumn(line int, column int) Loc {
	offset := 0
	for line > 1 && offset < len(s.Contents) {
		i := strings.IndexByte(s.Contents[offset:], '\n')
		if i == -1 {
			offset = len(s.Contents)
			break
		}
		offset += i + 1
		line--
	}
	offset += column
	if offset > len(s.Contents) {
		offset = len(s.Contents)
	}
	return Loc{Start: int32(offset)}
}

type sortableMsgs []Msg

func (a sortableMsgs) Len() int          { return len(a) }
func (a sortableMsgs) Swap(i int, j int) { a[i], a[j] = a[j], a[i] }

func (a sortableMsgs) Less(i int, j int) bool {
	li, lj := a[i].Location, a[j].Location
	if li == nil || lj == nil {
		return li == nil && lj != nil
	}
	if li.File != lj.File {
		return li.File < lj.File
	}
	if li.Line != lj.Line {
		return li.Line < lj.Line
	}
	if li.Column != lj.Column {
		return li.Column < lj.Column
	}
	if a[i].Kind != a[j].Kind {
		return a[i].Kind < a[j].Kind
	}
	return a[i].Text < a[j].Text
}

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
	Height          int
}

type Colors struct {
	Reset     string
	Bold      string
	Dim       string
	Underline string

	Red     string
	Green   string
	Blue    string
	Cyan    string
	Magenta string
	Yellow  string
}

var TerminalColors = Colors{
	Reset:     "\033[0m",
	Bold:      "\033[1m",
	Dim:       "\033[37m",
	Underline: "\033[4m",

	Red:     "\033[31m",
	Green:   "\033[32m",
	Blue:    "\033[34m",
	Cyan:    "\033[36m",
	Magenta: "\033[35m",
	Yellow:  "\033[33m",
}

type UseColor uint8

const (
	ColorIfTerminal UseColor = iota
	ColorNever
	ColorAlways
)

type OutputOptions struct {
	IncludeSource bool
	ErrorLimit    int
	Color         UseColor
	LogLevel      LogLevel
	Overrides     map[MsgID]LogLevel
}

func hasNoColorEnvironmentVariable() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func (options OutputOptions) shouldPrint(kind MsgKind) bool {
	switch kind {
	case Error:
		return options.LogLevel <= LevelError
	case Warning:
		return options.LogLevel <= LevelWarning
	default:
		return options.LogLevel <= LevelInfo
	}
}

func NewStderrLog(options OutputOptions) Log {
	var mutex sync.Mutex
	var msgs sortableMsgs
	terminalInfo := GetTerminalInfo(os.Stderr)
	errors := 0
	warnings := 0
	errorLimitWasHit := false

	switch options.Color {
	case ColorNever:
		terminalInfo.UseColorEscapes = false
	case ColorAlways:
		terminalInfo.UseColorEscapes = SupportsColorEscapes
	}

	return Log{
		Overrides: options.Overrides,
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)

			if errorLimitWasHit {
				return
			}
			switch msg.Kind {
			case Error:
				errors++
			case Warning:
				warnings++
			}
			if options.shouldPrint(msg.Kind) {
				writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
			}

			if options.ErrorLimit != 0 && errors >= options.ErrorLimit {
				errorLimitWasHit = true
				if options.LogLevel <= LevelError {
					writeStringWithColor(os.Stderr, fmt.Sprintf(
						"%s reached (disable error limit with --error-limit=0)\n", errorAndWarningSummary(errors, warnings)))
				}
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return errors > 0
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			if !errorLimitWasHit && options.LogLevel <= LevelInfo && (warnings != 0 || errors != 0) {
				writeStringWithColor(os.Stderr, errorAndWarningSummary(errors, warnings)+"\n")
			}
			sort.Stable(msgs)
			return msgs
		},
	}
}

// NewDeferLog collects messages for the caller instead of printing them.
func NewDeferLog(overrides map[MsgID]LogLevel) Log {
	var msgs sortableMsgs
	var mutex sync.Mutex
	var hasErrors bool

	return Log{
		Overrides: overrides,
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

func PrintErrorToStderr(osArgs []string, text string) {
	PrintMessageToStderr(osArgs, Msg{Kind: Error, Text: text})
}

// PrintMessageToStderr honors "--color" and "--log-level" even when the rest
// of the command line failed to parse.
func PrintMessageToStderr(osArgs []string, msg Msg) {
	options := OutputOptions{IncludeSource: true}
	for _, arg := range osArgs {
		switch arg {
		case "--color=false":
			options.Color = ColorNever
		case "--color=true":
			options.Color = ColorAlways
		case "--log-level=info":
			options.LogLevel = LevelInfo
		case "--log-level=warning":
			options.LogLevel = LevelWarning
		case "--log-level=error":
			options.LogLevel = LevelError
		case "--log-level=silent":
			options.LogLevel = LevelSilent
		}
	}
	log := NewStderrLog(options)
	log.AddMsg(msg)
	log.Done()
}

// PrintTextWithColor writes status text such as the "[watch]" lines. The
// callback gets empty colors when color is off.
func PrintTextWithColor(file *os.File, useColor UseColor, callback func(Colors) string) {
	var useColorEscapes bool
	switch useColor {
	case ColorNever:
		useColorEscapes = false
	case ColorAlways:
		useColorEscapes = SupportsColorEscapes
	case ColorIfTerminal:
		useColorEscapes = GetTerminalInfo(file).UseColorEscapes
	}

	var colors Colors
	if useColorEscapes {
		colors = TerminalColors
	}
	writeStringWithColor(file, callback(colors))
}

func plural(noun string, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, noun)
	}
	return fmt.Sprintf("%d %ss", count, noun)
}

func errorAndWarningSummary(errors int, warnings int) string {
	switch {
	case errors == 0:
		return plural("warning", warnings)
	case warnings == 0:
		return plural("error", errors)
	default:
		return fmt.Sprintf("%s and %s", plural("warning", warnings), plural("error", errors))
	}
}

func (msg Msg) String(options OutputOptions, terminalInfo TerminalInfo) string {
	colors := Colors{}
	if terminalInfo.UseColorEscapes {
		colors = TerminalColors
	}
	kindColor := colors.Red
	switch msg.Kind {
	case Warning:
		kindColor = colors.Magenta
	case Info:
		kindColor = colors.Cyan
	}

	sb := strings.Builder{}
	sb.WriteString(colors.Bold)
	if msg.Location != nil {
		if options.IncludeSource {
			fmt.Fprintf(&sb, "%s:%d:%d: ", msg.Location.File, msg.Location.Line, msg.Location.Column)
		} else {
			fmt.Fprintf(&sb, "%s: ", msg.Location.File)
		}
	}
	fmt.Fprintf(&sb, "%s%s:%s%s %s%s\n", kindColor, msg.Kind.String(), colors.Reset, colors.Bold, msg.Text, colors.Reset)

	if msg.Location != nil && options.IncludeSource {
		d := detailStruct(msg, terminalInfo)
		fmt.Fprintf(&sb, "%s%s%s%s%s\n%s%s%s%s\n",
			d.SourceBefore, colors.Green, d.SourceMarked, colors.Reset, d.SourceAfter,
			colors.Green, d.Indent, d.Marker, colors.Reset)
	}
	return sb.String()
}

type MsgDetail struct {
	// Source == SourceBefore + SourceMarked + SourceAfter
	Source       string
	SourceBefore string
	SourceMarked string
	SourceAfter  string

	Indent string
	Marker string
}

func computeLineAndColumn(contents string, offset int) (line int, column int, lineStart int, lineEnd int) {
	if offset > len(contents) {
		offset = len(contents)
	}
	var prev rune
	for i, c := range contents[:offset] {
		switch c {
		case '\n':
			lineStart = i + 1
			if prev != '\r' {
				line++
			}
		case '\r':
			lineStart = i + 1
			line++
		case '\u2028', '\u2029':
			lineStart = i + 3
			line++
		}
		prev = c
	}
	lineEnd = len(contents)
	if i := strings.IndexAny(contents[offset:], "\r\n\u2028\u2029"); i != -1 {
		lineEnd = offset + i
	}
	column = offset - lineStart
	return
}

func LocationOrNil(source *Source, r Range) *MsgLocation {
	if source == nil {
		return nil
	}
	line, column, lineStart, lineEnd := computeLineAndColumn(source.Contents, int(r.Loc.Start))
	return &MsgLocation{
		File:     source.PrettyPath,
		Line:     line + 1,
		Column:   column,
		Length:   int(r.Len),
		LineText: source.Contents[lineStart:lineEnd],
	}
}

func detailStruct(msg Msg, terminalInfo TerminalInfo) MsgDetail {
	loc := *msg.Location
	lineText := renderTabStops(loc.LineText, 2)
	if loc.Column < 0 {
		loc.Column = 0
	}
	if loc.Column > len(loc.LineText) {
		loc.Column = len(loc.LineText)
	}
	if loc.Length < 0 || loc.Length > len(loc.LineText)-loc.Column {
		loc.Length = len(loc.LineText) - loc.Column
	}
	markerStart := len(renderTabStops(loc.LineText[:loc.Column], 2))
	markerEnd := len(renderTabStops(loc.LineText[:loc.Column+loc.Length], 2))

	// Keep the marker visible on narrow terminals by dropping text from the
	// front of the line
	width := terminalInfo.Width
	if width < 1 {
		width = 80
	}
	if len(lineText) > width && markerStart > width/2 {
		cut := markerStart - width/2
		lineText = "..." + lineText[cut+3:]
		markerStart -= cut
		markerEnd -= cut
	}
	if len(lineText) > width {
		lineText = lineText[:width-3] + "..."
		if markerEnd > width-3 {
			markerEnd = width - 3
		}
		if markerStart > markerEnd {
			markerStart = markerEnd
		}
	}

	marker := "^"
	if markerEnd-markerStart > 1 {
		marker = strings.Repeat("~", markerEnd-markerStart)
	}
	return MsgDetail{
		Source:       lineText,
		SourceBefore: lineText[:markerStart],
		SourceMarked: lineText[markerStart:markerEnd],
		SourceAfter:  lineText[markerEnd:],
		Indent:       strings.Repeat(" ", markerStart),
		Marker:       marker,
	}
}

func renderTabStops(withTabs string, spacesPerTab int) string {
	if !strings.ContainsRune(withTabs, '\t') {
		return withTabs
	}
	sb := strings.Builder{}
	column := 0
	for _, c := range withTabs {
		if c == '\t' {
			for spaces := spacesPerTab - column%spacesPerTab; spaces > 0; spaces-- {
				sb.WriteByte(' ')
				column++
			}
			continue
		}
		sb.WriteRune(c)
		column++
	}
	return sb.String()
}

func (log Log) AddError(source *Source, r Range, text string) {
	log.AddMsg(Msg{Kind: Error, Text: text, Location: LocationOrNil(source, r)})
}

// AddID reports a message that "--log-override" can retarget. Errors are
// reported through AddError instead since they cannot be downgraded.
func (log Log) AddID(id MsgID, kind MsgKind, source *Source, r Range, text string) {
	if level, ok := log.Overrides[id]; ok {
		switch level {
		case LevelSilent:
			return
		case LevelError:
			kind = Error
		case LevelWarning:
			kind = Warning
		case LevelInfo, LevelVerbose:
			kind = Info
		}
	}
	log.AddMsg(Msg{ID: id, Kind: kind, Text: text, Location: LocationOrNil(source, r)})
}
