//go:build windows
// +build windows

package logger

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

const SupportsColorEscapes = true

var setConsoleTextAttribute = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetConsoleTextAttribute")

func GetTerminalInfo(file *os.File) (info TerminalInfo) {
	handle := windows.Handle(file.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return
	}
	info.IsTTY = true
	info.UseColorEscapes = !hasNoColorEnvironmentVariable()

	var csbi windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(handle, &csbi); err == nil {
		info.Width = int(csbi.Size.X) - 1
		info.Height = int(csbi.Size.Y) - 1
	}
	return
}

// Older consoles ignore escape sequences, so they are translated into
// console text attributes as the text is written.
func writeStringWithColor(file *os.File, text string) {
	const (
		blue      = 1
		green     = 2
		red       = 4
		intensity = 8
	)
	handle := windows.Handle(file.Fd())

	table := []struct {
		escape     string
		attributes uint16
	}{
		{TerminalColors.Reset, red | green | blue},
		{TerminalColors.Red, red},
		{TerminalColors.Green, green},
		{TerminalColors.Blue, blue},
		{TerminalColors.Cyan, green | blue},
		{TerminalColors.Magenta, red | blue},
		{TerminalColors.Yellow, red | green},
		{TerminalColors.Dim, red | green | blue},
		{TerminalColors.Bold, red | green | blue | intensity},
		{TerminalColors.Underline, red | green | blue},
	}

	i := 0
	for i < len(text) {
		if text[i] != 033 {
			i++
			continue
		}
		matched := false
		for _, entry := range table {
			if strings.HasPrefix(text[i:], entry.escape) {
				file.WriteString(text[:i])
				text = text[i+len(entry.escape):]
				i = 0
				setConsoleTextAttribute.Call(uintptr(handle), uintptr(entry.attributes))
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	file.WriteString(text)
}
