//go:build !darwin && !freebsd && !linux && !netbsd && !openbsd && !windows
// +build !darwin,!freebsd,!linux,!netbsd,!openbsd,!windows

package logger

import "os"

const SupportsColorEscapes = false

func GetTerminalInfo(*os.File) TerminalInfo {
	return TerminalInfo{}
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
