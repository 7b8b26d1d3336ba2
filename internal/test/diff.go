package test

import (
	"strings"

	"github.com/esm2cjs/esm2cjs/internal/logger"
)

// Diff renders a line diff of two texts, colored for terminals when asked.
func Diff(old string, new string, color bool) string {
	d := differ{color: color}
	d.diff(strings.Split(old, "\n"), strings.Split(new, "\n"))
	return strings.Join(d.lines, "\n")
}

type differ struct {
	lines []string
	color bool
}

func (d *differ) emit(prefix string, tint string, lines []string) {
	for _, line := range lines {
		if d.color {
			d.lines = append(d.lines, tint+prefix+line+logger.TerminalColors.Reset)
		} else {
			d.lines = append(d.lines, prefix+line)
		}
	}
}

// Splits both sides around their longest common run of lines and recurses
// into the halves on either side.
func (d *differ) diff(old []string, new []string) {
	o, n, common := longestCommonRun(old, new)
	if common == 0 {
		d.emit("-", logger.TerminalColors.Red, old)
		d.emit("+", logger.TerminalColors.Green, new)
		return
	}
	d.diff(old[:o], new[:n])
	d.emit(" ", logger.TerminalColors.Dim, old[o:o+common])
	d.diff(old[o+common:], new[n+common:])
}

func longestCommonRun(a []string, b []string) (int, int, int) {
	prev := make([]int, len(b)+1)
	next := make([]int, len(b)+1)
	best, endA, endB := 0, 0, 0

	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				next[j+1] = 0
				continue
			}
			next[j+1] = prev[j] + 1
			if next[j+1] > best {
				best, endA, endB = next[j+1], i+1, j+1
			}
		}
		prev, next = next, prev
	}

	return endA - best, endB - best, best
}
