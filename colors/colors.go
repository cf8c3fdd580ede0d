// Package colors wraps text in ANSI color sequences for console output.
// Coloring can be switched off globally, for example when output is not
// a terminal.
package colors

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sync/atomic"

	"golang.org/x/term"
)

// csiPattern matches ANSI CSI escape sequences.
var csiPattern = regexp.MustCompile(`\x1b\[[?>]?[0-9;]*[A-Za-z]`)

var enabled atomic.Bool

func init() {
	enabled.Store(true)
}

// SetEnabled switches coloring on or off.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// Enabled reports whether coloring is on.
func Enabled() bool {
	return enabled.Load()
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Detect enables coloring only when w is a terminal and NO_COLOR is unset.
func Detect(w io.Writer) {
	_, noColor := os.LookupEnv("NO_COLOR")
	SetEnabled(!noColor && IsTerminal(w))
}

// StripANSI removes all ANSI escape sequences from a string.
func StripANSI(in string) string {
	return csiPattern.ReplaceAllString(in, "")
}

// VisualLength returns the visual length of a string (excluding ANSI sequences).
func VisualLength(s string) int {
	stripped := StripANSI(s)
	return len([]rune(stripped))
}

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorBright  = "\033[1m"
	colorDim     = "\033[2m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorRed     = "\033[31m"
	colorWhite   = "\033[37m"
	colorGray    = "\033[90m"
)

func colorize(color, text string) string {
	if !enabled.Load() {
		return text
	}
	return color + text + colorReset
}

// BrightGreen returns text in bright green color.
func BrightGreen(text string) string {
	return colorize(colorBright+colorGreen, text)
}

// BrightYellow returns text in bright yellow color.
func BrightYellow(text string) string {
	return colorize(colorBright+colorYellow, text)
}

// BrightCyan returns text in bright cyan color.
func BrightCyan(text string) string {
	return colorize(colorBright+colorCyan, text)
}

// BrightMagenta returns text in bright magenta color.
func BrightMagenta(text string) string {
	return colorize(colorBright+colorMagenta, text)
}

// BrightRed returns text in bright red color.
func BrightRed(text string) string {
	return colorize(colorBright+colorRed, text)
}

// Dim returns text in dim color.
func Dim(text string) string {
	return colorize(colorDim, text)
}

// White returns text in white color.
func White(text string) string {
	return colorize(colorWhite, text)
}

// Gray returns text in gray color.
func Gray(text string) string {
	return colorize(colorGray, text)
}

// PrintHeader prints a header with bright cyan color.
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "# %s\n", BrightCyan(title))
}

// PrintInfo prints an information line.
func PrintInfo(w io.Writer, key, value string) {
	fmt.Fprintf(w, " %s %s %s\n", colorize(colorCyan, "●"), BrightCyan(key+":"), colorize(colorYellow, value))
}

// PrintSuccess prints a success message.
func PrintSuccess(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", colorize(colorGreen, ">>"), BrightGreen(text))
}

// PrintFail prints a failure with its reason.
func PrintFail(w io.Writer, name, errMsg string) {
	fmt.Fprintf(w, " %s %s\n", colorize(colorRed, "[✗]"), BrightRed(name))
	fmt.Fprintf(w, "    %s %s\n", colorize(colorRed, "→"), colorize(colorRed, errMsg))
}

// PrintWarning prints a warning message.
func PrintWarning(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", colorize(colorYellow, "⚠"), BrightYellow(text))
}
