// Package hostcli provides colorized console output for the motion
// host's interactive command loop: status lines, error lines, and a
// prompt, grounded on host/cmd/gopper-host/main.go's plain-fmt REPL
// banner/help/error conventions but wired to github.com/fatih/color
// instead of bare fmt.Printf so errors and status stand out the way
// an operator console should.
package hostcli

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	okColor    = color.New(color.FgGreen)
	errColor   = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	infoColor  = color.New(color.FgCyan)
	promptColo = color.New(color.FgWhite, color.Bold)
)

// Banner prints the startup banner.
func Banner(title string) {
	infoColor.Println(title)
	infoColor.Println(repeat('=', len(title)))
}

func repeat(c byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

// OK prints a success line.
func OK(format string, args ...any) {
	okColor.Println(fmt.Sprintf(format, args...))
}

// Error prints an error line.
func Error(format string, args ...any) {
	errColor.Println(fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func Warn(format string, args ...any) {
	warnColor.Println(fmt.Sprintf(format, args...))
}

// Info prints an informational line.
func Info(format string, args ...any) {
	infoColor.Println(fmt.Sprintf(format, args...))
}

// Prompt prints the REPL prompt with no trailing newline.
func Prompt(p string) {
	promptColo.Print(p)
}
