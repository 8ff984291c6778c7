// Package log provides colored terminal output for the warden CLI.
// Color handling is delegated to fatih/color, which disables itself
// automatically when stdout is not a terminal.
package log

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	infoTag    = color.New(color.FgWhite, color.Bold)
	successTag = color.New(color.FgGreen)
	warningTag = color.New(color.FgYellow, color.Bold)
	errorTag   = color.New(color.FgRed)
	sectionClr = color.New(color.FgCyan)
)

// sectionLine is the box-draw separator printed around section titles.
const sectionLine = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// OsExit is the function called by Fatal to terminate the process.
// It is a package-level variable so tests can replace it without subprocess overhead.
var OsExit = os.Exit

// Info prints a white [INFO] message to stdout.
func Info(msg string) {
	fmt.Printf("%s %s\n", infoTag.Sprint("[INFO]"), msg)
}

// Success prints a green [SUCCESS] message to stdout.
func Success(msg string) {
	fmt.Printf("%s %s\n", successTag.Sprint("[SUCCESS]"), msg)
}

// Warning prints a yellow [WARNING] message to stdout.
func Warning(msg string) {
	fmt.Printf("%s %s\n", warningTag.Sprint("[WARNING]"), msg)
}

// Error prints a red [ERROR] message to stdout.
func Error(msg string) {
	fmt.Printf("%s %s\n", errorTag.Sprint("[ERROR]"), msg)
}

// Fatal prints a red [ERROR] message then exits with status 1.
func Fatal(msg string) {
	Error(msg)
	OsExit(1)
}

// Section prints a cyan box-draw separator with a title.
func Section(title string) {
	fmt.Printf("\n%s\n", sectionClr.Sprint(sectionLine))
	fmt.Printf("%s\n", sectionClr.Sprint(title))
	fmt.Printf("%s\n\n", sectionClr.Sprint(sectionLine))
}
