// Package errmsg renders rootexec failures for operators, pairing
// each failure with its likely cause inside a restricted root and a
// concrete next step.
package errmsg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tsukumogami/rootexec/internal/enter"
	"github.com/tsukumogami/rootexec/internal/resolve"
)

// IsTerminalFunc is the function used to check whether a descriptor is
// a terminal. Overridable in tests.
var IsTerminalFunc = term.IsTerminal

// Fprint writes err to w, prefixed with "Error: ". When w is a
// terminal the message is followed by possible causes and suggestions;
// otherwise a single line is written so the output stays grep- and
// script-friendly.
func Fprint(w io.Writer, err error) {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = IsTerminalFunc(int(f.Fd()))
	}
	fmt.Fprintf(w, "Error: %s\n", Format(err, tty))
}

// Format returns the message for err. With hints enabled, recognized
// failures gain "Possible causes" and "Suggestions" sections.
func Format(err error, hints bool) string {
	if err == nil {
		return ""
	}
	if !hints {
		return err.Error()
	}

	var re *resolve.Error
	if errors.As(err, &re) {
		return formatResolveError(re)
	}
	var ee *enter.ExecError
	if errors.As(err, &ee) {
		return formatExecError(ee)
	}
	var ce *enter.ChrootError
	if errors.As(err, &ce) {
		var sb strings.Builder
		sb.WriteString(ce.Error())
		sb.WriteString("\n\nSuggestions:\n")
		sb.WriteString("  - Changing the filesystem root requires CAP_SYS_CHROOT; run as root\n")
		sb.WriteString(fmt.Sprintf("  - Check that %q exists and is a directory\n", ce.Root))
		return sb.String()
	}
	return err.Error()
}

func formatResolveError(err *resolve.Error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())

	switch err.Category {
	case resolve.ErrOpen:
		sb.WriteString("\n\nPossible causes:\n")
		sb.WriteString("  - The interpreter exists on the host but was never copied into the new root\n")
		sb.WriteString("  - A symlink in the interpreter path points outside the root\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString(fmt.Sprintf("  - Copy %s (and the libraries it needs) into the root\n", err.Path))
		sb.WriteString("  - Run 'rootexec trace --root <root> <executable>' to see the whole chain\n")

	case resolve.ErrNotExecutable:
		sb.WriteString("\n\nSuggestions:\n")
		sb.WriteString(fmt.Sprintf("  - Run 'chmod +x' on %s inside the root\n", err.Path))

	case resolve.ErrNotAbsolute:
		sb.WriteString("\n\nPossible causes:\n")
		sb.WriteString("  - The kernel resolves PT_INTERP and #! interpreters as absolute paths only\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Rebuild or rewrite the file so its interpreter starts with '/'\n")

	case resolve.ErrTooDeep:
		sb.WriteString("\n\nPossible causes:\n")
		sb.WriteString("  - An interpreter names itself, directly or through another file\n")

	case resolve.ErrBadELF, resolve.ErrTruncated:
		sb.WriteString("\n\nPossible causes:\n")
		sb.WriteString("  - The file was truncated while being copied into the root\n")
		sb.WriteString("  - The file was built for a toolchain this tool does not understand\n")

	case resolve.ErrUnsupportedType:
		sb.WriteString("\n\nPossible causes:\n")
		sb.WriteString("  - The file is neither an ELF object nor a '#!' script\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString(fmt.Sprintf("  - Inspect the leading bytes: 'head -c 16 %s | xxd'\n", err.Path))
	}
	return sb.String()
}

func formatExecError(err *enter.ExecError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())

	if err.Diagnosable() {
		sb.WriteString("\n\nPossible causes:\n")
		sb.WriteString("  - An interpreter in the chain is missing inside the new root\n")
		sb.WriteString("  - A directory on the interpreter path denies search permission\n")
	}
	return sb.String()
}
