package main

import (
	"errors"
	"os"

	"github.com/tsukumogami/rootexec/internal/resolve"
)

// Exit codes for different failure sites. Every fatal condition has
// its own code so scripts and CI gates can tell failure modes apart
// without parsing stderr.
const (
	// ExitSuccess indicates successful execution. rootexec run never
	// exits with it: a successful exec replaces the process.
	ExitSuccess = 0

	// ExitGeneral indicates an error with no more specific code
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments
	ExitUsage = 2

	// ExitChrootFailed indicates the root could not be changed
	ExitChrootFailed = 3

	// ExitChdirFailed indicates the working directory could not be
	// moved to the new /
	ExitChdirFailed = 4

	// ExitExecFailed indicates the exec itself failed
	ExitExecFailed = 5

	// ExitCannotOpen indicates a file in the chain could not be opened
	ExitCannotOpen = 6

	// ExitCannotStat indicates a file in the chain could not be stat'ed
	ExitCannotStat = 7

	// ExitNotRegular indicates a chain path is not a regular file
	ExitNotRegular = 8

	// ExitNotExecutable indicates a chain file has no execute bit
	ExitNotExecutable = 9

	// ExitMapFailed indicates a chain file could not be mapped
	ExitMapFailed = 10

	// ExitUnsupportedType indicates a chain file matches no known format
	ExitUnsupportedType = 11

	// ExitBadELF indicates ELF identification bytes this tool cannot handle
	ExitBadELF = 12

	// ExitTruncated indicates ELF header fields beyond the end of a file
	ExitTruncated = 13

	// ExitShebangTooLong indicates an unterminated shebang line
	ExitShebangTooLong = 14

	// ExitNoInterpreter indicates no interpreter could be determined
	ExitNoInterpreter = 15

	// ExitNotAbsolute indicates a relative interpreter path
	ExitNotAbsolute = 16

	// ExitTooDeep indicates the interpreter chain exceeded its bound
	ExitTooDeep = 17
)

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}

// codeFor maps a resolution failure to its exit code.
func codeFor(err error) int {
	var re *resolve.Error
	if !errors.As(err, &re) {
		return ExitGeneral
	}
	switch re.Category {
	case resolve.ErrOpen:
		return ExitCannotOpen
	case resolve.ErrStat:
		return ExitCannotStat
	case resolve.ErrNotRegular:
		return ExitNotRegular
	case resolve.ErrNotExecutable:
		return ExitNotExecutable
	case resolve.ErrMap:
		return ExitMapFailed
	case resolve.ErrUnsupportedType:
		return ExitUnsupportedType
	case resolve.ErrBadELF:
		return ExitBadELF
	case resolve.ErrTruncated:
		return ExitTruncated
	case resolve.ErrShebangTooLong:
		return ExitShebangTooLong
	case resolve.ErrNoInterpreter:
		return ExitNoInterpreter
	case resolve.ErrNotAbsolute:
		return ExitNotAbsolute
	case resolve.ErrTooDeep:
		return ExitTooDeep
	default:
		return ExitGeneral
	}
}
