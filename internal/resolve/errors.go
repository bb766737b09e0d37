package resolve

import "fmt"

// Category classifies resolution failures. Every failure is terminal;
// the category drives exit-code mapping and operator-facing hints.
type Category int

const (
	// ErrOpen indicates the file could not be opened.
	ErrOpen Category = iota

	// ErrStat indicates the file could not be stat'ed.
	ErrStat

	// ErrNotRegular indicates the path is not a regular file.
	ErrNotRegular

	// ErrNotExecutable indicates no execute permission bit is set.
	ErrNotExecutable

	// ErrMap indicates the file could not be memory-mapped.
	ErrMap

	// ErrUnsupportedType indicates the leading bytes match no format
	// this tool understands.
	ErrUnsupportedType

	// ErrBadELF indicates ELF identification bytes (version, class or
	// byte order) no accessor can be chosen for.
	ErrBadELF

	// ErrTruncated indicates a header field lies beyond the end of
	// the file.
	ErrTruncated

	// ErrShebangTooLong indicates no newline terminates the shebang
	// line within the scan window.
	ErrShebangTooLong

	// ErrNoInterpreter indicates no interpreter could be determined
	// for a file that needs one.
	ErrNoInterpreter

	// ErrNotAbsolute indicates an extracted interpreter path does not
	// start with '/'.
	ErrNotAbsolute

	// ErrTooDeep indicates the interpreter chain exceeded the depth
	// bound.
	ErrTooDeep
)

// String returns a short name for the category.
func (c Category) String() string {
	switch c {
	case ErrOpen:
		return "cannot open"
	case ErrStat:
		return "cannot stat"
	case ErrNotRegular:
		return "not a regular file"
	case ErrNotExecutable:
		return "not executable"
	case ErrMap:
		return "mapping failed"
	case ErrUnsupportedType:
		return "unsupported file type"
	case ErrBadELF:
		return "unsupported ELF format"
	case ErrTruncated:
		return "truncated object"
	case ErrShebangTooLong:
		return "shebang line too long"
	case ErrNoInterpreter:
		return "no interpreter"
	case ErrNotAbsolute:
		return "interpreter path not absolute"
	case ErrTooDeep:
		return "excessive interpreter recursion"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// Error is a terminal resolution failure, naming the file in the chain
// it refers to.
type Error struct {
	Category Category
	Path     string
	Message  string
	Err      error // underlying error, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %q: %v", e.Category, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %q", e.Category, e.Path)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// errf builds an Error with a formatted message.
func errf(cat Category, path string, err error, format string, args ...any) *Error {
	return &Error{
		Category: cat,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Err:      err,
	}
}
