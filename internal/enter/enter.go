// Package enter replaces the current process with an executable run
// inside a new filesystem root.
//
// Run never returns on success; the process image is gone. Failures
// come back as typed errors so the caller can decide whether the
// interpreter-chain diagnostic applies: a missing file or permission
// error on exec usually means an interpreter inside the new root is
// the real culprit.
package enter

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ChrootError reports a failure to change the filesystem root.
type ChrootError struct {
	Root string
	Err  error
}

func (e *ChrootError) Error() string {
	return fmt.Sprintf("chroot to %q failed: %v", e.Root, e.Err)
}

func (e *ChrootError) Unwrap() error { return e.Err }

// ChdirError reports a failure to move to the new root's /.
type ChdirError struct {
	Err error
}

func (e *ChdirError) Error() string {
	return fmt.Sprintf("chdir to / failed: %v", e.Err)
}

func (e *ChdirError) Unwrap() error { return e.Err }

// ExecError reports an exec failure, keeping the errno so callers can
// tell diagnosable failures from everything else.
type ExecError struct {
	Path  string
	Errno unix.Errno
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec of %q failed: %v", e.Path, e.Errno)
}

func (e *ExecError) Unwrap() error { return e.Errno }

// Diagnosable reports whether resolving the interpreter chain can
// explain this failure: the kernel said a file was missing or not
// permitted, and that file may be anywhere in the chain.
func (e *ExecError) Diagnosable() bool {
	return e.Errno == unix.ENOENT || e.Errno == unix.EACCES
}

// Run chroots into root, changes directory to the new /, and replaces
// the current process with exe and args. The target becomes its own
// argv[0]. Run returns only on failure.
func Run(root, exe string, args []string) error {
	if err := unix.Chroot(root); err != nil {
		return &ChrootError{Root: root, Err: err}
	}
	if err := unix.Chdir("/"); err != nil {
		return &ChdirError{Err: err}
	}

	argv := append([]string{exe}, args...)
	err := unix.Exec(exe, argv, os.Environ())
	// Exec only returns on failure.
	if errno, ok := err.(unix.Errno); ok {
		return &ExecError{Path: exe, Errno: errno}
	}
	return fmt.Errorf("exec of %q failed: %w", exe, err)
}
