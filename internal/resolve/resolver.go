// Package resolve walks the chain of interpreters the kernel would
// invoke to run an executable: PT_INTERP entries for ELF objects and
// "#!" lines for scripts, followed until the chain terminates or
// breaks.
//
// The walk exists to explain failed execs inside a restricted root,
// where the usual cause is a dynamic linker or script interpreter that
// is missing or unusable. Resolution is deliberately silent on the
// path to a failure; the returned error names the exact file at fault.
package resolve

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsukumogami/rootexec/internal/log"
	"github.com/tsukumogami/rootexec/internal/mmapfile"
	"github.com/tsukumogami/rootexec/internal/sniff"
)

// DefaultMaxDepth bounds the interpreter chain. Ten hops is far beyond
// any legitimate nesting and catches cyclic chains quickly.
const DefaultMaxDepth = 10

// pathMax bounds the shebang line scan window, matching Linux
// PATH_MAX.
const pathMax = 4096

// Step records one file visited during resolution.
type Step struct {
	// Path is the file's path in chain coordinates, i.e. as the
	// kernel inside the root would see it.
	Path string `json:"path"`

	// Kind is the detected format of the file.
	Kind sniff.Kind `json:"kind"`

	// Interpreter is the next-stage interpreter extracted from this
	// file. Empty when the chain terminates here.
	Interpreter string `json:"interpreter,omitempty"`
}

// Chain is the sequence of files visited, the original executable
// first. When Resolve returns an error the chain still holds every
// step taken, including the one the error refers to.
type Chain []Step

// Resolver walks interpreter chains. The zero value resolves against
// the real filesystem root with the default depth bound.
type Resolver struct {
	// MaxDepth bounds the number of interpreter hops. Zero means
	// DefaultMaxDepth.
	MaxDepth int

	// Root, when non-empty, is a directory every chain path is
	// resolved beneath. This lets an operator inspect a chroot's
	// interpreter chain from outside it, without privileges.
	Root string

	// Logger receives step traces at debug level. Nil means the
	// process default.
	Logger log.Logger
}

// Resolve walks the interpreter chain starting at path. A successful
// walk ends at an ELF object with no program-header table; everything
// else either follows another interpreter or fails with an *Error
// naming the file at fault.
func (r *Resolver) Resolve(path string) (Chain, error) {
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	var chain Chain
	for depth := 0; ; depth++ {
		step, err := r.resolveOne(path)
		chain = append(chain, step)
		if err != nil {
			return chain, err
		}
		logger.Debug("resolved step",
			"path", step.Path,
			"kind", step.Kind.String(),
			"interpreter", step.Interpreter,
			"depth", depth,
		)
		if step.Interpreter == "" {
			return chain, nil
		}
		if depth+1 > maxDepth {
			return chain, errf(ErrTooDeep, step.Interpreter, nil,
				"excessive interpreter recursion following %q, giving up", step.Interpreter)
		}
		path = step.Interpreter
	}
}

// resolveOne examines a single file: map, classify, extract, validate.
// The mapping is released before returning on every path.
func (r *Resolver) resolveOne(path string) (Step, error) {
	step := Step{Path: path}

	real := path
	if r.Root != "" {
		real = filepath.Join(r.Root, path)
	}

	f, err := os.Open(real)
	if err != nil {
		return step, errf(ErrOpen, path, err, "unable to open %q: %v", path, sysErr(err))
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return step, errf(ErrStat, path, err, "cannot stat %q: %v", path, sysErr(err))
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return step, errf(ErrNotRegular, path, nil, "%q is not a regular file", path)
	}
	if st.Mode().Perm()&0o111 == 0 {
		_ = f.Close()
		return step, errf(ErrNotExecutable, path, nil, "%q is not executable", path)
	}

	m, err := mmapfile.Map(f, st.Size())
	if err != nil {
		_ = f.Close()
		return step, errf(ErrMap, path, err, "mmap of %q failed: %v", path, sysErr(err))
	}
	defer func() { _ = m.Close() }()

	buf := m.Data()
	cls, err := sniff.Classify(buf)
	if err != nil {
		cat := ErrTruncated
		var fe *sniff.FormatError
		if errors.As(err, &fe) {
			cat = ErrBadELF
		}
		return step, errf(cat, path, err, "%v in %q", err, path)
	}
	step.Kind = cls.Kind

	var interp string
	switch cls.Kind {
	case sniff.Shebang:
		interp, err = shebangInterpreter(buf, path)
		if err != nil {
			return step, err
		}
	case sniff.ELF:
		var hasTable bool
		interp, hasTable, err = scanProgramHeaders(buf, cls)
		if err != nil {
			return step, errf(ErrTruncated, path, err, "malformed ELF %q: %v", path, err)
		}
		if !hasTable {
			// No program-header table: nothing to interpret, the
			// chain ends here.
			return step, nil
		}
	default:
		return step, errf(ErrUnsupportedType, path, nil, "unsupported file type: %q", path)
	}

	if interp == "" {
		return step, errf(ErrNoInterpreter, path, nil, "unable to determine interpreter for %q", path)
	}
	if !strings.HasPrefix(interp, "/") {
		return step, errf(ErrNotAbsolute, interp, nil,
			"interpreter path must be absolute: %q", interp)
	}
	step.Interpreter = interp
	return step, nil
}

// shebangInterpreter extracts the interpreter from a "#!" line. The
// whole remainder of the line is taken as one path, with trailing
// carriage returns and whitespace trimmed; no argument splitting is
// attempted. A line terminated by end-of-file instead of a newline is
// not supported.
func shebangInterpreter(buf []byte, path string) (string, error) {
	window := len(buf) - 2
	if window > pathMax {
		window = pathMax
	}
	nl := bytes.IndexByte(buf[2:2+window], '\n')
	if nl < 0 {
		return "", errf(ErrShebangTooLong, path, nil, "shebang line in %q is too long", path)
	}
	return strings.TrimRight(string(buf[2:2+nl]), "\r \t"), nil
}

// sysErr strips the operation and path prefix the os package wraps
// around syscall errors; the surrounding message already names the
// path in chain coordinates.
func sysErr(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

// String renders the chain one hop per line for operator output.
func (c Chain) String() string {
	var sb strings.Builder
	for _, s := range c {
		if s.Interpreter != "" {
			fmt.Fprintf(&sb, "%s (%s) -> %s\n", s.Path, s.Kind, s.Interpreter)
		} else {
			fmt.Fprintf(&sb, "%s (%s)\n", s.Path, s.Kind)
		}
	}
	return sb.String()
}
