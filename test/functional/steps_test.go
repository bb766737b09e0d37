package functional

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// headerlessELF is a minimal 64-bit little-endian object with no
// program-header table; its interpreter chain ends successfully.
func headerlessELF() []byte {
	buf := make([]byte, 0x40)
	copy(buf, []byte{0x7f, 'E', 'L', 'F'})
	buf[4] = 2 // ELFCLASS64
	buf[5] = 1 // little-endian
	buf[6] = 1 // EV_CURRENT
	return buf
}

// interpELF builds a 64-bit little-endian object with one PT_INTERP
// entry naming interp.
func interpELF(interp string) []byte {
	const (
		hdrSize   = 0x40
		entSize   = 0x38
		interpOff = hdrSize + entSize
	)
	buf := make([]byte, interpOff+len(interp)+1)
	copy(buf, headerlessELF())

	binary.LittleEndian.PutUint64(buf[0x20:], hdrSize) // e_phoff
	binary.LittleEndian.PutUint16(buf[0x36:], entSize) // e_phentsize
	binary.LittleEndian.PutUint16(buf[0x38:], 1)       // e_phnum

	binary.LittleEndian.PutUint32(buf[hdrSize:], 3) // PT_INTERP
	binary.LittleEndian.PutUint64(buf[hdrSize+0x08:], interpOff)
	binary.LittleEndian.PutUint64(buf[hdrSize+0x20:], uint64(len(interp)+1))
	copy(buf[interpOff:], interp)
	return buf
}

func writeFixture(state *testState, path string, data []byte) error {
	full := filepath.Join(state.rootDir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o755)
}

func aHeaderlessELFExecutableAt(ctx context.Context, path string) (context.Context, error) {
	return ctx, writeFixture(getState(ctx), path, headerlessELF())
}

func anELFExecutableWithInterpreter(ctx context.Context, path, interp string) (context.Context, error) {
	return ctx, writeFixture(getState(ctx), path, interpELF(interp))
}

func aScriptWithInterpreterLine(ctx context.Context, path, line string) (context.Context, error) {
	return ctx, writeFixture(getState(ctx), path, []byte("#!"+line+"\n"))
}

// iTrace runs "rootexec trace --root <scratch root> <path>".
func iTrace(ctx context.Context, path string) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}

	cmd := exec.Command(state.binPath, "trace", "--root", state.rootDir, path)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	state.stdout = stdout.String()
	state.stderr = stderr.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			state.exitCode = exitErr.ExitCode()
		} else {
			return ctx, fmt.Errorf("command execution failed: %w", err)
		}
	} else {
		state.exitCode = 0
	}
	return ctx, nil
}

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, expected string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, expected) {
		return fmt.Errorf("expected stdout to contain %q\nstdout: %s", expected, state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, expected string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, expected) {
		return fmt.Errorf("expected stderr to contain %q\nstderr: %s", expected, state.stderr)
	}
	return nil
}
