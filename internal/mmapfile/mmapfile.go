// Package mmapfile provides read-only memory-mapped views of files.
//
// Each File is owned by exactly one resolution step and must be closed
// on every exit path; nothing here relies on process teardown to
// reclaim the mapping or the descriptor.
package mmapfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// File is a read-only mapped view of an open file. It owns the
// underlying descriptor and releases both the mapping and the
// descriptor on Close.
type File struct {
	f    *os.File
	data []byte
}

// Map maps size bytes of f read-only. The returned File takes
// ownership of f. A zero size yields an empty view with no mapping,
// since mapping zero bytes is invalid.
func Map(f *os.File, size int64) (*File, error) {
	if size == 0 {
		return &File{f: f}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, os.NewSyscallError("mmap", err)
	}
	return &File{f: f, data: data}, nil
}

// Data returns the mapped bytes. The slice is invalid after Close.
func (m *File) Data() []byte {
	return m.data
}

// Close unmaps the view and closes the descriptor. Calling Close more
// than once is safe.
func (m *File) Close() error {
	var first error
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			first = os.NewSyscallError("munmap", err)
		}
		m.data = nil
	}
	if m.f != nil {
		if err := m.f.Close(); err != nil && first == nil {
			first = err
		}
		m.f = nil
	}
	return first
}
