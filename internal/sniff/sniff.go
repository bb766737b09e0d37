// Package sniff classifies executable images by their leading bytes.
//
// Classification distinguishes ELF objects of either word width and
// either byte order from shebang scripts. For ELF images it also
// selects the field accessors every subsequent header read must use,
// so callers never assume a fixed width or endianness.
package sniff

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ELF identification byte offsets and values, per the System V ABI.
const (
	eiClass   = 4
	eiData    = 5
	eiVersion = 6
	eiNIdent  = 16

	elfClass32 = 1
	elfClass64 = 2

	elfDataLittle = 1
	elfDataBig    = 2

	evCurrent = 1
)

var (
	elfMagic     = []byte{0x7f, 'E', 'L', 'F'}
	shebangMagic = []byte{'#', '!'}
)

// Kind identifies the executable format of a byte buffer.
type Kind int

const (
	// Unknown means the leading bytes match no recognized format.
	Unknown Kind = iota
	// ELF is an ELF object of either width and byte order.
	ELF
	// Shebang is a script starting with "#!".
	Shebang
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case ELF:
		return "ELF"
	case Shebang:
		return "shebang script"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the kind for JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Class is the word width of an ELF image.
type Class int

const (
	// Class32 is a 32-bit image with 4-byte words.
	Class32 Class = 32
	// Class64 is a 64-bit image with 8-byte words.
	Class64 Class = 64
)

// Classification is the result of sniffing a buffer. Class and Order
// are meaningful only when Kind is ELF.
type Classification struct {
	Kind  Kind
	Class Class
	Order binary.ByteOrder
}

// FormatError reports an ELF identification field the sniffer cannot
// work with. It is distinct from an Unknown classification: the image
// claims to be ELF but no correct accessor can be chosen for it.
type FormatError struct {
	Field string
	Value byte
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported ELF %s: %#02x", e.Field, e.Value)
}

// Classify inspects the leading bytes of buf. Buffers shorter than the
// shortest magic, or with unrecognized leading bytes, classify as
// Unknown without error. An ELF magic with identification bytes this
// tool cannot handle is an error, not Unknown.
func Classify(buf []byte) (Classification, error) {
	if bytes.HasPrefix(buf, shebangMagic) {
		return Classification{Kind: Shebang}, nil
	}
	if bytes.HasPrefix(buf, elfMagic) {
		return classifyELF(buf)
	}
	return Classification{Kind: Unknown}, nil
}

func classifyELF(buf []byte) (Classification, error) {
	if len(buf) < eiNIdent {
		return Classification{}, fmt.Errorf("truncated ELF identification: %d bytes", len(buf))
	}
	if v := buf[eiVersion]; v != evCurrent {
		return Classification{}, &FormatError{Field: "version", Value: v}
	}

	c := Classification{Kind: ELF}
	switch buf[eiClass] {
	case elfClass32:
		c.Class = Class32
	case elfClass64:
		c.Class = Class64
	default:
		return Classification{}, &FormatError{Field: "class", Value: buf[eiClass]}
	}
	switch buf[eiData] {
	case elfDataLittle:
		c.Order = binary.LittleEndian
	case elfDataBig:
		c.Order = binary.BigEndian
	default:
		return Classification{}, &FormatError{Field: "byte order", Value: buf[eiData]}
	}
	return c, nil
}

// Reader returns the field accessors matching the classified width and
// byte order. Only meaningful for ELF classifications.
func (c Classification) Reader() FieldReader {
	return FieldReader{order: c.Order, class: c.Class}
}

// FieldReader reads numeric header fields at explicit byte offsets,
// honoring the width and byte order selected during classification.
// All reads are bounds-checked against the image.
type FieldReader struct {
	order binary.ByteOrder
	class Class
}

// WordSize returns the size in bytes of a native word field.
func (r FieldReader) WordSize() uint64 {
	if r.class == Class64 {
		return 8
	}
	return 4
}

func (r FieldReader) bytes(buf []byte, off, n uint64) ([]byte, error) {
	if off > uint64(len(buf)) || n > uint64(len(buf))-off {
		return nil, fmt.Errorf("%d-byte field at offset %d exceeds image size %d", n, off, len(buf))
	}
	return buf[off : off+n], nil
}

// U16 reads a 16-bit field at off.
func (r FieldReader) U16(buf []byte, off uint64) (uint16, error) {
	b, err := r.bytes(buf, off, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// U32 reads a 32-bit field at off.
func (r FieldReader) U32(buf []byte, off uint64) (uint32, error) {
	b, err := r.bytes(buf, off, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// Word reads a native word field at off: 4 bytes for 32-bit images,
// 8 bytes for 64-bit images.
func (r FieldReader) Word(buf []byte, off uint64) (uint64, error) {
	if r.class == Class64 {
		b, err := r.bytes(buf, off, 8)
		if err != nil {
			return 0, err
		}
		return r.order.Uint64(b), nil
	}
	v, err := r.U32(buf, off)
	return uint64(v), err
}
