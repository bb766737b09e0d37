package resolve

import (
	"bytes"
	"fmt"

	"github.com/tsukumogami/rootexec/internal/sniff"
)

// PT_INTERP, the only program-header type this tool cares about.
const elfPTInterp = 3

// Field offsets within the ELF header and one program-header entry,
// per the System V ABI. The entry's p_type always sits at offset 0;
// p_offset and p_filesz move because 64-bit entries insert p_flags
// after p_type.
type phLayout struct {
	phOff     uint64 // e_phoff
	phEntSize uint64 // e_phentsize
	phNum     uint64 // e_phnum
	pOffset   uint64 // p_offset within an entry
	pFileSz   uint64 // p_filesz within an entry
}

var (
	layout32 = phLayout{phOff: 0x1c, phEntSize: 0x2a, phNum: 0x2c, pOffset: 0x04, pFileSz: 0x10}
	layout64 = phLayout{phOff: 0x20, phEntSize: 0x36, phNum: 0x38, pOffset: 0x08, pFileSz: 0x20}
)

// scanProgramHeaders extracts the PT_INTERP path from an ELF image.
// hasTable is false when the image has no program-header table at all
// (e_phoff or e_phnum is zero), which legitimately ends a chain. A
// table without a PT_INTERP entry returns ("", true, nil); the caller
// decides that no interpreter is an error. All field reads go through
// the accessors selected at classification time.
func scanProgramHeaders(buf []byte, cls sniff.Classification) (interp string, hasTable bool, err error) {
	rd := cls.Reader()
	lay := layout32
	if cls.Class == sniff.Class64 {
		lay = layout64
	}

	phOff, err := rd.Word(buf, lay.phOff)
	if err != nil {
		return "", true, err
	}
	entSize, err := rd.U16(buf, lay.phEntSize)
	if err != nil {
		return "", true, err
	}
	phNum, err := rd.U16(buf, lay.phNum)
	if err != nil {
		return "", true, err
	}

	if phOff == 0 || phNum == 0 {
		return "", false, nil
	}
	if phOff > uint64(len(buf)) {
		return "", true, fmt.Errorf("program header table at offset %d exceeds image size %d", phOff, len(buf))
	}

	for i := uint64(0); i < uint64(phNum); i++ {
		ent := phOff + i*uint64(entSize)

		pType, err := rd.U32(buf, ent)
		if err != nil {
			return "", true, err
		}
		if pType != elfPTInterp {
			continue
		}

		off, err := rd.Word(buf, ent+lay.pOffset)
		if err != nil {
			return "", true, err
		}
		size, err := rd.Word(buf, ent+lay.pFileSz)
		if err != nil {
			return "", true, err
		}
		if off > uint64(len(buf)) || size > uint64(len(buf))-off {
			return "", true, fmt.Errorf("interpreter segment [%d:+%d] exceeds image size %d", off, size, len(buf))
		}

		raw := buf[off : off+size]
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		return string(raw), true, nil
	}
	return "", true, nil
}
