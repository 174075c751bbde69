package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

// encodeInt64Matrix serializes a row-major rows x cols int64 matrix as NPY version 1.0.
func encodeInt64Matrix(buf *bytes.Buffer, rows, cols int, values []int64) error {
	if len(values) != rows*cols {
		return fmt.Errorf("matrix %dx%d needs %d values, got %d", rows, cols, rows*cols, len(values))
	}

	dict := fmt.Sprintf("{'descr': '<i8', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)
	// magic(6) + version(2) + header length(2) + dict + padding + newline is a multiple of 64
	pre := len(npyMagic) + 4
	pad := 64 - (pre+len(dict)+1)%64
	if pad == 64 {
		pad = 0
	}
	dict += strings.Repeat(" ", pad) + "\n"

	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(dict))); err != nil {
		return err
	}
	buf.WriteString(dict)
	return binary.Write(buf, binary.LittleEndian, values)
}
