// Package matfile reads and writes .lmx files, a small binary container
// for dense float64 matrices: a fixed header ("LMX1", format version,
// rows, cols as little-endian uint32) followed by the row-major payload
// as little-endian float64 bits.
package matfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/sys/unix"

	"github.com/samcharles93/lattice/internal/matrix"
)

const (
	fileMagic     = "LMX1"
	formatVersion = 1
	headerSize    = 16
)

// ErrCorruptFile reports a file that is truncated, carries the wrong
// magic or version, or whose payload does not match its header shape.
var ErrCorruptFile = errors.New("corrupt matrix file")

// Write stores m at path, replacing any existing file.
func Write(path string, m matrix.Matrix[float64]) error {
	if m.R < 0 || m.C < 0 || len(m.Data) != m.R*m.C {
		return fmt.Errorf("matfile: %w: rows=%d cols=%d len(data)=%d",
			matrix.ErrDimensionMismatch, m.R, m.C, len(m.Data))
	}
	buf := make([]byte, headerSize+8*len(m.Data))
	copy(buf, fileMagic)
	binary.LittleEndian.PutUint32(buf[4:], formatVersion)
	binary.LittleEndian.PutUint32(buf[8:], uint32(m.R))
	binary.LittleEndian.PutUint32(buf[12:], uint32(m.C))
	for i, v := range m.Data {
		binary.LittleEndian.PutUint64(buf[headerSize+8*i:], math.Float64bits(v))
	}
	return os.WriteFile(path, buf, 0o644)
}

// Open loads the matrix stored at path.
//
// It prefers mmap for the read and falls back to ReadAt-based loading
// when mapping is unavailable. The returned matrix owns its data; any
// mapping is released before Open returns.
func Open(path string) (matrix.Matrix[float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return matrix.Matrix[float64]{}, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return matrix.Matrix[float64]{}, err
	}
	size64 := stat.Size()
	if size64 < headerSize || size64 > int64(int(^uint(0)>>1)) {
		return matrix.Matrix[float64]{}, fmt.Errorf("%s: %w", path, ErrCorruptFile)
	}
	size := int(size64)

	if data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED); err == nil {
		m, parseErr := decode(data)
		_ = unix.Munmap(data)
		if parseErr != nil {
			return matrix.Matrix[float64]{}, fmt.Errorf("%s: %w", path, parseErr)
		}
		return m, nil
	}

	data, err := readAllAt(f, size)
	if err != nil {
		return matrix.Matrix[float64]{}, err
	}
	m, err := decode(data)
	if err != nil {
		return matrix.Matrix[float64]{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func decode(data []byte) (matrix.Matrix[float64], error) {
	if len(data) < headerSize || string(data[:4]) != fileMagic {
		return matrix.Matrix[float64]{}, ErrCorruptFile
	}
	if binary.LittleEndian.Uint32(data[4:]) != formatVersion {
		return matrix.Matrix[float64]{}, ErrCorruptFile
	}
	rows := int(binary.LittleEndian.Uint32(data[8:]))
	cols := int(binary.LittleEndian.Uint32(data[12:]))
	count := rows * cols
	if rows != 0 && count/rows != cols {
		return matrix.Matrix[float64]{}, ErrCorruptFile
	}
	if len(data) != headerSize+8*count {
		return matrix.Matrix[float64]{}, ErrCorruptFile
	}
	values := make([]float64, count)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[headerSize+8*i:]))
	}
	return matrix.New(values, rows, cols), nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
