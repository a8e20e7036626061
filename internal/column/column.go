// Package column implements the columnar input adapter: a finite, ordered
// sequence of fixed-width records, either held in memory (test fixtures) or
// memory-mapped from a flat binary file (the replay driver's real input).
package column

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"golang.org/x/exp/mmap"
)

// Column is a read-only, finite, ordered sequence of T. The core never
// distinguishes a VecColumn from a FileColumn; both are consumed purely
// through this interface.
type Column[T any] interface {
	Size() int
	At(i int) T
}

// VecColumn is an in-memory column, used to build test fixtures without
// touching the filesystem.
type VecColumn[T any] struct {
	Values []T
}

// NewVecColumn wraps an existing slice as a Column.
func NewVecColumn[T any](values []T) *VecColumn[T] {
	return &VecColumn[T]{Values: values}
}

func (c *VecColumn[T]) Size() int   { return len(c.Values) }
func (c *VecColumn[T]) At(i int) T  { return c.Values[i] }

// FileColumn memory-maps a flat little-endian file of fixed-width records
// of type T. The file's byte length must be positive and a multiple of
// sizeof(T).
type FileColumn[T any] struct {
	reader *mmap.ReaderAt
	count  int
}

// OpenFileColumn memory-maps path and validates its size against T.
func OpenFileColumn[T any](path string) (*FileColumn[T], error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open column %q: %w", path, err)
	}

	var zero T
	recSize := int(unsafe.Sizeof(zero))
	size := r.Len()

	if size <= 0 {
		_ = r.Close()
		return nil, fmt.Errorf("column %q: empty file", path)
	}
	if size%recSize != 0 {
		_ = r.Close()
		return nil, fmt.Errorf("column %q: size %d not a multiple of record size %d", path, size, recSize)
	}

	return &FileColumn[T]{reader: r, count: size / recSize}, nil
}

// Close releases the memory mapping.
func (c *FileColumn[T]) Close() error {
	return c.reader.Close()
}

func (c *FileColumn[T]) Size() int {
	return c.count
}

// At decodes the i-th record by reading its raw bytes out of the mapping
// and reinterpreting them as T. T must be a fixed-width, trivially
// decodable record (the uint64/int64/float64 wrappers this package is used
// with in practice).
func (c *FileColumn[T]) At(i int) T {
	var zero T
	recSize := int(unsafe.Sizeof(zero))

	buf := make([]byte, recSize)
	if _, err := c.reader.ReadAt(buf, int64(i*recSize)); err != nil {
		panic(fmt.Errorf("column read at %d: %w", i, err))
	}

	return decode[T](buf)
}

// decode reinterprets a little-endian byte slice as T. Supported T are the
// scalar record types the replay driver's columns are built from:
// model.Timestamp (kind uint64), model.PriceVal (kind int64),
// model.PriceInterval (kind float64) — matched on underlying Kind, since
// these are all named types distinct from the bare builtins.
func decode[T any](buf []byte) T {
	var out T
	v := reflect.ValueOf(&out).Elem()
	bits := binary.LittleEndian.Uint64(buf)
	switch v.Kind() {
	case reflect.Uint64:
		v.SetUint(bits)
	case reflect.Int64:
		v.SetInt(int64(bits))
	case reflect.Float64:
		v.SetFloat(math.Float64frombits(bits))
	default:
		panic(fmt.Sprintf("column: unsupported record type %T", out))
	}
	return out
}
