package column

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantling/pricecore/internal/model"
)

func TestVecColumn(t *testing.T) {
	c := NewVecColumn([]int64{1, 2, 3})
	assert.Equal(t, 3, c.Size())
	assert.Equal(t, int64(2), c.At(1))
}

func TestFileColumnUint64(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ts.bin")

	buf := make([]byte, 8*3)
	binary.LittleEndian.PutUint64(buf[0:8], 10)
	binary.LittleEndian.PutUint64(buf[8:16], 20)
	binary.LittleEndian.PutUint64(buf[16:24], 30)
	assert.NoError(t, os.WriteFile(path, buf, 0o644))

	col, err := OpenFileColumn[uint64](path)
	assert.NoError(t, err)
	defer col.Close()

	assert.Equal(t, 3, col.Size())
	assert.Equal(t, uint64(20), col.At(1))
}

func TestFileColumnFloat64(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.bin")

	buf := make([]byte, 8*2)
	bits1 := math.Float64bits(1.5)
	bits2 := math.Float64bits(2.5)
	binary.LittleEndian.PutUint64(buf[0:8], bits1)
	binary.LittleEndian.PutUint64(buf[8:16], bits2)
	assert.NoError(t, os.WriteFile(path, buf, 0o644))

	col, err := OpenFileColumn[float64](path)
	assert.NoError(t, err)
	defer col.Close()

	assert.Equal(t, float64(2.5), col.At(1))
}

func TestFileColumnTimestamp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ts.bin")

	buf := make([]byte, 8*3)
	binary.LittleEndian.PutUint64(buf[0:8], 10)
	binary.LittleEndian.PutUint64(buf[8:16], 20)
	binary.LittleEndian.PutUint64(buf[16:24], 30)
	assert.NoError(t, os.WriteFile(path, buf, 0o644))

	col, err := OpenFileColumn[model.Timestamp](path)
	assert.NoError(t, err)
	defer col.Close()

	assert.Equal(t, 3, col.Size())
	assert.Equal(t, model.Timestamp(20), col.At(1))
}

func TestFileColumnPriceVal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.bin")

	buf := make([]byte, 8*2)
	negFive := int64(-5)
	hundred := int64(100)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(negFive))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(hundred))
	assert.NoError(t, os.WriteFile(path, buf, 0o644))

	col, err := OpenFileColumn[model.PriceVal](path)
	assert.NoError(t, err)
	defer col.Close()

	assert.Equal(t, model.PriceVal(-5), col.At(0))
	assert.Equal(t, model.PriceVal(100), col.At(1))
}

func TestFileColumnPriceInterval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.bin")

	buf := make([]byte, 8*2)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(1.5))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(2.5))
	assert.NoError(t, os.WriteFile(path, buf, 0o644))

	col, err := OpenFileColumn[model.PriceInterval](path)
	assert.NoError(t, err)
	defer col.Close()

	assert.Equal(t, model.PriceInterval(2.5), col.At(1))
}

func TestFileColumnRejectsBadSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	assert.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := OpenFileColumn[uint64](path)
	assert.Error(t, err)
}

func TestFileColumnRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	assert.NoError(t, os.WriteFile(path, []byte{}, 0o644))

	_, err := OpenFileColumn[uint64](path)
	assert.Error(t, err)
}
