package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadFloatFromFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "temp")
	assert.NoError(t, os.WriteFile(path, []byte("21.5\n"), 0644))

	// WHEN
	value, err := ReadFloatFromFile(path)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 21.5, value)
}

func TestReadFloatFromMissingFile(t *testing.T) {
	// WHEN
	_, err := ReadFloatFromFile(filepath.Join(t.TempDir(), "missing"))

	// THEN
	assert.Error(t, err)
}

func TestReadFloatFromEmptyFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "empty")
	assert.NoError(t, os.WriteFile(path, []byte(""), 0644))

	// WHEN
	_, err := ReadFloatFromFile(path)

	// THEN
	assert.Error(t, err)
}

func TestWriteStringToFileAtomic(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "value")

	// WHEN
	err := WriteStringToFileAtomic("42.00", path)

	// THEN
	assert.NoError(t, err)
	value, err := ReadFloatFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 42.0, value)
}

func TestWriteStringToFileAtomicOverwrites(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "value")
	assert.NoError(t, WriteStringToFileAtomic("10.00", path))

	// WHEN
	err := WriteStringToFileAtomic("20.00", path)

	// THEN
	assert.NoError(t, err)
	value, err := ReadFloatFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 20.0, value)
}

func TestResolveHomeDirPathWithoutTilde(t *testing.T) {
	// WHEN
	resolved, err := ResolveHomeDirPath("/tmp/foo")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/foo", resolved)
}
