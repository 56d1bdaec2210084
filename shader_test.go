package vkframe

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spirvHeader(words ...uint32) []byte {
	out := make([]byte, 4*(len(words)+1))
	binary.LittleEndian.PutUint32(out, spirvMagic)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[4*(i+1):], w)
	}
	return out
}

func TestValidateSPIRV(t *testing.T) {
	require.NoError(t, ValidateSPIRV(spirvHeader(0x00010000, 0, 8, 0)))

	for name, code := range map[string][]byte{
		"empty":     nil,
		"short":     {0x03, 0x02},
		"unaligned": append(spirvHeader(1), 0),
		"bad magic": {0xde, 0xad, 0xbe, 0xef},
		"text":      []byte("#version 450"),
	} {
		err := ValidateSPIRV(code)
		require.Error(t, err, name)
		assert.Equal(t, Configuration, KindOf(err), name)
	}
}

func TestFileShaders(t *testing.T) {
	dir := t.TempDir()
	code := spirvHeader(0x00010000)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vert.spv"), code, 0o644))

	got, err := FileShaders{Root: dir}.ReadShader("vert.spv")
	require.NoError(t, err)
	assert.Equal(t, code, got)

	got, err = FileShaders{Root: "elsewhere"}.ReadShader(filepath.Join(dir, "vert.spv"))
	require.NoError(t, err)
	assert.Equal(t, code, got)

	_, err = FileShaders{Root: dir}.ReadShader("frag.spv")
	require.Error(t, err)
	assert.Equal(t, Configuration, KindOf(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type mapShaders map[string][]byte

func (m mapShaders) ReadShader(path string) ([]byte, error) {
	code, ok := m[path]
	if !ok {
		return nil, configError("read shader", errors.Wrap(os.ErrNotExist, path))
	}
	return code, nil
}

func TestLoadShaderModuleRejectsBadBytecode(t *testing.T) {
	source := mapShaders{"frag.spv": []byte("not spir-v!!")}

	// Validation fails before the device is touched.
	_, err := LoadShaderModule(nil, source, "frag.spv")
	require.Error(t, err)
	assert.Equal(t, Configuration, KindOf(err))
	assert.Contains(t, err.Error(), "frag.spv")

	_, err = LoadShaderModule(nil, source, "vert.spv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
