package vkframe

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// ShaderSource supplies compiled shader bytecode by path.
type ShaderSource interface {
	ReadShader(path string) ([]byte, error)
}

// FileShaders reads SPIR-V files relative to Root. An empty Root means the working directory.
type FileShaders struct {
	Root string
}

func (f FileShaders) ReadShader(path string) ([]byte, error) {
	if f.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("read shader", err)
	}
	return data, nil
}

// ValidateSPIRV checks word alignment and the SPIR-V magic number.
func ValidateSPIRV(code []byte) error {
	if len(code) < 4 || len(code)%4 != 0 {
		return configError("validate shader", errors.Errorf("bytecode length %d is not a positive multiple of 4", len(code)))
	}
	if magic := binary.LittleEndian.Uint32(code); magic != spirvMagic {
		return configError("validate shader", errors.Errorf("bad SPIR-V magic %#08x", magic))
	}
	return nil
}

// LoadShaderModule reads path from source and wraps it in a shader module.
func LoadShaderModule(device vk.Device, source ShaderSource, path string) (vk.ShaderModule, error) {
	code, err := source.ReadShader(path)
	if err != nil {
		return vk.NullShaderModule, err
	}
	if err := ValidateSPIRV(code); err != nil {
		return vk.NullShaderModule, errors.Wrap(err, path)
	}

	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, resourceError("shader module "+path, -1, ret)
	}
	return module, nil
}
