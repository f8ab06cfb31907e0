package angle

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wippyai/shader-validator/errors"
)

// ShaderType is the GL enum identifying a shader stage. The translator
// receives it verbatim, so values other than the constants below are
// passed through unchanged.
type ShaderType uint32

const (
	FragmentShader ShaderType = 0x8B30 // GL_FRAGMENT_SHADER
	VertexShader   ShaderType = 0x8B31 // GL_VERTEX_SHADER
	GeometryShader ShaderType = 0x8DD9 // GL_GEOMETRY_SHADER_EXT
	ComputeShader  ShaderType = 0x91B9 // GL_COMPUTE_SHADER
)

func (t ShaderType) String() string {
	switch t {
	case FragmentShader:
		return "fragment"
	case VertexShader:
		return "vertex"
	case GeometryShader:
		return "geometry"
	case ComputeShader:
		return "compute"
	default:
		return "0x" + strconv.FormatUint(uint64(t), 16)
	}
}

// ParseShaderType accepts stage names ("vertex", "frag", ...) or a
// numeric GL enum such as "0x8B30".
func ParseShaderType(name string) (ShaderType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fragment", "frag", "fs":
		return FragmentShader, nil
	case "vertex", "vert", "vs":
		return VertexShader, nil
	case "geometry", "geom", "gs":
		return GeometryShader, nil
	case "compute", "comp", "cs":
		return ComputeShader, nil
	}
	if v, err := strconv.ParseUint(name, 0, 32); err == nil {
		return ShaderType(v), nil
	}
	return 0, errors.ParseFailed("shader type", name)
}

// ShaderTypeFromPath infers the stage from a conventional file extension.
func ShaderTypeFromPath(path string) (ShaderType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".frag", ".fs", ".fsh":
		return FragmentShader, true
	case ".vert", ".vs", ".vsh":
		return VertexShader, true
	case ".geom", ".gs":
		return GeometryShader, true
	case ".comp", ".cs":
		return ComputeShader, true
	}
	return 0, false
}
