package angle

import (
	"strconv"
	"strings"

	"github.com/wippyai/shader-validator/errors"
)

// ShaderSpec selects the shading-language specification a source is
// validated against.
type ShaderSpec int

const (
	SpecGLES2 ShaderSpec = iota
	SpecWebGL
	SpecGLES3
	SpecWebGL2
	SpecWebGL3
)

// ShShaderSpec values from ShaderLang.h.
const (
	ShGLES2Spec   int32 = 0
	ShWebGLSpec   int32 = 1
	ShGLES3Spec   int32 = 2
	ShWebGL2Spec  int32 = 3
	ShGLES31Spec  int32 = 4
	ShWebGL3Spec  int32 = 5
	shInvalidSpec int32 = -1
)

var specTable = [...]struct {
	name   string
	native int32
}{
	SpecGLES2:  {"gles2", ShGLES2Spec},
	SpecWebGL:  {"webgl", ShWebGLSpec},
	SpecGLES3:  {"gles3", ShGLES3Spec},
	SpecWebGL2: {"webgl2", ShWebGL2Spec},
	SpecWebGL3: {"webgl3", ShWebGL3Spec},
}

// ShaderSpecs returns every specification in declaration order.
func ShaderSpecs() []ShaderSpec {
	out := make([]ShaderSpec, len(specTable))
	for i := range specTable {
		out[i] = ShaderSpec(i)
	}
	return out
}

// Native returns the translator constant for s. Values outside the
// enumeration map to -1, which the translator rejects at construction.
func (s ShaderSpec) Native() int32 {
	if !s.Valid() {
		return shInvalidSpec
	}
	return specTable[s].native
}

// Valid reports whether s is one of the declared specifications.
func (s ShaderSpec) Valid() bool {
	return s >= 0 && int(s) < len(specTable)
}

// IsWebGL reports whether s is one of the WebGL specifications.
func (s ShaderSpec) IsWebGL() bool {
	return s == SpecWebGL || s == SpecWebGL2 || s == SpecWebGL3
}

func (s ShaderSpec) String() string {
	if !s.Valid() {
		return "spec(" + strconv.Itoa(int(s)) + ")"
	}
	return specTable[s].name
}

// ParseShaderSpec accepts the names returned by String, case-insensitively.
func ParseShaderSpec(name string) (ShaderSpec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, e := range specTable {
		if e.name == name {
			return ShaderSpec(i), nil
		}
	}
	return 0, errors.ParseFailed("shader spec", name)
}
