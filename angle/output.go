package angle

import (
	"strconv"
	"strings"

	"github.com/wippyai/shader-validator/errors"
)

// Output selects the dialect the translator emits object code in.
type Output int

const (
	OutputESSL Output = iota
	OutputGLSL
	OutputGLSLCompat
	OutputGLSLCore
	OutputGLSL130
	OutputGLSL140
	OutputGLSL150Core
	OutputGLSL330Core
	OutputGLSL400Core
	OutputGLSL410Core
	OutputGLSL420Core
	OutputGLSL430Core
	OutputGLSL440Core
	OutputGLSL450Core
)

// ShShaderOutput values from ShaderLang.h.
const (
	ShESSLOutput              int32 = 0x8B45
	ShGLSLCompatibilityOutput int32 = 0x8B46
	ShGLSL130Output           int32 = 0x8B47
	ShGLSL140Output           int32 = 0x8B80
	ShGLSL150CoreOutput       int32 = 0x8B81
	ShGLSL330CoreOutput       int32 = 0x8B82
	ShGLSL400CoreOutput       int32 = 0x8B83
	ShGLSL410CoreOutput       int32 = 0x8B84
	ShGLSL420CoreOutput       int32 = 0x8B85
	ShGLSL430CoreOutput       int32 = 0x8B86
	ShGLSL440CoreOutput       int32 = 0x8B87
	ShGLSL450CoreOutput       int32 = 0x8B88
	shInvalidOutput           int32 = -1
)

// GLSL and GLSLCompat share a constant, as do GLSLCore and GLSL130.
var outputTable = [...]struct {
	name   string
	native int32
}{
	OutputESSL:        {"essl", ShESSLOutput},
	OutputGLSL:        {"glsl", ShGLSLCompatibilityOutput},
	OutputGLSLCompat:  {"glsl-compat", ShGLSLCompatibilityOutput},
	OutputGLSLCore:    {"glsl-core", ShGLSL130Output},
	OutputGLSL130:     {"glsl130", ShGLSL130Output},
	OutputGLSL140:     {"glsl140", ShGLSL140Output},
	OutputGLSL150Core: {"glsl150", ShGLSL150CoreOutput},
	OutputGLSL330Core: {"glsl330", ShGLSL330CoreOutput},
	OutputGLSL400Core: {"glsl400", ShGLSL400CoreOutput},
	OutputGLSL410Core: {"glsl410", ShGLSL410CoreOutput},
	OutputGLSL420Core: {"glsl420", ShGLSL420CoreOutput},
	OutputGLSL430Core: {"glsl430", ShGLSL430CoreOutput},
	OutputGLSL440Core: {"glsl440", ShGLSL440CoreOutput},
	OutputGLSL450Core: {"glsl450", ShGLSL450CoreOutput},
}

// Outputs returns every output dialect in declaration order.
func Outputs() []Output {
	out := make([]Output, len(outputTable))
	for i := range outputTable {
		out[i] = Output(i)
	}
	return out
}

// Native returns the translator constant for o. Values outside the
// enumeration map to -1.
func (o Output) Native() int32 {
	if !o.Valid() {
		return shInvalidOutput
	}
	return outputTable[o].native
}

// Valid reports whether o is one of the declared dialects.
func (o Output) Valid() bool {
	return o >= 0 && int(o) < len(outputTable)
}

// IsESSL reports whether o passes ESSL through rather than targeting desktop GLSL.
func (o Output) IsESSL() bool {
	return o == OutputESSL
}

func (o Output) String() string {
	if !o.Valid() {
		return "output(" + strconv.Itoa(int(o)) + ")"
	}
	return outputTable[o].name
}

// ParseOutput accepts the names returned by String, case-insensitively.
func ParseOutput(name string) (Output, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, e := range outputTable {
		if e.name == name {
			return Output(i), nil
		}
	}
	return 0, errors.ParseFailed("output dialect", name)
}
