package angle

// ResourceLimits mirrors ShBuiltInResources: the implementation limits and
// extension toggles the translator checks shaders against. Extension fields
// are 0 (disabled) or 1 (enabled).
//
// The field order is the wire layout used across the engine boundary, see
// Values. Append new fields at the end.
type ResourceLimits struct {
	MaxVertexAttribs             int32
	MaxVertexUniformVectors      int32
	MaxVaryingVectors            int32
	MaxVertexTextureImageUnits   int32
	MaxCombinedTextureImageUnits int32
	MaxTextureImageUnits         int32
	MaxFragmentUniformVectors    int32
	MaxDrawBuffers               int32

	OESStandardDerivatives      int32
	OESEGLImageExternal         int32
	OESEGLImageExternalESSL3    int32
	NVEGLStreamConsumerExternal int32
	ARBTextureRectangle         int32
	EXTBlendFuncExtended        int32
	EXTDrawBuffers              int32
	EXTFragDepth                int32
	EXTShaderTextureLOD         int32
	WEBGLDebugShaderPrecision   int32
	EXTShaderFramebufferFetch   int32
	NVShaderFramebufferFetch    int32
	ARMShaderFramebufferFetch   int32
	NVDrawBuffers               int32

	// FragmentPrecisionHigh is 1 when highp is supported in fragment shaders.
	FragmentPrecisionHigh int32

	MaxVertexOutputVectors   int32
	MaxFragmentInputVectors  int32
	MinProgramTexelOffset    int32
	MaxProgramTexelOffset    int32
	MaxDualSourceDrawBuffers int32

	// ArrayIndexClampingStrategy selects how ClampIndirectArrayBounds is
	// implemented: 0 clamps with a function, 1 with a built-in.
	ArrayIndexClampingStrategy int32

	MaxExpressionComplexity int32
	MaxCallStackDepth       int32
	MaxFunctionParameters   int32
}

// ResourceLimitsFieldCount is the number of int32 fields in ResourceLimits.
const ResourceLimitsFieldCount = 32

// EmptyResourceLimits returns limits with every field zero, for callers that
// set each field themselves.
func EmptyResourceLimits() ResourceLimits {
	return ResourceLimits{}
}

func (r *ResourceLimits) fields() [ResourceLimitsFieldCount]*int32 {
	return [ResourceLimitsFieldCount]*int32{
		&r.MaxVertexAttribs,
		&r.MaxVertexUniformVectors,
		&r.MaxVaryingVectors,
		&r.MaxVertexTextureImageUnits,
		&r.MaxCombinedTextureImageUnits,
		&r.MaxTextureImageUnits,
		&r.MaxFragmentUniformVectors,
		&r.MaxDrawBuffers,
		&r.OESStandardDerivatives,
		&r.OESEGLImageExternal,
		&r.OESEGLImageExternalESSL3,
		&r.NVEGLStreamConsumerExternal,
		&r.ARBTextureRectangle,
		&r.EXTBlendFuncExtended,
		&r.EXTDrawBuffers,
		&r.EXTFragDepth,
		&r.EXTShaderTextureLOD,
		&r.WEBGLDebugShaderPrecision,
		&r.EXTShaderFramebufferFetch,
		&r.NVShaderFramebufferFetch,
		&r.ARMShaderFramebufferFetch,
		&r.NVDrawBuffers,
		&r.FragmentPrecisionHigh,
		&r.MaxVertexOutputVectors,
		&r.MaxFragmentInputVectors,
		&r.MinProgramTexelOffset,
		&r.MaxProgramTexelOffset,
		&r.MaxDualSourceDrawBuffers,
		&r.ArrayIndexClampingStrategy,
		&r.MaxExpressionComplexity,
		&r.MaxCallStackDepth,
		&r.MaxFunctionParameters,
	}
}

var resourceFieldNames = [ResourceLimitsFieldCount]string{
	"MaxVertexAttribs",
	"MaxVertexUniformVectors",
	"MaxVaryingVectors",
	"MaxVertexTextureImageUnits",
	"MaxCombinedTextureImageUnits",
	"MaxTextureImageUnits",
	"MaxFragmentUniformVectors",
	"MaxDrawBuffers",
	"OES_standard_derivatives",
	"OES_EGL_image_external",
	"OES_EGL_image_external_essl3",
	"NV_EGL_stream_consumer_external",
	"ARB_texture_rectangle",
	"EXT_blend_func_extended",
	"EXT_draw_buffers",
	"EXT_frag_depth",
	"EXT_shader_texture_lod",
	"WEBGL_debug_shader_precision",
	"EXT_shader_framebuffer_fetch",
	"NV_shader_framebuffer_fetch",
	"ARM_shader_framebuffer_fetch",
	"NV_draw_buffers",
	"FragmentPrecisionHigh",
	"MaxVertexOutputVectors",
	"MaxFragmentInputVectors",
	"MinProgramTexelOffset",
	"MaxProgramTexelOffset",
	"MaxDualSourceDrawBuffers",
	"ArrayIndexClampingStrategy",
	"MaxExpressionComplexity",
	"MaxCallStackDepth",
	"MaxFunctionParameters",
}

// Values returns the fields in declaration order.
func (r *ResourceLimits) Values() []int32 {
	f := r.fields()
	out := make([]int32, len(f))
	for i, p := range f {
		out[i] = *p
	}
	return out
}

// SetValues assigns fields in declaration order. Extra values are ignored;
// missing ones leave their fields unchanged.
func (r *ResourceLimits) SetValues(values []int32) {
	f := r.fields()
	for i := 0; i < len(f) && i < len(values); i++ {
		*f[i] = values[i]
	}
}

// FieldNames returns the ShBuiltInResources name of each field, in
// declaration order.
func FieldNames() []string {
	return append([]string(nil), resourceFieldNames[:]...)
}

// IsZero reports whether every field is zero.
func (r *ResourceLimits) IsZero() bool {
	return *r == ResourceLimits{}
}
