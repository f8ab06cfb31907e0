package engine

import (
	"context"

	"github.com/wippyai/shader-validator/angle"
)

// Handle is an opaque compiler handle owned by the translator. Zero is the
// null handle.
type Handle uint64

// Engine is the translator's C interface. Boolean results are the native
// success indicators; the error result reports host-side faults only (a
// trap, a guest memory access out of bounds, a failed allocation).
//
// Implementations need not be safe for concurrent ConstructCompiler calls;
// package validator serializes those.
type Engine interface {
	Initialize(ctx context.Context) (bool, error)
	Finalize(ctx context.Context) (bool, error)

	// InitBuiltInResources overwrites res with the translator's defaults.
	InitBuiltInResources(ctx context.Context, res *angle.ResourceLimits) error

	// ConstructCompiler returns the null handle when the translator rejects
	// the configuration.
	ConstructCompiler(ctx context.Context, shaderType angle.ShaderType, spec, output int32, res *angle.ResourceLimits) (Handle, error)
	DestructCompiler(ctx context.Context, h Handle) error

	// Compile passes sources as one compilation unit. Every buffer is
	// NUL-terminated and holds no other NUL byte.
	Compile(ctx context.Context, h Handle, sources [][]byte, options angle.CompileOptions) (bool, error)

	// ObjectCode and InfoLog return the current output buffers of h without
	// the terminator. Their contents are replaced by the next Compile.
	ObjectCode(ctx context.Context, h Handle) ([]byte, error)
	InfoLog(ctx context.Context, h Handle) ([]byte, error)
}

// ActiveInfo describes one active uniform of a compiled shader.
type ActiveInfo struct {
	Name string
	Size int32 // array size, 1 for non-arrays
	Type int32 // GL type enum
}

// Introspector is implemented by engines exposing the shim's query entry
// points. Each method may return an unsupported error when the loaded
// translator lacks the corresponding export.
type Introspector interface {
	ClearResults(ctx context.Context, h Handle) error
	ShaderVersion(ctx context.Context, h Handle) (int32, error)
	ShaderOutputType(ctx context.Context, h Handle) (int32, error)
	BuiltInResourcesString(ctx context.Context, h Handle) ([]byte, error)
	ActiveUniforms(ctx context.Context, h Handle) ([]ActiveInfo, error)
}
