// Package enginetest provides an in-process engine.Engine for tests.
package enginetest

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/engine"
)

// Fake mimics the translator closely enough to exercise callers:
//
//   - ConstructCompiler fails for unknown spec/output constants, for a zero
//     shader type, and for WebGL specs combined with desktop GLSL
//     compatibility output.
//   - Compile fails when a source mentions the identifier "undeclared" and
//     writes an ANGLE-style message to the info log; otherwise the object
//     code is a version line followed by the concatenated sources.
//   - Overlapping ConstructCompiler calls are counted as races.
type Fake struct {
	compilers map[engine.Handle]*compiler

	// Defaults is returned by InitBuiltInResources.
	Defaults angle.ResourceLimits

	// ConstructDelay widens the construction window for race tests.
	ConstructDelay time.Duration

	// InitializeResult and FinalizeResult are the native results; both
	// default to success.
	InitializeResult *bool
	FinalizeResult   *bool

	// PanicOnDestruct makes DestructCompiler panic, for release-path tests.
	PanicOnDestruct bool

	inConstruct atomic.Int32
	races       atomic.Int32
	constructs  atomic.Int32
	destructs   atomic.Int32
	doubleFrees atomic.Int32
	compiles    atomic.Int32
	initializes atomic.Int32
	finalizes   atomic.Int32

	mu          sync.Mutex
	nextHandle  engine.Handle
	initialized bool
	lastOptions angle.CompileOptions
}

type compiler struct {
	shaderType angle.ShaderType
	spec       int32
	output     int32
	objectCode []byte
	infoLog    []byte
	res        angle.ResourceLimits
}

var (
	_ engine.Engine       = (*Fake)(nil)
	_ engine.Introspector = (*Fake)(nil)
)

// New returns a Fake with typical WebGL defaults.
func New() *Fake {
	return &Fake{
		compilers: make(map[engine.Handle]*compiler),
		Defaults: angle.ResourceLimits{
			MaxVertexAttribs:             8,
			MaxVertexUniformVectors:      128,
			MaxVaryingVectors:            8,
			MaxVertexTextureImageUnits:   0,
			MaxCombinedTextureImageUnits: 8,
			MaxTextureImageUnits:         8,
			MaxFragmentUniformVectors:    16,
			MaxDrawBuffers:               1,
			FragmentPrecisionHigh:        0,
			MaxVertexOutputVectors:       16,
			MaxFragmentInputVectors:      15,
			MinProgramTexelOffset:        -8,
			MaxProgramTexelOffset:        7,
			MaxDualSourceDrawBuffers:     0,
			MaxExpressionComplexity:      256,
			MaxCallStackDepth:            256,
			MaxFunctionParameters:        1024,
		},
	}
}

// Races returns the number of ConstructCompiler calls that overlapped another.
func (f *Fake) Races() int { return int(f.races.Load()) }

// Constructs returns the number of successful constructions.
func (f *Fake) Constructs() int { return int(f.constructs.Load()) }

// Destructs returns the number of DestructCompiler calls.
func (f *Fake) Destructs() int { return int(f.destructs.Load()) }

// DoubleFrees returns the number of DestructCompiler calls on handles that
// were already destroyed or never existed.
func (f *Fake) DoubleFrees() int { return int(f.doubleFrees.Load()) }

// Compiles returns the number of Compile calls.
func (f *Fake) Compiles() int { return int(f.compiles.Load()) }

// Initializes and Finalizes count lifecycle calls.
func (f *Fake) Initializes() int { return int(f.initializes.Load()) }
func (f *Fake) Finalizes() int   { return int(f.finalizes.Load()) }

// Live returns the number of handles not yet destroyed.
func (f *Fake) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.compilers)
}

// LastOptions returns the options of the most recent Compile.
func (f *Fake) LastOptions() angle.CompileOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOptions
}

// IsInitialized reports the fake's own initialized flag.
func (f *Fake) IsInitialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized
}

// SetInfoLog overwrites the info log of h.
func (f *Fake) SetInfoLog(h engine.Handle, log []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.compilers[h]; ok {
		c.infoLog = log
	}
}

func (f *Fake) Initialize(context.Context) (bool, error) {
	f.initializes.Add(1)
	ok := f.InitializeResult == nil || *f.InitializeResult
	f.mu.Lock()
	f.initialized = f.initialized || ok
	f.mu.Unlock()
	return ok, nil
}

func (f *Fake) Finalize(context.Context) (bool, error) {
	f.finalizes.Add(1)
	ok := f.FinalizeResult == nil || *f.FinalizeResult
	if ok {
		f.mu.Lock()
		f.initialized = false
		f.mu.Unlock()
	}
	return ok, nil
}

func (f *Fake) InitBuiltInResources(_ context.Context, res *angle.ResourceLimits) error {
	*res = f.Defaults
	return nil
}

func (f *Fake) ConstructCompiler(_ context.Context, shaderType angle.ShaderType, spec, output int32, res *angle.ResourceLimits) (engine.Handle, error) {
	if f.inConstruct.Add(1) > 1 {
		f.races.Add(1)
	}
	defer f.inConstruct.Add(-1)

	if f.ConstructDelay > 0 {
		time.Sleep(f.ConstructDelay)
	}

	if shaderType == 0 || !knownSpec(spec) || !knownOutput(output) {
		return 0, nil
	}
	if isWebGLSpec(spec) && output == angle.ShGLSLCompatibilityOutput {
		return 0, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHandle++
	h := f.nextHandle
	f.compilers[h] = &compiler{
		shaderType: shaderType,
		spec:       spec,
		output:     output,
		res:        *res,
	}
	f.constructs.Add(1)
	return h, nil
}

func (f *Fake) DestructCompiler(_ context.Context, h engine.Handle) error {
	f.destructs.Add(1)
	if f.PanicOnDestruct {
		panic("enginetest: destruct panic")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.compilers[h]; !ok {
		f.doubleFrees.Add(1)
		return nil
	}
	delete(f.compilers, h)
	return nil
}

func (f *Fake) Compile(_ context.Context, h engine.Handle, sources [][]byte, options angle.CompileOptions) (bool, error) {
	f.compiles.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOptions = options

	c, ok := f.compilers[h]
	if !ok {
		return false, fmt.Errorf("enginetest: unknown handle %d", h)
	}

	var unit bytes.Buffer
	for i, src := range sources {
		if len(src) == 0 || src[len(src)-1] != 0 || bytes.IndexByte(src[:len(src)-1], 0) >= 0 {
			return false, fmt.Errorf("enginetest: source %d is not a C string", i)
		}
		unit.Write(src[:len(src)-1])
	}

	if bytes.Contains(unit.Bytes(), []byte("undeclared")) {
		c.objectCode = nil
		c.infoLog = []byte("ERROR: 0:1: 'undeclared' : undeclared identifier\n")
		return false, nil
	}

	c.infoLog = nil
	c.objectCode = nil
	if options.Has(angle.ObjectCode) {
		var out bytes.Buffer
		out.WriteString(versionLine(c.output, c.spec))
		out.Write(unit.Bytes())
		c.objectCode = out.Bytes()
	}
	return true, nil
}

func (f *Fake) ObjectCode(_ context.Context, h engine.Handle) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.compilers[h]
	if !ok {
		return nil, fmt.Errorf("enginetest: unknown handle %d", h)
	}
	return bytes.Clone(c.objectCode), nil
}

func (f *Fake) InfoLog(_ context.Context, h engine.Handle) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.compilers[h]
	if !ok {
		return nil, fmt.Errorf("enginetest: unknown handle %d", h)
	}
	return bytes.Clone(c.infoLog), nil
}

func (f *Fake) ClearResults(_ context.Context, h engine.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.compilers[h]; ok {
		c.objectCode, c.infoLog = nil, nil
	}
	return nil
}

func (f *Fake) ShaderVersion(_ context.Context, h engine.Handle) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.compilers[h]
	if !ok {
		return 0, fmt.Errorf("enginetest: unknown handle %d", h)
	}
	if c.spec == angle.ShGLES2Spec || c.spec == angle.ShWebGLSpec {
		return 100, nil
	}
	return 300, nil
}

func (f *Fake) ShaderOutputType(_ context.Context, h engine.Handle) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.compilers[h]
	if !ok {
		return 0, fmt.Errorf("enginetest: unknown handle %d", h)
	}
	return c.output, nil
}

func (f *Fake) BuiltInResourcesString(_ context.Context, h engine.Handle) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.compilers[h]
	if !ok {
		return nil, fmt.Errorf("enginetest: unknown handle %d", h)
	}
	return []byte(fmt.Sprintf(":MaxVertexAttribs:%d:MaxDrawBuffers:%d", c.res.MaxVertexAttribs, c.res.MaxDrawBuffers)), nil
}

func (f *Fake) ActiveUniforms(context.Context, engine.Handle) ([]engine.ActiveInfo, error) {
	return []engine.ActiveInfo{{Name: "u_color", Size: 1, Type: 0x8B52}}, nil
}

func knownSpec(spec int32) bool {
	for _, s := range angle.ShaderSpecs() {
		if s.Native() == spec {
			return true
		}
	}
	return false
}

func knownOutput(output int32) bool {
	for _, o := range angle.Outputs() {
		if o.Native() == output {
			return true
		}
	}
	return false
}

func isWebGLSpec(spec int32) bool {
	return spec == angle.ShWebGLSpec || spec == angle.ShWebGL2Spec || spec == angle.ShWebGL3Spec
}

func versionLine(output, spec int32) string {
	switch output {
	case angle.ShESSLOutput:
		if spec == angle.ShGLES2Spec || spec == angle.ShWebGLSpec {
			return "#version 100\n"
		}
		return "#version 300 es\n"
	case angle.ShGLSLCompatibilityOutput:
		return ""
	case angle.ShGLSL130Output:
		return "#version 130\n"
	case angle.ShGLSL140Output:
		return "#version 140\n"
	default:
		return fmt.Sprintf("#version %d core\n", 150+((output-angle.ShGLSL150CoreOutput)*10))
	}
}
