package validator

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/engine"
	"github.com/wippyai/shader-validator/errors"
)

// constructMu serializes compiler construction for every Validator in the
// process. It guards only the native construction call.
var constructMu sync.Mutex

// Validator owns one translator compiler handle.
//
// The handle is destroyed exactly once: by Close, or by a runtime cleanup
// when the Validator becomes unreachable without being closed.
type Validator struct {
	eng        engine.Engine
	ref        *handleRef
	cleanup    runtime.Cleanup
	shaderType angle.ShaderType
	spec       angle.ShaderSpec
	output     angle.Output
}

// handleRef is the part of a Validator the cleanup keeps alive. It must not
// point back at the Validator.
type handleRef struct {
	eng      engine.Engine
	h        engine.Handle
	once     sync.Once
	released atomic.Bool
}

// New constructs a compiler for shaderType accepting spec and emitting
// output. res is copied by the translator and not retained.
//
// A null handle from the translator yields a construction_failed error and
// no Validator; nothing is left to release in that case.
func New(ctx context.Context, shaderType angle.ShaderType, spec angle.ShaderSpec, output angle.Output, res *angle.ResourceLimits) (*Validator, error) {
	eng, err := activeEngine(errors.PhaseConstruct)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "nil resource limits")
	}

	h, err := construct(ctx, eng, shaderType, spec.Native(), output.Native(), res)
	if err != nil {
		return nil, err
	}
	if h == 0 {
		Logger().Debug("compiler construction rejected",
			zap.Stringer("type", shaderType),
			zap.Stringer("spec", spec),
			zap.Stringer("output", output))
		return nil, errors.ConstructionFailed()
	}

	v := &Validator{
		eng:        eng,
		ref:        &handleRef{eng: eng, h: h},
		shaderType: shaderType,
		spec:       spec,
		output:     output,
	}
	v.cleanup = runtime.AddCleanup(v, func(ref *handleRef) {
		ref.release(context.Background())
	}, v.ref)

	Logger().Debug("compiler constructed",
		zap.Uint64("handle", uint64(h)),
		zap.Stringer("type", shaderType),
		zap.Stringer("spec", spec),
		zap.Stringer("output", output))
	return v, nil
}

// ForWebGL constructs a compiler for WebGL 1.0 shaders.
func ForWebGL(ctx context.Context, shaderType angle.ShaderType, output angle.Output, res *angle.ResourceLimits) (*Validator, error) {
	return New(ctx, shaderType, angle.SpecWebGL, output, res)
}

// ForWebGL2 constructs a compiler for WebGL 2.0 shaders.
func ForWebGL2(ctx context.Context, shaderType angle.ShaderType, output angle.Output, res *angle.ResourceLimits) (*Validator, error) {
	return New(ctx, shaderType, angle.SpecWebGL2, output, res)
}

func construct(ctx context.Context, eng engine.Engine, shaderType angle.ShaderType, spec, output int32, res *angle.ResourceLimits) (engine.Handle, error) {
	constructMu.Lock()
	defer constructMu.Unlock()
	return eng.ConstructCompiler(ctx, shaderType, spec, output, res)
}

// ShaderType returns the shader type the compiler was built for.
func (v *Validator) ShaderType() angle.ShaderType { return v.shaderType }

// Spec returns the accepted input spec.
func (v *Validator) Spec() angle.ShaderSpec { return v.spec }

// Output returns the output dialect.
func (v *Validator) Output() angle.Output { return v.output }

// Compile compiles sources as one compilation unit.
//
// A source holding a NUL byte is rejected with an invalid_characters error
// before the translator is called. A native failure is reported as
// compile_failed; the diagnostics are in InfoLog.
func (v *Validator) Compile(ctx context.Context, sources []string, options angle.CompileOptions) error {
	if v.ref.released.Load() {
		return errors.Closed(errors.PhaseCompile)
	}

	bufs := make([][]byte, len(sources))
	for i, src := range sources {
		if strings.IndexByte(src, 0) >= 0 {
			return errors.InvalidCharacters(i)
		}
		buf := make([]byte, len(src)+1)
		copy(buf, src)
		bufs[i] = buf
	}

	ok, err := v.eng.Compile(ctx, v.ref.h, bufs, options)
	runtime.KeepAlive(v)
	if err != nil {
		return err
	}
	if !ok {
		return errors.CompileFailed()
	}
	return nil
}

// CompileAndTranslate compiles sources with angle.TranslateOptions and
// returns the object code.
func (v *Validator) CompileAndTranslate(ctx context.Context, sources []string) (string, error) {
	if err := v.Compile(ctx, sources, angle.TranslateOptions); err != nil {
		return "", err
	}
	return v.ObjectCode(ctx), nil
}

// ObjectCode returns the translated source of the last compile. Invalid
// UTF-8 is replaced with U+FFFD. Before the first compile the content is
// whatever the translator holds.
func (v *Validator) ObjectCode(ctx context.Context) string {
	return v.readText(ctx, "object code", v.eng.ObjectCode)
}

// InfoLog returns the diagnostics of the last compile, decoded like
// ObjectCode.
func (v *Validator) InfoLog(ctx context.Context) string {
	return v.readText(ctx, "info log", v.eng.InfoLog)
}

// readText never fails: engine faults are logged and read as "".
func (v *Validator) readText(ctx context.Context, what string, read func(context.Context, engine.Handle) ([]byte, error)) string {
	if v.ref.released.Load() {
		return ""
	}
	b, err := read(ctx, v.ref.h)
	runtime.KeepAlive(v)
	if err != nil {
		Logger().Warn("failed to read "+what,
			zap.Uint64("handle", uint64(v.ref.h)),
			zap.Error(err))
		return ""
	}
	return lossyString(b)
}

func lossyString(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}

// Close destroys the compiler handle. It is safe to call more than once;
// only the first call reaches the translator. Close has no error result:
// faults during destruction are logged.
func (v *Validator) Close(ctx context.Context) {
	v.cleanup.Stop()
	v.ref.release(ctx)
}

func (r *handleRef) release(ctx context.Context) {
	r.once.Do(func() {
		r.released.Store(true)
		defer func() {
			if p := recover(); p != nil {
				Logger().Error("panic while destroying compiler",
					zap.Uint64("handle", uint64(r.h)),
					zap.Any("panic", p))
			}
		}()

		if err := r.eng.DestructCompiler(ctx, r.h); err != nil {
			Logger().Warn("failed to destroy compiler",
				zap.Uint64("handle", uint64(r.h)),
				zap.Error(err))
			return
		}
		Logger().Debug("compiler destroyed", zap.Uint64("handle", uint64(r.h)))
	})
}
