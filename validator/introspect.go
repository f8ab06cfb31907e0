package validator

import (
	"context"
	"runtime"

	"github.com/wippyai/shader-validator/engine"
	"github.com/wippyai/shader-validator/errors"
)

// Introspection is available when the engine implements
// engine.Introspector. Otherwise each method returns an unsupported error.

func (v *Validator) introspector() (engine.Introspector, error) {
	if v.ref.released.Load() {
		return nil, errors.Closed(errors.PhaseQuery)
	}
	in, ok := v.eng.(engine.Introspector)
	if !ok {
		return nil, errors.Unsupported(errors.PhaseQuery, "engine does not support introspection")
	}
	return in, nil
}

// ClearResults drops the object code, info log and variable info of the
// last compile.
func (v *Validator) ClearResults(ctx context.Context) error {
	in, err := v.introspector()
	if err != nil {
		return err
	}
	defer runtime.KeepAlive(v)
	return in.ClearResults(ctx, v.ref.h)
}

// ShaderVersion returns the #version of the last compiled shader, 100 when
// the source had none.
func (v *Validator) ShaderVersion(ctx context.Context) (int, error) {
	in, err := v.introspector()
	if err != nil {
		return 0, err
	}
	defer runtime.KeepAlive(v)
	n, err := in.ShaderVersion(ctx, v.ref.h)
	return int(n), err
}

// ShaderOutputType returns the native output constant the compiler emits.
func (v *Validator) ShaderOutputType(ctx context.Context) (int32, error) {
	in, err := v.introspector()
	if err != nil {
		return 0, err
	}
	defer runtime.KeepAlive(v)
	return in.ShaderOutputType(ctx, v.ref.h)
}

// BuiltInResourcesString returns the translator's string form of the
// resource limits the compiler was built with. Two compilers with equal
// strings translate identically.
func (v *Validator) BuiltInResourcesString(ctx context.Context) (string, error) {
	in, err := v.introspector()
	if err != nil {
		return "", err
	}
	defer runtime.KeepAlive(v)
	b, err := in.BuiltInResourcesString(ctx, v.ref.h)
	if err != nil {
		return "", err
	}
	return lossyString(b), nil
}

// ActiveUniforms lists the uniforms of the last successful compile.
func (v *Validator) ActiveUniforms(ctx context.Context) ([]engine.ActiveInfo, error) {
	in, err := v.introspector()
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(v)
	return in.ActiveUniforms(ctx, v.ref.h)
}
