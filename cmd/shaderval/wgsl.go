package main

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/errors"
)

// lowerWGSL translates WGSL to GLSL ES so the translator can validate it.
// The entry point is the first one whose stage matches shaderType.
func lowerWGSL(source string, spec angle.ShaderSpec, shaderType angle.ShaderType) (string, error) {
	version, err := glslVersion(spec)
	if err != nil {
		return "", err
	}
	stage, err := wgslStage(shaderType)
	if err != nil {
		return "", err
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return "", errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("wgsl").
			Cause(err).
			Build()
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return "", errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("wgsl lowering").
			Cause(err).
			Build()
	}

	entry, err := findEntryPoint(module, stage)
	if err != nil {
		return "", err
	}

	out, _, err := glsl.Compile(module, glsl.Options{
		LangVersion:        version,
		EntryPoint:         entry,
		ForceHighPrecision: true,
	})
	if err != nil {
		return "", errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("wgsl to glsl").
			Cause(err).
			Build()
	}
	return out, nil
}

// glslVersion picks the GLSL ES version for spec. naga has no ES 1.00
// backend, so WebGL 1.0 and GLES2 are rejected.
func glslVersion(spec angle.ShaderSpec) (glsl.Version, error) {
	switch spec {
	case angle.SpecGLES3, angle.SpecWebGL2:
		return glsl.VersionES300, nil
	case angle.SpecWebGL3:
		return glsl.VersionES310, nil
	}
	return glsl.Version{}, errors.Unsupported(errors.PhaseParse,
		fmt.Sprintf("wgsl input requires an ES 3.x spec, got %s", spec))
}

func wgslStage(t angle.ShaderType) (ir.ShaderStage, error) {
	switch t {
	case angle.VertexShader:
		return ir.StageVertex, nil
	case angle.FragmentShader:
		return ir.StageFragment, nil
	case angle.ComputeShader:
		return ir.StageCompute, nil
	}
	return 0, errors.Unsupported(errors.PhaseParse, fmt.Sprintf("wgsl has no %s stage", t))
}

func findEntryPoint(module *ir.Module, stage ir.ShaderStage) (string, error) {
	for _, ep := range module.EntryPoints {
		if ep.Stage == stage {
			return ep.Name, nil
		}
	}
	return "", errors.InvalidInput(errors.PhaseParse, "wgsl module has no entry point for the requested stage")
}
