package main

import (
	"strings"
	"testing"

	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/errors"
)

const triangleWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    var pos = array<vec2<f32>, 3>(
        vec2<f32>(0.0, 0.5),
        vec2<f32>(-0.5, -0.5),
        vec2<f32>(0.5, -0.5)
    );
    return vec4<f32>(pos[idx], 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestGLSLVersion(t *testing.T) {
	tests := []struct {
		spec    angle.ShaderSpec
		want    glsl.Version
		wantErr bool
	}{
		{angle.SpecWebGL2, glsl.VersionES300, false},
		{angle.SpecGLES3, glsl.VersionES300, false},
		{angle.SpecWebGL3, glsl.VersionES310, false},
		{angle.SpecWebGL, glsl.Version{}, true},
		{angle.SpecGLES2, glsl.Version{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.spec.String(), func(t *testing.T) {
			got, err := glslVersion(tc.spec)
			if tc.wantErr {
				if !errors.Is(err, errors.ErrUnsupported) {
					t.Errorf("expected unsupported, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("glslVersion = %v, %v; want %v", got, err, tc.want)
			}
		})
	}
}

func TestWGSLStage(t *testing.T) {
	tests := []struct {
		in      angle.ShaderType
		want    ir.ShaderStage
		wantErr bool
	}{
		{angle.VertexShader, ir.StageVertex, false},
		{angle.FragmentShader, ir.StageFragment, false},
		{angle.ComputeShader, ir.StageCompute, false},
		{angle.GeometryShader, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in.String(), func(t *testing.T) {
			got, err := wgslStage(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("stage = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFindEntryPoint(t *testing.T) {
	module := &ir.Module{EntryPoints: []ir.EntryPoint{
		{Name: "vs_main", Stage: ir.StageVertex},
		{Name: "fs_main", Stage: ir.StageFragment},
	}}

	if name, err := findEntryPoint(module, ir.StageFragment); err != nil || name != "fs_main" {
		t.Errorf("fragment entry = %q, %v", name, err)
	}
	if name, err := findEntryPoint(module, ir.StageVertex); err != nil || name != "vs_main" {
		t.Errorf("vertex entry = %q, %v", name, err)
	}
	if _, err := findEntryPoint(module, ir.StageCompute); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("compute entry: got %v, want invalid_input", err)
	}
}

func TestLowerWGSL(t *testing.T) {
	out, err := lowerWGSL(triangleWGSL, angle.SpecWebGL2, angle.FragmentShader)
	if err != nil {
		t.Fatalf("lowerWGSL failed: %v", err)
	}
	if !strings.Contains(out, "#version 300 es") {
		t.Errorf("expected ES 3.00 output, got:\n%s", out)
	}
}

func TestLowerWGSL_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		spec   angle.ShaderSpec
		kind   errors.Kind
	}{
		{"webgl1 spec", triangleWGSL, angle.SpecWebGL, errors.KindUnsupported},
		{"syntax error", "fn (", angle.SpecWebGL2, errors.KindInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := lowerWGSL(tc.source, tc.spec, angle.FragmentShader)
			if errors.KindOf(err) != tc.kind {
				t.Errorf("KindOf = %q, want %q (err: %v)", errors.KindOf(err), tc.kind, err)
			}
		})
	}
}
