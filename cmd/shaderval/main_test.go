package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/engine/enginetest"
	"github.com/wippyai/shader-validator/errors"
	"github.com/wippyai/shader-validator/validator"
)

const testFragment = `precision mediump float;
void main() { gl_FragColor = vec4(1.0); }
`

func newTestChecker(t *testing.T, opts options) *checker {
	t.Helper()
	ctx := context.Background()
	if err := validator.Initialize(ctx, enginetest.New()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { validator.Finalize(ctx) })

	res, err := validator.DefaultResourceLimits(ctx)
	if err != nil {
		t.Fatal(err)
	}
	return &checker{opts: opts, res: res}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFlags(t *testing.T) {
	t.Setenv(envTranslator, "/opt/angle/translator.wasm")

	tests := []struct {
		name    string
		args    []string
		want    options
		paths   int
		wantErr bool
	}{
		{
			name:  "defaults",
			args:  []string{"a.frag"},
			want:  options{spec: angle.SpecWebGL2, output: angle.OutputESSL},
			paths: 1,
		},
		{
			name:  "explicit",
			args:  []string{"-spec", "webgl", "-output", "glsl330", "-type", "vertex", "-wgsl", "a", "b"},
			want:  options{spec: angle.SpecWebGL, output: angle.OutputGLSL330Core, shaderType: angle.VertexShader, wgsl: true},
			paths: 2,
		},
		{
			name:  "numeric type",
			args:  []string{"-type", "0x8B30", "a"},
			want:  options{spec: angle.SpecWebGL2, output: angle.OutputESSL, shaderType: angle.FragmentShader},
			paths: 1,
		},
		{name: "bad spec", args: []string{"-spec", "gles9", "a"}, wantErr: true},
		{name: "bad output", args: []string{"-output", "hlsl", "a"}, wantErr: true},
		{name: "bad type", args: []string{"-type", "tessellation", "a"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			f, paths, err := parseFlags(fs, tc.args)
			if err != nil {
				t.Fatalf("parseFlags failed: %v", err)
			}
			if f.translator != "/opt/angle/translator.wasm" {
				t.Errorf("translator = %q, want env default", f.translator)
			}
			opts, err := f.options()
			if tc.wantErr {
				if errors.KindOf(err) != errors.KindInvalidInput {
					t.Errorf("expected invalid_input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("options failed: %v", err)
			}
			if opts != tc.want {
				t.Errorf("options = %+v, want %+v", opts, tc.want)
			}
			if len(paths) != tc.paths {
				t.Errorf("paths = %v, want %d", paths, tc.paths)
			}
		})
	}
}

func TestOpenEngine_NoTranslator(t *testing.T) {
	_, _, err := openEngine(context.Background(), "", 0)
	if err == nil {
		t.Skip("native translator linked")
	}
	if !strings.Contains(err.Error(), envTranslator) {
		t.Errorf("error %q should mention %s", err, envTranslator)
	}
}

func TestChecker(t *testing.T) {
	ctx := context.Background()
	c := newTestChecker(t, options{spec: angle.SpecWebGL, output: angle.OutputESSL})
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantOK   bool
		wantType angle.ShaderType
		wantKind errors.Kind
	}{
		{"valid fragment", "ok.frag", testFragment, true, angle.FragmentShader, ""},
		{"valid vertex", "ok.vert", "void main() { gl_Position = vec4(0.0); }\n", true, angle.VertexShader, ""},
		{"compile error", "bad.frag", "void main() { gl_FragColor = undeclared; }\n", false, angle.FragmentShader, errors.KindCompileFailed},
		{"embedded nul", "nul.frag", "void main() {}\x00", false, angle.FragmentShader, errors.KindInvalidCharacters},
		{"unknown extension", "shader.txt", testFragment, false, 0, errors.KindInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep := c.checkFile(ctx, writeFile(t, dir, tc.file, tc.content))
			if rep.ok() != tc.wantOK {
				t.Fatalf("ok = %v, err = %v", rep.ok(), rep.err)
			}
			if rep.shaderType != tc.wantType {
				t.Errorf("shaderType = %v, want %v", rep.shaderType, tc.wantType)
			}
			if tc.wantKind != "" && errors.KindOf(rep.err) != tc.wantKind {
				t.Errorf("KindOf = %q, want %q", errors.KindOf(rep.err), tc.wantKind)
			}
			if tc.wantOK && rep.code == "" {
				t.Error("expected object code")
			}
		})
	}

	if rep := c.checkFile(ctx, filepath.Join(dir, "missing.frag")); !errors.Is(rep.err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", rep.err)
	}
}

func TestChecker_ExplicitType(t *testing.T) {
	c := newTestChecker(t, options{spec: angle.SpecWebGL, output: angle.OutputESSL, shaderType: angle.VertexShader})
	rep := c.checkSource(context.Background(), "shader.frag", "void main() { gl_Position = vec4(0.0); }\n")
	if !rep.ok() || rep.shaderType != angle.VertexShader {
		t.Errorf("report = %+v", rep)
	}
}

func TestChecker_ResolveTypeWGSLSuffix(t *testing.T) {
	c := &checker{opts: options{spec: angle.SpecWebGL2, output: angle.OutputESSL}}

	tests := []struct {
		path    string
		want    angle.ShaderType
		wantErr bool
	}{
		{"tint.frag.wgsl", angle.FragmentShader, false},
		{"tint.frag.WGSL", angle.FragmentShader, false},
		{"tint.Vert.Wgsl", angle.VertexShader, false},
		{"tint.comp", angle.ComputeShader, false},
		{"tint.wgsl", 0, true},
		{"tint.WGSL", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := c.resolveType(tc.path)
			if tc.wantErr {
				if errors.KindOf(err) != errors.KindInvalidInput {
					t.Errorf("got %v, %v; want invalid_input", got, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("resolveType = %v, %v; want %v", got, err, tc.want)
			}
		})
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{out: &buf, showCode: true}

	p.print(report{path: "a.frag", shaderType: angle.FragmentShader, code: "#version 100\nvoid main() {}"})
	p.print(report{
		path:       "b.frag",
		shaderType: angle.FragmentShader,
		err:        errors.CompileFailed(),
		log:        "ERROR: 0:1: 'x' : undeclared identifier\nERROR: 1 compilation errors.\n",
	})

	out := buf.String()
	for _, want := range []string{
		"PASS a.frag (fragment)",
		"--- object code ---\n#version 100\nvoid main() {}\n",
		"FAIL b.frag (fragment)",
		"  ERROR: 0:1: 'x' : undeclared identifier\n  ERROR: 1 compilation errors.\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("unstyled printer emitted escape sequences")
	}
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch(t *testing.T) {
	c := newTestChecker(t, options{spec: angle.SpecWebGL, output: angle.OutputESSL})
	path := writeFile(t, t.TempDir(), "live.frag", testFragment)

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, c, &printer{out: out}, zap.NewNop(), []string{path})
	}()

	waitFor := func(want string, count int) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if strings.Count(out.String(), want) >= count {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatalf("timed out waiting for %d x %q, output:\n%s", count, want, out.String())
	}

	waitFor("PASS", 1)
	if err := os.WriteFile(path, []byte("void main() { gl_FragColor = undeclared; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor("FAIL", 1)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop")
	}
}
