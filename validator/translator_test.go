package validator_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/engine"
	"github.com/wippyai/shader-validator/errors"
	"github.com/wippyai/shader-validator/validator"
)

// These tests run against a real translator build. Point
// SHADERVAL_TRANSLATOR at the shim's .wasm to enable them.
func loadTranslator(t *testing.T) {
	t.Helper()
	path := os.Getenv("SHADERVAL_TRANSLATOR")
	if path == "" {
		t.Skip("SHADERVAL_TRANSLATOR not set")
	}

	ctx := context.Background()
	eng, err := engine.LoadWasmEngine(ctx, path, nil)
	if err != nil {
		t.Fatalf("LoadWasmEngine failed: %v", err)
	}
	if err := validator.Initialize(ctx, eng); err != nil {
		eng.Close(ctx)
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		validator.Finalize(ctx)
		eng.Close(ctx)
	})
}

func TestTranslator_WebGL(t *testing.T) {
	loadTranslator(t)
	ctx := context.Background()

	res, err := validator.DefaultResourceLimits(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsZero() {
		t.Fatal("translator returned all-zero default limits")
	}

	v, err := validator.ForWebGL(ctx, angle.FragmentShader, angle.OutputGLSL330Core, &res)
	if err != nil {
		t.Fatalf("ForWebGL failed: %v", err)
	}
	defer v.Close(ctx)

	code, err := v.CompileAndTranslate(ctx, []string{
		"precision mediump float;\nvoid main() { gl_FragColor = vec4(1.0); }\n",
	})
	if err != nil {
		t.Fatalf("CompileAndTranslate failed: %v\n%s", err, v.InfoLog(ctx))
	}
	if code == "" {
		t.Error("expected non-empty object code")
	}

	_, err = v.CompileAndTranslate(ctx, []string{
		"precision mediump float;\nvoid main() { gl_FragColor = undeclared; }\n",
	})
	if !errors.Is(err, errors.ErrCompileFailed) {
		t.Fatalf("expected compile failure, got %v", err)
	}
	if !strings.Contains(v.InfoLog(ctx), "undeclared") {
		t.Errorf("info log %q does not name the identifier", v.InfoLog(ctx))
	}
}

func TestTranslator_ConcurrentConstruction(t *testing.T) {
	loadTranslator(t)
	ctx := context.Background()

	res, err := validator.DefaultResourceLimits(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				v, err := validator.ForWebGL2(ctx, angle.VertexShader, angle.OutputESSL, &res)
				if err != nil {
					t.Errorf("ForWebGL2 failed: %v", err)
					return
				}
				v.Close(ctx)
			}
		}()
	}
	wg.Wait()
}
