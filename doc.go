// Package shadervalidator validates and translates GLSL/ESSL shader source
// with an external shader translator, enforcing the spec and output-dialect
// combinations and driver workaround flags a browser-grade WebGL/WebGL2
// implementation needs.
//
// The translator itself is opaque. This module owns the pieces around it
// that have real correctness hazards: the lifecycle of compiler handles and
// the process-wide lock that serializes compiler construction, because the
// translator populates an unsynchronized internal type cache while building
// a compiler.
//
// # Architecture Overview
//
//	shadervalidator/     Root package with guest Memory and Allocator interfaces
//	├── validator/       Engine lifecycle and the Validator compiler session
//	├── angle/           Specs, output dialects, shader types, options, resource limits
//	├── engine/          Translator boundary; wazero-hosted WASI build, optional cgo build
//	│   └── enginetest/  In-process fake translator for tests
//	├── errors/          Structured error types
//	└── cmd/shaderval/   Command-line validator with watch and interactive modes
//
// # Quick Start
//
//	eng, err := engine.LoadWasmEngine(ctx, "angle_translator.wasm", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	if err := validator.Initialize(ctx, eng); err != nil {
//	    log.Fatal(err)
//	}
//	defer validator.Finalize(ctx)
//
//	res, _ := validator.DefaultResourceLimits(ctx)
//	v, err := validator.ForWebGL2(ctx, angle.FragmentShader, angle.OutputGLSL330Core, &res)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close(ctx)
//
//	code, err := v.CompileAndTranslate(ctx, []string{src})
//	if err != nil {
//	    log.Fatal(v.InfoLog(ctx))
//	}
//
// # Thread Safety
//
// Validators may be constructed from any number of goroutines; construction
// is serialized internally. A single Validator is NOT safe for concurrent
// use. Distinct Validators may compile concurrently, subject to the
// backend: the wazero backend runs one single-threaded guest and serializes
// its own calls.
package shadervalidator
