// Package validator manages the shader translator's process lifecycle and
// the compiler sessions built on it.
//
// A program registers an engine once, creates any number of Validators, and
// finalizes the engine before exit:
//
//	eng, err := engine.LoadWasmEngine(ctx, "translator.wasm", nil)
//	if err != nil { ... }
//	if err := validator.Initialize(ctx, eng); err != nil { ... }
//	defer validator.Finalize(ctx)
//
//	res, _ := validator.DefaultResourceLimits(ctx)
//	v, err := validator.ForWebGL2(ctx, angle.FragmentShader, angle.OutputESSL, &res)
//	if err != nil { ... }
//	defer v.Close(ctx)
//
//	code, err := v.CompileAndTranslate(ctx, []string{src})
//	if err != nil {
//		log.Print(v.InfoLog(ctx))
//	}
//
// # Concurrency
//
// Compiler construction is serialized process-wide: the translator keeps an
// unsynchronized type cache that is only touched while a compiler is built.
// Compile, the output accessors and Close are not serialized here. A single
// Validator must not be used from several goroutines at once; distinct
// Validators may.
//
// Initialize and Finalize are expected to run once, at startup and
// shutdown, and are not guarded against concurrent calls.
package validator
