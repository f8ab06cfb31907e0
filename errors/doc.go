// Package errors provides structured error types for the shader validator.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the failing export or operation, an optional detail
// message, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompile, errors.KindCompileFailed).
//		Export("GLSLangCompile").
//		Detail("couldn't compile shader").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidCharacters(2)
//	err := errors.Trap(errors.PhaseConstruct, "GLSLangConstructCompiler", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when Phase and Kind agree, so the
// package-level sentinels can be used directly:
//
//	if errors.Is(err, errors.ErrCompileFailed) {
//		log.Println(v.InfoLog(ctx))
//	}
package errors
