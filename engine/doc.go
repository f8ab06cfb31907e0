// Package engine is the boundary to the native shader translator.
//
// The translator is consumed through a small C shim (the GLSLang* entry
// points in translator_shim.cpp) and modelled here by the Engine interface.
// Two backends exist:
//
//	WasmEngine    - a WASI reactor build of the shim hosted in wazero (default)
//	NativeEngine  - the shim compiled in with cgo (build tag "angle")
//
// # Translator ABI
//
// The shim exports are listed in exports.go with their wasm32 signatures.
// Strings cross the boundary NUL-terminated. Resource records are passed as
// consecutive little-endian int32 values in angle.ResourceLimits field
// order. The shim copies them into and out of ShBuiltInResources, whose
// layout never crosses the boundary.
//
// A compile call looks like this in guest memory:
//
//	malloc(len(src_i))        one buffer per source, NUL included
//	malloc(4 * n)             const char* array pointing at the buffers
//	GLSLangCompile(h, arr, n, options)
//	free(...)                 after the call returns
//
// # Thread Safety
//
// WasmEngine serializes all calls on its single guest instance.
// NativeEngine calls straight into the shim; ConstructCompiler there is
// not reentrant, which package validator accounts for by serializing
// construction process-wide.
package engine
