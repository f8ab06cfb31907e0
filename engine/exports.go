package engine

// Translator shim exports. Pointers and size_t are i32 (wasm32); strings are
// NUL-terminated and owned by the translator.
const (
	// ExportInitialize runs the translator's process startup.
	// Signature: GLSLangInitialize() -> i32 (non-zero on success)
	ExportInitialize = "GLSLangInitialize"

	// ExportFinalize runs the translator's process teardown.
	// Signature: GLSLangFinalize() -> i32 (non-zero on success)
	ExportFinalize = "GLSLangFinalize"

	// ExportInitBuiltInResources fills a resource record with defaults.
	// Signature: GLSLangInitBuiltInResources(res: i32) -> void
	ExportInitBuiltInResources = "GLSLangInitBuiltInResources"

	// ExportConstructCompiler builds a compiler. It is not reentrant.
	// Signature: GLSLangConstructCompiler(type: i32, spec: i32, output: i32, res: i32) -> i32 (handle, 0 on failure)
	ExportConstructCompiler = "GLSLangConstructCompiler"

	// ExportDestructCompiler releases a compiler.
	// Signature: GLSLangDestructCompiler(handle: i32) -> void
	ExportDestructCompiler = "GLSLangDestructCompiler"

	// ExportCompile compiles an array of source strings.
	// Signature: GLSLangCompile(handle: i32, strings: i32, count: i32, options: i32) -> i32 (non-zero on success)
	ExportCompile = "GLSLangCompile"

	// ExportGetObjectCode returns the translated source of the last compile.
	// Signature: GLSLangGetObjectCode(handle: i32) -> i32 (char*)
	ExportGetObjectCode = "GLSLangGetObjectCode"

	// ExportGetInfoLog returns the diagnostics of the last compile.
	// Signature: GLSLangGetInfoLog(handle: i32) -> i32 (char*)
	ExportGetInfoLog = "GLSLangGetInfoLog"
)

// Optional shim exports.
const (
	// Signature: GLSLangClearResults(handle: i32) -> void
	ExportClearResults = "GLSLangClearResults"

	// Signature: GLSLangGetShaderVersion(handle: i32) -> i32
	ExportGetShaderVersion = "GLSLangGetShaderVersion"

	// Signature: GLSLangGetShaderOutputType(handle: i32) -> i32
	ExportGetShaderOutputType = "GLSLangGetShaderOutputType"

	// Signature: GLSLangGetBuiltInResourcesString(handle: i32) -> i32 (char*)
	ExportGetBuiltInResourcesString = "GLSLangGetBuiltInResourcesString"

	// Signature: GLSLangGetNumActiveUniforms(handle: i32) -> i32
	ExportGetNumActiveUniforms = "GLSLangGetNumActiveUniforms"

	// ExportGetActiveUniform writes {size: i32, type: i32, name: char*} to out.
	// Signature: GLSLangGetActiveUniform(handle: i32, index: i32, out: i32) -> i32 (0 when index is out of range)
	ExportGetActiveUniform = "GLSLangGetActiveUniform"
)

// Memory management and reactor exports
const (
	ExportMemory = "memory"

	// Signature: malloc(size: i32) -> i32
	ExportMalloc = "malloc"

	// Signature: free(ptr: i32) -> void
	ExportFree = "free"

	// ExportReactorInit runs static constructors of a WASI reactor build.
	// Signature: _initialize() -> void
	ExportReactorInit = "_initialize"
)

// activeInfoSize is sizeof(GLSLangActiveInfo) on wasm32.
const activeInfoSize = 12
