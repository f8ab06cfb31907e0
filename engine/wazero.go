package engine

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/errors"
)

// WasmEngine runs a WASI reactor build of the translator shim in wazero.
//
// The guest is single threaded: every method takes the instance lock for
// the whole call, including the marshaling of arguments into guest memory.
type WasmEngine struct {
	runtime wazero.Runtime
	module  api.Module
	memory  *WazeroMemory
	alloc   *wazeroAllocator
	fn      exportSet
	mu      sync.Mutex
}

var (
	_ Engine       = (*WasmEngine)(nil)
	_ Introspector = (*WasmEngine)(nil)
)

// Config holds configuration for engine creation
type Config struct {
	// Stdout and Stderr receive the translator's WASI output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

type exportSet struct {
	initialize      api.Function
	finalize        api.Function
	initResources   api.Function
	construct       api.Function
	destruct        api.Function
	compile         api.Function
	objectCode      api.Function
	infoLog         api.Function
	clearResults    api.Function
	shaderVersion   api.Function
	outputType      api.Function
	resourcesString api.Function
	numUniforms     api.Function
	activeUniform   api.Function
}

// NewWasmEngine instantiates the translator module in wasm.
func NewWasmEngine(ctx context.Context, wasm []byte) (*WasmEngine, error) {
	return NewWasmEngineWithConfig(ctx, wasm, nil)
}

// LoadWasmEngine reads the translator module from path.
func LoadWasmEngine(ctx context.Context, path string, cfg *Config) (*WasmEngine, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read translator module", err)
	}
	return NewWasmEngineWithConfig(ctx, wasm, cfg)
}

// NewWasmEngineWithConfig instantiates the translator module with custom configuration
func NewWasmEngineWithConfig(ctx context.Context, wasm []byte, cfg *Config) (*WasmEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	e, err := instantiate(ctx, runtime, wasm, cfg)
	if err != nil {
		if closeErr := runtime.Close(ctx); closeErr != nil {
			Logger().Warn("failed to close runtime after instantiation error", zap.Error(closeErr))
		}
		return nil, err
	}
	return e, nil
}

func instantiate(ctx context.Context, runtime wazero.Runtime, wasm []byte, cfg *Config) (*WasmEngine, error) {
	if _, err := instantiateWASI(ctx, runtime); err != nil {
		return nil, errors.Load("instantiate WASI", err)
	}

	compiled, err := runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile translator module", err)
	}

	modConfig := wazero.NewModuleConfig().
		WithName("translator").
		WithStartFunctions(ExportReactorInit)
	if cfg != nil && cfg.Stdout != nil {
		modConfig = modConfig.WithStdout(cfg.Stdout)
	}
	if cfg != nil && cfg.Stderr != nil {
		modConfig = modConfig.WithStderr(cfg.Stderr)
	}

	mod, err := runtime.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		return nil, errors.Load("instantiate translator module", err)
	}

	mem := mod.Memory()
	if mem == nil {
		return nil, errors.MissingExport(ExportMemory)
	}

	fn, err := resolveExports(mod)
	if err != nil {
		return nil, err
	}

	allocFn, freeFn := mod.ExportedFunction(ExportMalloc), mod.ExportedFunction(ExportFree)
	if allocFn == nil {
		return nil, errors.MissingExport(ExportMalloc)
	}
	if freeFn == nil {
		return nil, errors.MissingExport(ExportFree)
	}

	Logger().Debug("translator module instantiated",
		zap.Uint32("memory_bytes", mem.Size()),
		zap.Bool("introspection", fn.resourcesString != nil && fn.activeUniform != nil))

	return &WasmEngine{
		runtime: runtime,
		module:  mod,
		memory:  &WazeroMemory{mem: mem},
		alloc:   newWazeroAllocator(allocFn, freeFn),
		fn:      fn,
	}, nil
}

func resolveExports(mod api.Module) (exportSet, error) {
	var fn exportSet
	required := []struct {
		dst  *api.Function
		name string
	}{
		{&fn.initialize, ExportInitialize},
		{&fn.finalize, ExportFinalize},
		{&fn.initResources, ExportInitBuiltInResources},
		{&fn.construct, ExportConstructCompiler},
		{&fn.destruct, ExportDestructCompiler},
		{&fn.compile, ExportCompile},
		{&fn.objectCode, ExportGetObjectCode},
		{&fn.infoLog, ExportGetInfoLog},
	}
	for _, r := range required {
		*r.dst = mod.ExportedFunction(r.name)
		if *r.dst == nil {
			return exportSet{}, errors.MissingExport(r.name)
		}
	}

	fn.clearResults = mod.ExportedFunction(ExportClearResults)
	fn.shaderVersion = mod.ExportedFunction(ExportGetShaderVersion)
	fn.outputType = mod.ExportedFunction(ExportGetShaderOutputType)
	fn.resourcesString = mod.ExportedFunction(ExportGetBuiltInResourcesString)
	fn.numUniforms = mod.ExportedFunction(ExportGetNumActiveUniforms)
	fn.activeUniform = mod.ExportedFunction(ExportGetActiveUniform)
	return fn, nil
}

// Close releases the wazero runtime and every guest resource with it.
// Handles still held by validators become invalid.
func (e *WasmEngine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.module == nil {
		return nil
	}
	e.module = nil
	e.memory = nil
	e.alloc = nil
	return e.runtime.Close(ctx)
}

// call invokes fn with the instance lock held by the caller.
func (e *WasmEngine) call(ctx context.Context, phase errors.Phase, name string, fn api.Function, params ...uint64) ([]uint64, error) {
	if e.module == nil {
		return nil, errors.Closed(phase)
	}
	if fn == nil {
		return nil, errors.Unsupported(phase, name+" is not exported by the translator")
	}
	e.alloc.setContext(ctx)
	res, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, errors.Trap(phase, name, err)
	}
	return res, nil
}

func (e *WasmEngine) callBool(ctx context.Context, phase errors.Phase, name string, fn api.Function, params ...uint64) (bool, error) {
	res, err := e.call(ctx, phase, name, fn, params...)
	if err != nil {
		return false, err
	}
	return api.DecodeI32(res[0]) != 0, nil
}

func (e *WasmEngine) Initialize(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callBool(ctx, errors.PhaseLifecycle, ExportInitialize, e.fn.initialize)
}

func (e *WasmEngine) Finalize(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callBool(ctx, errors.PhaseLifecycle, ExportFinalize, e.fn.finalize)
}

func (e *WasmEngine) InitBuiltInResources(ctx context.Context, res *angle.ResourceLimits) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.module == nil {
		return errors.Closed(errors.PhaseLifecycle)
	}
	e.alloc.setContext(ctx)
	ptr, err := e.writeResources(res)
	if err != nil {
		return err
	}
	defer e.alloc.Free(ptr, resourcesSize, 4)

	if _, err := e.call(ctx, errors.PhaseLifecycle, ExportInitBuiltInResources, e.fn.initResources, api.EncodeU32(ptr)); err != nil {
		return err
	}

	values := make([]int32, angle.ResourceLimitsFieldCount)
	for i := range values {
		v, err := e.memory.ReadU32(ptr + uint32(4*i))
		if err != nil {
			return err
		}
		values[i] = int32(v)
	}
	res.SetValues(values)
	return nil
}

const resourcesSize = 4 * angle.ResourceLimitsFieldCount

// writeResources copies res into a fresh guest allocation.
func (e *WasmEngine) writeResources(res *angle.ResourceLimits) (uint32, error) {
	ptr, err := e.alloc.Alloc(resourcesSize, 4)
	if err != nil {
		return 0, err
	}
	for i, v := range res.Values() {
		if err := e.memory.WriteU32(ptr+uint32(4*i), uint32(v)); err != nil {
			e.alloc.Free(ptr, resourcesSize, 4)
			return 0, err
		}
	}
	return ptr, nil
}

func (e *WasmEngine) ConstructCompiler(ctx context.Context, shaderType angle.ShaderType, spec, output int32, res *angle.ResourceLimits) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.module == nil {
		return 0, errors.Closed(errors.PhaseConstruct)
	}
	e.alloc.setContext(ctx)
	ptr, err := e.writeResources(res)
	if err != nil {
		return 0, err
	}
	// The shim copies the record into the compiler.
	defer e.alloc.Free(ptr, resourcesSize, 4)

	out, err := e.call(ctx, errors.PhaseConstruct, ExportConstructCompiler, e.fn.construct,
		api.EncodeU32(uint32(shaderType)),
		api.EncodeI32(spec),
		api.EncodeI32(output),
		api.EncodeU32(ptr))
	if err != nil {
		return 0, err
	}
	return Handle(api.DecodeU32(out[0])), nil
}

func (e *WasmEngine) DestructCompiler(ctx context.Context, h Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.call(ctx, errors.PhaseConstruct, ExportDestructCompiler, e.fn.destruct, api.EncodeU32(uint32(h)))
	return err
}

// Compile copies every source buffer and the pointer array into guest
// memory. All of them stay allocated until the native call returns.
func (e *WasmEngine) Compile(ctx context.Context, h Handle, sources [][]byte, options angle.CompileOptions) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.module == nil {
		return false, errors.Closed(errors.PhaseCompile)
	}
	e.alloc.setContext(ctx)

	ptrs := make([]uint32, 0, len(sources))
	defer func() {
		for i, p := range ptrs {
			e.alloc.Free(p, uint32(len(sources[i])), 1)
		}
	}()
	for _, src := range sources {
		p, err := e.alloc.Alloc(uint32(len(src)), 1)
		if err != nil {
			return false, err
		}
		ptrs = append(ptrs, p)
		if err := e.memory.Write(p, src); err != nil {
			return false, err
		}
	}

	arrSize := uint32(4 * max(len(ptrs), 1))
	arr, err := e.alloc.Alloc(arrSize, 4)
	if err != nil {
		return false, err
	}
	defer e.alloc.Free(arr, arrSize, 4)
	for i, p := range ptrs {
		if err := e.memory.WriteU32(arr+uint32(4*i), p); err != nil {
			return false, err
		}
	}

	return e.callBool(ctx, errors.PhaseCompile, ExportCompile, e.fn.compile,
		api.EncodeU32(uint32(h)),
		api.EncodeU32(arr),
		api.EncodeU32(uint32(len(ptrs))),
		api.EncodeU32(uint32(options)))
}

func (e *WasmEngine) ObjectCode(ctx context.Context, h Handle) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callString(ctx, errors.PhaseDecode, ExportGetObjectCode, e.fn.objectCode, h)
}

func (e *WasmEngine) InfoLog(ctx context.Context, h Handle) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callString(ctx, errors.PhaseDecode, ExportGetInfoLog, e.fn.infoLog, h)
}

// callString calls a char*-returning export and copies the result out.
// A null pointer reads as the empty string.
func (e *WasmEngine) callString(ctx context.Context, phase errors.Phase, name string, fn api.Function, h Handle) ([]byte, error) {
	out, err := e.call(ctx, phase, name, fn, api.EncodeU32(uint32(h)))
	if err != nil {
		return nil, err
	}
	ptr := api.DecodeU32(out[0])
	if ptr == 0 {
		return nil, nil
	}
	return e.memory.ReadCString(ptr)
}

func (e *WasmEngine) ClearResults(ctx context.Context, h Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.call(ctx, errors.PhaseQuery, ExportClearResults, e.fn.clearResults, api.EncodeU32(uint32(h)))
	return err
}

func (e *WasmEngine) ShaderVersion(ctx context.Context, h Handle) (int32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callInt(ctx, ExportGetShaderVersion, e.fn.shaderVersion, h)
}

func (e *WasmEngine) ShaderOutputType(ctx context.Context, h Handle) (int32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callInt(ctx, ExportGetShaderOutputType, e.fn.outputType, h)
}

func (e *WasmEngine) callInt(ctx context.Context, name string, fn api.Function, h Handle) (int32, error) {
	out, err := e.call(ctx, errors.PhaseQuery, name, fn, api.EncodeU32(uint32(h)))
	if err != nil {
		return 0, err
	}
	return api.DecodeI32(out[0]), nil
}

func (e *WasmEngine) BuiltInResourcesString(ctx context.Context, h Handle) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callString(ctx, errors.PhaseQuery, ExportGetBuiltInResourcesString, e.fn.resourcesString, h)
}

func (e *WasmEngine) ActiveUniforms(ctx context.Context, h Handle) ([]ActiveInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fn.activeUniform == nil {
		return nil, errors.Unsupported(errors.PhaseQuery, ExportGetActiveUniform+" is not exported by the translator")
	}
	n, err := e.callInt(ctx, ExportGetNumActiveUniforms, e.fn.numUniforms, h)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	out, err := e.alloc.Alloc(activeInfoSize, 4)
	if err != nil {
		return nil, err
	}
	defer e.alloc.Free(out, activeInfoSize, 4)

	infos := make([]ActiveInfo, 0, n)
	for i := int32(0); i < n; i++ {
		ok, err := e.callBool(ctx, errors.PhaseQuery, ExportGetActiveUniform, e.fn.activeUniform,
			api.EncodeU32(uint32(h)), api.EncodeI32(i), api.EncodeU32(out))
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		info, err := e.readActiveInfo(out)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (e *WasmEngine) readActiveInfo(ptr uint32) (ActiveInfo, error) {
	var fields [3]uint32
	for i := range fields {
		v, err := e.memory.ReadU32(ptr + uint32(4*i))
		if err != nil {
			return ActiveInfo{}, err
		}
		fields[i] = v
	}

	info := ActiveInfo{Size: int32(fields[0]), Type: int32(fields[1])}
	if fields[2] != 0 {
		name, err := e.memory.ReadCString(fields[2])
		if err != nil {
			return ActiveInfo{}, err
		}
		info.Name = string(name)
	}
	return info, nil
}
