package engine

import (
	"bytes"
	"slices"
)

// Guest addresses used by the stub translator.
const (
	stubEmptyPtr     = 1000 // zeroed, reads as ""
	stubFailLogPtr   = 1024
	stubResourcesPtr = 1100
	stubUniformPtr   = 1200
	stubHeapBase     = 4096
	stubMemoryPages  = 2

	stubFailLog     = "ERROR: 0:1: '' : syntax error"
	stubResources   = ":MaxVertexAttribs:8"
	stubUniformName = "u_color"
	stubUniformType = 0x8B52
)

// Stub globals, also exported for inspection.
const (
	gHeap = iota
	gObjectCode
	gInfoLog
	gDestructs
	gOptions
)

const (
	opEnd       = 0x0B
	opElse      = 0x05
	opIf        = 0x04
	opLocalGet  = 0x20
	opGlobalGet = 0x23
	opGlobalSet = 0x24
	opI32Load   = 0x28
	opI32Store  = 0x36
	opI32Const  = 0x41
	opI32Eqz    = 0x45
	opI32Add    = 0x6A
	opI32And    = 0x71
	valI32      = 0x7F
)

type stubFunc struct {
	name    string
	params  int
	results int
	body    []byte
}

// stubTranslator is a hand-assembled wasm module implementing the shim ABI:
//
//   - malloc bumps a heap pointer, free is a no-op
//   - GLSLangInitBuiltInResources sets MaxVertexAttribs to 8
//   - GLSLangConstructCompiler returns null for shader type 0
//   - GLSLangCompile fails for zero strings; otherwise the object code is
//     the first source string and the info log is empty
type stubTranslator struct {
	omit     []string
	optional bool
}

func stubFuncs() []stubFunc {
	return []stubFunc{
		{ExportReactorInit, 0, 0, nil},
		{ExportInitialize, 0, 1, i32(1)},
		{ExportFinalize, 0, 1, i32(1)},
		{ExportInitBuiltInResources, 1, 0, cat(local(0), i32(8), store(0))},
		{ExportConstructCompiler, 4, 1, cat(
			local(0), []byte{opI32Eqz, opIf, valI32},
			i32(0),
			[]byte{opElse},
			global(gHeap),
			global(gHeap), i32(16), []byte{opI32Add}, setGlobal(gHeap),
			[]byte{opEnd},
		)},
		{ExportDestructCompiler, 1, 0, cat(global(gDestructs), i32(1), []byte{opI32Add}, setGlobal(gDestructs))},
		{ExportCompile, 4, 1, cat(
			local(3), setGlobal(gOptions),
			local(2), []byte{opI32Eqz, opIf, valI32},
			i32(stubFailLogPtr), setGlobal(gInfoLog), i32(0),
			[]byte{opElse},
			local(1), []byte{opI32Load, 0x02, 0x00}, setGlobal(gObjectCode),
			i32(stubEmptyPtr), setGlobal(gInfoLog), i32(1),
			[]byte{opEnd},
		)},
		{ExportGetObjectCode, 1, 1, global(gObjectCode)},
		{ExportGetInfoLog, 1, 1, global(gInfoLog)},
		{ExportMalloc, 1, 1, cat(
			global(gHeap),
			global(gHeap), local(0), []byte{opI32Add}, i32(7), []byte{opI32Add}, i32(-8), []byte{opI32And},
			setGlobal(gHeap),
		)},
		{ExportFree, 1, 0, nil},
	}
}

func stubOptionalFuncs() []stubFunc {
	return []stubFunc{
		{ExportClearResults, 1, 0, cat(i32(0), setGlobal(gObjectCode), i32(0), setGlobal(gInfoLog))},
		{ExportGetShaderVersion, 1, 1, i32(100)},
		{ExportGetShaderOutputType, 1, 1, i32(0x8B45)},
		{ExportGetBuiltInResourcesString, 1, 1, i32(stubResourcesPtr)},
		{ExportGetNumActiveUniforms, 1, 1, i32(1)},
		{ExportGetActiveUniform, 3, 1, cat(
			local(1), []byte{opIf, valI32},
			i32(0),
			[]byte{opElse},
			local(2), i32(1), store(0),
			local(2), i32(stubUniformType), store(4),
			local(2), i32(stubUniformPtr), store(8),
			i32(1),
			[]byte{opEnd},
		)},
	}
}

func (s stubTranslator) funcs() []stubFunc {
	all := stubFuncs()
	if s.optional {
		all = append(all, stubOptionalFuncs()...)
	}
	return slices.DeleteFunc(all, func(f stubFunc) bool {
		return slices.Contains(s.omit, f.name)
	})
}

func (s stubTranslator) wasm() []byte {
	funcs := s.funcs()

	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})

	// one type per function keeps indices trivial
	var types, fnsec, code, exports []byte
	types = uleb(uint32(len(funcs)))
	fnsec = uleb(uint32(len(funcs)))
	code = uleb(uint32(len(funcs)))
	for i, f := range funcs {
		types = append(types, 0x60)
		types = append(types, uleb(uint32(f.params))...)
		types = append(types, bytes.Repeat([]byte{valI32}, f.params)...)
		types = append(types, uleb(uint32(f.results))...)
		types = append(types, bytes.Repeat([]byte{valI32}, f.results)...)

		fnsec = append(fnsec, uleb(uint32(i))...)

		body := cat([]byte{0x00}, f.body, []byte{opEnd})
		code = append(code, uleb(uint32(len(body)))...)
		code = append(code, body...)
	}

	globals := []int32{stubHeapBase, 0, 0, 0, 0}
	gsec := uleb(uint32(len(globals)))
	for _, v := range globals {
		gsec = append(gsec, valI32, 0x01)
		gsec = append(gsec, i32(v)...)
		gsec = append(gsec, opEnd)
	}

	exports = uleb(uint32(len(funcs) + 3))
	for i, f := range funcs {
		exports = append(exports, name(f.name)...)
		exports = append(exports, 0x00)
		exports = append(exports, uleb(uint32(i))...)
	}
	exports = append(exports, name(ExportMemory)...)
	exports = append(exports, 0x02, 0x00)
	exports = append(exports, name("destructs")...)
	exports = append(exports, 0x03, gDestructs)
	exports = append(exports, name("options")...)
	exports = append(exports, 0x03, gOptions)

	data := []struct {
		addr int32
		text string
	}{
		{stubFailLogPtr, stubFailLog},
		{stubResourcesPtr, stubResources},
		{stubUniformPtr, stubUniformName},
	}
	dsec := uleb(uint32(len(data)))
	for _, d := range data {
		dsec = append(dsec, 0x00)
		dsec = append(dsec, i32(d.addr)...)
		dsec = append(dsec, opEnd)
		dsec = append(dsec, name(d.text+"\x00")...)
	}

	section(&out, 1, types)
	section(&out, 3, fnsec)
	section(&out, 5, cat([]byte{0x01, 0x00}, uleb(stubMemoryPages)))
	section(&out, 6, gsec)
	section(&out, 7, exports)
	section(&out, 10, code)
	section(&out, 11, dsec)
	return out.Bytes()
}

func section(out *bytes.Buffer, id byte, payload []byte) {
	out.WriteByte(id)
	out.Write(uleb(uint32(len(payload))))
	out.Write(payload)
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func cat(parts ...[]byte) []byte {
	return slices.Concat(parts...)
}

func local(i byte) []byte     { return []byte{opLocalGet, i} }
func global(i byte) []byte    { return []byte{opGlobalGet, i} }
func setGlobal(i byte) []byte { return []byte{opGlobalSet, i} }

// store emits i32.store with natural alignment at the given offset.
func store(offset byte) []byte { return []byte{opI32Store, 0x02, offset} }

func i32(v int32) []byte {
	return append([]byte{opI32Const}, sleb(v)...)
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
