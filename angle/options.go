package angle

import (
	"math/bits"
	"strconv"
	"strings"
)

// CompileOptions is a set of ShCompileOptions flags. Flags are independent
// and combine with bitwise or.
type CompileOptions uint32

// Values follow the ShaderLang.h revision the translator shim is built
// against. Validate is the zero value: validation always runs, the other
// flags add work on top of it.
const (
	Validate                            CompileOptions = 0
	ValidateLoopIndexing                CompileOptions = 0x0001
	IntermediateTree                    CompileOptions = 0x0002
	ObjectCode                          CompileOptions = 0x0004
	Variables                           CompileOptions = 0x0008
	LineDirectives                      CompileOptions = 0x0010
	SourcePath                          CompileOptions = 0x0020
	UnrollForLoopWithIntegerIndex       CompileOptions = 0x0040
	UnrollForLoopWithSamplerArrayIndex  CompileOptions = 0x0080
	TimingRestrictions                  CompileOptions = 0x0200
	DependencyGraph                     CompileOptions = 0x0400
	EnforcePackingRestrictions          CompileOptions = 0x0800
	ClampIndirectArrayBounds            CompileOptions = 0x1000
	LimitExpressionComplexity           CompileOptions = 0x2000
	LimitCallStackDepth                 CompileOptions = 0x4000
	InitGLPosition                      CompileOptions = 0x8000
	UnfoldShortCircuit                  CompileOptions = 0x10000
	InitOutputVariables                 CompileOptions = 0x20000
	ScalarizeVecAndMatConstructorArgs   CompileOptions = 0x40000
	RegenerateStructNames               CompileOptions = 0x80000
	DontPruneUnusedFunctions            CompileOptions = 0x100000
	RemoveInvariantAndCentroidForESSL3  CompileOptions = 0x200000
	EmulateAbsIntFunction               CompileOptions = 0x400000
	EmulateIsNanFloatFunction           CompileOptions = 0x800000
	EmulateAtan2FloatFunction           CompileOptions = 0x1000000
	DontRemoveInvariantForFragmentInput CompileOptions = 0x2000000
	RewriteTexelFetchOffsetToTexelFetch CompileOptions = 0x4000000
	RewriteFloatUnaryMinusOperator      CompileOptions = 0x8000000
	EmulateGLDrawID                     CompileOptions = 0x10000000
	InitSharedVariables                 CompileOptions = 0x20000000
	ForceAtomicValueResolution          CompileOptions = 0x40000000
	RewriteDoWhileLoops                 CompileOptions = 0x80000000
)

// TranslateOptions is the option set used by Validator.CompileAndTranslate:
// full validation with object code, the abs/isnan/atan2 driver workarounds,
// indirect array clamping, gl_Position initialization, packing limits and
// the expression-complexity and call-depth limits.
//
// TimingRestrictions is left out: it is experimental and rejects
// user-defined functions.
const TranslateOptions = Validate |
	ObjectCode |
	EmulateAbsIntFunction |
	EmulateIsNanFloatFunction |
	EmulateAtan2FloatFunction |
	ClampIndirectArrayBounds |
	InitGLPosition |
	EnforcePackingRestrictions |
	LimitExpressionComplexity |
	LimitCallStackDepth

var optionNames = [32]string{
	"validate_loop_indexing",
	"intermediate_tree",
	"object_code",
	"variables",
	"line_directives",
	"source_path",
	"unroll_for_loop_with_integer_index",
	"unroll_for_loop_with_sampler_array_index",
	"",
	"timing_restrictions",
	"dependency_graph",
	"enforce_packing_restrictions",
	"clamp_indirect_array_bounds",
	"limit_expression_complexity",
	"limit_call_stack_depth",
	"init_gl_position",
	"unfold_short_circuit",
	"init_output_variables",
	"scalarize_vec_and_mat_constructor_args",
	"regenerate_struct_names",
	"dont_prune_unused_functions",
	"remove_invariant_and_centroid_for_essl3",
	"emulate_abs_int_function",
	"emulate_isnan_float_function",
	"emulate_atan2_float_function",
	"dont_remove_invariant_for_fragment_input",
	"rewrite_texelfetchoffset_to_texelfetch",
	"rewrite_float_unary_minus_operator",
	"emulate_gl_draw_id",
	"init_shared_variables",
	"force_atomic_value_resolution",
	"rewrite_do_while_loops",
}

// Has reports whether every flag in flag is set in o.
func (o CompileOptions) Has(flag CompileOptions) bool {
	return o&flag == flag
}

// With returns o with flag added.
func (o CompileOptions) With(flag CompileOptions) CompileOptions {
	return o | flag
}

// Without returns o with flag cleared.
func (o CompileOptions) Without(flag CompileOptions) CompileOptions {
	return o &^ flag
}

// Count returns the number of flags set.
func (o CompileOptions) Count() int {
	return bits.OnesCount32(uint32(o))
}

// String lists the set flags joined by "|"; the empty set prints as "validate".
func (o CompileOptions) String() string {
	if o == Validate {
		return "validate"
	}
	var parts []string
	for i := 0; i < 32; i++ {
		bit := CompileOptions(1) << i
		if o&bit == 0 {
			continue
		}
		name := optionNames[i]
		if name == "" {
			name = "0x" + strconv.FormatUint(uint64(bit), 16)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "|")
}
