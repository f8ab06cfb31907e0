package engine

import (
	"os"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/wippyai/shader-validator/angle"
)

func readShim(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("translator_shim.cpp")
	if err != nil {
		t.Fatalf("read shim: %v", err)
	}
	return string(data)
}

// The shim's field list is the wire layout of angle.ResourceLimits.
func TestShim_ResourceRecordLayout(t *testing.T) {
	src := readShim(t)

	start := strings.Index(src, "#define SV_RESOURCE_FIELDS(X)")
	if start < 0 {
		t.Fatal("SV_RESOURCE_FIELDS not found")
	}
	end := strings.Index(src[start:], "\n\n")
	if end < 0 {
		t.Fatal("SV_RESOURCE_FIELDS is not terminated")
	}
	block := src[start+len("#define SV_RESOURCE_FIELDS(X)") : start+end]

	var got []string
	for _, m := range regexp.MustCompile(`X\((\w+)\)`).FindAllStringSubmatch(block, -1) {
		got = append(got, m[1])
	}

	want := angle.FieldNames()
	if len(want) != angle.ResourceLimitsFieldCount {
		t.Fatalf("FieldNames has %d entries, want %d", len(want), angle.ResourceLimitsFieldCount)
	}
	if !slices.Equal(got, want) {
		t.Errorf("shim fields = %v\nwant %v", got, want)
	}
}

func TestShim_DefinesEveryExport(t *testing.T) {
	src := readShim(t)
	exports := []string{
		ExportInitialize,
		ExportFinalize,
		ExportInitBuiltInResources,
		ExportConstructCompiler,
		ExportDestructCompiler,
		ExportCompile,
		ExportGetObjectCode,
		ExportGetInfoLog,
		ExportClearResults,
		ExportGetShaderVersion,
		ExportGetShaderOutputType,
		ExportGetBuiltInResourcesString,
		ExportGetNumActiveUniforms,
		ExportGetActiveUniform,
	}
	for _, name := range exports {
		if !strings.Contains(src, "SV_EXPORT("+name+")") {
			t.Errorf("shim does not export %s", name)
		}
	}
}

// Both sides must agree on the out-pointer form of GetActiveUniform and on
// int32 resource records.
func TestShim_MatchesCgoPrototypes(t *testing.T) {
	src := readShim(t)
	data, err := os.ReadFile("native_cgo.go")
	if err != nil {
		t.Fatalf("read native_cgo.go: %v", err)
	}
	cgo := string(data)

	tests := []struct {
		name string
		shim string
		cgo  string
	}{
		{"active uniform", "GLSLangGetActiveUniform(ShHandle handle, int index, GLSLangActiveInfo *out)", "GLSLangGetActiveUniform(ShHandle handle, int index, GLSLangActiveInfo* out)"},
		{"init resources", "GLSLangInitBuiltInResources(int32_t *out)", "GLSLangInitBuiltInResources(int32_t* resources)"},
		{"construct", "GLSLangConstructCompiler(unsigned int type, int spec, int output, const int32_t *in)", "GLSLangConstructCompiler(unsigned int type, int spec, int output, const int32_t* resources)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(src, tt.shim) {
				t.Errorf("shim lacks %q", tt.shim)
			}
			if !strings.Contains(cgo, tt.cgo) {
				t.Errorf("cgo preamble lacks %q", tt.cgo)
			}
		})
	}
}
