package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/errors"
	"github.com/wippyai/shader-validator/validator"
)

// options are the validation settings shared by every mode.
type options struct {
	spec       angle.ShaderSpec
	output     angle.Output
	shaderType angle.ShaderType // 0 infers from the file extension
	wgsl       bool
}

// report is the outcome of validating one shader.
type report struct {
	path       string
	shaderType angle.ShaderType
	code       string
	log        string
	err        error
}

func (r report) ok() bool { return r.err == nil }

// checker validates shaders against a fixed set of resource limits.
type checker struct {
	opts options
	res  angle.ResourceLimits
}

func (c *checker) checkFile(ctx context.Context, path string) report {
	data, err := os.ReadFile(path)
	if err != nil {
		return report{path: path, err: err}
	}
	return c.checkSource(ctx, path, string(data))
}

func (c *checker) checkSource(ctx context.Context, path, source string) report {
	rep := report{path: path}

	shaderType, err := c.resolveType(path)
	if err != nil {
		rep.err = err
		return rep
	}
	rep.shaderType = shaderType

	if c.opts.wgsl || isWGSLPath(path) {
		source, err = lowerWGSL(source, c.opts.spec, shaderType)
		if err != nil {
			rep.err = err
			return rep
		}
	}

	v, err := validator.New(ctx, shaderType, c.opts.spec, c.opts.output, &c.res)
	if err != nil {
		rep.err = err
		return rep
	}
	defer v.Close(ctx)

	rep.code, rep.err = v.CompileAndTranslate(ctx, []string{source})
	rep.log = v.InfoLog(ctx)
	return rep
}

func (c *checker) resolveType(path string) (angle.ShaderType, error) {
	if c.opts.shaderType != 0 {
		return c.opts.shaderType, nil
	}
	if isWGSLPath(path) {
		path = path[:len(path)-len(".wgsl")]
	}
	if t, ok := angle.ShaderTypeFromPath(path); ok {
		return t, nil
	}
	return 0, errors.InvalidInput(errors.PhaseParse,
		fmt.Sprintf("cannot infer shader type of %s, use -type", filepath.Base(path)))
}

func isWGSLPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wgsl")
}
