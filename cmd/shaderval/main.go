// Command shaderval validates and translates GLSL/ESSL shaders with the
// ANGLE shader translator.
//
// Usage:
//
//	shaderval [flags] <shader>...
//
// Examples:
//
//	shaderval -spec webgl2 shader.frag          # validate, print object code
//	shaderval -output glsl330 -watch *.vert     # re-validate on save
//	shaderval -wgsl -type fragment tint.wgsl    # lower WGSL first
//	shaderval -i shader.frag                    # interactive editor
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/engine"
	"github.com/wippyai/shader-validator/validator"
)

// envTranslator names the translator module when -translator is absent.
const envTranslator = "SHADERVAL_TRANSLATOR"

type flags struct {
	translator  string
	spec        string
	output      string
	shaderType  string
	memoryPages uint
	wgsl        bool
	watch       bool
	interactive bool
	quiet       bool
	verbose     bool
}

func parseFlags(fs *flag.FlagSet, args []string) (flags, []string, error) {
	var f flags
	fs.StringVar(&f.translator, "translator", os.Getenv(envTranslator), "path to the translator .wasm (default $"+envTranslator+")")
	fs.StringVar(&f.spec, "spec", "webgl2", "input spec: gles2, webgl, gles3, webgl2, webgl3")
	fs.StringVar(&f.output, "output", "essl", "output dialect: essl, glsl, glsl-core, glsl130 ... glsl450")
	fs.StringVar(&f.shaderType, "type", "", "shader type: vertex, fragment, geometry, compute (default from extension)")
	fs.UintVar(&f.memoryPages, "memory-pages", 0, "guest memory limit in 64KB pages (0 = default)")
	fs.BoolVar(&f.wgsl, "wgsl", false, "treat input as WGSL and lower it to GLSL ES first")
	fs.BoolVar(&f.watch, "watch", false, "re-validate when a file changes")
	fs.BoolVar(&f.interactive, "i", false, "interactive mode with TUI")
	fs.BoolVar(&f.quiet, "q", false, "do not print object code")
	fs.BoolVar(&f.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return flags{}, nil, err
	}
	return f, fs.Args(), nil
}

func (f flags) options() (options, error) {
	var opts options
	var err error
	if opts.spec, err = angle.ParseShaderSpec(f.spec); err != nil {
		return options{}, err
	}
	if opts.output, err = angle.ParseOutput(f.output); err != nil {
		return options{}, err
	}
	if f.shaderType != "" {
		if opts.shaderType, err = angle.ParseShaderType(f.shaderType); err != nil {
			return options{}, err
		}
	}
	opts.wgsl = f.wgsl
	return opts, nil
}

func main() {
	fs := flag.NewFlagSet("shaderval", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: shaderval [flags] <shader>...")
		fmt.Fprintln(os.Stderr, "       shaderval -watch [flags] <shader>...")
		fmt.Fprintln(os.Stderr, "       shaderval -i [flags] [shader]  (interactive mode)")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
	f, paths, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 && !f.interactive {
		fs.Usage()
		os.Exit(1)
	}

	ok, err := run(f, paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func run(f flags, paths []string) (bool, error) {
	opts, err := f.options()
	if err != nil {
		return false, err
	}

	log := zap.NewNop()
	if f.verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return false, err
		}
		defer log.Sync()
	}
	engine.SetLogger(log.Named("engine"))
	validator.SetLogger(log.Named("validator"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng, closeEngine, err := openEngine(ctx, f.translator, uint32(f.memoryPages))
	if err != nil {
		return false, err
	}
	defer func() {
		if err := closeEngine(context.Background()); err != nil {
			log.Warn("failed to close translator", zap.Error(err))
		}
	}()

	if err := validator.Initialize(ctx, eng); err != nil {
		return false, err
	}
	defer func() {
		if err := validator.Finalize(context.Background()); err != nil {
			log.Warn("failed to finalize translator", zap.Error(err))
		}
	}()

	res, err := validator.DefaultResourceLimits(ctx)
	if err != nil {
		return false, err
	}
	c := &checker{opts: opts, res: res}

	switch {
	case f.interactive:
		var path string
		if len(paths) > 0 {
			path = paths[0]
		}
		return true, runInteractive(ctx, c, path)

	case f.watch:
		return true, runWatch(ctx, c, newPrinter(os.Stdout, !f.quiet), log, paths)
	}

	p := newPrinter(os.Stdout, !f.quiet)
	allOK := true
	for _, path := range paths {
		rep := c.checkFile(ctx, path)
		p.print(rep)
		allOK = allOK && rep.ok()
	}
	return allOK, nil
}
