//go:build !(angle && cgo)

package main

import (
	"context"
	"os"

	"github.com/wippyai/shader-validator/engine"
	"github.com/wippyai/shader-validator/errors"
)

// openEngine loads the translator module from path.
func openEngine(ctx context.Context, path string, memoryPages uint32) (engine.Engine, func(context.Context) error, error) {
	if path == "" {
		return nil, nil, errors.InvalidInput(errors.PhaseLoad,
			"no translator module, use -translator or set "+envTranslator)
	}
	eng, err := engine.LoadWasmEngine(ctx, path, &engine.Config{
		Stderr:           os.Stderr,
		MemoryLimitPages: memoryPages,
	})
	if err != nil {
		return nil, nil, err
	}
	return eng, eng.Close, nil
}
