//go:build angle && cgo

package main

import (
	"context"

	"github.com/wippyai/shader-validator/engine"
)

// openEngine uses the linked translator unless a module path is given.
func openEngine(ctx context.Context, path string, memoryPages uint32) (engine.Engine, func(context.Context) error, error) {
	if path != "" {
		eng, err := engine.LoadWasmEngine(ctx, path, &engine.Config{MemoryLimitPages: memoryPages})
		if err != nil {
			return nil, nil, err
		}
		return eng, eng.Close, nil
	}
	return engine.NewNativeEngine(), func(context.Context) error { return nil }, nil
}
