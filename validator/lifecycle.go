package validator

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/shader-validator/engine"
	"github.com/wippyai/shader-validator/errors"
)

// Process-wide engine state. There is no reference count: callers balance
// Initialize and Finalize themselves.
var (
	active      atomic.Pointer[engine.Engine]
	initialized atomic.Bool
)

// Initialize runs eng's startup routine and, on success, registers eng as
// the process engine. It must succeed before any Validator is constructed or
// default limits are queried. A failure leaves the process uninitialized and
// the previously registered engine, if any, in place for Finalize.
func Initialize(ctx context.Context, eng engine.Engine) error {
	if eng == nil {
		initialized.Store(false)
		return errors.InvalidInput(errors.PhaseLifecycle, "nil engine")
	}

	ok, err := eng.Initialize(ctx)
	if err != nil || !ok {
		initialized.Store(false)
		e := errors.InitializeFailed()
		e.Cause = err
		return e
	}

	active.Store(&eng)
	initialized.Store(true)
	Logger().Debug("shader translator initialized")
	return nil
}

// Finalize runs the engine's teardown routine. After it succeeds no
// Validator may be constructed until Initialize succeeds again. Validators
// still open keep their handles; close them first.
func Finalize(ctx context.Context) error {
	p := active.Load()
	if p == nil {
		return errors.NotInitialized(errors.PhaseLifecycle, "shader translator")
	}

	ok, err := (*p).Finalize(ctx)
	if err != nil {
		e := errors.FinalizeFailed()
		e.Cause = err
		return e
	}
	if !ok {
		return errors.FinalizeFailed()
	}

	initialized.Store(false)
	Logger().Debug("shader translator finalized")
	return nil
}

// Initialized reports whether the last Initialize succeeded and no
// Finalize has succeeded since.
func Initialized() bool {
	return initialized.Load()
}

// activeEngine returns the process engine, or a not-initialized error
// tagged with phase.
func activeEngine(phase errors.Phase) (engine.Engine, error) {
	p := active.Load()
	if p == nil || !initialized.Load() {
		Logger().Debug("engine used outside Initialize/Finalize", zap.String("phase", string(phase)))
		return nil, errors.NotInitialized(phase, "shader translator")
	}
	return *p, nil
}
