package validator

import (
	"context"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/errors"
)

// DefaultResourceLimits returns the translator's built-in limits.
//
// Precondition: the engine is initialized. Calling it earlier returns a
// not-initialized error instead of querying the engine.
func DefaultResourceLimits(ctx context.Context) (angle.ResourceLimits, error) {
	eng, err := activeEngine(errors.PhaseLifecycle)
	if err != nil {
		return angle.ResourceLimits{}, err
	}

	res := angle.EmptyResourceLimits()
	if err := eng.InitBuiltInResources(ctx, &res); err != nil {
		return angle.ResourceLimits{}, err
	}
	return res, nil
}

// EmptyResourceLimits returns limits with every field zero. It has no
// precondition.
func EmptyResourceLimits() angle.ResourceLimits {
	return angle.EmptyResourceLimits()
}
