package gputext

import (
	"errors"

	"github.com/gogpu/gputext/batch"
)

var (
	// ErrInitialization wraps failures that prevent the demo from starting:
	// font, device, window, shader, pipeline or buffer creation. It is
	// fatal.
	ErrInitialization = errors.New("gputext: initialization failed")

	// ErrRuntimeCall wraps a per-frame GPU or layout failure. The frame is
	// abandoned and the next frame starts from IDLE.
	ErrRuntimeCall = errors.New("gputext: frame call failed")

	// ErrCapacityOverflow is reported when a draw sequence does not fit
	// into the geometry buffer. The sequence is skipped for that frame.
	ErrCapacityOverflow = batch.ErrCapacityOverflow
)
