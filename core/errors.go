package core

import "errors"

// Error taxonomy of the rendering core. Callers match with errors.Is.
var (
	// ErrInvalidObject marks malformed encode input: a non-finite
	// transform component, a missing UV region on a textured class, or
	// a size outside the classifiable range. The object is skipped and
	// the frame continues.
	ErrInvalidObject = errors.New("invalid drawable object")

	// ErrBufferOverflow marks a batch that hit its configured hard cap.
	// Fatal for that draw class's submission this frame.
	ErrBufferOverflow = errors.New("instance batch overflow")

	// ErrDeviceDispatch marks a lost device or failed dispatch/draw
	// encode. Fatal for the whole frame; remaining draw classes are
	// skipped rather than submitted against undefined buffers.
	ErrDeviceDispatch = errors.New("device dispatch failed")
)
