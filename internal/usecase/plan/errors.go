package plan

import "errors"

var (
	// ErrGenerationFailed indicates the generator could not produce usable text.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrSaveFailed indicates repository save operation failed.
	ErrSaveFailed = errors.New("save failed")

	// ErrEnqueueFailed indicates the assembly job could not be queued.
	ErrEnqueueFailed = errors.New("enqueue failed")
)
