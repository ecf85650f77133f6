package spiral

import "errors"

var (
	// ErrNoSurface is returned by Mount when the container cannot present
	// frames or reports a zero size.
	ErrNoSurface = errors.New("spiral: no drawing surface")

	// ErrNoDevice is returned by Mount when no GPU device can be obtained.
	ErrNoDevice = errors.New("spiral: no GPU device")

	// ErrShaderCompile wraps a shader or pipeline creation failure.
	ErrShaderCompile = errors.New("spiral: shader compile failed")

	// ErrUnknownBackend is returned when no backend is registered for a mode.
	ErrUnknownBackend = errors.New("spiral: no backend registered")

	// ErrNotMounted is returned by operations that need a mounted engine.
	ErrNotMounted = errors.New("spiral: engine not mounted")
)
