package spiral

import (
	"image"

	"github.com/gogpu/spiral/internal/frame"
)

// FocusFunc receives the ID of the newly focused tile, or "" when focus
// was cleared.
type FocusFunc func(id string)

// FrameSource schedules per-frame callbacks. The returned cancel function
// withdraws a request that has not fired yet.
type FrameSource = frame.Source

// Container is the host surface an engine is mounted into.
type Container interface {
	// Size returns the drawable size in logical pixels.
	Size() (w, h int)

	// DevicePixelRatio returns physical pixels per logical pixel.
	DevicePixelRatio() float64

	// Frames returns the source that drives the engine's frame loop.
	Frames() FrameSource

	// OnResize registers fn for size changes. The returned function
	// removes the listener.
	OnResize(fn func(w, h int)) (remove func())
}

// Presenter is implemented by containers that can display a rendered
// frame. Frames are in logical size scaled by DevicePixelRatio.
type Presenter interface {
	Present(img image.Image) error
}

// MotionPreference is implemented by containers that know whether the user
// prefers reduced motion. gpucontext.PlatformProvider satisfies it.
type MotionPreference interface {
	ReduceMotion() bool
}

// PlatformInfo is implemented by containers that can describe the platform,
// for example with a browser-style user agent string.
type PlatformInfo interface {
	UserAgent() string
}

// Engine is a spiral renderer. Both backends implement it.
//
// An engine is not safe for concurrent use. All methods must be called from
// the goroutine that drives the container's FrameSource.
type Engine interface {
	// Mount attaches the engine to c and starts its frame loop.
	Mount(c Container) error

	// Unmount stops the frame loop, removes container listeners and
	// releases every resource the engine created. It is idempotent.
	Unmount()

	// SetTiles replaces the tile set with a copy sorted by descending
	// priority.
	SetTiles(tiles []Tile)

	// Tiles returns the engine's sorted tile set.
	Tiles() []Tile

	// OnFocus subscribes fn to focus changes. Subscribers run in
	// registration order.
	OnFocus(fn FocusFunc)

	// FocusTile centers the viewport on the tile and focuses it. Unknown
	// IDs are ignored.
	FocusTile(id string)

	// ClearFocus drops the current focus, notifying subscribers with "".
	ClearFocus()

	// Focused returns the focused tile ID, or "".
	Focused() string

	// Viewport returns the current viewport.
	Viewport() Viewport

	// SetViewport merges p into the viewport and renormalizes.
	SetViewport(p ViewportPatch)

	// HandleWheel zooms about the canvas center by a wheel delta. x and y
	// are the cursor position and are currently unused.
	HandleWheel(deltaY, x, y float64)

	// HandlePan is accepted for interface symmetry and does nothing.
	HandlePan(dx, dy float64)

	// SetEffects merges p into the effects config and persists it.
	SetEffects(p EffectsPatch)

	// Effects returns the current effects config.
	Effects() EffectsConfig

	// SetDebug toggles the debug overlay where the backend has one.
	SetDebug(on bool)
}
