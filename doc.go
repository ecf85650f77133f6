// Package spiral renders an infinitely zoomable golden spiral as a
// navigable coordinate space for content tiles.
//
// # Overview
//
// The spiral r(θ) = a·φ^(θ/(π/2)) grows by the golden ratio every quarter
// turn. Zooming multiplies the viewport scale; whenever the scale leaves
// [1, φ) a whole period is moved into a, which draws the very same curve
// with bounded numbers. Zoom can therefore continue in either direction
// without losing precision.
//
// Tiles are anchored at polar bounding boxes on the spiral. Their colors
// come from five growth-phase bands measured in a-normalized radius, so a
// tile keeps its color across normalization passes.
//
// # Backends
//
// Two backends implement [Engine]:
//   - canvas: a 2D path renderer built on github.com/gogpu/gg
//   - gpu: an instanced renderer built on github.com/gogpu/wgpu
//
// Backends register from init. Import the ones you want and let
// [NewEngine] choose from the detected [Capabilities]:
//
//	import (
//	    "github.com/gogpu/spiral"
//	    _ "github.com/gogpu/spiral/canvas"
//	    _ "github.com/gogpu/spiral/gpu"
//	    "github.com/gogpu/spiral/capability"
//	)
//
//	caps := capability.Detect()
//	e, err := spiral.NewEngine(spiral.ModeAuto, caps)
//	if err != nil {
//	    return err
//	}
//	if err := e.Mount(container); err != nil {
//	    return err
//	}
//	defer e.Unmount()
//	e.SetTiles(spiral.SpiralLayout(12, 100))
//
// # Threading
//
// An engine runs entirely on the goroutine that drives its container's
// [FrameSource]. Call engine methods from that goroutine only.
package spiral
