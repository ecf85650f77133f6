package input

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/spiral"
)

// Bindings are the host-level actions bound by BindEngineKeys.
type Bindings struct {
	// Menu is invoked by Space and M. Nil disables the binding.
	Menu func()
}

// BindEngineKeys returns a KeyFunc driving e:
//
//	Home, H     reset the viewport and clear focus
//	Escape      clear focus
//	Space, M    open the host menu
//	F3          toggle the debug overlay
func BindEngineKeys(e spiral.Engine, b Bindings) KeyFunc {
	debug := false
	return func(key gpucontext.Key, _ gpucontext.Modifiers) {
		switch key {
		case gpucontext.KeyHome, gpucontext.KeyH:
			e.SetViewport(spiral.PatchAll(spiral.DefaultViewport()))
			e.ClearFocus()
		case gpucontext.KeyEscape:
			e.ClearFocus()
		case gpucontext.KeySpace, gpucontext.KeyM:
			if b.Menu != nil {
				b.Menu()
			}
		case gpucontext.KeyF3:
			debug = !debug
			e.SetDebug(debug)
		}
	}
}
