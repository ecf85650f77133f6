package ebitenhost

import (
	"github.com/gogpu/gpucontext"
	"github.com/hajimehoshi/ebiten/v2"
)

var keyMap = map[ebiten.Key]gpucontext.Key{
	ebiten.KeyA: gpucontext.KeyA,
	ebiten.KeyB: gpucontext.KeyB,
	ebiten.KeyC: gpucontext.KeyC,
	ebiten.KeyD: gpucontext.KeyD,
	ebiten.KeyE: gpucontext.KeyE,
	ebiten.KeyF: gpucontext.KeyF,
	ebiten.KeyG: gpucontext.KeyG,
	ebiten.KeyH: gpucontext.KeyH,
	ebiten.KeyI: gpucontext.KeyI,
	ebiten.KeyJ: gpucontext.KeyJ,
	ebiten.KeyK: gpucontext.KeyK,
	ebiten.KeyL: gpucontext.KeyL,
	ebiten.KeyM: gpucontext.KeyM,
	ebiten.KeyN: gpucontext.KeyN,
	ebiten.KeyO: gpucontext.KeyO,
	ebiten.KeyP: gpucontext.KeyP,
	ebiten.KeyQ: gpucontext.KeyQ,
	ebiten.KeyR: gpucontext.KeyR,
	ebiten.KeyS: gpucontext.KeyS,
	ebiten.KeyT: gpucontext.KeyT,
	ebiten.KeyU: gpucontext.KeyU,
	ebiten.KeyV: gpucontext.KeyV,
	ebiten.KeyW: gpucontext.KeyW,
	ebiten.KeyX: gpucontext.KeyX,
	ebiten.KeyY: gpucontext.KeyY,
	ebiten.KeyZ: gpucontext.KeyZ,

	ebiten.KeyDigit0: gpucontext.Key0,
	ebiten.KeyDigit1: gpucontext.Key1,
	ebiten.KeyDigit2: gpucontext.Key2,
	ebiten.KeyDigit3: gpucontext.Key3,
	ebiten.KeyDigit4: gpucontext.Key4,
	ebiten.KeyDigit5: gpucontext.Key5,
	ebiten.KeyDigit6: gpucontext.Key6,
	ebiten.KeyDigit7: gpucontext.Key7,
	ebiten.KeyDigit8: gpucontext.Key8,
	ebiten.KeyDigit9: gpucontext.Key9,

	ebiten.KeyNumpad0: gpucontext.KeyNumpad0,
	ebiten.KeyNumpad1: gpucontext.KeyNumpad1,
	ebiten.KeyNumpad2: gpucontext.KeyNumpad2,
	ebiten.KeyNumpad3: gpucontext.KeyNumpad3,
	ebiten.KeyNumpad4: gpucontext.KeyNumpad4,
	ebiten.KeyNumpad5: gpucontext.KeyNumpad5,
	ebiten.KeyNumpad6: gpucontext.KeyNumpad6,
	ebiten.KeyNumpad7: gpucontext.KeyNumpad7,
	ebiten.KeyNumpad8: gpucontext.KeyNumpad8,
	ebiten.KeyNumpad9: gpucontext.KeyNumpad9,

	ebiten.KeyF1:  gpucontext.KeyF1,
	ebiten.KeyF2:  gpucontext.KeyF2,
	ebiten.KeyF3:  gpucontext.KeyF3,
	ebiten.KeyF4:  gpucontext.KeyF4,
	ebiten.KeyF5:  gpucontext.KeyF5,
	ebiten.KeyF6:  gpucontext.KeyF6,
	ebiten.KeyF7:  gpucontext.KeyF7,
	ebiten.KeyF8:  gpucontext.KeyF8,
	ebiten.KeyF9:  gpucontext.KeyF9,
	ebiten.KeyF10: gpucontext.KeyF10,
	ebiten.KeyF11: gpucontext.KeyF11,
	ebiten.KeyF12: gpucontext.KeyF12,

	ebiten.KeyArrowUp:    gpucontext.KeyUp,
	ebiten.KeyArrowDown:  gpucontext.KeyDown,
	ebiten.KeyArrowLeft:  gpucontext.KeyLeft,
	ebiten.KeyArrowRight: gpucontext.KeyRight,
	ebiten.KeyHome:       gpucontext.KeyHome,
	ebiten.KeyEnd:        gpucontext.KeyEnd,
	ebiten.KeyPageUp:     gpucontext.KeyPageUp,
	ebiten.KeyPageDown:   gpucontext.KeyPageDown,
	ebiten.KeyInsert:     gpucontext.KeyInsert,
	ebiten.KeyDelete:     gpucontext.KeyDelete,

	ebiten.KeyEscape:    gpucontext.KeyEscape,
	ebiten.KeyEnter:     gpucontext.KeyEnter,
	ebiten.KeyTab:       gpucontext.KeyTab,
	ebiten.KeyBackspace: gpucontext.KeyBackspace,
	ebiten.KeySpace:     gpucontext.KeySpace,

	ebiten.KeyMinus:        gpucontext.KeyMinus,
	ebiten.KeyEqual:        gpucontext.KeyEqual,
	ebiten.KeyBracketLeft:  gpucontext.KeyLeftBracket,
	ebiten.KeyBracketRight: gpucontext.KeyRightBracket,
	ebiten.KeyBackslash:    gpucontext.KeyBackslash,
	ebiten.KeySemicolon:    gpucontext.KeySemicolon,
	ebiten.KeyQuote:        gpucontext.KeyApostrophe,
	ebiten.KeyBackquote:    gpucontext.KeyGrave,
	ebiten.KeyComma:        gpucontext.KeyComma,
	ebiten.KeyPeriod:       gpucontext.KeyPeriod,
	ebiten.KeySlash:        gpucontext.KeySlash,

	ebiten.KeyNumpadAdd:      gpucontext.KeyNumpadAdd,
	ebiten.KeyNumpadSubtract: gpucontext.KeyNumpadSubtract,
	ebiten.KeyNumpadMultiply: gpucontext.KeyNumpadMultiply,
	ebiten.KeyNumpadDivide:   gpucontext.KeyNumpadDivide,
	ebiten.KeyNumpadDecimal:  gpucontext.KeyNumpadDecimal,
	ebiten.KeyNumpadEnter:    gpucontext.KeyNumpadEnter,

	ebiten.KeyShiftLeft:    gpucontext.KeyLeftShift,
	ebiten.KeyShiftRight:   gpucontext.KeyRightShift,
	ebiten.KeyControlLeft:  gpucontext.KeyLeftControl,
	ebiten.KeyControlRight: gpucontext.KeyRightControl,
	ebiten.KeyAltLeft:      gpucontext.KeyLeftAlt,
	ebiten.KeyAltRight:     gpucontext.KeyRightAlt,
	ebiten.KeyMetaLeft:     gpucontext.KeyLeftSuper,
	ebiten.KeyMetaRight:    gpucontext.KeyRightSuper,
}

// Key converts an ebiten key. Unmapped keys return gpucontext.KeyUnknown.
func Key(k ebiten.Key) gpucontext.Key {
	if gk, ok := keyMap[k]; ok {
		return gk
	}
	return gpucontext.KeyUnknown
}

// modifiers reports the held modifier keys.
func modifiers(pressed func(ebiten.Key) bool) gpucontext.Modifiers {
	var m gpucontext.Modifiers
	if pressed(ebiten.KeyShift) {
		m |= gpucontext.ModShift
	}
	if pressed(ebiten.KeyControl) {
		m |= gpucontext.ModControl
	}
	if pressed(ebiten.KeyAlt) {
		m |= gpucontext.ModAlt
	}
	if pressed(ebiten.KeyMeta) {
		m |= gpucontext.ModSuper
	}
	return m
}
