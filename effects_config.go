package spiral

// EffectsConfig toggles the optional visual effects of an engine.
type EffectsConfig struct {
	EnableParticles      bool    `json:"enableParticles"`
	EnablePulse          bool    `json:"enablePulse"`
	EnableGlow           bool    `json:"enableGlow"`
	EnableFeedbackPaths  bool    `json:"enableFeedbackPaths"`
	ParticleDensity      float64 `json:"particleDensity"` // 0..1
	GlowIntensity        float64 `json:"glowIntensity"`   // 0..1
	RespectReducedMotion bool    `json:"respectReducedMotion"`
}

// DefaultEffects returns the built-in effects configuration.
func DefaultEffects() EffectsConfig {
	return EffectsConfig{
		EnableParticles:      true,
		EnablePulse:          true,
		EnableGlow:           true,
		EnableFeedbackPaths:  true,
		ParticleDensity:      0.6,
		GlowIntensity:        0.4,
		RespectReducedMotion: true,
	}
}

// Effect names one toggleable effect.
type Effect int

const (
	EffectParticles Effect = iota
	EffectPulse
	EffectGlow
	EffectFeedbackPaths
)

// Flag returns the configured toggle for e, ignoring reduced motion.
func (c EffectsConfig) Flag(e Effect) bool {
	switch e {
	case EffectParticles:
		return c.EnableParticles
	case EffectPulse:
		return c.EnablePulse
	case EffectGlow:
		return c.EnableGlow
	case EffectFeedbackPaths:
		return c.EnableFeedbackPaths
	default:
		return false
	}
}

// Enabled reports whether e should be drawn. Every effect is off when the
// host prefers reduced motion and the config respects that preference.
func (c EffectsConfig) Enabled(e Effect, reducedMotion bool) bool {
	if reducedMotion && c.RespectReducedMotion {
		return false
	}
	return c.Flag(e)
}

// EffectsPatch holds the effect fields to change. Nil fields are kept.
type EffectsPatch struct {
	EnableParticles      *bool    `json:"enableParticles,omitempty"`
	EnablePulse          *bool    `json:"enablePulse,omitempty"`
	EnableGlow           *bool    `json:"enableGlow,omitempty"`
	EnableFeedbackPaths  *bool    `json:"enableFeedbackPaths,omitempty"`
	ParticleDensity      *float64 `json:"particleDensity,omitempty"`
	GlowIntensity        *float64 `json:"glowIntensity,omitempty"`
	RespectReducedMotion *bool    `json:"respectReducedMotion,omitempty"`
}

// Apply returns c with the patch merged in.
func (p EffectsPatch) Apply(c EffectsConfig) EffectsConfig {
	if p.EnableParticles != nil {
		c.EnableParticles = *p.EnableParticles
	}
	if p.EnablePulse != nil {
		c.EnablePulse = *p.EnablePulse
	}
	if p.EnableGlow != nil {
		c.EnableGlow = *p.EnableGlow
	}
	if p.EnableFeedbackPaths != nil {
		c.EnableFeedbackPaths = *p.EnableFeedbackPaths
	}
	if p.ParticleDensity != nil {
		c.ParticleDensity = *p.ParticleDensity
	}
	if p.GlowIntensity != nil {
		c.GlowIntensity = *p.GlowIntensity
	}
	if p.RespectReducedMotion != nil {
		c.RespectReducedMotion = *p.RespectReducedMotion
	}
	return c
}

// EffectsStore is the persisted source of effect preferences. The effects
// package provides the process-wide implementation.
type EffectsStore interface {
	Load() EffectsConfig
	Save(EffectsConfig)
}

// memoryEffects is the fallback store when no cache is configured.
type memoryEffects struct{ cfg EffectsConfig }

func (m *memoryEffects) Load() EffectsConfig  { return m.cfg }
func (m *memoryEffects) Save(c EffectsConfig) { m.cfg = c }
