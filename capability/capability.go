// Package capability probes the graphics hardware once at startup and
// classifies it into a spiral.Capabilities value.
//
// The probe itself is behind the Prober interface; Classify turns raw
// probe results into a tier and is pure, so it can be tested without a GPU.
package capability

import (
	"regexp"
	"runtime"

	"github.com/gogpu/spiral"
)

// Probe is the raw result of an adapter probe.
type Probe struct {
	// Supported is true when any adapter could be opened.
	Supported bool
	// Modern is true for a Vulkan, Metal or DX12 adapter.
	Modern bool

	MaxTextureSize int
	FloatTextures  bool
	Instancing     bool

	Backend string
	Adapter string
}

// Prober inspects the available graphics hardware.
type Prober interface {
	Probe() Probe
}

// ProberFunc adapts a function to Prober.
type ProberFunc func() Probe

// Probe implements Prober.
func (f ProberFunc) Probe() Probe { return f() }

// Texture size thresholds for the tiers.
const (
	HighTextureSize   = 8192
	MediumTextureSize = 4096
)

// TierOf classifies a probe. The rules are checked in order:
// unsupported is low, a modern adapter with 8192 textures and instancing is
// high, 4096 textures with instancing or float textures is medium, and
// everything else is low.
func TierOf(p Probe) spiral.Tier {
	switch {
	case !p.Supported:
		return spiral.TierLow
	case p.Modern && p.MaxTextureSize >= HighTextureSize && p.Instancing:
		return spiral.TierHigh
	case p.MaxTextureSize >= MediumTextureSize && (p.Instancing || p.FloatTextures):
		return spiral.TierMedium
	default:
		return spiral.TierLow
	}
}

// Classify combines a probe with the mobile flag.
func Classify(p Probe, mobile bool) spiral.Capabilities {
	tier := TierOf(p)
	caps := spiral.Capabilities{
		Tier:         tier,
		GPUSupported: p.Supported,
		Mobile:       mobile,
		PreferCanvas: mobile || tier == spiral.TierLow,
	}
	if p.Supported {
		caps.ModernGPU = p.Modern
		caps.MaxTextureSize = p.MaxTextureSize
		caps.FloatTextures = p.FloatTextures
		caps.Instancing = p.Instancing
		caps.Backend = p.Backend
		caps.Adapter = p.Adapter
	}
	return caps
}

// Detect probes with p and classifies the result. userAgent is matched
// against the mobile pattern; it may be empty on desktop hosts.
func Detect(p Prober, userAgent string) spiral.Capabilities {
	probe := p.Probe()
	caps := Classify(probe, IsMobile(runtime.GOOS, userAgent))
	spiral.Logger().Info("spiral: capabilities detected",
		"tier", caps.Tier,
		"supported", caps.GPUSupported,
		"backend", caps.Backend,
		"adapter", caps.Adapter,
		"mobile", caps.Mobile,
	)
	return caps
}

var mobileRE = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// IsMobile reports whether the host is a mobile platform, from the Go
// target OS or a user-agent style platform string.
func IsMobile(goos, userAgent string) bool {
	if goos == "android" || goos == "ios" {
		return true
	}
	return mobileRE.MatchString(userAgent)
}
