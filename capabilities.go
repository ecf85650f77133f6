package spiral

// Tier is a coarse GPU performance class.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// String returns "low", "medium" or "high".
func (t Tier) String() string {
	switch t {
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return "low"
	}
}

// Capabilities describes the graphics hardware and platform. It is computed
// once by the capability package and passed by value.
type Capabilities struct {
	Tier Tier

	// GPUSupported is true when any adapter could be opened.
	GPUSupported bool
	// ModernGPU is true when a Vulkan, Metal or DX12 adapter was found.
	ModernGPU bool

	MaxTextureSize int
	FloatTextures  bool
	Instancing     bool

	Mobile       bool
	PreferCanvas bool

	// Backend and Adapter name the probed adapter, empty when unsupported.
	Backend string
	Adapter string
}
